package validate

import (
	"github.com/wasmkit/wazir/errors"
	"github.com/wasmkit/wazir/ir"
	"github.com/wasmkit/wazir/wasm"
	"go.uber.org/zap"
)

// OperatorSource yields the decoded operator stream for one function body,
// one operator at a time, alongside the byte offset it started at. The
// concrete implementation lives in the wasm package; this is the seam the
// driver depends on instead.
type OperatorSource interface {
	Eof() bool
	Next() (wasm.Operator, uint32, error)
}

// IndexResolver turns the raw integer indices an operator stream carries
// into opaque, module-scoped ids, rejecting anything out of range.
type IndexResolver interface {
	GetType(idx uint32) (ir.TypeID, error)
	GetFunc(idx uint32) (ir.FuncID, error)
	GetTable(idx uint32) (ir.TableID, error)
	GetMemory(idx uint32) (ir.MemoryID, error)
	GetGlobal(idx uint32) (ir.GlobalID, error)
	GetLocal(idx uint32) (ir.LocalID, error)
	GetData(idx uint32) (ir.DataID, error)
	GetElement(idx uint32) (ir.ElemID, error)
}

// ModuleReadModel answers type-shape questions about ids the IndexResolver
// has already vouched for.
type ModuleReadModel interface {
	TypeParams(ir.TypeID) []ir.ValType
	TypeResults(ir.TypeID) []ir.ValType
	FuncType(ir.FuncID) ir.TypeID
	LocalType(ir.LocalID) ir.ValType
	GlobalType(ir.GlobalID) ir.ValType
	TableElemType(ir.TableID) ir.ValType
	ElemType(ir.ElemID) ir.ValType
}

// driver is the mutable state threaded through one Parse call: the
// combined stack/arena machinery in Context, plus the bookkeeping needed
// for the locals emitter and the used-data-segment accessor afterward.
type driver struct {
	ctx      *Context
	src      OperatorSource
	resolver IndexResolver
	model    ModuleReadModel

	usedLocals map[ir.LocalID]bool
	usedData   map[ir.DataID]bool
}

// Parse decodes and validates one function body in a single pass,
// producing its instruction-sequence IR. results is the function's
// declared result type vector. Parameters and declared locals are not
// passed in: the resolver and model collaborators are consulted for every
// index (locals included) this function body's operators reference.
func Parse(src OperatorSource, resolver IndexResolver, model ModuleReadModel, results []ir.ValType) (*Function, error) {
	ctx := NewContext()
	entry := ctx.PushFunctionEntry(results)

	d := &driver{
		ctx:        ctx,
		src:        src,
		resolver:   resolver,
		model:      model,
		usedLocals: make(map[ir.LocalID]bool),
		usedData:   make(map[ir.DataID]bool),
	}

	for {
		if src.Eof() {
			return nil, errors.UnexpectedEof(ctx.Offset())
		}
		op, off, err := src.Next()
		if err != nil {
			Logger().Debug("malformed operator", zap.Uint32("offset", off), zap.Error(err))
			return nil, errors.MalformedOperator(off, err)
		}
		ctx.SetOffset(off)

		if op.Op == uint32(wasm.OpEnd) {
			done, err := d.handleEnd(off)
			if err != nil {
				return nil, err
			}
			if done {
				break
			}
			continue
		}

		if err := d.step(op, off); err != nil {
			return nil, err
		}
	}

	fn := &Function{
		arena:      ctx.Arena(),
		entry:      entry,
		usedLocals: d.usedLocals,
		usedData:   d.usedData,
	}
	Logger().Debug("function validated", zap.Int("instructions", fn.Size()), zap.Int("used_locals", len(d.usedLocals)))
	return fn, nil
}

func (d *driver) markLocalUsed(id ir.LocalID) { d.usedLocals[id] = true }
func (d *driver) markDataUsed(id ir.DataID)   { d.usedData[id] = true }

// handleEnd closes the innermost control frame, synthesizing an IfElse IR
// node if it closes an if that never had an explicit else. It reports
// done=true once the function's own entry frame closes.
func (d *driver) handleEnd(off uint32) (bool, error) {
	frame, err := d.ctx.PopControl()
	if err != nil {
		return false, err
	}
	switch frame.Kind {
	case FunctionEntry:
		return true, nil
	case BlockFrame:
		d.ctx.Append(0, ir.Block{Seq: frame.Seq}, off)
	case LoopFrame:
		d.ctx.Append(0, ir.Loop{Seq: frame.Seq}, off)
	case IfFrame:
		alt := d.ctx.PushElseFrame(frame.Start, frame.End)
		if _, err := d.ctx.PopControl(); err != nil {
			return false, err
		}
		if err := d.ctx.SetAlternate(alt); err != nil {
			return false, err
		}
		entry := d.ctx.PopIfElse()
		d.ctx.Append(0, ir.IfElse{Consequent: entry.consequent, Alternate: entry.alternate}, off)
	case ElseFrame:
		entry := d.ctx.PopIfElse()
		d.ctx.Append(0, ir.IfElse{Consequent: entry.consequent, Alternate: entry.alternate}, off)
	}
	d.ctx.PushMany(frame.End)
	return false, nil
}

func (d *driver) handleElse(off uint32) error {
	if d.ctx.FrameAt(0).Kind != IfFrame {
		return errors.StrayElse(off)
	}
	frame, err := d.ctx.PopControl()
	if err != nil {
		return err
	}
	alt := d.ctx.PushElseFrame(frame.Start, frame.End)
	return d.ctx.SetAlternate(alt)
}

func (d *driver) resolveBlockType(off uint32, bt wasm.BlockTypeRef) (start, end []ir.ValType, err error) {
	if bt.Empty {
		return nil, nil, nil
	}
	if !bt.IsIndex {
		return nil, []ir.ValType{bt.Val}, nil
	}
	id, err := d.resolver.GetType(bt.Index)
	if err != nil {
		return nil, nil, errors.UnknownIndex(off, "type", bt.Index)
	}
	return d.model.TypeParams(id), d.model.TypeResults(id), nil
}

// step processes every operator except End, which Parse's loop handles
// directly since it is the only operator that can terminate the function.
func (d *driver) step(op wasm.Operator, off uint32) error {
	switch {
	case op.Op < 0x10000:
		return d.stepPlain(op, off)
	case op.Op < 0x20000:
		return d.stepMisc(op, off)
	case op.Op < 0x30000:
		return d.stepSimd(op, off)
	default:
		return d.stepAtomic(op, off)
	}
}

func (d *driver) stepPlain(op wasm.Operator, off uint32) error {
	b := byte(op.Op)

	if shape, ok := numericShape(b); ok {
		return d.numOp(shape, op.Op, off)
	}
	if shape, ok := memShapeFor(b); ok {
		return d.memOp(op, off, shape)
	}

	switch b {
	case wasm.OpI32Const:
		d.ctx.PushType(ir.I32)
		d.ctx.Append(0, ir.Const{Type: ir.I32, I32: op.I32}, off)

	case wasm.OpI64Const:
		d.ctx.PushType(ir.I64)
		d.ctx.Append(0, ir.Const{Type: ir.I64, I64: op.I64}, off)

	case wasm.OpF32Const:
		d.ctx.PushType(ir.F32)
		d.ctx.Append(0, ir.Const{Type: ir.F32, F32: op.F32}, off)

	case wasm.OpF64Const:
		d.ctx.PushType(ir.F64)
		d.ctx.Append(0, ir.Const{Type: ir.F64, F64: op.F64}, off)

	case wasm.OpUnreachable:
		d.ctx.Append(0, ir.Unreachable{}, off)
		d.ctx.MarkUnreachable()

	case wasm.OpNop:
		// No IR node: a nop carries no stack effect and nothing ever
		// inspects its presence, so the arena stays free of clutter.

	case wasm.OpBlock:
		start, end, err := d.resolveBlockType(off, op.BlockType)
		if err != nil {
			return err
		}
		if _, err := d.ctx.PushControl(BlockFrame, start, end); err != nil {
			return err
		}

	case wasm.OpLoop:
		start, end, err := d.resolveBlockType(off, op.BlockType)
		if err != nil {
			return err
		}
		if _, err := d.ctx.PushControl(LoopFrame, start, end); err != nil {
			return err
		}

	case wasm.OpIf:
		start, end, err := d.resolveBlockType(off, op.BlockType)
		if err != nil {
			return err
		}
		if err := d.ctx.PopExpected(ir.I32); err != nil {
			return err
		}
		seq, err := d.ctx.PushControl(IfFrame, start, end)
		if err != nil {
			return err
		}
		d.ctx.PushIfElse(seq)

	case wasm.OpElse:
		return d.handleElse(off)

	case wasm.OpReturn:
		fn := d.ctx.FrameAt(d.ctx.Depth() - 1)
		if err := d.ctx.PopMany(fn.End); err != nil {
			return err
		}
		d.ctx.Append(0, ir.Return{}, off)
		d.ctx.MarkUnreachable()

	case wasm.OpBr:
		return d.branch(op.Idx, off, true)
	case wasm.OpBrIf:
		return d.branchIf(op.Idx, off)
	case wasm.OpBrTable:
		return d.brTable(op, off)

	case wasm.OpCall:
		fid, err := d.resolver.GetFunc(op.Idx)
		if err != nil {
			return errors.UnknownIndex(off, "func", op.Idx)
		}
		ty := d.model.FuncType(fid)
		if err := d.ctx.PopMany(d.model.TypeParams(ty)); err != nil {
			return err
		}
		d.ctx.PushMany(d.model.TypeResults(ty))
		d.ctx.Append(0, ir.Call{Func: fid}, off)

	case wasm.OpCallIndirect:
		ty, err := d.resolver.GetType(op.Idx)
		if err != nil {
			return errors.UnknownIndex(off, "type", op.Idx)
		}
		tbl, err := d.resolver.GetTable(op.Idx2)
		if err != nil {
			return errors.UnknownIndex(off, "table", op.Idx2)
		}
		if err := d.ctx.PopExpected(ir.I32); err != nil {
			return err
		}
		if err := d.ctx.PopMany(d.model.TypeParams(ty)); err != nil {
			return err
		}
		d.ctx.PushMany(d.model.TypeResults(ty))
		d.ctx.Append(0, ir.CallIndirect{Type: ty, Table: tbl}, off)

	case wasm.OpDrop:
		if _, err := d.ctx.Pop(); err != nil {
			return err
		}
		d.ctx.Append(0, ir.Drop{}, off)

	case wasm.OpSelect:
		return d.selectUntyped(off)
	case wasm.OpSelectT:
		return d.selectTyped(op, off)

	case wasm.OpLocalGet:
		id, err := d.resolver.GetLocal(op.Idx)
		if err != nil {
			return errors.UnknownIndex(off, "local", op.Idx)
		}
		d.markLocalUsed(id)
		d.ctx.PushType(d.model.LocalType(id))
		d.ctx.Append(0, ir.LocalGet{Local: id}, off)

	case wasm.OpLocalSet:
		id, err := d.resolver.GetLocal(op.Idx)
		if err != nil {
			return errors.UnknownIndex(off, "local", op.Idx)
		}
		d.markLocalUsed(id)
		if err := d.ctx.PopExpected(d.model.LocalType(id)); err != nil {
			return err
		}
		d.ctx.Append(0, ir.LocalSet{Local: id}, off)

	case wasm.OpLocalTee:
		id, err := d.resolver.GetLocal(op.Idx)
		if err != nil {
			return errors.UnknownIndex(off, "local", op.Idx)
		}
		d.markLocalUsed(id)
		t := d.model.LocalType(id)
		if err := d.ctx.PopExpected(t); err != nil {
			return err
		}
		d.ctx.PushType(t)
		d.ctx.Append(0, ir.LocalTee{Local: id}, off)

	case wasm.OpGlobalGet:
		id, err := d.resolver.GetGlobal(op.Idx)
		if err != nil {
			return errors.UnknownIndex(off, "global", op.Idx)
		}
		d.ctx.PushType(d.model.GlobalType(id))
		d.ctx.Append(0, ir.GlobalGet{Global: id}, off)

	case wasm.OpGlobalSet:
		id, err := d.resolver.GetGlobal(op.Idx)
		if err != nil {
			return errors.UnknownIndex(off, "global", op.Idx)
		}
		if err := d.ctx.PopExpected(d.model.GlobalType(id)); err != nil {
			return err
		}
		d.ctx.Append(0, ir.GlobalSet{Global: id}, off)

	case wasm.OpTableGet:
		tbl, err := d.resolver.GetTable(op.Idx)
		if err != nil {
			return errors.UnknownIndex(off, "table", op.Idx)
		}
		et := d.model.TableElemType(tbl)
		if err := d.ctx.PopExpected(ir.I32); err != nil {
			return err
		}
		d.ctx.PushType(et)
		d.ctx.Append(0, ir.TableGet{Table: tbl}, off)

	case wasm.OpTableSet:
		tbl, err := d.resolver.GetTable(op.Idx)
		if err != nil {
			return errors.UnknownIndex(off, "table", op.Idx)
		}
		et := d.model.TableElemType(tbl)
		if err := d.ctx.PopExpected(et); err != nil {
			return err
		}
		if err := d.ctx.PopExpected(ir.I32); err != nil {
			return err
		}
		d.ctx.Append(0, ir.TableSet{Table: tbl}, off)

	case wasm.OpMemorySize:
		if op.Reserved != 0 {
			return errors.MalformedReservedByte(off)
		}
		mem, err := d.resolver.GetMemory(0)
		if err != nil {
			return errors.UnknownIndex(off, "memory", 0)
		}
		d.ctx.PushType(ir.I32)
		d.ctx.Append(0, ir.MemorySize{Memory: mem}, off)

	case wasm.OpMemoryGrow:
		if op.Reserved != 0 {
			return errors.MalformedReservedByte(off)
		}
		mem, err := d.resolver.GetMemory(0)
		if err != nil {
			return errors.UnknownIndex(off, "memory", 0)
		}
		if err := d.ctx.PopExpected(ir.I32); err != nil {
			return err
		}
		d.ctx.PushType(ir.I32)
		d.ctx.Append(0, ir.MemoryGrow{Memory: mem}, off)

	case wasm.OpRefNull:
		t := op.BlockType.Val
		d.ctx.PushType(t)
		d.ctx.Append(0, ir.RefNull{Type: t}, off)

	case wasm.OpRefIsNull:
		v, err := d.ctx.Pop()
		if err != nil {
			return err
		}
		if !v.Unknown && !v.Type.IsReference() {
			return errors.TypeMismatch(off, "a reference type", v.Type.String())
		}
		d.ctx.PushType(ir.I32)
		d.ctx.Append(0, ir.RefIsNull{}, off)

	case wasm.OpRefFunc:
		fid, err := d.resolver.GetFunc(op.Idx)
		if err != nil {
			return errors.UnknownIndex(off, "func", op.Idx)
		}
		d.ctx.PushType(ir.FuncRef)
		d.ctx.Append(0, ir.RefFunc{Func: fid}, off)

	default:
		return errors.MalformedOperator(off, errUnhandledOpcode(b))
	}
	return nil
}

func (d *driver) branch(depth uint32, off uint32, terminal bool) error {
	if int(depth) >= d.ctx.Depth() {
		return errors.UnknownLabel(off, depth)
	}
	target := d.ctx.FrameAt(int(depth))
	if err := d.ctx.PopMany(target.LabelTypes()); err != nil {
		return err
	}
	d.ctx.Append(0, ir.Br{Target: target.Seq}, off)
	if terminal {
		d.ctx.MarkUnreachable()
	}
	return nil
}

func (d *driver) branchIf(depth uint32, off uint32) error {
	if int(depth) >= d.ctx.Depth() {
		return errors.UnknownLabel(off, depth)
	}
	target := d.ctx.FrameAt(int(depth))
	if err := d.ctx.PopExpected(ir.I32); err != nil {
		return err
	}
	types := target.LabelTypes()
	if err := d.ctx.PopMany(types); err != nil {
		return err
	}
	d.ctx.PushMany(types)
	d.ctx.Append(0, ir.BrIf{Target: target.Seq}, off)
	return nil
}

func (d *driver) brTable(op wasm.Operator, off uint32) error {
	if err := d.ctx.PopExpected(ir.I32); err != nil {
		return err
	}
	if int(op.Default) >= d.ctx.Depth() {
		return errors.UnknownLabel(off, op.Default)
	}
	defTarget := d.ctx.FrameAt(int(op.Default))

	targets := make([]ir.SeqID, len(op.Labels))
	for i, label := range op.Labels {
		if int(label) >= d.ctx.Depth() {
			return errors.UnknownLabel(off, label)
		}
		t := d.ctx.FrameAt(int(label))
		if !t.Unreachable {
			types := t.LabelTypes()
			if err := d.ctx.PopMany(types); err != nil {
				return err
			}
			d.ctx.PushMany(types)
		}
		targets[i] = t.Seq
	}

	if err := d.ctx.PopMany(defTarget.LabelTypes()); err != nil {
		return err
	}
	d.ctx.Append(0, ir.BrTable{Targets: targets, Default: defTarget.Seq}, off)
	d.ctx.MarkUnreachable()
	return nil
}

func (d *driver) selectUntyped(off uint32) error {
	if err := d.ctx.PopExpected(ir.I32); err != nil {
		return err
	}
	b, err := d.ctx.Pop()
	if err != nil {
		return err
	}
	a, err := d.ctx.Pop()
	if err != nil {
		return err
	}
	unified, ok := ir.Unify(a, b)
	if !ok {
		return errors.TypeMismatch(off, a.Type.String(), b.Type.String())
	}
	if !unified.Unknown && unified.Type.IsReference() {
		return errors.TypeMismatch(off, "a non-reference type (use select with a result type for references)", unified.Type.String())
	}
	if unified.Unknown {
		// Both operands came from unreachable code: the untyped form still
		// needs a concrete type to record on the IR node, and i32 is the
		// reference interpreter's own arbitrary pick in this situation.
		unified = ir.Known(ir.I32)
	}
	d.ctx.Push(unified)
	d.ctx.Append(0, ir.Select{Type: unified.Type}, off)
	return nil
}

func (d *driver) selectTyped(op wasm.Operator, off uint32) error {
	t := op.ValTypes[0]
	if err := d.ctx.PopExpected(ir.I32); err != nil {
		return err
	}
	if err := d.ctx.PopExpected(t); err != nil {
		return err
	}
	if err := d.ctx.PopExpected(t); err != nil {
		return err
	}
	d.ctx.PushType(t)
	d.ctx.Append(0, ir.TypedSelect{Type: t}, off)
	return nil
}

func (d *driver) numOp(shape numShape, opVal uint32, off uint32) error {
	switch {
	case shape.testop:
		if err := d.ctx.PopExpected(shape.in); err != nil {
			return err
		}
		d.ctx.PushType(ir.I32)
		d.ctx.Append(0, ir.Testop{Op: ir.NumOp(opVal)}, off)
	case shape.relop:
		if err := d.ctx.PopExpected(shape.in); err != nil {
			return err
		}
		if err := d.ctx.PopExpected(shape.in); err != nil {
			return err
		}
		d.ctx.PushType(ir.I32)
		d.ctx.Append(0, ir.Relop{Op: ir.NumOp(opVal)}, off)
	case shape.unop, shape.cvt:
		if err := d.ctx.PopExpected(shape.in); err != nil {
			return err
		}
		d.ctx.PushType(shape.out)
		d.ctx.Append(0, ir.Unop{Op: ir.NumOp(opVal)}, off)
	case shape.binop:
		if err := d.ctx.PopExpected(shape.in); err != nil {
			return err
		}
		if err := d.ctx.PopExpected(shape.in); err != nil {
			return err
		}
		d.ctx.PushType(shape.out)
		d.ctx.Append(0, ir.Binop{Op: ir.NumOp(opVal)}, off)
	}
	return nil
}

type errUnhandledOpcode byte

func (e errUnhandledOpcode) Error() string {
	return "unhandled opcode 0x" + hexByte(byte(e))
}

func hexByte(b byte) string {
	const digits = "0123456789abcdef"
	return string([]byte{digits[b>>4], digits[b&0xf]})
}
