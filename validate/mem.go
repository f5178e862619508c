package validate

import (
	"github.com/wasmkit/wazir/errors"
	"github.com/wasmkit/wazir/ir"
	"github.com/wasmkit/wazir/wasm"
)

// memShape is the stack effect and encoding shape of one opcode in the
// scalar load/store range (0x28-0x3E): the value type carried and how it
// narrows or extends across the memory boundary. Alignment itself is not
// part of this shape: every memory op, regardless of access width, is
// bound by the same flags-encoded alignment check in resolveMemArg.
type memShape struct {
	valType   ir.ValType
	loadKind  ir.LoadKind
	storeKind ir.StoreKind
	isStore   bool
}

func memShapeFor(op byte) (memShape, bool) {
	switch op {
	case wasm.OpI32Load:
		return memShape{valType: ir.I32, loadKind: ir.LoadNormal}, true
	case wasm.OpI64Load:
		return memShape{valType: ir.I64, loadKind: ir.LoadNormal}, true
	case wasm.OpF32Load:
		return memShape{valType: ir.F32, loadKind: ir.LoadNormal}, true
	case wasm.OpF64Load:
		return memShape{valType: ir.F64, loadKind: ir.LoadNormal}, true
	case wasm.OpI32Load8S:
		return memShape{valType: ir.I32, loadKind: ir.LoadExtendS}, true
	case wasm.OpI32Load8U:
		return memShape{valType: ir.I32, loadKind: ir.LoadExtendU}, true
	case wasm.OpI32Load16S:
		return memShape{valType: ir.I32, loadKind: ir.LoadExtendS}, true
	case wasm.OpI32Load16U:
		return memShape{valType: ir.I32, loadKind: ir.LoadExtendU}, true
	case wasm.OpI64Load8S:
		return memShape{valType: ir.I64, loadKind: ir.LoadExtendS}, true
	case wasm.OpI64Load8U:
		return memShape{valType: ir.I64, loadKind: ir.LoadExtendU}, true
	case wasm.OpI64Load16S:
		return memShape{valType: ir.I64, loadKind: ir.LoadExtendS}, true
	case wasm.OpI64Load16U:
		return memShape{valType: ir.I64, loadKind: ir.LoadExtendU}, true
	case wasm.OpI64Load32S:
		return memShape{valType: ir.I64, loadKind: ir.LoadExtendS}, true
	case wasm.OpI64Load32U:
		return memShape{valType: ir.I64, loadKind: ir.LoadExtendU}, true

	case wasm.OpI32Store:
		return memShape{valType: ir.I32, storeKind: ir.StoreNormal, isStore: true}, true
	case wasm.OpI64Store:
		return memShape{valType: ir.I64, storeKind: ir.StoreNormal, isStore: true}, true
	case wasm.OpF32Store:
		return memShape{valType: ir.F32, storeKind: ir.StoreNormal, isStore: true}, true
	case wasm.OpF64Store:
		return memShape{valType: ir.F64, storeKind: ir.StoreNormal, isStore: true}, true
	case wasm.OpI32Store8:
		return memShape{valType: ir.I32, storeKind: ir.StoreWrap, isStore: true}, true
	case wasm.OpI32Store16:
		return memShape{valType: ir.I32, storeKind: ir.StoreWrap, isStore: true}, true
	case wasm.OpI64Store8:
		return memShape{valType: ir.I64, storeKind: ir.StoreWrap, isStore: true}, true
	case wasm.OpI64Store16:
		return memShape{valType: ir.I64, storeKind: ir.StoreWrap, isStore: true}, true
	case wasm.OpI64Store32:
		return memShape{valType: ir.I64, storeKind: ir.StoreWrap, isStore: true}, true
	}
	return memShape{}, false
}

func (d *driver) memOp(op wasm.Operator, off uint32, shape memShape) error {
	ma, err := d.resolveMemArg(off, op.MemArg)
	if err != nil {
		return err
	}
	if shape.isStore {
		if err := d.ctx.PopExpected(shape.valType); err != nil {
			return err
		}
		if err := d.ctx.PopExpected(ir.I32); err != nil {
			return err
		}
		d.ctx.Append(0, ir.Store{MemArg: ma, Kind: shape.storeKind}, off)
		return nil
	}
	if err := d.ctx.PopExpected(ir.I32); err != nil {
		return err
	}
	d.ctx.PushType(shape.valType)
	d.ctx.Append(0, ir.Load{MemArg: ma, Type: shape.valType, Kind: shape.loadKind}, off)
	return nil
}

// resolveMemArg resolves the memory index a decoded wasm.MemArg carries
// and checks its alignment flags against the single bound spec.md names
// for every memory operator, scalar or atomic: flags >= 32 is rejected,
// anything narrower is accepted regardless of the access's own natural
// size. It returns the IR's own MemArg with the flags expanded into an
// actual byte alignment.
func (d *driver) resolveMemArg(off uint32, raw wasm.MemArg) (ir.MemArg, error) {
	mem, err := d.resolver.GetMemory(raw.Mem)
	if err != nil {
		return ir.MemArg{}, errors.UnknownIndex(off, "memory", raw.Mem)
	}
	if raw.Flags >= 32 {
		return ir.MemArg{}, errors.InvalidAlignment(off, raw.Flags)
	}
	return ir.MemArg{Align: uint32(1) << raw.Flags, Offset: raw.Offset, Memory: mem}, nil
}

// resolveVecMemArg is like resolveMemArg but additionally bounds the
// alignment flags to maxAlign, the SIMD access's own natural size; the
// fixed-width vector instruction set is not part of the scalar/atomic
// blanket-flags-check correction above.
func (d *driver) resolveVecMemArg(off uint32, raw wasm.MemArg, maxAlign uint32) (ir.MemArg, error) {
	ma, err := d.resolveMemArg(off, raw)
	if err != nil {
		return ir.MemArg{}, err
	}
	if raw.Flags > maxAlign {
		return ir.MemArg{}, errors.InvalidAlignment(off, raw.Flags)
	}
	return ma, nil
}
