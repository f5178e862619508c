package validate

import (
	"github.com/wasmkit/wazir/errors"
	"github.com/wasmkit/wazir/ir"
	"github.com/wasmkit/wazir/wasm"
)

// stepMisc handles every operator decoded under the 0xFC prefix: the
// non-trapping float-to-int conversions and the bulk-memory/table-ops
// family introduced by the reference-types and bulk-memory proposals.
func (d *driver) stepMisc(op wasm.Operator, off uint32) error {
	sub := op.Op &^ 0x10000

	if shape, ok := miscCvtShape(sub); ok {
		return d.numOp(shape, op.Op, off)
	}

	switch sub {
	case wasm.MiscMemoryInit:
		data, err := d.resolver.GetData(op.Idx)
		if err != nil {
			return errors.UnknownIndex(off, "data", op.Idx)
		}
		mem, err := d.resolver.GetMemory(op.Idx2)
		if err != nil {
			return errors.UnknownIndex(off, "memory", op.Idx2)
		}
		d.markDataUsed(data)
		if err := d.popThreeI32(); err != nil {
			return err
		}
		d.ctx.Append(0, ir.MemoryInit{Data: data, Memory: mem}, off)

	case wasm.MiscDataDrop:
		data, err := d.resolver.GetData(op.Idx)
		if err != nil {
			return errors.UnknownIndex(off, "data", op.Idx)
		}
		d.markDataUsed(data)
		d.ctx.Append(0, ir.DataDrop{Data: data}, off)

	case wasm.MiscMemoryCopy:
		dst, err := d.resolver.GetMemory(op.Idx)
		if err != nil {
			return errors.UnknownIndex(off, "memory", op.Idx)
		}
		src, err := d.resolver.GetMemory(op.Idx2)
		if err != nil {
			return errors.UnknownIndex(off, "memory", op.Idx2)
		}
		if err := d.popThreeI32(); err != nil {
			return err
		}
		d.ctx.Append(0, ir.MemoryCopy{Dst: dst, Src: src}, off)

	case wasm.MiscMemoryFill:
		mem, err := d.resolver.GetMemory(op.Idx)
		if err != nil {
			return errors.UnknownIndex(off, "memory", op.Idx)
		}
		if err := d.popThreeI32(); err != nil {
			return err
		}
		d.ctx.Append(0, ir.MemoryFill{Memory: mem}, off)

	case wasm.MiscTableInit:
		elem, err := d.resolver.GetElement(op.Idx)
		if err != nil {
			return errors.UnknownIndex(off, "element", op.Idx)
		}
		tbl, err := d.resolver.GetTable(op.Idx2)
		if err != nil {
			return errors.UnknownIndex(off, "table", op.Idx2)
		}
		if d.model.ElemType(elem) != d.model.TableElemType(tbl) {
			return errors.TypeMismatch(off, d.model.TableElemType(tbl).String(), d.model.ElemType(elem).String())
		}
		if err := d.popThreeI32(); err != nil {
			return err
		}
		d.ctx.Append(0, ir.TableInit{Elem: elem, Table: tbl}, off)

	case wasm.MiscElemDrop:
		elem, err := d.resolver.GetElement(op.Idx)
		if err != nil {
			return errors.UnknownIndex(off, "element", op.Idx)
		}
		d.ctx.Append(0, ir.ElemDrop{Elem: elem}, off)

	case wasm.MiscTableCopy:
		dst, err := d.resolver.GetTable(op.Idx)
		if err != nil {
			return errors.UnknownIndex(off, "table", op.Idx)
		}
		src, err := d.resolver.GetTable(op.Idx2)
		if err != nil {
			return errors.UnknownIndex(off, "table", op.Idx2)
		}
		if d.model.TableElemType(dst) != d.model.TableElemType(src) {
			return errors.TypeMismatch(off, d.model.TableElemType(dst).String(), d.model.TableElemType(src).String())
		}
		if err := d.popThreeI32(); err != nil {
			return err
		}
		d.ctx.Append(0, ir.TableCopy{Dst: dst, Src: src}, off)

	case wasm.MiscTableGrow:
		tbl, err := d.resolver.GetTable(op.Idx)
		if err != nil {
			return errors.UnknownIndex(off, "table", op.Idx)
		}
		et := d.model.TableElemType(tbl)
		if err := d.ctx.PopExpected(ir.I32); err != nil {
			return err
		}
		if err := d.ctx.PopExpected(et); err != nil {
			return err
		}
		d.ctx.PushType(ir.I32)
		d.ctx.Append(0, ir.TableGrow{Table: tbl}, off)

	case wasm.MiscTableSize:
		tbl, err := d.resolver.GetTable(op.Idx)
		if err != nil {
			return errors.UnknownIndex(off, "table", op.Idx)
		}
		d.ctx.PushType(ir.I32)
		d.ctx.Append(0, ir.TableSize{Table: tbl}, off)

	case wasm.MiscTableFill:
		tbl, err := d.resolver.GetTable(op.Idx)
		if err != nil {
			return errors.UnknownIndex(off, "table", op.Idx)
		}
		et := d.model.TableElemType(tbl)
		if err := d.ctx.PopExpected(ir.I32); err != nil {
			return err
		}
		if err := d.ctx.PopExpected(et); err != nil {
			return err
		}
		if err := d.ctx.PopExpected(ir.I32); err != nil {
			return err
		}
		d.ctx.Append(0, ir.TableFill{Table: tbl}, off)

	default:
		return errors.MalformedOperator(off, errUnhandledOpcode(byte(sub)))
	}
	return nil
}

func (d *driver) popThreeI32() error {
	for i := 0; i < 3; i++ {
		if err := d.ctx.PopExpected(ir.I32); err != nil {
			return err
		}
	}
	return nil
}
