package validate

import (
	"github.com/wasmkit/wazir/errors"
	"github.com/wasmkit/wazir/ir"
	"github.com/wasmkit/wazir/wasm"
)

// stepAtomic handles every operator decoded under the 0xFE prefix: the
// threads proposal's fence, notify/wait and the atomic load/store/
// read-modify-write/compare-exchange matrix.
func (d *driver) stepAtomic(op wasm.Operator, off uint32) error {
	sub := op.Op &^ 0x30000

	switch sub {
	case wasm.AtomicFenceOp:
		if op.Reserved != 0 {
			return errors.UnsupportedAtomicFence(off, op.Reserved)
		}
		d.ctx.Append(0, ir.AtomicFence{}, off)
		return nil

	case wasm.AtomicNotify:
		ma, err := d.resolveMemArg(off, op.MemArg)
		if err != nil {
			return err
		}
		if err := d.ctx.PopExpected(ir.I32); err != nil {
			return err
		}
		if err := d.ctx.PopExpected(ir.I32); err != nil {
			return err
		}
		d.ctx.PushType(ir.I32)
		d.ctx.Append(0, ir.AtomicNotify{MemArg: ma}, off)
		return nil

	case wasm.AtomicWait32:
		ma, err := d.resolveMemArg(off, op.MemArg)
		if err != nil {
			return err
		}
		if err := d.ctx.PopExpected(ir.I64); err != nil {
			return err
		}
		if err := d.ctx.PopExpected(ir.I32); err != nil {
			return err
		}
		if err := d.ctx.PopExpected(ir.I32); err != nil {
			return err
		}
		d.ctx.PushType(ir.I32)
		d.ctx.Append(0, ir.AtomicWait{MemArg: ma, Type: ir.I32}, off)
		return nil

	case wasm.AtomicWait64:
		ma, err := d.resolveMemArg(off, op.MemArg)
		if err != nil {
			return err
		}
		if err := d.ctx.PopExpected(ir.I64); err != nil {
			return err
		}
		if err := d.ctx.PopExpected(ir.I64); err != nil {
			return err
		}
		if err := d.ctx.PopExpected(ir.I32); err != nil {
			return err
		}
		d.ctx.PushType(ir.I32)
		d.ctx.Append(0, ir.AtomicWait{MemArg: ma, Type: ir.I64}, off)
		return nil
	}

	if vt, ok := atomicLoadStoreType(sub); ok {
		ma, err := d.resolveMemArg(off, op.MemArg)
		if err != nil {
			return err
		}
		if isAtomicStore(sub) {
			if err := d.ctx.PopExpected(vt); err != nil {
				return err
			}
			if err := d.ctx.PopExpected(ir.I32); err != nil {
				return err
			}
			d.ctx.Append(0, ir.Store{MemArg: ma, Kind: ir.StoreAtomic}, off)
			return nil
		}
		if err := d.ctx.PopExpected(ir.I32); err != nil {
			return err
		}
		d.ctx.PushType(vt)
		d.ctx.Append(0, ir.Load{MemArg: ma, Type: vt, Kind: ir.LoadAtomic}, off)
		return nil
	}

	if sub >= wasm.AtomicRMWStart && sub <= wasm.AtomicRMWEnd {
		vt := atomicRMWValType(sub)
		ma, err := d.resolveMemArg(off, op.MemArg)
		if err != nil {
			return err
		}
		if isAtomicCmpxchg(sub) {
			if err := d.ctx.PopExpected(vt); err != nil { // replacement
				return err
			}
			if err := d.ctx.PopExpected(vt); err != nil { // expected
				return err
			}
			if err := d.ctx.PopExpected(ir.I32); err != nil { // address
				return err
			}
			d.ctx.PushType(vt)
			d.ctx.Append(0, ir.AtomicCmpxchg{MemArg: ma, Type: vt}, off)
			return nil
		}
		if err := d.ctx.PopExpected(vt); err != nil { // operand
			return err
		}
		if err := d.ctx.PopExpected(ir.I32); err != nil { // address
			return err
		}
		d.ctx.PushType(vt)
		d.ctx.Append(0, ir.AtomicRMW{MemArg: ma, Op: ir.AtomicOp(sub), Type: vt}, off)
		return nil
	}

	return errors.MalformedOperator(off, errUnhandledOpcode(byte(sub)))
}
