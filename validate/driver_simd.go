package validate

import (
	"github.com/wasmkit/wazir/ir"
	"github.com/wasmkit/wazir/wasm"
)

// simdLoadLaneShape names the load-lane family: a memory access that
// produces a v128 by splatting, extending, or zero-padding a narrower
// read, as opposed to SimdV128Load's plain 16-byte read.
type simdLoadLaneShape struct {
	kind     ir.SimdLoadKind
	maxAlign uint32
}

func simdLoadLaneShapeFor(sub uint32) (simdLoadLaneShape, bool) {
	switch sub {
	case wasm.SimdV128Load8Splat:
		return simdLoadLaneShape{ir.SimdLoadSplat8, 0}, true
	case wasm.SimdV128Load16Splat:
		return simdLoadLaneShape{ir.SimdLoadSplat16, 1}, true
	case wasm.SimdV128Load32Splat:
		return simdLoadLaneShape{ir.SimdLoadSplat32, 2}, true
	case wasm.SimdV128Load64Splat:
		return simdLoadLaneShape{ir.SimdLoadSplat64, 3}, true
	case wasm.SimdV128Load8x8S:
		return simdLoadLaneShape{ir.SimdLoadExtendS8x8, 3}, true
	case wasm.SimdV128Load8x8U:
		return simdLoadLaneShape{ir.SimdLoadExtendU8x8, 3}, true
	case wasm.SimdV128Load16x4S:
		return simdLoadLaneShape{ir.SimdLoadExtendS16x4, 3}, true
	case wasm.SimdV128Load16x4U:
		return simdLoadLaneShape{ir.SimdLoadExtendU16x4, 3}, true
	case wasm.SimdV128Load32x2S:
		return simdLoadLaneShape{ir.SimdLoadExtendS32x2, 3}, true
	case wasm.SimdV128Load32x2U:
		return simdLoadLaneShape{ir.SimdLoadExtendU32x2, 3}, true
	case wasm.SimdV128Load32Zero:
		return simdLoadLaneShape{ir.SimdLoadZero32, 2}, true
	case wasm.SimdV128Load64Zero:
		return simdLoadLaneShape{ir.SimdLoadZero64, 3}, true
	}
	return simdLoadLaneShape{}, false
}

// stepSimd handles every operator decoded under the 0xFD prefix: the
// fixed-width 128-bit vector instruction set.
func (d *driver) stepSimd(op wasm.Operator, off uint32) error {
	sub := op.Op &^ 0x20000

	switch sub {
	case wasm.SimdV128Load:
		ma, err := d.resolveVecMemArg(off, op.MemArg, 4)
		if err != nil {
			return err
		}
		if err := d.ctx.PopExpected(ir.I32); err != nil {
			return err
		}
		d.ctx.PushType(ir.V128)
		d.ctx.Append(0, ir.Load{MemArg: ma, Type: ir.V128, Kind: ir.LoadVec}, off)
		return nil

	case wasm.SimdV128Store:
		ma, err := d.resolveVecMemArg(off, op.MemArg, 4)
		if err != nil {
			return err
		}
		if err := d.ctx.PopExpected(ir.V128); err != nil {
			return err
		}
		if err := d.ctx.PopExpected(ir.I32); err != nil {
			return err
		}
		d.ctx.Append(0, ir.Store{MemArg: ma, Kind: ir.StoreVec}, off)
		return nil

	case wasm.SimdV128Const:
		d.ctx.PushType(ir.V128)
		d.ctx.Append(0, ir.Const{Type: ir.V128, V128: op.V128}, off)
		return nil

	case wasm.SimdI8x16Shuffle:
		if err := d.ctx.PopExpected(ir.V128); err != nil {
			return err
		}
		if err := d.ctx.PopExpected(ir.V128); err != nil {
			return err
		}
		d.ctx.PushType(ir.V128)
		d.ctx.Append(0, ir.Shuffle{Lanes: op.Lanes}, off)
		return nil

	case wasm.SimdI8x16Swizzle:
		if err := d.ctx.PopExpected(ir.V128); err != nil {
			return err
		}
		if err := d.ctx.PopExpected(ir.V128); err != nil {
			return err
		}
		d.ctx.PushType(ir.V128)
		d.ctx.Append(0, ir.VecBinop{Op: ir.SimdOp(sub)}, off)
		return nil

	case wasm.SimdV128Bitselect:
		if err := d.ctx.PopExpected(ir.V128); err != nil {
			return err
		}
		if err := d.ctx.PopExpected(ir.V128); err != nil {
			return err
		}
		if err := d.ctx.PopExpected(ir.V128); err != nil {
			return err
		}
		d.ctx.PushType(ir.V128)
		d.ctx.Append(0, ir.Bitselect{}, off)
		return nil
	}

	if shape, ok := simdLoadLaneShapeFor(sub); ok {
		ma, err := d.resolveVecMemArg(off, op.MemArg, shape.maxAlign)
		if err != nil {
			return err
		}
		if err := d.ctx.PopExpected(ir.I32); err != nil {
			return err
		}
		d.ctx.PushType(ir.V128)
		d.ctx.Append(0, ir.LoadLane{MemArg: ma, Kind: shape.kind}, off)
		return nil
	}

	if isSimdSplat(sub) {
		lt := simdLaneType(sub)
		if err := d.ctx.PopExpected(lt); err != nil {
			return err
		}
		d.ctx.PushType(ir.V128)
		d.ctx.Append(0, ir.LaneOp{Op: ir.SimdLaneOp(sub), Type: lt}, off)
		return nil
	}

	if isSimdExtractLane(sub) {
		if err := d.ctx.PopExpected(ir.V128); err != nil {
			return err
		}
		lt := simdLaneType(sub)
		d.ctx.PushType(lt)
		d.ctx.Append(0, ir.LaneOp{Op: ir.SimdLaneOp(sub), Lane: op.Lane, Type: lt}, off)
		return nil
	}

	if isSimdReplaceLane(sub) {
		lt := simdLaneType(sub)
		if err := d.ctx.PopExpected(lt); err != nil {
			return err
		}
		if err := d.ctx.PopExpected(ir.V128); err != nil {
			return err
		}
		d.ctx.PushType(ir.V128)
		d.ctx.Append(0, ir.LaneOp{Op: ir.SimdLaneOp(sub), Lane: op.Lane, Type: lt}, off)
		return nil
	}

	if isSimdTest(sub) || isSimdBitmask(sub) {
		if err := d.ctx.PopExpected(ir.V128); err != nil {
			return err
		}
		d.ctx.PushType(ir.I32)
		d.ctx.Append(0, ir.LaneOp{Op: ir.SimdLaneOp(sub), Type: ir.I32}, off)
		return nil
	}

	if isSimdUnary(sub) {
		if err := d.ctx.PopExpected(ir.V128); err != nil {
			return err
		}
		d.ctx.PushType(ir.V128)
		d.ctx.Append(0, ir.VecUnop{Op: ir.SimdOp(sub)}, off)
		return nil
	}

	if isSimdShift(sub) {
		if err := d.ctx.PopExpected(ir.I32); err != nil {
			return err
		}
		if err := d.ctx.PopExpected(ir.V128); err != nil {
			return err
		}
		d.ctx.PushType(ir.V128)
		d.ctx.Append(0, ir.VecBinop{Op: ir.SimdOp(sub)}, off)
		return nil
	}

	// Everything else in the fixed-width SIMD set - lane-wise arithmetic,
	// comparisons, saturating arithmetic and narrowing - shares the same
	// v128,v128->v128 shape.
	if err := d.ctx.PopExpected(ir.V128); err != nil {
		return err
	}
	if err := d.ctx.PopExpected(ir.V128); err != nil {
		return err
	}
	d.ctx.PushType(ir.V128)
	d.ctx.Append(0, ir.VecBinop{Op: ir.SimdOp(sub)}, off)
	return nil
}
