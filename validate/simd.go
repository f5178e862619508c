package validate

import (
	"github.com/wasmkit/wazir/ir"
	"github.com/wasmkit/wazir/wasm"
)

// simdLaneType names the lane type a splat/extract/replace-lane operator
// carries, keyed on the sub-opcode the decoder already distinguishes by
// name in wasm/constants.go.
func simdLaneType(sub uint32) ir.ValType {
	switch sub {
	case wasm.SimdI8x16Splat, wasm.SimdI8x16ExtractLaneS, wasm.SimdI8x16ExtractLaneU, wasm.SimdI8x16ReplaceLane,
		wasm.SimdI16x8Splat, wasm.SimdI16x8ExtractLaneS, wasm.SimdI16x8ExtractLaneU, wasm.SimdI16x8ReplaceLane,
		wasm.SimdI32x4Splat, wasm.SimdI32x4ExtractLane, wasm.SimdI32x4ReplaceLane:
		return ir.I32
	case wasm.SimdI64x2Splat, wasm.SimdI64x2ExtractLane, wasm.SimdI64x2ReplaceLane:
		return ir.I64
	case wasm.SimdF32x4Splat, wasm.SimdF32x4ExtractLane, wasm.SimdF32x4ReplaceLane:
		return ir.F32
	case wasm.SimdF64x2Splat, wasm.SimdF64x2ExtractLane, wasm.SimdF64x2ReplaceLane:
		return ir.F64
	default:
		return ir.I32
	}
}

func isSimdSplat(sub uint32) bool {
	switch sub {
	case wasm.SimdI8x16Splat, wasm.SimdI16x8Splat, wasm.SimdI32x4Splat, wasm.SimdI64x2Splat,
		wasm.SimdF32x4Splat, wasm.SimdF64x2Splat:
		return true
	}
	return false
}

func isSimdExtractLane(sub uint32) bool {
	switch sub {
	case wasm.SimdI8x16ExtractLaneS, wasm.SimdI8x16ExtractLaneU,
		wasm.SimdI16x8ExtractLaneS, wasm.SimdI16x8ExtractLaneU,
		wasm.SimdI32x4ExtractLane, wasm.SimdI64x2ExtractLane,
		wasm.SimdF32x4ExtractLane, wasm.SimdF64x2ExtractLane:
		return true
	}
	return false
}

func isSimdReplaceLane(sub uint32) bool {
	switch sub {
	case wasm.SimdI8x16ReplaceLane, wasm.SimdI16x8ReplaceLane, wasm.SimdI32x4ReplaceLane,
		wasm.SimdI64x2ReplaceLane, wasm.SimdF32x4ReplaceLane, wasm.SimdF64x2ReplaceLane:
		return true
	}
	return false
}

// isSimdTest reports whether sub is an any_true/all_true reduction,
// which pops one v128 and pushes i32.
func isSimdTest(sub uint32) bool {
	switch sub {
	case wasm.SimdV128AnyTrue, wasm.SimdI8x16AllTrue, wasm.SimdI16x8AllTrue,
		wasm.SimdI32x4AllTrue, wasm.SimdI64x2AllTrue:
		return true
	}
	return false
}

// isSimdBitmask reports whether sub computes a per-lane sign bitmask,
// which pops one v128 and pushes i32.
func isSimdBitmask(sub uint32) bool {
	switch sub {
	case wasm.SimdI8x16Bitmask, wasm.SimdI16x8Bitmask, wasm.SimdI32x4Bitmask, wasm.SimdI64x2Bitmask:
		return true
	}
	return false
}

// isSimdShift reports whether sub pops a v128 and an i32 shift count and
// pushes a v128, unlike the rest of the binary matrix which takes two
// v128 operands.
func isSimdShift(sub uint32) bool {
	switch sub {
	case wasm.SimdI8x16Shl, wasm.SimdI8x16ShrS, wasm.SimdI8x16ShrU,
		wasm.SimdI16x8Shl, wasm.SimdI16x8ShrS, wasm.SimdI16x8ShrU,
		wasm.SimdI32x4Shl, wasm.SimdI32x4ShrS, wasm.SimdI32x4ShrU,
		wasm.SimdI64x2Shl, wasm.SimdI64x2ShrS, wasm.SimdI64x2ShrU:
		return true
	}
	return false
}

// isSimdUnary reports whether sub pops exactly one v128 and pushes one
// v128: negation, absolute value, population count, rounding, sqrt, the
// not operator, and the widen/extend/truncate/convert families that
// reinterpret lanes without changing operand count.
func isSimdUnary(sub uint32) bool {
	switch sub {
	case wasm.SimdV128Not,
		wasm.SimdI8x16Neg, wasm.SimdI8x16Abs, wasm.SimdI8x16Popcnt,
		wasm.SimdI16x8Neg, wasm.SimdI16x8Abs,
		wasm.SimdI32x4Neg, wasm.SimdI32x4Abs,
		wasm.SimdI64x2Neg, wasm.SimdI64x2Abs,
		wasm.SimdF32x4Neg, wasm.SimdF32x4Abs, wasm.SimdF32x4Sqrt,
		wasm.SimdF32x4Ceil, wasm.SimdF32x4Floor, wasm.SimdF32x4Trunc, wasm.SimdF32x4Nearest,
		wasm.SimdF64x2Abs, wasm.SimdF64x2Neg, wasm.SimdF64x2Sqrt,
		wasm.SimdI16x8WidenLowI8x16S, wasm.SimdI16x8WidenHighI8x16S,
		wasm.SimdI16x8WidenLowI8x16U, wasm.SimdI16x8WidenHighI8x16U,
		wasm.SimdI32x4WidenLowI16x8S, wasm.SimdI32x4WidenHighI16x8S,
		wasm.SimdI32x4WidenLowI16x8U, wasm.SimdI32x4WidenHighI16x8U,
		wasm.SimdI32x4TruncSatF32x4S, wasm.SimdI32x4TruncSatF32x4U,
		wasm.SimdF32x4ConvertI32x4S, wasm.SimdF32x4ConvertI32x4U:
		return true
	}
	return false
}
