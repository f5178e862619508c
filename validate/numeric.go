package validate

import (
	"github.com/wasmkit/wazir/ir"
	"github.com/wasmkit/wazir/wasm"
)

// numShape is a compact description of the stack effect of one opcode in
// the scalar numeric matrix (0x45-0xC4): how many operands it pops, of
// which type, and what single type (if any) it pushes.
type numShape struct {
	testop  bool // pop 1 of in, push i32
	relop   bool // pop 2 of in, push i32
	unop    bool // pop 1 of in, push out
	binop   bool // pop 1 of in, pop 1 of in, push in (in==out)
	cvt     bool // pop 1 of in, push out (in != out, a conversion)
	in, out ir.ValType
}

// numericShape classifies every opcode in the scalar numeric matrix.
// Comparisons and eqz push i32; unary/binary arithmetic keep the operand
// type; everything from i32.wrap_i64 through the reinterpret opcodes is an
// explicit conversion pair, and the sign-extension opcodes are unops that
// keep their operand type.
func numericShape(op byte) (numShape, bool) {
	switch op {
	case wasm.OpI32Eqz:
		return numShape{testop: true, in: ir.I32}, true
	case wasm.OpI64Eqz:
		return numShape{testop: true, in: ir.I64}, true
	}

	switch {
	case op >= wasm.OpI32Eq && op <= wasm.OpI32GeU:
		return numShape{relop: true, in: ir.I32}, true
	case op >= wasm.OpI64Eq && op <= wasm.OpI64GeU:
		return numShape{relop: true, in: ir.I64}, true
	case op >= wasm.OpF32Eq && op <= wasm.OpF32Ge:
		return numShape{relop: true, in: ir.F32}, true
	case op >= wasm.OpF64Eq && op <= wasm.OpF64Ge:
		return numShape{relop: true, in: ir.F64}, true

	case op >= wasm.OpI32Clz && op <= wasm.OpI32Popcnt:
		return numShape{unop: true, in: ir.I32, out: ir.I32}, true
	case op >= wasm.OpI32Add && op <= wasm.OpI32Rotr:
		return numShape{binop: true, in: ir.I32, out: ir.I32}, true
	case op >= wasm.OpI64Clz && op <= wasm.OpI64Popcnt:
		return numShape{unop: true, in: ir.I64, out: ir.I64}, true
	case op >= wasm.OpI64Add && op <= wasm.OpI64Rotr:
		return numShape{binop: true, in: ir.I64, out: ir.I64}, true

	case op >= wasm.OpF32Abs && op <= wasm.OpF32Sqrt:
		return numShape{unop: true, in: ir.F32, out: ir.F32}, true
	case op >= wasm.OpF32Add && op <= wasm.OpF32Copysign:
		return numShape{binop: true, in: ir.F32, out: ir.F32}, true
	case op >= wasm.OpF64Abs && op <= wasm.OpF64Sqrt:
		return numShape{unop: true, in: ir.F64, out: ir.F64}, true
	case op >= wasm.OpF64Add && op <= wasm.OpF64Copysign:
		return numShape{binop: true, in: ir.F64, out: ir.F64}, true
	}

	if cvt, ok := conversionTable[op]; ok {
		return numShape{cvt: true, in: cvt[0], out: cvt[1]}, true
	}

	switch op {
	case wasm.OpI32Extend8S, wasm.OpI32Extend16S:
		return numShape{unop: true, in: ir.I32, out: ir.I32}, true
	case wasm.OpI64Extend8S, wasm.OpI64Extend16S, wasm.OpI64Extend32S:
		return numShape{unop: true, in: ir.I64, out: ir.I64}, true
	}

	return numShape{}, false
}

// conversionTable lists every opcode whose input and output types differ:
// wrap, extend, truncate, convert, demote, promote and reinterpret.
var conversionTable = map[byte][2]ir.ValType{
	wasm.OpI32WrapI64:        {ir.I64, ir.I32},
	wasm.OpI32TruncF32S:      {ir.F32, ir.I32},
	wasm.OpI32TruncF32U:      {ir.F32, ir.I32},
	wasm.OpI32TruncF64S:      {ir.F64, ir.I32},
	wasm.OpI32TruncF64U:      {ir.F64, ir.I32},
	wasm.OpI64ExtendI32S:     {ir.I32, ir.I64},
	wasm.OpI64ExtendI32U:     {ir.I32, ir.I64},
	wasm.OpI64TruncF32S:      {ir.F32, ir.I64},
	wasm.OpI64TruncF32U:      {ir.F32, ir.I64},
	wasm.OpI64TruncF64S:      {ir.F64, ir.I64},
	wasm.OpI64TruncF64U:      {ir.F64, ir.I64},
	wasm.OpF32ConvertI32S:    {ir.I32, ir.F32},
	wasm.OpF32ConvertI32U:    {ir.I32, ir.F32},
	wasm.OpF32ConvertI64S:    {ir.I64, ir.F32},
	wasm.OpF32ConvertI64U:    {ir.I64, ir.F32},
	wasm.OpF32DemoteF64:      {ir.F64, ir.F32},
	wasm.OpF64ConvertI32S:    {ir.I32, ir.F64},
	wasm.OpF64ConvertI32U:    {ir.I32, ir.F64},
	wasm.OpF64ConvertI64S:    {ir.I64, ir.F64},
	wasm.OpF64ConvertI64U:    {ir.I64, ir.F64},
	wasm.OpF64PromoteF32:     {ir.F32, ir.F64},
	wasm.OpI32ReinterpretF32: {ir.F32, ir.I32},
	wasm.OpI64ReinterpretF64: {ir.F64, ir.I64},
	wasm.OpF32ReinterpretI32: {ir.I32, ir.F32},
	wasm.OpF64ReinterpretI64: {ir.I64, ir.F64},
}

// miscCvtShape classifies the non-trapping (saturating) float-to-int
// truncation family decoded under the 0xFC misc prefix; they share the
// same conversion shape as their trapping counterparts.
func miscCvtShape(sub uint32) (numShape, bool) {
	switch sub {
	case wasm.MiscI32TruncSatF32S, wasm.MiscI32TruncSatF32U:
		return numShape{cvt: true, in: ir.F32, out: ir.I32}, true
	case wasm.MiscI32TruncSatF64S, wasm.MiscI32TruncSatF64U:
		return numShape{cvt: true, in: ir.F64, out: ir.I32}, true
	case wasm.MiscI64TruncSatF32S, wasm.MiscI64TruncSatF32U:
		return numShape{cvt: true, in: ir.F32, out: ir.I64}, true
	case wasm.MiscI64TruncSatF64S, wasm.MiscI64TruncSatF64U:
		return numShape{cvt: true, in: ir.F64, out: ir.I64}, true
	}
	return numShape{}, false
}
