package validate

import (
	"testing"

	"github.com/wasmkit/wazir/ir"
	"github.com/wasmkit/wazir/wasm"
)

func TestFunction_IsConst_PlainConstantAccepted(t *testing.T) {
	m := newFakeModule()
	src := ops(opI32(42), op(wasm.OpEnd))

	fn, err := Parse(src, m, m, []ir.ValType{ir.I32})
	if err != nil {
		t.Fatalf("unexpected rejection: %v", err)
	}
	if !fn.IsConst() {
		t.Error("a lone i32.const should be a valid constant expression")
	}
}

func TestFunction_IsConst_GlobalGetAccepted(t *testing.T) {
	m := newFakeModule()
	m.globals = []ir.ValType{ir.I32}
	src := ops(opIdx(wasm.OpGlobalGet, 0), op(wasm.OpEnd))

	fn, err := Parse(src, m, m, []ir.ValType{ir.I32})
	if err != nil {
		t.Fatalf("unexpected rejection: %v", err)
	}
	if !fn.IsConst() {
		t.Error("global.get should be a valid constant expression")
	}
}

func TestFunction_IsConst_ExtendedConstAddAccepted(t *testing.T) {
	m := newFakeModule()
	m.globals = []ir.ValType{ir.I32}
	src := ops(opIdx(wasm.OpGlobalGet, 0), opI32(1), op(wasm.OpI32Add), op(wasm.OpEnd))

	fn, err := Parse(src, m, m, []ir.ValType{ir.I32})
	if err != nil {
		t.Fatalf("unexpected rejection: %v", err)
	}
	if !fn.IsConst() {
		t.Error("the extended-const i32.add of a global and a constant should be const")
	}
}

func TestFunction_IsConst_TestopRejected(t *testing.T) {
	// i32.const 0 ; i32.eqz is not a constant expression: i32.eqz is a
	// testop, not one of the extended-const proposal's add/sub/mul.
	m := newFakeModule()
	src := ops(opI32(0), op(wasm.OpI32Eqz), op(wasm.OpEnd))

	fn, err := Parse(src, m, m, []ir.ValType{ir.I32})
	if err != nil {
		t.Fatalf("unexpected rejection: %v", err)
	}
	if fn.IsConst() {
		t.Error("i32.eqz must not be accepted inside a constant expression")
	}
}

func TestFunction_IsConst_BlockRejected(t *testing.T) {
	// block (result i32) { i32.const 1 } end ; a structured control
	// instruction is never part of a constant expression.
	m := newFakeModule()
	src := ops(
		opBlock(wasm.OpBlock, valBlockType(ir.I32)),
		opI32(1),
		op(wasm.OpEnd),
		op(wasm.OpEnd),
	)

	fn, err := Parse(src, m, m, []ir.ValType{ir.I32})
	if err != nil {
		t.Fatalf("unexpected rejection: %v", err)
	}
	if fn.IsConst() {
		t.Error("a body containing a block must not be accepted as a constant expression")
	}
}

func TestFunction_IsConst_DropAndRelationalOpRejected(t *testing.T) {
	// i32.const 1 ; i32.const 2 ; i32.lt_s ; drop ; i32.const 3
	m := newFakeModule()
	src := ops(
		opI32(1), opI32(2), op(wasm.OpI32LtS), op(wasm.OpDrop), opI32(3),
		op(wasm.OpEnd),
	)

	fn, err := Parse(src, m, m, []ir.ValType{ir.I32})
	if err != nil {
		t.Fatalf("unexpected rejection: %v", err)
	}
	if fn.IsConst() {
		t.Error("a relop and a drop must not be accepted inside a constant expression")
	}
}
