package validate

import (
	"testing"

	"github.com/wasmkit/wazir/ir"
	"github.com/wasmkit/wazir/wasm"
)

func TestParse_RelopPushesI32(t *testing.T) {
	m := newFakeModule()
	src := ops(opI32(1), opI32(2), op(wasm.OpI32LtS), op(wasm.OpEnd))

	fn, err := Parse(src, m, m, []ir.ValType{ir.I32})
	if err != nil {
		t.Fatalf("unexpected rejection: %v", err)
	}
	if fn.Size() != 3 {
		t.Errorf("instruction count = %d, want 3", fn.Size())
	}
}

func TestParse_UnopRejectsWrongInputType(t *testing.T) {
	m := newFakeModule()
	// i32.clz expects an i32, an i64 const is the wrong shape.
	src := ops(opI64(1), op(wasm.OpI32Clz), op(wasm.OpEnd))

	if _, err := Parse(src, m, m, []ir.ValType{ir.I32}); err == nil {
		t.Fatal("expected rejection applying i32.clz to an i64 operand")
	}
}
