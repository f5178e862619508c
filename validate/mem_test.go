package validate

import (
	"testing"

	"github.com/wasmkit/wazir/ir"
	wasmerrors "github.com/wasmkit/wazir/errors"
	"github.com/wasmkit/wazir/wasm"
)

func opMem(code byte, flags uint32) wasm.Operator {
	return wasm.Operator{Op: uint32(code), MemArg: wasm.MemArg{Flags: flags}}
}

func TestParse_LoadWithinNaturalAlignmentAccepts(t *testing.T) {
	m := newFakeModule()
	// i32.load with align=2 (4-byte, its natural alignment) needs an address on the stack.
	src := ops(opI32(0), opMem(wasm.OpI32Load, 2), op(wasm.OpEnd))

	fn, err := Parse(src, m, m, []ir.ValType{ir.I32})
	if err != nil {
		t.Fatalf("unexpected rejection: %v", err)
	}
	if fn.Size() != 2 {
		t.Errorf("instruction count = %d, want 2", fn.Size())
	}
}

func TestParse_LoadExceedingNaturalAlignmentAccepts(t *testing.T) {
	m := newFakeModule()
	// i32.load's natural alignment is 2 (4 bytes), but flags only have to
	// stay below 32: flags=3 (8 bytes) is looser than natural but still
	// within the single blanket bound every memory op shares.
	src := ops(opI32(0), opMem(wasm.OpI32Load, 3), op(wasm.OpEnd))

	if _, err := Parse(src, m, m, []ir.ValType{ir.I32}); err != nil {
		t.Fatalf("unexpected rejection: %v", err)
	}
}

func TestParse_NarrowLoadAcceptsWordAlignment(t *testing.T) {
	m := newFakeModule()
	// i32.load8_u's natural alignment is 0 (1 byte), but flags=2 is still
	// well below the blanket bound of 32 and so is accepted.
	src := ops(opI32(0), opMem(wasm.OpI32Load8U, 2), op(wasm.OpEnd))

	if _, err := Parse(src, m, m, []ir.ValType{ir.I32}); err != nil {
		t.Fatalf("unexpected rejection: %v", err)
	}
}

func TestParse_LoadRejectsFlagsAtThirtyTwo(t *testing.T) {
	m := newFakeModule()
	src := ops(opI32(0), opMem(wasm.OpI32Load, 32), op(wasm.OpEnd))

	_, err := Parse(src, m, m, []ir.ValType{ir.I32})
	assertKind(t, err, wasmerrors.KindInvalidAlignment)
}

func TestParse_StoreWithinNaturalAlignmentAccepts(t *testing.T) {
	m := newFakeModule()
	// i32.store with align=2 and both the address and value operands.
	src := ops(opI32(0), opI32(7), opMem(wasm.OpI32Store, 2), op(wasm.OpEnd))

	if _, err := Parse(src, m, m, nil); err != nil {
		t.Fatalf("unexpected rejection: %v", err)
	}
}
