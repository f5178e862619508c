package validate

import (
	"testing"

	"github.com/wasmkit/wazir/ir"
	"github.com/wasmkit/wazir/wasm"
)

const miscBand = 0x1_0000

func opMisc(sub uint32, idx, idx2 uint32) wasm.Operator {
	return wasm.Operator{Op: miscBand | sub, Idx: idx, Idx2: idx2}
}

func TestParse_MemoryInitAccepted(t *testing.T) {
	m := newFakeModule()
	m.data = 1
	src := ops(opI32(0), opI32(0), opI32(0), opMisc(wasm.MiscMemoryInit, 0, 0), op(wasm.OpEnd))

	fn, err := Parse(src, m, m, nil)
	if err != nil {
		t.Fatalf("unexpected rejection: %v", err)
	}
	if fn.Size() != 4 {
		t.Errorf("instruction count = %d, want 4", fn.Size())
	}
}

func TestParse_MemoryInitRejectsUnknownData(t *testing.T) {
	m := newFakeModule()
	src := ops(opI32(0), opI32(0), opI32(0), opMisc(wasm.MiscMemoryInit, 0, 0), op(wasm.OpEnd))

	if _, err := Parse(src, m, m, nil); err == nil {
		t.Fatal("expected rejection for an out-of-range data index")
	}
}

func TestParse_TableCopyRejectsMismatchedElemType(t *testing.T) {
	m := newFakeModule()
	m.tables = []ir.ValType{ir.FuncRef, ir.ExternRef}
	src := ops(opI32(0), opI32(0), opI32(0), opMisc(wasm.MiscTableCopy, 0, 1), op(wasm.OpEnd))

	if _, err := Parse(src, m, m, nil); err == nil {
		t.Fatal("expected rejection copying between tables of different element types")
	}
}

func TestParse_TableSizeAccepted(t *testing.T) {
	m := newFakeModule()
	m.tables = []ir.ValType{ir.FuncRef}
	src := ops(opMisc(wasm.MiscTableSize, 0, 0), op(wasm.OpEnd))

	fn, err := Parse(src, m, m, []ir.ValType{ir.I32})
	if err != nil {
		t.Fatalf("unexpected rejection: %v", err)
	}
	if fn.Size() != 1 {
		t.Errorf("instruction count = %d, want 1", fn.Size())
	}
}

func TestParse_TableFillAccepted(t *testing.T) {
	m := newFakeModule()
	m.tables = []ir.ValType{ir.FuncRef}
	src := ops(opI32(0), wasm.Operator{Op: uint32(wasm.OpRefNull), BlockType: valBlockType(ir.FuncRef)}, opI32(0),
		opMisc(wasm.MiscTableFill, 0, 0), op(wasm.OpEnd))

	if _, err := Parse(src, m, m, nil); err != nil {
		t.Fatalf("unexpected rejection: %v", err)
	}
}
