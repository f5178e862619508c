package validate

import (
	"errors"
	"testing"

	"github.com/wasmkit/wazir/ir"
	wasmerrors "github.com/wasmkit/wazir/errors"
	"github.com/wasmkit/wazir/wasm"
)

func TestParse_WellFormedAccepts(t *testing.T) {
	// func(i32) -> i32 { local.get 0; i32.const 1; i32.add }
	m := newFakeModule(ir.I32)
	src := ops(
		opIdx(wasm.OpLocalGet, 0),
		opI32(1),
		op(wasm.OpI32Add),
		op(wasm.OpEnd),
	)

	fn, err := Parse(src, m, m, []ir.ValType{ir.I32})
	if err != nil {
		t.Fatalf("unexpected rejection: %v", err)
	}
	if got, want := fn.Size(), 3; got != want {
		t.Errorf("instruction count = %d, want %d", got, want)
	}
	if fn.IsConst() {
		t.Error("a function referencing a local must not be const")
	}
}

func TestParse_StackUnderflowRejects(t *testing.T) {
	// drop with nothing on the stack.
	m := newFakeModule()
	src := ops(op(wasm.OpDrop), op(wasm.OpEnd))

	_, err := Parse(src, m, m, nil)
	assertKind(t, err, wasmerrors.KindStackUnderflow)
}

func TestParse_TypeMismatchRejects(t *testing.T) {
	// func(i64) -> i32 { local.get 0; i32.const 1; i32.add }: i32.add's
	// first pop takes the i32 constant, its second pop finds the i64 local.
	m := newFakeModule(ir.I64)
	src := ops(
		opIdx(wasm.OpLocalGet, 0),
		opI32(1),
		op(wasm.OpI32Add),
		op(wasm.OpEnd),
	)

	_, err := Parse(src, m, m, []ir.ValType{ir.I32})
	assertKind(t, err, wasmerrors.KindTypeMismatch)
}

func TestParse_UnknownLocalIndexRejects(t *testing.T) {
	m := newFakeModule(ir.I32)
	src := ops(opIdx(wasm.OpLocalGet, 5), op(wasm.OpEnd))

	_, err := Parse(src, m, m, []ir.ValType{ir.I32})
	assertKind(t, err, wasmerrors.KindUnknownIndex)
}

func TestParse_UnknownLabelRejects(t *testing.T) {
	m := newFakeModule()
	src := ops(opBr(wasm.OpBr, 3), op(wasm.OpEnd))

	_, err := Parse(src, m, m, nil)
	assertKind(t, err, wasmerrors.KindUnknownLabel)
}

func TestParse_UnexpectedEofRejects(t *testing.T) {
	m := newFakeModule()
	src := ops(op(wasm.OpNop))

	_, err := Parse(src, m, m, nil)
	assertKind(t, err, wasmerrors.KindUnexpectedEof)
}

func TestParse_StrayElseRejects(t *testing.T) {
	m := newFakeModule()
	src := ops(op(wasm.OpElse), op(wasm.OpEnd))

	_, err := Parse(src, m, m, nil)
	assertKind(t, err, wasmerrors.KindStrayElse)
}

func TestParse_MemorySizeRejectsNonzeroReserved(t *testing.T) {
	m := newFakeModule()
	src := ops(wasm.Operator{Op: uint32(wasm.OpMemorySize), Reserved: 1}, op(wasm.OpEnd))

	_, err := Parse(src, m, m, []ir.ValType{ir.I32})
	assertKind(t, err, wasmerrors.KindMalformedReservedByte)
}

func TestParse_MemorySizeAccepted(t *testing.T) {
	m := newFakeModule()
	src := ops(op(wasm.OpMemorySize), op(wasm.OpEnd))

	fn, err := Parse(src, m, m, []ir.ValType{ir.I32})
	if err != nil {
		t.Fatalf("unexpected rejection: %v", err)
	}
	if fn.Size() != 1 {
		t.Errorf("instruction count = %d, want 1", fn.Size())
	}
}

func TestParse_UnreachablePolymorphism(t *testing.T) {
	// unreachable; i32.add (no operands on the real stack, but unreachable
	// code fabricates whatever type is demanded); end expects i32.
	m := newFakeModule()
	src := ops(
		op(wasm.OpUnreachable),
		op(wasm.OpI32Add),
		op(wasm.OpEnd),
	)

	fn, err := Parse(src, m, m, []ir.ValType{ir.I32})
	if err != nil {
		t.Fatalf("unreachable code should tolerate any stack shape: %v", err)
	}
	if fn.Size() != 2 {
		t.Errorf("instruction count = %d, want 2", fn.Size())
	}
}

func TestParse_BlockStructureBuildsIR(t *testing.T) {
	// block (result i32) { i32.const 1 } ; end
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
	entry := fn.Block(fn.EntrySequence())
	if len(entry.Instrs) != 1 {
		t.Fatalf("entry sequence has %d instructions, want 1", len(entry.Instrs))
	}
	block, ok := entry.Instrs[0].Instr.(ir.Block)
	if !ok {
		t.Fatalf("entry instruction is %T, want ir.Block", entry.Instrs[0].Instr)
	}
	body := fn.Block(block.Seq)
	if len(body.Instrs) != 1 {
		t.Fatalf("block body has %d instructions, want 1", len(body.Instrs))
	}
}

func TestParse_IfWithoutElseSynthesizesEmptyAlternate(t *testing.T) {
	// i32.const 1 ; if (no result) { drop-free nop } end ; end
	m := newFakeModule()
	src := ops(
		opI32(1),
		opBlock(wasm.OpIf, emptyBlockType()),
		op(wasm.OpNop),
		op(wasm.OpEnd), // closes the if
		op(wasm.OpEnd), // closes the function
	)

	fn, err := Parse(src, m, m, nil)
	if err != nil {
		t.Fatalf("unexpected rejection: %v", err)
	}
	entry := fn.Block(fn.EntrySequence())
	if len(entry.Instrs) != 1 {
		t.Fatalf("entry sequence has %d instructions, want 1", len(entry.Instrs))
	}
	ifElse, ok := entry.Instrs[0].Instr.(ir.IfElse)
	if !ok {
		t.Fatalf("entry instruction is %T, want ir.IfElse", entry.Instrs[0].Instr)
	}
	if alt := fn.Block(ifElse.Alternate); len(alt.Instrs) != 0 {
		t.Errorf("synthesized alternate has %d instructions, want 0", len(alt.Instrs))
	}
}

func TestParse_BranchPopsLabelTypes(t *testing.T) {
	// block (result i32) { i32.const 1 ; br 0 } ; end
	m := newFakeModule()
	src := ops(
		opBlock(wasm.OpBlock, valBlockType(ir.I32)),
		opI32(1),
		opBr(wasm.OpBr, 0),
		op(wasm.OpEnd),
		op(wasm.OpEnd),
	)

	if _, err := Parse(src, m, m, []ir.ValType{ir.I32}); err != nil {
		t.Fatalf("unexpected rejection: %v", err)
	}
}

func TestParse_BrTableRejectsNonUniformLabelTypes(t *testing.T) {
	// block (result i32) { block (result i64) {
	//   i32.const 0 ; i32.const 0 ; br_table [1, 0] 0
	// } end } end
	m := newFakeModule()
	src := ops(
		opBlock(wasm.OpBlock, valBlockType(ir.I32)),
		opBlock(wasm.OpBlock, valBlockType(ir.I64)),
		opI32(0),
		opI32(0),
		wasm.Operator{Op: uint32(wasm.OpBrTable), Labels: []uint32{1, 0}, Default: 0},
		op(wasm.OpEnd),
		op(wasm.OpEnd),
		op(wasm.OpEnd),
	)

	_, err := Parse(src, m, m, nil)
	assertKind(t, err, wasmerrors.KindTypeMismatch)
}

func TestParse_UsedDataSegmentsTracksDropAndInit(t *testing.T) {
	// data.drop 3 ; i32.const 0 ; i32.const 0 ; i32.const 0 ; memory.init 5
	m := newFakeModule()
	m.data = 6
	src := ops(
		opMisc(wasm.MiscDataDrop, 3, 0),
		opI32(0), opI32(0), opI32(0),
		opMisc(wasm.MiscMemoryInit, 5, 0),
		op(wasm.OpEnd),
	)

	fn, err := Parse(src, m, m, nil)
	if err != nil {
		t.Fatalf("unexpected rejection: %v", err)
	}
	got := fn.UsedDataSegments()
	want := []ir.DataID{3, 5}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("UsedDataSegments() = %v, want %v", got, want)
	}
}

func TestParse_ExtraOperandsAtEndRejects(t *testing.T) {
	// i32.const 1 ; i32.const 2 ; end, declared result is just i32.
	m := newFakeModule()
	src := ops(opI32(1), opI32(2), op(wasm.OpEnd))

	_, err := Parse(src, m, m, []ir.ValType{ir.I32})
	assertKind(t, err, wasmerrors.KindTypeMismatch)
}

func assertKind(t *testing.T, err error, want wasmerrors.Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected an error of kind %s, got nil", want)
	}
	var e *wasmerrors.Error
	if !errors.As(err, &e) {
		t.Fatalf("expected a *errors.Error, got %T: %v", err, err)
	}
	if e.Kind != want {
		t.Fatalf("got kind %s, want %s", e.Kind, want)
	}
}
