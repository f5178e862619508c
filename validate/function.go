package validate

import (
	"sort"

	"github.com/wasmkit/wazir/ir"
	"github.com/wasmkit/wazir/wasm"
)

// Function is the parsed and validated result of one function body: its
// instruction-sequence IR, plus the bookkeeping the emitters consult
// afterward (compact locals layout, data-segment usage).
type Function struct {
	arena *ir.Arena
	entry ir.SeqID

	usedLocals map[ir.LocalID]bool
	usedData   map[ir.DataID]bool
}

// EntrySequence returns the id of the function body's own top-level
// instruction sequence.
func (f *Function) EntrySequence() ir.SeqID { return f.entry }

// Block returns the sequence identified by id: the consequent or
// alternate of an IfElse, or the body of a Block or Loop.
func (f *Function) Block(id ir.SeqID) *ir.Sequence { return f.arena.Sequence(id) }

// Size returns the total instruction count across every sequence this
// function allocated.
func (f *Function) Size() int { return f.arena.Size() }

// UsedDataSegments returns, in ascending order, every data segment id
// referenced by a memory.init or data.drop anywhere in this function.
func (f *Function) UsedDataSegments() []ir.DataID {
	ids := make([]ir.DataID, 0, len(f.usedData))
	for id := range f.usedData {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// IsConst reports whether this function body contains only instructions a
// constant initializer expression may contain, per the Wasm
// constant-expression rule: numeric and vector constants, global reads,
// reference constructors, and the extended-const proposal's narrow
// i32/i64 add, sub and mul. Every global.get qualifies; whether the global
// is mutable or imported is not checked here. No control flow, drop,
// select, call, memory access, table access, or local reference ever
// qualifies.
func (f *Function) IsConst() bool {
	for i := 0; i < f.arena.Len(); i++ {
		for _, loc := range f.arena.Sequence(ir.SeqID(i)).Instrs {
			if !isConstInstr(loc.Instr) {
				return false
			}
		}
	}
	return true
}

func isConstInstr(instr ir.Instr) bool {
	switch v := instr.(type) {
	case ir.Const, ir.GlobalGet, ir.RefNull, ir.RefFunc:
		return true
	case ir.Binop:
		return isExtendedConstOp(v.Op)
	default:
		return false
	}
}

// isExtendedConstOp reports whether op is one of the six opcodes the
// extended-const proposal permits inside a constant expression: i32/i64
// add, sub and mul, combining constants and global reads without ever
// needing a runtime evaluator.
func isExtendedConstOp(op ir.NumOp) bool {
	switch byte(op) {
	case wasm.OpI32Add, wasm.OpI32Sub, wasm.OpI32Mul,
		wasm.OpI64Add, wasm.OpI64Sub, wasm.OpI64Mul:
		return true
	default:
		return false
	}
}
