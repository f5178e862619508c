package validate

import (
	"testing"

	"github.com/wasmkit/wazir/ir"
)

func TestEmitLocals_ParamsKeepIndexUnusedLocalsDropped(t *testing.T) {
	// Signature: func(i32, i64) with two declared locals: f32 (unused), i32 (used).
	locals := []ir.ValType{ir.I32, ir.I64, ir.F32, ir.I32}
	fn := &Function{usedLocals: map[ir.LocalID]bool{3: true}}

	groups, indexMap := fn.EmitLocals(locals, 2)

	if indexMap[0] != 0 || indexMap[1] != 1 {
		t.Fatalf("parameters must keep their original index, got %v", indexMap)
	}
	if _, ok := indexMap[2]; ok {
		t.Errorf("unused local 2 should not appear in the index map, got %v", indexMap[2])
	}
	if got, want := indexMap[3], uint32(2); got != want {
		t.Errorf("used local 3 should be renumbered to %d, got %d", want, got)
	}
	if len(groups) != 1 || groups[0].Type != ir.I32 || groups[0].Count != 1 {
		t.Errorf("expected a single i32 group of count 1, got %+v", groups)
	}
}

func TestEmitLocals_GroupsByTypeAscending(t *testing.T) {
	// Two params (i32), then locals: f64, i32, i64, i32 — all used.
	locals := []ir.ValType{ir.I32, ir.I32, ir.F64, ir.I32, ir.I64, ir.I32}
	fn := &Function{usedLocals: map[ir.LocalID]bool{2: true, 3: true, 4: true, 5: true}}

	groups, indexMap := fn.EmitLocals(locals, 2)

	if len(groups) != 3 {
		t.Fatalf("expected 3 type groups (i32, i64, f64), got %d: %+v", len(groups), groups)
	}
	order := []ir.ValType{groups[0].Type, groups[1].Type, groups[2].Type}
	for i := 1; i < len(order); i++ {
		if order[i-1] > order[i] {
			t.Fatalf("groups not in ascending ValType order: %v", order)
		}
	}
	// i32 group should contain both originally-i32 locals (ids 3 and 5).
	i32Group := groups[0]
	if i32Group.Type != ir.I32 || i32Group.Count != 2 {
		t.Errorf("expected first group to be 2 i32 locals, got %+v", i32Group)
	}
	if indexMap[3] == indexMap[5] {
		t.Errorf("distinct locals must get distinct renumbered indices")
	}
}

func TestEmitLocals_Deterministic(t *testing.T) {
	locals := []ir.ValType{ir.I32, ir.F32, ir.I64, ir.I32, ir.F32}
	used := map[ir.LocalID]bool{0: true, 1: true, 2: true, 3: true, 4: true}

	fn1 := &Function{usedLocals: used}
	fn2 := &Function{usedLocals: used}

	g1, m1 := fn1.EmitLocals(locals, 0)
	g2, m2 := fn2.EmitLocals(locals, 0)

	if len(g1) != len(g2) {
		t.Fatalf("group count differs across repeat emission: %d vs %d", len(g1), len(g2))
	}
	for i := range g1 {
		if g1[i] != g2[i] {
			t.Errorf("group %d differs: %+v vs %+v", i, g1[i], g2[i])
		}
	}
	for id, idx := range m1 {
		if m2[id] != idx {
			t.Errorf("local %d renumbered differently across runs: %d vs %d", id, idx, m2[id])
		}
	}
}
