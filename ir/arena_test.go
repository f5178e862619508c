package ir

import "testing"

func TestArena_AllocAppendSequence(t *testing.T) {
	a := NewArena()

	seq1 := a.Alloc()
	seq2 := a.Alloc()
	if seq1 == seq2 {
		t.Fatal("distinct allocations must return distinct ids")
	}

	a.Append(seq1, Nop{}, 10)
	a.Append(seq1, Drop{}, 11)
	a.Append(seq2, Unreachable{}, 20)

	if got := len(a.Sequence(seq1).Instrs); got != 2 {
		t.Errorf("seq1 has %d instructions, want 2", got)
	}
	if got := len(a.Sequence(seq2).Instrs); got != 1 {
		t.Errorf("seq2 has %d instructions, want 1", got)
	}
	if a.Len() != 2 {
		t.Errorf("Len() = %d, want 2", a.Len())
	}
	if a.Size() != 3 {
		t.Errorf("Size() = %d, want 3", a.Size())
	}
	if got := a.Sequence(seq1).Instrs[0].Pos; got != 10 {
		t.Errorf("first instruction pos = %d, want 10", got)
	}
}

func TestArena_AppendOutOfRangePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic appending to an unallocated sequence id")
		}
	}()
	a := NewArena()
	a.Append(SeqID(5), Nop{}, 0)
}
