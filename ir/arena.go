package ir

import "fmt"

// Sequence is an ordered list of located instructions forming one
// structured block's body. Structured control instructions elsewhere in
// the tree reference a Sequence only by its SeqID; Sequence values never
// hold a reference to another Sequence directly, so the tree has no
// aliasing and can be walked or mutated without lifetime entanglement.
type Sequence struct {
	Instrs []Located
}

func (s *Sequence) Append(instr Instr, pos uint32) {
	s.Instrs = append(s.Instrs, Located{Instr: instr, Pos: pos})
}

// Arena is the single owner of every instruction sequence allocated while
// validating one function body. Sequences are addressed by SeqID, which is
// assigned as the slice length at allocation time, mirroring how the
// surrounding module's own type/func/instance arenas hand out ids.
type Arena struct {
	seqs []Sequence
}

// NewArena returns an empty arena.
func NewArena() *Arena {
	return &Arena{}
}

// Alloc allocates a fresh, empty sequence and returns its id.
func (a *Arena) Alloc() SeqID {
	id := SeqID(len(a.seqs))
	a.seqs = append(a.seqs, Sequence{})
	return id
}

// Append appends instr, at byte offset pos, to the sequence identified by
// id. It panics on an out-of-range id: that can only happen from a bug in
// the validation driver, never from malformed input, since every id it
// hands out came from this same arena.
func (a *Arena) Append(id SeqID, instr Instr, pos uint32) {
	a.mustGet(id).Append(instr, pos)
}

// Sequence returns a pointer to the sequence for id, for read or mutation
// by the binary re-encoder and other collaborators.
func (a *Arena) Sequence(id SeqID) *Sequence {
	return a.mustGet(id)
}

func (a *Arena) mustGet(id SeqID) *Sequence {
	if int(id) >= len(a.seqs) {
		panic(fmt.Sprintf("ir: sequence id %d out of range (len=%d)", id, len(a.seqs)))
	}
	return &a.seqs[int(id)]
}

// Len reports the number of sequences allocated so far.
func (a *Arena) Len() int {
	return len(a.seqs)
}

// Size returns the total number of instructions across every sequence in
// the arena.
func (a *Arena) Size() int {
	n := 0
	for i := range a.seqs {
		n += len(a.seqs[i].Instrs)
	}
	return n
}
