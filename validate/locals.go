package validate

import (
	"sort"

	"github.com/wasmkit/wazir/ir"
)

// LocalsGroup is one run of same-typed locals in the compact locals
// declaration a re-encoder would emit for this function.
type LocalsGroup struct {
	Count uint32
	Type  ir.ValType
}

// EmitLocals computes the compact locals layout for this function: every
// parameter keeps its original index unconditionally, since calls address
// them positionally; every other declared local that local.get, local.set
// or local.tee never touched is dropped entirely rather than given a
// slot; the remaining locals are grouped by type, in ascending ValType
// order, and assigned fresh indices continuing on from the parameters.
// locals holds every declared local type indexed by its original id
// (parameters first, then the function's own local declarations);
// numParams marks where the parameters end.
//
// It returns the declaration groups in the order a re-encoded function
// would list them, plus the mapping from original local id to its
// (possibly renumbered) index.
func (f *Function) EmitLocals(locals []ir.ValType, numParams int) ([]LocalsGroup, map[ir.LocalID]uint32) {
	indexMap := make(map[ir.LocalID]uint32, len(locals))
	for i := 0; i < numParams; i++ {
		indexMap[ir.LocalID(i)] = uint32(i)
	}

	byType := make(map[ir.ValType][]ir.LocalID)
	for i := numParams; i < len(locals); i++ {
		id := ir.LocalID(i)
		if f.usedLocals[id] {
			byType[locals[i]] = append(byType[locals[i]], id)
		}
	}

	types := make([]ir.ValType, 0, len(byType))
	for t := range byType {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	groups := make([]LocalsGroup, 0, len(types))
	next := uint32(numParams)
	for _, t := range types {
		ids := byType[t]
		for _, id := range ids {
			indexMap[id] = next
			next++
		}
		groups = append(groups, LocalsGroup{Count: uint32(len(ids)), Type: t})
	}
	return groups, indexMap
}
