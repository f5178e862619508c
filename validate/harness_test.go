package validate

import (
	"github.com/wasmkit/wazir/ir"
	"github.com/wasmkit/wazir/wasm"
)

// opList is a fixed sequence of pre-decoded operators with their byte
// offsets, standing in for wasm.OperatorSource: tests build a function
// body directly out of Operator values instead of encoding and decoding
// real LEB128 bytes, since the driver's seam with the decoder is the
// OperatorSource interface, not any particular byte layout.
type opList struct {
	ops []wasm.Operator
	i   int
}

func ops(list ...wasm.Operator) *opList { return &opList{ops: list} }

func (s *opList) Eof() bool { return s.i >= len(s.ops) }

func (s *opList) Next() (wasm.Operator, uint32, error) {
	op := s.ops[s.i]
	off := uint32(s.i)
	s.i++
	return op, off, nil
}

func op(code byte) wasm.Operator { return wasm.Operator{Op: uint32(code)} }

func opIdx(code byte, idx uint32) wasm.Operator {
	return wasm.Operator{Op: uint32(code), Idx: idx}
}

func opI32(v int32) wasm.Operator {
	return wasm.Operator{Op: uint32(wasm.OpI32Const), I32: v}
}

func opI64(v int64) wasm.Operator {
	return wasm.Operator{Op: uint32(wasm.OpI64Const), I64: v}
}

func opBlock(code byte, bt wasm.BlockTypeRef) wasm.Operator {
	return wasm.Operator{Op: uint32(code), BlockType: bt}
}

func opBr(code byte, depth uint32) wasm.Operator {
	return wasm.Operator{Op: uint32(code), Idx: depth}
}

func emptyBlockType() wasm.BlockTypeRef { return wasm.BlockTypeRef{Empty: true} }

func valBlockType(t ir.ValType) wasm.BlockTypeRef {
	return wasm.BlockTypeRef{Val: t}
}

// fakeModule is a minimal stand-in for the module-level IndexResolver and
// ModuleReadModel collaborators: one function signature's worth of
// locals, plus lookup tables for globals, tables, memories and function
// types, all addressed by their position in the backing slice.
type fakeModule struct {
	locals    []ir.ValType
	typeSigs  []fakeType
	funcTypes []ir.TypeID
	globals   []ir.ValType
	tables    []ir.ValType
	memories  int
	data      int
	elements  []ir.ValType
}

type fakeType struct {
	params  []ir.ValType
	results []ir.ValType
}

func newFakeModule(locals ...ir.ValType) *fakeModule {
	return &fakeModule{locals: locals, memories: 1}
}

func (m *fakeModule) GetType(idx uint32) (ir.TypeID, error) {
	if int(idx) >= len(m.typeSigs) {
		return 0, errOOB
	}
	return ir.TypeID(idx), nil
}

func (m *fakeModule) GetFunc(idx uint32) (ir.FuncID, error) {
	if int(idx) >= len(m.funcTypes) {
		return 0, errOOB
	}
	return ir.FuncID(idx), nil
}

func (m *fakeModule) GetTable(idx uint32) (ir.TableID, error) {
	if int(idx) >= len(m.tables) {
		return 0, errOOB
	}
	return ir.TableID(idx), nil
}

func (m *fakeModule) GetMemory(idx uint32) (ir.MemoryID, error) {
	if int(idx) >= m.memories {
		return 0, errOOB
	}
	return ir.MemoryID(idx), nil
}

func (m *fakeModule) GetGlobal(idx uint32) (ir.GlobalID, error) {
	if int(idx) >= len(m.globals) {
		return 0, errOOB
	}
	return ir.GlobalID(idx), nil
}

func (m *fakeModule) GetLocal(idx uint32) (ir.LocalID, error) {
	if int(idx) >= len(m.locals) {
		return 0, errOOB
	}
	return ir.LocalID(idx), nil
}

func (m *fakeModule) GetData(idx uint32) (ir.DataID, error) {
	if int(idx) >= m.data {
		return 0, errOOB
	}
	return ir.DataID(idx), nil
}

func (m *fakeModule) GetElement(idx uint32) (ir.ElemID, error) {
	if int(idx) >= len(m.elements) {
		return 0, errOOB
	}
	return ir.ElemID(idx), nil
}

func (m *fakeModule) TypeParams(id ir.TypeID) []ir.ValType  { return m.typeSigs[id].params }
func (m *fakeModule) TypeResults(id ir.TypeID) []ir.ValType { return m.typeSigs[id].results }
func (m *fakeModule) FuncType(id ir.FuncID) ir.TypeID       { return m.funcTypes[id] }
func (m *fakeModule) LocalType(id ir.LocalID) ir.ValType    { return m.locals[id] }
func (m *fakeModule) GlobalType(id ir.GlobalID) ir.ValType  { return m.globals[id] }
func (m *fakeModule) TableElemType(id ir.TableID) ir.ValType {
	return m.tables[id]
}
func (m *fakeModule) ElemType(id ir.ElemID) ir.ValType { return m.elements[id] }

type oobError struct{}

func (oobError) Error() string { return "index out of range" }

var errOOB = oobError{}
