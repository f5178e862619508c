package wasm

import (
	"fmt"

	"github.com/wasmkit/wazir/ir"
)

// ValTypeFromByte decodes a single value-type byte into the IR's ValType.
func ValTypeFromByte(b byte) (ir.ValType, error) {
	switch b {
	case ValI32:
		return ir.I32, nil
	case ValI64:
		return ir.I64, nil
	case ValF32:
		return ir.F32, nil
	case ValF64:
		return ir.F64, nil
	case ValV128:
		return ir.V128, nil
	case ValFuncRef:
		return ir.FuncRef, nil
	case ValExternRef:
		return ir.ExternRef, nil
	default:
		return 0, fmt.Errorf("invalid value type byte 0x%02x", b)
	}
}

// ValTypeToByte is the inverse of ValTypeFromByte.
func ValTypeToByte(t ir.ValType) byte {
	switch t {
	case ir.I32:
		return ValI32
	case ir.I64:
		return ValI64
	case ir.F32:
		return ValF32
	case ir.F64:
		return ValF64
	case ir.V128:
		return ValV128
	case ir.FuncRef:
		return ValFuncRef
	case ir.ExternRef:
		return ValExternRef
	default:
		panic(fmt.Sprintf("wasm: no binary encoding for value type %v", t))
	}
}

// FuncType is a function signature: zero or more parameter types mapping
// to zero or more result types. Multi-value block types reference a
// FuncType by index the same way a call does.
type FuncType struct {
	Params  []ir.ValType
	Results []ir.ValType
}

// TableType describes one table: its element reference type and size
// limits.
type TableType struct {
	ElemType ir.ValType
	Min      uint32
	Max      *uint32
}

// MemoryType describes one linear memory's page-count limits.
type MemoryType struct {
	Min    uint64
	Max    *uint64
	Shared bool
	Mem64  bool
}

// GlobalType describes one global's value type and mutability.
type GlobalType struct {
	Type    ir.ValType
	Mutable bool
}

// FuncBody is one function's raw, not-yet-decoded operator stream plus its
// declared local-variable groups, as stored in the code section.
type FuncBody struct {
	Locals []LocalGroup
	Code   []byte
	// Offset is the byte offset of Code[0] within the module, passed to
	// NewOperatorSource so validation errors carry a module-relative
	// position instead of restarting at zero for every function.
	Offset uint32
}

// LocalGroup is one run of same-typed declared locals, as they appear in
// the compact locals declaration preceding a function body's code.
type LocalGroup struct {
	Count uint32
	Type  ir.ValType
}

// ElemType describes one element segment: the reference type it carries
// (funcref unless the reference-types proposal's table of externref
// segments is used). Whether the segment is active, passive, or
// declarative is not recorded.
type ElemType struct {
	RefType ir.ValType
}

// Module is the module-level read-model the validator consumes through
// the index-resolver and module-read-model collaborator interfaces. It
// holds only what function-body validation needs: it does not track
// imports/exports by name, custom sections, or anything the binary
// re-encoder alone would need.
type Module struct {
	Types     []FuncType
	FuncTypes []uint32 // func index -> type index, imported funcs first
	NumImportedFuncs int
	Tables    []TableType
	Memories  []MemoryType
	Globals   []GlobalType
	Elements  []ElemType
	DataCount int // number of data segments, from the data-count section or a full decode
	Code      []FuncBody
}

// NumFuncs returns the total number of functions (imported and local).
func (m *Module) NumFuncs() int {
	return len(m.FuncTypes)
}
