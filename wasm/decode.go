package wasm

import (
	"bytes"
	"fmt"

	"github.com/wasmkit/wazir/ir"
	"github.com/wasmkit/wazir/wasm/internal/binary"
)

// Decode parses a complete WebAssembly binary module into the read-model
// this package's collaborators expose to the validator. It does not track
// imports by name or custom sections' contents: only the index spaces
// (type count, function-to-type mapping, table/memory/global types,
// element segments, data-segment count, and each function's raw body)
// that function-body validation needs.
func Decode(data []byte) (*Module, error) {
	r := binary.NewReader(bytes.NewReader(data))

	magic, err := r.ReadU32LE()
	if err != nil {
		return nil, fmt.Errorf("reading magic: %w", err)
	}
	if magic != Magic {
		return nil, fmt.Errorf("bad magic 0x%08x", magic)
	}
	version, err := r.ReadU32LE()
	if err != nil {
		return nil, fmt.Errorf("reading version: %w", err)
	}
	if version != Version {
		return nil, fmt.Errorf("unsupported version %d", version)
	}

	m := &Module{}
	haveDataCount := false

	for {
		id, err := r.ReadByte()
		if err != nil {
			break // EOF: end of module
		}
		size, err := r.ReadU32()
		if err != nil {
			return nil, fmt.Errorf("section %d: reading size: %w", id, err)
		}
		sectionStart := r.Position()
		body, err := r.ReadBytes(int(size))
		if err != nil {
			return nil, fmt.Errorf("section %d: reading body: %w", id, err)
		}
		sr := binary.NewReader(bytes.NewReader(body))

		switch id {
		case SectionCustom:
			// Contents are opaque to the validator.
		case SectionType:
			if m.Types, err = decodeTypeSection(sr); err != nil {
				return nil, err
			}
		case SectionImport:
			if err := decodeImportSection(sr, m); err != nil {
				return nil, err
			}
		case SectionFunction:
			if err := decodeFunctionSection(sr, m); err != nil {
				return nil, err
			}
		case SectionTable:
			if m.Tables, err = decodeTableSection(sr, m.Tables); err != nil {
				return nil, err
			}
		case SectionMemory:
			if m.Memories, err = decodeMemorySection(sr, m.Memories); err != nil {
				return nil, err
			}
		case SectionGlobal:
			if err := decodeGlobalSection(sr, m); err != nil {
				return nil, err
			}
		case SectionElement:
			if m.Elements, err = decodeElementSection(sr); err != nil {
				return nil, err
			}
		case SectionDataCount:
			count, err := sr.ReadU32()
			if err != nil {
				return nil, err
			}
			m.DataCount = int(count)
			haveDataCount = true
		case SectionCode:
			if err := decodeCodeSection(sr, m, uint32(sectionStart)); err != nil {
				return nil, err
			}
		case SectionData:
			count, err := sr.ReadU32()
			if err != nil {
				return nil, err
			}
			if !haveDataCount {
				m.DataCount = int(count)
			}
			// Segment contents (offset expr / init bytes) are consumed
			// by the data-segment collaborator, out of scope here.
		case SectionExport, SectionStart:
			// Not needed for function-body validation; skipped whole.
		default:
			return nil, fmt.Errorf("unknown section id %d", id)
		}
	}

	return m, nil
}

func decodeTypeSection(r *binary.Reader) ([]FuncType, error) {
	count, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	types := make([]FuncType, count)
	for i := range types {
		b, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		if b != FuncTypeByte {
			return nil, fmt.Errorf("type %d: expected functype byte 0x60, got 0x%02x", i, b)
		}
		params, err := readValTypeVec(r)
		if err != nil {
			return nil, err
		}
		results, err := readValTypeVec(r)
		if err != nil {
			return nil, err
		}
		types[i] = FuncType{Params: params, Results: results}
	}
	return types, nil
}

func readValTypeVec(r *binary.Reader) ([]ir.ValType, error) {
	n, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	out := make([]ir.ValType, n)
	for i := range out {
		b, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		if out[i], err = ValTypeFromByte(b); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func decodeImportSection(r *binary.Reader, m *Module) error {
	count, err := r.ReadU32()
	if err != nil {
		return err
	}
	for i := uint32(0); i < count; i++ {
		if _, err := r.ReadName(); err != nil { // module
			return err
		}
		if _, err := r.ReadName(); err != nil { // field
			return err
		}
		kind, err := r.ReadByte()
		if err != nil {
			return err
		}
		switch kind {
		case KindFunc:
			typeIdx, err := r.ReadU32()
			if err != nil {
				return err
			}
			m.FuncTypes = append(m.FuncTypes, typeIdx)
			m.NumImportedFuncs++
		case KindTable:
			tt, err := decodeTableType(r)
			if err != nil {
				return err
			}
			m.Tables = append(m.Tables, tt)
		case KindMemory:
			mt, err := decodeMemoryType(r)
			if err != nil {
				return err
			}
			m.Memories = append(m.Memories, mt)
		case KindGlobal:
			gt, err := decodeGlobalType(r)
			if err != nil {
				return err
			}
			m.Globals = append(m.Globals, gt)
		default:
			return fmt.Errorf("unknown import kind %d", kind)
		}
	}
	return nil
}

func decodeFunctionSection(r *binary.Reader, m *Module) error {
	count, err := r.ReadU32()
	if err != nil {
		return err
	}
	for i := uint32(0); i < count; i++ {
		typeIdx, err := r.ReadU32()
		if err != nil {
			return err
		}
		m.FuncTypes = append(m.FuncTypes, typeIdx)
	}
	return nil
}

func decodeTableType(r *binary.Reader) (TableType, error) {
	elemByte, err := r.ReadByte()
	if err != nil {
		return TableType{}, err
	}
	elem, err := ValTypeFromByte(elemByte)
	if err != nil {
		return TableType{}, err
	}
	min, max, err := decodeLimits32(r)
	if err != nil {
		return TableType{}, err
	}
	return TableType{ElemType: elem, Min: min, Max: max}, nil
}

func decodeTableSection(r *binary.Reader, existing []TableType) ([]TableType, error) {
	count, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	for i := uint32(0); i < count; i++ {
		tt, err := decodeTableType(r)
		if err != nil {
			return nil, err
		}
		existing = append(existing, tt)
	}
	return existing, nil
}

func decodeMemoryType(r *binary.Reader) (MemoryType, error) {
	min, max, err := decodeLimits64(r)
	if err != nil {
		return MemoryType{}, err
	}
	return MemoryType{Min: min, Max: max}, nil
}

func decodeMemorySection(r *binary.Reader, existing []MemoryType) ([]MemoryType, error) {
	count, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	for i := uint32(0); i < count; i++ {
		mt, err := decodeMemoryType(r)
		if err != nil {
			return nil, err
		}
		existing = append(existing, mt)
	}
	return existing, nil
}

// limit flag bits: bit 0 set means a max is present, bit 1 set means the
// memory is shared (only meaningful for memories).
func decodeLimits32(r *binary.Reader) (min uint32, max *uint32, err error) {
	flags, err := r.ReadByte()
	if err != nil {
		return 0, nil, err
	}
	if min, err = r.ReadU32(); err != nil {
		return 0, nil, err
	}
	if flags&0x01 != 0 {
		m, err := r.ReadU32()
		if err != nil {
			return 0, nil, err
		}
		max = &m
	}
	return min, max, nil
}

func decodeLimits64(r *binary.Reader) (min uint64, max *uint64, err error) {
	lo, hi, err := decodeLimits32(r)
	if err != nil {
		return 0, nil, err
	}
	min = uint64(lo)
	if hi != nil {
		h := uint64(*hi)
		max = &h
	}
	return min, max, nil
}

func decodeGlobalType(r *binary.Reader) (GlobalType, error) {
	tb, err := r.ReadByte()
	if err != nil {
		return GlobalType{}, err
	}
	t, err := ValTypeFromByte(tb)
	if err != nil {
		return GlobalType{}, err
	}
	mb, err := r.ReadByte()
	if err != nil {
		return GlobalType{}, err
	}
	return GlobalType{Type: t, Mutable: mb == 1}, nil
}

func decodeGlobalSection(r *binary.Reader, m *Module) error {
	count, err := r.ReadU32()
	if err != nil {
		return err
	}
	for i := uint32(0); i < count; i++ {
		gt, err := decodeGlobalType(r)
		if err != nil {
			return err
		}
		m.Globals = append(m.Globals, gt)
		if err := skipConstExpr(r); err != nil {
			return err
		}
	}
	return nil
}

func decodeElementSection(r *binary.Reader) ([]ElemType, error) {
	count, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	elems := make([]ElemType, count)
	for i := range elems {
		flags, err := r.ReadU32()
		if err != nil {
			return nil, err
		}
		refType := ir.FuncRef
		// Flags bit layout follows the bulk-memory/reference-types
		// proposal: active segments with an explicit table index and
		// passive/declarative segments carry an elemkind (bit 2 clear) or
		// reftype (bit 2 set) byte; this reads just enough to stay framed
		// correctly without reconstructing the full init-expr/function-
		// index-vector payload, which the element-segment collaborator owns.
		if flags&0x01 != 0 { // passive or declarative
			kb, err := r.ReadByte()
			if err != nil {
				return nil, err
			}
			if flags&0x04 != 0 {
				refType, err = ValTypeFromByte(kb)
				if err != nil {
					return nil, err
				}
			}
		} else {
			if flags&0x02 != 0 {
				if _, err := r.ReadU32(); err != nil { // table index
					return nil, err
				}
			}
			if err := skipConstExpr(r); err != nil {
				return nil, err
			}
			if flags&0x02 != 0 {
				tb, err := r.ReadByte()
				if err != nil {
					return nil, err
				}
				if flags&0x04 != 0 {
					refType, err = ValTypeFromByte(tb)
					if err != nil {
						return nil, err
					}
				}
			}
		}
		n, err := r.ReadU32()
		if err != nil {
			return nil, err
		}
		for j := uint32(0); j < n; j++ {
			if flags&0x04 != 0 {
				if err := skipConstExpr(r); err != nil {
					return nil, err
				}
			} else if _, err := r.ReadU32(); err != nil {
				return nil, err
			}
		}
		elems[i] = ElemType{RefType: refType}
	}
	return elems, nil
}

// skipConstExpr consumes one constant expression up to and including its
// terminating end byte. It does not evaluate the expression: module-level
// globals/offsets are out of the validator's scope.
func skipConstExpr(r *binary.Reader) error {
	depth := 1
	for depth > 0 {
		b, err := r.ReadByte()
		if err != nil {
			return err
		}
		switch b {
		case OpEnd:
			depth--
			continue
		case OpBlock, OpLoop, OpIf:
			depth++
			if _, err := r.ReadS32(); err != nil {
				return err
			}
			continue
		case OpI32Const:
			_, err = r.ReadS32()
		case OpI64Const:
			_, err = r.ReadS64()
		case OpF32Const:
			_, err = r.ReadBytes(4)
		case OpF64Const:
			_, err = r.ReadBytes(8)
		case OpGlobalGet, OpRefFunc:
			_, err = r.ReadU32()
		case OpRefNull:
			_, err = r.ReadByte()
		default:
			// Other operators (e.g. numeric ops in extended-const
			// expressions) take no immediate.
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func decodeCodeSection(r *binary.Reader, m *Module, base uint32) error {
	count, err := r.ReadU32()
	if err != nil {
		return err
	}
	m.Code = make([]FuncBody, count)
	for i := uint32(0); i < count; i++ {
		size, err := r.ReadU32()
		if err != nil {
			return err
		}
		start := r.Position()
		groupCount, err := r.ReadU32()
		if err != nil {
			return err
		}
		locals := make([]LocalGroup, groupCount)
		for g := range locals {
			n, err := r.ReadU32()
			if err != nil {
				return err
			}
			tb, err := r.ReadByte()
			if err != nil {
				return err
			}
			t, err := ValTypeFromByte(tb)
			if err != nil {
				return err
			}
			locals[g] = LocalGroup{Count: n, Type: t}
		}
		consumed := r.Position() - start
		codeOffset := base + uint32(r.Position())
		code, err := r.ReadBytes(int(size) - consumed)
		if err != nil {
			return err
		}
		m.Code[i] = FuncBody{Locals: locals, Code: code, Offset: codeOffset}
	}
	return nil
}
