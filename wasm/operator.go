package wasm

import (
	"bytes"
	"fmt"
	"io"

	"github.com/wasmkit/wazir/ir"
	"github.com/wasmkit/wazir/wasm/internal/binary"
)

// Flat opcode space: single-byte opcodes keep their natural byte value;
// each prefixed family (misc/simd/atomic) gets its sub-opcode shifted
// into a disjoint band so the validation driver can switch on one
// integer regardless of how many bytes the source encoding took.
const (
	miscBand   = 0x1_0000
	simdBand   = 0x2_0000
	atomicBand = 0x3_0000
)

// BlockTypeRef is a decoded block type: either the empty signature, a
// single inline result type, or an index into the module's type section
// (multi-value).
type BlockTypeRef struct {
	Empty   bool
	IsIndex bool
	Val     ir.ValType
	Index   uint32
}

// MemArg is a decoded memory-instruction immediate: alignment hint
// (not shifted: this holds the raw log2 flags, and align = 1<<flags is
// the caller's job), byte offset, and the optional multi-memory index.
type MemArg struct {
	Flags  uint32
	Offset uint64
	Mem    uint32
}

// Operator is one decoded operator from a function body's byte stream.
// Only the fields relevant to Op are populated; the driver knows which
// ones to read from the opcode family.
type Operator struct {
	Op        uint32
	BlockType BlockTypeRef
	Idx       uint32 // local/global/func/table/data/elem/type index
	Idx2      uint32 // secondary index (call_indirect table, memory/table copy dst, ...)
	MemArg    MemArg
	I32       int32
	I64       int64
	F32       float32
	F64       float64
	V128      [16]byte
	Labels    []uint32 // br_table targets
	Default   uint32
	Lane      byte
	Lanes     [16]byte
	ValTypes  []ir.ValType // typed select's declared types
	Reserved  byte         // memory.size/grow trailing byte, atomic.fence flags
}

// OperatorSource yields a finite sequence of decoded operators with their
// byte offsets, as required by the validator's operator-source
// collaborator interface.
type OperatorSource struct {
	r    *binary.Reader
	len  int
	base uint32
}

// NewOperatorSource wraps code (a function body's raw operator bytes,
// i.e. everything after the locals declaration) for sequential decode.
// base is the absolute file offset of code[0], so offsets reported
// alongside each operator line up with FuncBody.Offset rather than
// restarting at zero for every function.
func NewOperatorSource(code []byte, base uint32) *OperatorSource {
	return &OperatorSource{r: binary.NewReader(bytes.NewReader(code)), len: len(code), base: base}
}

// Eof reports whether every byte of the operator stream has been
// consumed.
func (s *OperatorSource) Eof() bool {
	return s.r.Position() >= s.len
}

// Next decodes and returns the next operator along with the byte offset
// it started at. A decode failure is reported as MalformedOperator by the
// caller (the source itself returns the plain underlying error).
func (s *OperatorSource) Next() (Operator, uint32, error) {
	off := s.base + uint32(s.r.Position())
	op, err := s.decode()
	return op, off, err
}

func (s *OperatorSource) decode() (Operator, error) {
	b, err := s.r.ReadByte()
	if err != nil {
		return Operator{}, err
	}

	switch b {
	case OpUnreachable, OpNop, OpElse, OpEnd, OpReturn, OpDrop, OpSelect,
		OpI32Eqz, OpI32Eq, OpI32Ne, OpI32LtS, OpI32LtU, OpI32GtS, OpI32GtU, OpI32LeS, OpI32LeU, OpI32GeS, OpI32GeU,
		OpI64Eqz, OpI64Eq, OpI64Ne, OpI64LtS, OpI64LtU, OpI64GtS, OpI64GtU, OpI64LeS, OpI64LeU, OpI64GeS, OpI64GeU,
		OpF32Eq, OpF32Ne, OpF32Lt, OpF32Gt, OpF32Le, OpF32Ge,
		OpF64Eq, OpF64Ne, OpF64Lt, OpF64Gt, OpF64Le, OpF64Ge,
		OpI32Clz, OpI32Ctz, OpI32Popcnt, OpI32Add, OpI32Sub, OpI32Mul, OpI32DivS, OpI32DivU, OpI32RemS, OpI32RemU,
		OpI32And, OpI32Or, OpI32Xor, OpI32Shl, OpI32ShrS, OpI32ShrU, OpI32Rotl, OpI32Rotr,
		OpI64Clz, OpI64Ctz, OpI64Popcnt, OpI64Add, OpI64Sub, OpI64Mul, OpI64DivS, OpI64DivU, OpI64RemS, OpI64RemU,
		OpI64And, OpI64Or, OpI64Xor, OpI64Shl, OpI64ShrS, OpI64ShrU, OpI64Rotl, OpI64Rotr,
		OpF32Abs, OpF32Neg, OpF32Ceil, OpF32Floor, OpF32Trunc, OpF32Nearest, OpF32Sqrt,
		OpF32Add, OpF32Sub, OpF32Mul, OpF32Div, OpF32Min, OpF32Max, OpF32Copysign,
		OpF64Abs, OpF64Neg, OpF64Ceil, OpF64Floor, OpF64Trunc, OpF64Nearest, OpF64Sqrt,
		OpF64Add, OpF64Sub, OpF64Mul, OpF64Div, OpF64Min, OpF64Max, OpF64Copysign,
		OpI32WrapI64, OpI32TruncF32S, OpI32TruncF32U, OpI32TruncF64S, OpI32TruncF64U,
		OpI64ExtendI32S, OpI64ExtendI32U, OpI64TruncF32S, OpI64TruncF32U, OpI64TruncF64S, OpI64TruncF64U,
		OpF32ConvertI32S, OpF32ConvertI32U, OpF32ConvertI64S, OpF32ConvertI64U, OpF32DemoteF64,
		OpF64ConvertI32S, OpF64ConvertI32U, OpF64ConvertI64S, OpF64ConvertI64U, OpF64PromoteF32,
		OpI32ReinterpretF32, OpI64ReinterpretF64, OpF32ReinterpretI32, OpF64ReinterpretI64,
		OpI32Extend8S, OpI32Extend16S, OpI64Extend8S, OpI64Extend16S, OpI64Extend32S,
		OpRefIsNull:
		return Operator{Op: uint32(b)}, nil

	case OpBlock, OpLoop, OpIf:
		bt, err := s.readBlockType()
		if err != nil {
			return Operator{}, err
		}
		return Operator{Op: uint32(b), BlockType: bt}, nil

	case OpBr, OpBrIf:
		depth, err := s.r.ReadU32()
		if err != nil {
			return Operator{}, err
		}
		return Operator{Op: uint32(b), Idx: depth}, nil

	case OpBrTable:
		count, err := s.r.ReadU32()
		if err != nil {
			return Operator{}, err
		}
		labels := make([]uint32, count)
		for i := range labels {
			if labels[i], err = s.r.ReadU32(); err != nil {
				return Operator{}, err
			}
		}
		def, err := s.r.ReadU32()
		if err != nil {
			return Operator{}, err
		}
		return Operator{Op: uint32(b), Labels: labels, Default: def}, nil

	case OpCall, OpLocalGet, OpLocalSet, OpLocalTee, OpGlobalGet, OpGlobalSet,
		OpTableGet, OpTableSet, OpRefFunc:
		idx, err := s.r.ReadU32()
		if err != nil {
			return Operator{}, err
		}
		return Operator{Op: uint32(b), Idx: idx}, nil

	case OpCallIndirect:
		typeIdx, err := s.r.ReadU32()
		if err != nil {
			return Operator{}, err
		}
		tableIdx, err := s.r.ReadU32()
		if err != nil {
			return Operator{}, err
		}
		return Operator{Op: uint32(b), Idx: typeIdx, Idx2: tableIdx}, nil

	case OpSelectT:
		count, err := s.r.ReadU32()
		if err != nil {
			return Operator{}, err
		}
		types := make([]ir.ValType, count)
		for i := range types {
			tb, err := s.r.ReadByte()
			if err != nil {
				return Operator{}, err
			}
			if types[i], err = ValTypeFromByte(tb); err != nil {
				return Operator{}, err
			}
		}
		return Operator{Op: uint32(b), ValTypes: types}, nil

	case OpRefNull:
		tb, err := s.r.ReadByte()
		if err != nil {
			return Operator{}, err
		}
		t, err := ValTypeFromByte(tb)
		if err != nil {
			return Operator{}, err
		}
		return Operator{Op: uint32(b), BlockType: BlockTypeRef{Val: t}}, nil

	case OpI32Load, OpI64Load, OpF32Load, OpF64Load,
		OpI32Load8S, OpI32Load8U, OpI32Load16S, OpI32Load16U,
		OpI64Load8S, OpI64Load8U, OpI64Load16S, OpI64Load16U, OpI64Load32S, OpI64Load32U,
		OpI32Store, OpI64Store, OpF32Store, OpF64Store,
		OpI32Store8, OpI32Store16, OpI64Store8, OpI64Store16, OpI64Store32:
		ma, err := s.readMemArg()
		if err != nil {
			return Operator{}, err
		}
		return Operator{Op: uint32(b), MemArg: ma}, nil

	case OpMemorySize, OpMemoryGrow:
		reserved, err := s.r.ReadByte()
		if err != nil {
			return Operator{}, err
		}
		return Operator{Op: uint32(b), Reserved: reserved}, nil

	case OpI32Const:
		v, err := s.r.ReadS32()
		if err != nil {
			return Operator{}, err
		}
		return Operator{Op: uint32(b), I32: v}, nil

	case OpI64Const:
		v, err := s.r.ReadS64()
		if err != nil {
			return Operator{}, err
		}
		return Operator{Op: uint32(b), I64: v}, nil

	case OpF32Const:
		v, err := readFloat32(s.r)
		if err != nil {
			return Operator{}, err
		}
		return Operator{Op: uint32(b), F32: v}, nil

	case OpF64Const:
		v, err := readFloat64(s.r)
		if err != nil {
			return Operator{}, err
		}
		return Operator{Op: uint32(b), F64: v}, nil

	case OpPrefixMisc:
		return s.decodeMisc()
	case OpPrefixSIMD:
		return s.decodeSimd()
	case OpPrefixAtomic:
		return s.decodeAtomic()

	default:
		return Operator{}, fmt.Errorf("unrecognized opcode 0x%02x", b)
	}
}

func (s *OperatorSource) readBlockType() (BlockTypeRef, error) {
	v, err := s.r.ReadS32()
	if err != nil {
		return BlockTypeRef{}, err
	}
	if int64(v) == BlockTypeEmpty {
		return BlockTypeRef{Empty: true}, nil
	}
	if v < 0 {
		t, err := ValTypeFromByte(byte(v) & 0x7f)
		if err != nil {
			return BlockTypeRef{}, err
		}
		return BlockTypeRef{Val: t}, nil
	}
	return BlockTypeRef{IsIndex: true, Index: uint32(v)}, nil
}

func (s *OperatorSource) readMemArg() (MemArg, error) {
	flags, err := s.r.ReadU32()
	if err != nil {
		return MemArg{}, err
	}
	mem := uint32(0)
	if flags&MemArgMultiMemBit != 0 {
		flags &^= MemArgMultiMemBit
		if mem, err = s.r.ReadU32(); err != nil {
			return MemArg{}, err
		}
	}
	offset, err := s.r.ReadU32()
	if err != nil {
		return MemArg{}, err
	}
	return MemArg{Flags: flags, Offset: uint64(offset), Mem: mem}, nil
}

func (s *OperatorSource) decodeMisc() (Operator, error) {
	sub, err := s.r.ReadU32()
	if err != nil {
		return Operator{}, err
	}
	op := miscBand | sub
	switch sub {
	case MiscI32TruncSatF32S, MiscI32TruncSatF32U, MiscI32TruncSatF64S, MiscI32TruncSatF64U,
		MiscI64TruncSatF32S, MiscI64TruncSatF32U, MiscI64TruncSatF64S, MiscI64TruncSatF64U:
		return Operator{Op: op}, nil

	case MiscMemoryInit:
		data, err := s.r.ReadU32()
		if err != nil {
			return Operator{}, err
		}
		mem, err := s.r.ReadU32()
		if err != nil {
			return Operator{}, err
		}
		return Operator{Op: op, Idx: data, Idx2: mem}, nil

	case MiscDataDrop:
		data, err := s.r.ReadU32()
		if err != nil {
			return Operator{}, err
		}
		return Operator{Op: op, Idx: data}, nil

	case MiscMemoryCopy:
		dst, err := s.r.ReadU32()
		if err != nil {
			return Operator{}, err
		}
		src, err := s.r.ReadU32()
		if err != nil {
			return Operator{}, err
		}
		return Operator{Op: op, Idx: dst, Idx2: src}, nil

	case MiscMemoryFill:
		mem, err := s.r.ReadU32()
		if err != nil {
			return Operator{}, err
		}
		return Operator{Op: op, Idx: mem}, nil

	case MiscTableInit:
		elem, err := s.r.ReadU32()
		if err != nil {
			return Operator{}, err
		}
		table, err := s.r.ReadU32()
		if err != nil {
			return Operator{}, err
		}
		return Operator{Op: op, Idx: elem, Idx2: table}, nil

	case MiscElemDrop:
		elem, err := s.r.ReadU32()
		if err != nil {
			return Operator{}, err
		}
		return Operator{Op: op, Idx: elem}, nil

	case MiscTableCopy:
		dst, err := s.r.ReadU32()
		if err != nil {
			return Operator{}, err
		}
		src, err := s.r.ReadU32()
		if err != nil {
			return Operator{}, err
		}
		return Operator{Op: op, Idx: dst, Idx2: src}, nil

	case MiscTableGrow, MiscTableSize, MiscTableFill:
		table, err := s.r.ReadU32()
		if err != nil {
			return Operator{}, err
		}
		return Operator{Op: op, Idx: table}, nil

	default:
		return Operator{}, fmt.Errorf("unrecognized misc sub-opcode 0x%x", sub)
	}
}

func (s *OperatorSource) decodeAtomic() (Operator, error) {
	sub, err := s.r.ReadU32()
	if err != nil {
		return Operator{}, err
	}
	op := atomicBand | sub
	if sub == AtomicFenceOp {
		flags, err := s.r.ReadByte()
		if err != nil {
			return Operator{}, err
		}
		return Operator{Op: op, Reserved: flags}, nil
	}
	ma, err := s.readMemArg()
	if err != nil {
		return Operator{}, err
	}
	return Operator{Op: op, MemArg: ma}, nil
}

func (s *OperatorSource) decodeSimd() (Operator, error) {
	sub, err := s.r.ReadU32()
	if err != nil {
		return Operator{}, err
	}
	op := simdBand | sub
	switch sub {
	case SimdV128Load, SimdV128Load8x8S, SimdV128Load8x8U, SimdV128Load16x4S, SimdV128Load16x4U,
		SimdV128Load32x2S, SimdV128Load32x2U, SimdV128Load8Splat, SimdV128Load16Splat,
		SimdV128Load32Splat, SimdV128Load64Splat, SimdV128Store, SimdV128Load32Zero, SimdV128Load64Zero:
		ma, err := s.readMemArg()
		if err != nil {
			return Operator{}, err
		}
		return Operator{Op: op, MemArg: ma}, nil

	case SimdV128Const:
		var v [16]byte
		buf, err := s.r.ReadBytes(16)
		if err != nil {
			return Operator{}, err
		}
		copy(v[:], buf)
		return Operator{Op: op, V128: v}, nil

	case SimdI8x16Shuffle:
		var lanes [16]byte
		buf, err := s.r.ReadBytes(16)
		if err != nil {
			return Operator{}, err
		}
		copy(lanes[:], buf)
		return Operator{Op: op, Lanes: lanes}, nil

	case SimdI8x16ExtractLaneS, SimdI8x16ExtractLaneU, SimdI8x16ReplaceLane,
		SimdI16x8ExtractLaneS, SimdI16x8ExtractLaneU, SimdI16x8ReplaceLane,
		SimdI32x4ExtractLane, SimdI32x4ReplaceLane,
		SimdI64x2ExtractLane, SimdI64x2ReplaceLane,
		SimdF32x4ExtractLane, SimdF32x4ReplaceLane,
		SimdF64x2ExtractLane, SimdF64x2ReplaceLane:
		lane, err := s.r.ReadByte()
		if err != nil {
			return Operator{}, err
		}
		return Operator{Op: op, Lane: lane}, nil

	default:
		// Splats, comparisons, arithmetic, saturating arithmetic,
		// narrowing, widen-low/high and bitselect take no immediate
		// beyond the sub-opcode.
		return Operator{Op: op}, nil
	}
}

func readFloat32(r io.ByteReader) (float32, error) {
	var buf [4]byte
	for i := range buf {
		b, err := r.ReadByte()
		if err != nil {
			return 0, err
		}
		buf[i] = b
	}
	return bitsToFloat32(buf), nil
}

func readFloat64(r io.ByteReader) (float64, error) {
	var buf [8]byte
	for i := range buf {
		b, err := r.ReadByte()
		if err != nil {
			return 0, err
		}
		buf[i] = b
	}
	return bitsToFloat64(buf), nil
}
