package wasm

// Module preamble.
const (
	Magic   uint32 = 0x6d736100 // "\0asm" little-endian
	Version uint32 = 1
)

// Section ids.
const (
	SectionCustom byte = iota
	SectionType
	SectionImport
	SectionFunction
	SectionTable
	SectionMemory
	SectionGlobal
	SectionExport
	SectionStart
	SectionElement
	SectionCode
	SectionData
	SectionDataCount
)

// Import/export kinds.
const (
	KindFunc byte = iota
	KindTable
	KindMemory
	KindGlobal
)

// Value type encoding bytes, restricted to the types this validator's
// supported proposal set can produce: numerics, v128, and the two
// reference types (funcref, externref).
const (
	ValI32       byte = 0x7F
	ValI64       byte = 0x7E
	ValF32       byte = 0x7D
	ValF64       byte = 0x7C
	ValV128      byte = 0x7B
	ValFuncRef   byte = 0x70
	ValExternRef byte = 0x6F
)

// BlockTypeEmpty is the block type byte meaning "no params, no results".
const BlockTypeEmpty int64 = -0x40

const FuncTypeByte byte = 0x60

// Control flow opcodes.
const (
	OpUnreachable  byte = 0x00
	OpNop          byte = 0x01
	OpBlock        byte = 0x02
	OpLoop         byte = 0x03
	OpIf           byte = 0x04
	OpElse         byte = 0x05
	OpEnd          byte = 0x0B
	OpBr           byte = 0x0C
	OpBrIf         byte = 0x0D
	OpBrTable      byte = 0x0E
	OpReturn       byte = 0x0F
	OpCall         byte = 0x10
	OpCallIndirect byte = 0x11
)

// Parametric and variable instructions.
const (
	OpDrop      byte = 0x1A
	OpSelect    byte = 0x1B
	OpSelectT   byte = 0x1C
	OpLocalGet  byte = 0x20
	OpLocalSet  byte = 0x21
	OpLocalTee  byte = 0x22
	OpGlobalGet byte = 0x23
	OpGlobalSet byte = 0x24
	OpTableGet  byte = 0x25
	OpTableSet  byte = 0x26
)

// Memory instructions (0x28-0x40).
const (
	OpI32Load    byte = 0x28
	OpI64Load    byte = 0x29
	OpF32Load    byte = 0x2A
	OpF64Load    byte = 0x2B
	OpI32Load8S  byte = 0x2C
	OpI32Load8U  byte = 0x2D
	OpI32Load16S byte = 0x2E
	OpI32Load16U byte = 0x2F
	OpI64Load8S  byte = 0x30
	OpI64Load8U  byte = 0x31
	OpI64Load16S byte = 0x32
	OpI64Load16U byte = 0x33
	OpI64Load32S byte = 0x34
	OpI64Load32U byte = 0x35
	OpI32Store   byte = 0x36
	OpI64Store   byte = 0x37
	OpF32Store   byte = 0x38
	OpF64Store   byte = 0x39
	OpI32Store8  byte = 0x3A
	OpI32Store16 byte = 0x3B
	OpI64Store8  byte = 0x3C
	OpI64Store16 byte = 0x3D
	OpI64Store32 byte = 0x3E
	OpMemorySize byte = 0x3F
	OpMemoryGrow byte = 0x40
)

// Constants and the numeric opcode matrix (0x41-0xC4).
const (
	OpI32Const byte = 0x41
	OpI64Const byte = 0x42
	OpF32Const byte = 0x43
	OpF64Const byte = 0x44

	OpI32Eqz byte = 0x45
	OpI32Eq  byte = 0x46
	OpI32Ne  byte = 0x47
	OpI32LtS byte = 0x48
	OpI32LtU byte = 0x49
	OpI32GtS byte = 0x4A
	OpI32GtU byte = 0x4B
	OpI32LeS byte = 0x4C
	OpI32LeU byte = 0x4D
	OpI32GeS byte = 0x4E
	OpI32GeU byte = 0x4F

	OpI64Eqz byte = 0x50
	OpI64Eq  byte = 0x51
	OpI64Ne  byte = 0x52
	OpI64LtS byte = 0x53
	OpI64LtU byte = 0x54
	OpI64GtS byte = 0x55
	OpI64GtU byte = 0x56
	OpI64LeS byte = 0x57
	OpI64LeU byte = 0x58
	OpI64GeS byte = 0x59
	OpI64GeU byte = 0x5A

	OpF32Eq byte = 0x5B
	OpF32Ne byte = 0x5C
	OpF32Lt byte = 0x5D
	OpF32Gt byte = 0x5E
	OpF32Le byte = 0x5F
	OpF32Ge byte = 0x60

	OpF64Eq byte = 0x61
	OpF64Ne byte = 0x62
	OpF64Lt byte = 0x63
	OpF64Gt byte = 0x64
	OpF64Le byte = 0x65
	OpF64Ge byte = 0x66

	OpI32Clz    byte = 0x67
	OpI32Ctz    byte = 0x68
	OpI32Popcnt byte = 0x69
	OpI32Add    byte = 0x6A
	OpI32Sub    byte = 0x6B
	OpI32Mul    byte = 0x6C
	OpI32DivS   byte = 0x6D
	OpI32DivU   byte = 0x6E
	OpI32RemS   byte = 0x6F
	OpI32RemU   byte = 0x70
	OpI32And    byte = 0x71
	OpI32Or     byte = 0x72
	OpI32Xor    byte = 0x73
	OpI32Shl    byte = 0x74
	OpI32ShrS   byte = 0x75
	OpI32ShrU   byte = 0x76
	OpI32Rotl   byte = 0x77
	OpI32Rotr   byte = 0x78

	OpI64Clz    byte = 0x79
	OpI64Ctz    byte = 0x7A
	OpI64Popcnt byte = 0x7B
	OpI64Add    byte = 0x7C
	OpI64Sub    byte = 0x7D
	OpI64Mul    byte = 0x7E
	OpI64DivS   byte = 0x7F
	OpI64DivU   byte = 0x80
	OpI64RemS   byte = 0x81
	OpI64RemU   byte = 0x82
	OpI64And    byte = 0x83
	OpI64Or     byte = 0x84
	OpI64Xor    byte = 0x85
	OpI64Shl    byte = 0x86
	OpI64ShrS   byte = 0x87
	OpI64ShrU   byte = 0x88
	OpI64Rotl   byte = 0x89
	OpI64Rotr   byte = 0x8A

	OpF32Abs      byte = 0x8B
	OpF32Neg      byte = 0x8C
	OpF32Ceil     byte = 0x8D
	OpF32Floor    byte = 0x8E
	OpF32Trunc    byte = 0x8F
	OpF32Nearest  byte = 0x90
	OpF32Sqrt     byte = 0x91
	OpF32Add      byte = 0x92
	OpF32Sub      byte = 0x93
	OpF32Mul      byte = 0x94
	OpF32Div      byte = 0x95
	OpF32Min      byte = 0x96
	OpF32Max      byte = 0x97
	OpF32Copysign byte = 0x98

	OpF64Abs      byte = 0x99
	OpF64Neg      byte = 0x9A
	OpF64Ceil     byte = 0x9B
	OpF64Floor    byte = 0x9C
	OpF64Trunc    byte = 0x9D
	OpF64Nearest  byte = 0x9E
	OpF64Sqrt     byte = 0x9F
	OpF64Add      byte = 0xA0
	OpF64Sub      byte = 0xA1
	OpF64Mul      byte = 0xA2
	OpF64Div      byte = 0xA3
	OpF64Min      byte = 0xA4
	OpF64Max      byte = 0xA5
	OpF64Copysign byte = 0xA6

	OpI32WrapI64        byte = 0xA7
	OpI32TruncF32S      byte = 0xA8
	OpI32TruncF32U      byte = 0xA9
	OpI32TruncF64S      byte = 0xAA
	OpI32TruncF64U      byte = 0xAB
	OpI64ExtendI32S     byte = 0xAC
	OpI64ExtendI32U     byte = 0xAD
	OpI64TruncF32S      byte = 0xAE
	OpI64TruncF32U      byte = 0xAF
	OpI64TruncF64S      byte = 0xB0
	OpI64TruncF64U      byte = 0xB1
	OpF32ConvertI32S    byte = 0xB2
	OpF32ConvertI32U    byte = 0xB3
	OpF32ConvertI64S    byte = 0xB4
	OpF32ConvertI64U    byte = 0xB5
	OpF32DemoteF64      byte = 0xB6
	OpF64ConvertI32S    byte = 0xB7
	OpF64ConvertI32U    byte = 0xB8
	OpF64ConvertI64S    byte = 0xB9
	OpF64ConvertI64U    byte = 0xBA
	OpF64PromoteF32     byte = 0xBB
	OpI32ReinterpretF32 byte = 0xBC
	OpI64ReinterpretF64 byte = 0xBD
	OpF32ReinterpretI32 byte = 0xBE
	OpF64ReinterpretI64 byte = 0xBF

	// Sign-extension proposal.
	OpI32Extend8S  byte = 0xC0
	OpI32Extend16S byte = 0xC1
	OpI64Extend8S  byte = 0xC2
	OpI64Extend16S byte = 0xC3
	OpI64Extend32S byte = 0xC4
)

// Reference-types proposal opcodes.
const (
	OpRefNull   byte = 0xD0
	OpRefIsNull byte = 0xD1
	OpRefFunc   byte = 0xD2
)

// Prefix bytes introducing a LEB128 sub-opcode.
const (
	OpPrefixMisc   byte = 0xFC // non-trapping float-to-int, bulk memory, table ops
	OpPrefixSIMD   byte = 0xFD // fixed-width SIMD
	OpPrefixAtomic byte = 0xFE // threads/atomics
)

// Misc (0xFC) sub-opcodes: non-trapping float-to-int conversions, then
// bulk-memory and reference-types-proposal table operations.
const (
	MiscI32TruncSatF32S uint32 = iota
	MiscI32TruncSatF32U
	MiscI32TruncSatF64S
	MiscI32TruncSatF64U
	MiscI64TruncSatF32S
	MiscI64TruncSatF32U
	MiscI64TruncSatF64S
	MiscI64TruncSatF64U
	MiscMemoryInit
	MiscDataDrop
	MiscMemoryCopy
	MiscMemoryFill
	MiscTableInit
	MiscElemDrop
	MiscTableCopy
	MiscTableGrow
	MiscTableSize
	MiscTableFill
)

// Atomic (0xFE) sub-opcodes. The rmw/cmpxchg matrix repeats the same
// shape across seven memory widths per operator (add/sub/and/or/xor/xchg,
// plus cmpxchg); operator.go decodes the whole documented range
// numerically rather than naming all ~60 entries.
const (
	AtomicNotify       uint32 = 0x00
	AtomicWait32       uint32 = 0x01
	AtomicWait64       uint32 = 0x02
	AtomicFenceOp      uint32 = 0x03
	AtomicI32Load      uint32 = 0x10
	AtomicI64Load      uint32 = 0x11
	AtomicI32Load8U    uint32 = 0x12
	AtomicI32Load16U   uint32 = 0x13
	AtomicI64Load8U    uint32 = 0x14
	AtomicI64Load16U   uint32 = 0x15
	AtomicI64Load32U   uint32 = 0x16
	AtomicI32Store     uint32 = 0x17
	AtomicI64Store     uint32 = 0x18
	AtomicI32Store8    uint32 = 0x19
	AtomicI32Store16   uint32 = 0x1A
	AtomicI64Store8    uint32 = 0x1B
	AtomicI64Store16   uint32 = 0x1C
	AtomicI64Store32   uint32 = 0x1D
	AtomicRMWStart     uint32 = 0x1E // first of the add/sub/and/or/xor/xchg matrix
	AtomicRMWEnd       uint32 = 0x4E // last cmpxchg variant (i64.atomic.rmw32.cmpxchg_u)
	AtomicCmpxchgStart uint32 = 0x48
)

// SIMD (0xFD) sub-opcodes this decoder distinguishes by name; everything
// within the arithmetic/comparison/narrow/widen ranges decodes through
// the generic shape families keyed on sub-opcode value (see operator.go).
const (
	SimdV128Load          uint32 = 0x00
	SimdV128Load8x8S      uint32 = 0x01
	SimdV128Load8x8U      uint32 = 0x02
	SimdV128Load16x4S     uint32 = 0x03
	SimdV128Load16x4U     uint32 = 0x04
	SimdV128Load32x2S     uint32 = 0x05
	SimdV128Load32x2U     uint32 = 0x06
	SimdV128Load8Splat    uint32 = 0x07
	SimdV128Load16Splat   uint32 = 0x08
	SimdV128Load32Splat   uint32 = 0x09
	SimdV128Load64Splat   uint32 = 0x0A
	SimdV128Store         uint32 = 0x0B
	SimdV128Const         uint32 = 0x0C
	SimdI8x16Shuffle      uint32 = 0x0D
	SimdI8x16Swizzle      uint32 = 0x0E
	SimdI8x16Splat        uint32 = 0x0F
	SimdI16x8Splat        uint32 = 0x10
	SimdI32x4Splat        uint32 = 0x11
	SimdI64x2Splat        uint32 = 0x12
	SimdF32x4Splat        uint32 = 0x13
	SimdF64x2Splat        uint32 = 0x14
	SimdI8x16ExtractLaneS uint32 = 0x15
	SimdI8x16ExtractLaneU uint32 = 0x16
	SimdI8x16ReplaceLane  uint32 = 0x17
	SimdI16x8ExtractLaneS uint32 = 0x18
	SimdI16x8ExtractLaneU uint32 = 0x19
	SimdI16x8ReplaceLane  uint32 = 0x1A
	SimdI32x4ExtractLane  uint32 = 0x1B
	SimdI32x4ReplaceLane  uint32 = 0x1C
	SimdI64x2ExtractLane  uint32 = 0x1D
	SimdI64x2ReplaceLane  uint32 = 0x1E
	SimdF32x4ExtractLane  uint32 = 0x1F
	SimdF32x4ReplaceLane  uint32 = 0x20
	SimdF64x2ExtractLane  uint32 = 0x21
	SimdF64x2ReplaceLane  uint32 = 0x22
	SimdV128Bitselect     uint32 = 0x52
	SimdV128Load32Zero    uint32 = 0x5C
	SimdV128Load64Zero    uint32 = 0x5D
)

// SIMD reduction and test sub-opcodes: these push i32 (a boolean or a lane
// bitmask) instead of the v128,v128->v128 shape most of the arithmetic and
// comparison matrix shares, so the validator special-cases them by name
// rather than relying on the generic default bucket.
const (
	SimdV128AnyTrue      uint32 = 0x53
	SimdI8x16AllTrue     uint32 = 0x63
	SimdI8x16Bitmask     uint32 = 0x64
	SimdI16x8AllTrue     uint32 = 0x83
	SimdI16x8Bitmask     uint32 = 0x84
	SimdI32x4AllTrue     uint32 = 0xA3
	SimdI32x4Bitmask     uint32 = 0xA4
	SimdI64x2AllTrue     uint32 = 0xC3
	SimdI64x2Bitmask     uint32 = 0xC4
)

// SIMD unary (v128 -> v128) sub-opcodes the validator distinguishes from
// the binary (v128, v128 -> v128) default: negation, absolute value,
// population count, rounding, sqrt, and the widen/extend/convert/truncate
// families that change lane interpretation but stay single-operand.
const (
	SimdI8x16Neg      uint32 = 0x61
	SimdI8x16Abs      uint32 = 0x60
	SimdI8x16Popcnt   uint32 = 0x62
	SimdI16x8Neg      uint32 = 0x81
	SimdI16x8Abs      uint32 = 0x80
	SimdI32x4Neg      uint32 = 0xA1
	SimdI32x4Abs      uint32 = 0xA0
	SimdI64x2Neg      uint32 = 0xC1
	SimdI64x2Abs      uint32 = 0xC0
	SimdF32x4Neg      uint32 = 0xE1
	SimdF32x4Abs      uint32 = 0xE0
	SimdF32x4Sqrt     uint32 = 0xE3
	SimdF32x4Ceil     uint32 = 0x67
	SimdF32x4Floor    uint32 = 0x68
	SimdF32x4Trunc    uint32 = 0x69
	SimdF32x4Nearest  uint32 = 0x6A
	SimdF64x2Abs      uint32 = 0xEC
	SimdF64x2Neg      uint32 = 0xED
	SimdF64x2Sqrt     uint32 = 0xEF
	SimdV128Not       uint32 = 0x4D
	SimdI16x8WidenLowI8x16S  uint32 = 0x87
	SimdI16x8WidenHighI8x16S uint32 = 0x88
	SimdI16x8WidenLowI8x16U  uint32 = 0x89
	SimdI16x8WidenHighI8x16U uint32 = 0x8A
	SimdI32x4WidenLowI16x8S  uint32 = 0xA7
	SimdI32x4WidenHighI16x8S uint32 = 0xA8
	SimdI32x4WidenLowI16x8U  uint32 = 0xA9
	SimdI32x4WidenHighI16x8U uint32 = 0xAA
	SimdI32x4TruncSatF32x4S  uint32 = 0xF8
	SimdI32x4TruncSatF32x4U  uint32 = 0xF9
	SimdF32x4ConvertI32x4S   uint32 = 0xFA
	SimdF32x4ConvertI32x4U   uint32 = 0xFB
)

// SIMD shift sub-opcodes: these pop a v128 and an i32 shift count rather
// than two v128 operands, so the validator distinguishes them from the
// rest of the binary arithmetic/comparison matrix.
const (
	SimdI8x16Shl  uint32 = 0x6B
	SimdI8x16ShrS uint32 = 0x6C
	SimdI8x16ShrU uint32 = 0x6D
	SimdI16x8Shl  uint32 = 0x8B
	SimdI16x8ShrS uint32 = 0x8C
	SimdI16x8ShrU uint32 = 0x8D
	SimdI32x4Shl  uint32 = 0xAB
	SimdI32x4ShrS uint32 = 0xAC
	SimdI32x4ShrU uint32 = 0xAD
	SimdI64x2Shl  uint32 = 0xCB
	SimdI64x2ShrS uint32 = 0xCC
	SimdI64x2ShrU uint32 = 0xCD
)

// MemArgMultiMemBit marks the high bit of the alignment LEB128 as carrying
// an explicit memory index (multi-memory proposal); unset means memory 0.
const MemArgMultiMemBit uint32 = 0x40
