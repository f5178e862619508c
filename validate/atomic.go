package validate

import (
	"github.com/wasmkit/wazir/ir"
	"github.com/wasmkit/wazir/wasm"
)

// atomicLoadStoreType names the value type of the fourteen explicitly
// numbered atomic load/store sub-opcodes.
func atomicLoadStoreType(sub uint32) (ir.ValType, bool) {
	switch sub {
	case wasm.AtomicI32Load, wasm.AtomicI32Load8U, wasm.AtomicI32Load16U,
		wasm.AtomicI32Store, wasm.AtomicI32Store8, wasm.AtomicI32Store16:
		return ir.I32, true
	case wasm.AtomicI64Load, wasm.AtomicI64Load8U, wasm.AtomicI64Load16U, wasm.AtomicI64Load32U,
		wasm.AtomicI64Store, wasm.AtomicI64Store8, wasm.AtomicI64Store16, wasm.AtomicI64Store32:
		return ir.I64, true
	}
	return 0, false
}

func isAtomicStore(sub uint32) bool {
	switch sub {
	case wasm.AtomicI32Store, wasm.AtomicI32Store8, wasm.AtomicI32Store16,
		wasm.AtomicI64Store, wasm.AtomicI64Store8, wasm.AtomicI64Store16, wasm.AtomicI64Store32:
		return true
	}
	return false
}

// atomicRMWValType derives the logical value type (i32 or i64) of an
// atomic read-modify-write or compare-exchange sub-opcode from its
// position in the canonical threads-proposal opcode table: both the rmw
// matrix (starting at AtomicRMWStart) and the cmpxchg matrix (starting at
// AtomicCmpxchgStart) cycle the same seven-entry pattern - the 32-bit op,
// the 64-bit op, then five narrower-access variants - per arithmetic
// operator.
func atomicRMWValType(sub uint32) ir.ValType {
	var rel uint32
	if sub >= wasm.AtomicCmpxchgStart {
		rel = (sub - wasm.AtomicCmpxchgStart) % 7
	} else {
		rel = (sub - wasm.AtomicRMWStart) % 7
	}
	switch rel {
	case 0, 2, 3:
		return ir.I32
	default:
		return ir.I64
	}
}

func isAtomicCmpxchg(sub uint32) bool {
	return sub >= wasm.AtomicCmpxchgStart
}
