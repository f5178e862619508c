package validate

import (
	"fmt"

	"github.com/wasmkit/wazir/ir"
	"github.com/wasmkit/wazir/wasm"
	"go.uber.org/zap"
)

// ValidateModule decodes and validates every locally-defined function body
// in m (imported functions have no Code entry and are skipped), returning
// one *Function per entry in m.Code, in order. The module-level machinery
// (type table, index resolution, byte decode of the operator stream) is
// m's own concern; this is only the per-function wiring that hands each
// body to Parse.
func ValidateModule(m *wasm.Module) ([]*Function, error) {
	out := make([]*Function, len(m.Code))
	for i, body := range m.Code {
		funcIdx := uint32(m.NumImportedFuncs + i)
		if int(funcIdx) >= len(m.FuncTypes) {
			return nil, fmt.Errorf("code entry %d: no matching function-section entry", i)
		}
		typeIdx := m.FuncTypes[funcIdx]
		if int(typeIdx) >= len(m.Types) {
			return nil, fmt.Errorf("function %d: type index %d out of range", funcIdx, typeIdx)
		}
		ty := m.Types[typeIdx]

		fn, err := ValidateFunction(m, funcIdx, ty.Params, ty.Results, body)
		if err != nil {
			Logger().Debug("function rejected", zap.Uint32("func", funcIdx), zap.Error(err))
			return nil, fmt.Errorf("function %d: %w", funcIdx, err)
		}
		out[i] = fn
	}
	return out, nil
}

// ValidateFunction validates one function body in isolation, given the
// already-resolved parameter and result types of its signature.
func ValidateFunction(m *wasm.Module, funcIdx uint32, params, results []ir.ValType, body wasm.FuncBody) (*Function, error) {
	resolver := wasm.NewFuncContext(m, funcIdx, params, body.Locals)
	src := wasm.NewOperatorSource(body.Code, body.Offset)
	return Parse(src, resolver, resolver, results)
}
