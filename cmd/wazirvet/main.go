// Command wazirvet decodes and validates every function body in a Wasm
// binary module, reporting per-function instruction counts and rejections.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/tetratelabs/wazero"
	"golang.org/x/term"

	"github.com/wasmkit/wazir/validate"
	"github.com/wasmkit/wazir/wasm"
)

func main() {
	var (
		wasmFile    = flag.String("wasm", "", "path to a core Wasm binary module")
		crossCheck  = flag.Bool("cross-check", false, "additionally compile the module with wazero and compare accept/reject")
		interactive = flag.Bool("i", false, "browse validated functions in a TUI")
	)
	flag.Parse()

	if *wasmFile == "" {
		fmt.Fprintln(os.Stderr, "Usage: wazirvet -wasm <file.wasm> [-cross-check] [-i]")
		os.Exit(1)
	}

	data, err := os.ReadFile(*wasmFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read file: %v\n", err)
		os.Exit(1)
	}

	m, err := wasm.Decode(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "decode: %v\n", err)
		os.Exit(1)
	}

	funcs, err := validate.ValidateModule(m)
	if err != nil {
		fmt.Fprintf(os.Stderr, "validate: %v\n", err)
		if *crossCheck {
			reportCrossCheck(data, err)
		}
		os.Exit(1)
	}

	fmt.Printf("%s: %d functions (%d imported), %d types, %d data segments\n",
		*wasmFile, m.NumFuncs(), m.NumImportedFuncs, len(m.Types), m.DataCount)

	for i, fn := range funcs {
		funcIdx := m.NumImportedFuncs + i
		fmt.Printf("  func[%d]: %d instructions, const=%v, used data=%v\n",
			funcIdx, fn.Size(), fn.IsConst(), fn.UsedDataSegments())
	}

	if *crossCheck {
		reportCrossCheck(data, nil)
	}

	if *interactive {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Fprintln(os.Stderr, "interactive: stdout is not a terminal, skipping -i")
			os.Exit(1)
		}
		if err := runInteractive(*wasmFile, m, funcs); err != nil {
			fmt.Fprintf(os.Stderr, "interactive: %v\n", err)
			os.Exit(1)
		}
	}
}

// reportCrossCheck compiles data with wazero, whose own decoder performs
// the same structural validation the reference Wasm spec requires, and
// prints whether its verdict agrees with ours. ownErr is nil when this
// validator accepted the module.
func reportCrossCheck(data []byte, ownErr error) {
	ctx := context.Background()
	rt := wazero.NewRuntime(ctx)
	defer rt.Close(ctx)

	_, wazeroErr := rt.CompileModule(ctx, data)

	switch {
	case ownErr == nil && wazeroErr == nil:
		fmt.Println("cross-check: wazero also accepted")
	case ownErr != nil && wazeroErr != nil:
		fmt.Printf("cross-check: wazero also rejected: %v\n", wazeroErr)
	case ownErr == nil && wazeroErr != nil:
		fmt.Printf("cross-check: DISAGREEMENT - this validator accepted, wazero rejected: %v\n", wazeroErr)
	default:
		fmt.Printf("cross-check: DISAGREEMENT - this validator rejected, wazero accepted\n")
	}
}
