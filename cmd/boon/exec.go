package main

import (
	"fmt"

	"github.com/BoonLang/boon-sub004/ast"
	"github.com/BoonLang/boon-sub004/compiler"
	"github.com/BoonLang/boon-sub004/engine"
	"github.com/BoonLang/boon-sub004/host"
	"github.com/BoonLang/boon-sub004/internal/arena"
)

// execOptions bundles the run/eval/test subcommands' shared tick-bound and
// root-resolution flags (spec.md §6).
type execOptions struct {
	Ticks     int
	Ms        int
	UntilIdle bool
	Root      string
}

// defaultMaxTicks bounds --until-idle the way engine.RunUntilIdle's own
// maxTicks parameter requires one; a program that never quiesces within
// this many ticks is treated as a runtime error, not an infinite CLI hang.
const defaultMaxTicks = 10000

// execDocument decodes data as a JSON AST document (a full program, unless
// asExpr selects the single-expression form `boon eval` uses), compiles
// it, drives the engine per opts, and renders the resolved root binding's
// current value as structured text.
func execDocument(data []byte, asExpr bool, opts execOptions) (string, error) {
	var prog *ast.Program
	var err error
	if asExpr {
		prog, err = decodeExprProgram(data)
	} else {
		prog, err = decodeProgram(data)
	}
	if err != nil {
		return "", err
	}

	loop := engine.New(&host.RecordingAdapter{})
	c := compiler.New(loop)
	compiled, err := c.Compile(prog)
	if err != nil {
		return "", fmt.Errorf("compile: %w", err)
	}

	if err := driveEngine(loop, opts); err != nil {
		return "", fmt.Errorf("run: %w", err)
	}

	root, err := resolveRoot(compiled, opts.Root)
	if err != nil {
		return "", err
	}

	v, ok := loop.Value(root)
	if !ok {
		return "", fmt.Errorf("run: root binding has not produced a value")
	}
	return renderPayload(loop, c, v), nil
}

// driveEngine runs loop forward per opts. --until-idle runs to
// quiescence; otherwise it runs a fixed number of ticks. The engine has no
// wall-clock-to-tick scaling (its Clock option only affects timestamps it
// exposes, never propagation order — see engine/options.go), so --ms is
// treated identically to --ticks here: both bound a tick count, and
// whichever of the two is larger wins when both are given (see
// DESIGN.md).
func driveEngine(loop *engine.Loop, opts execOptions) error {
	if opts.UntilIdle {
		_, err := loop.RunUntilIdle(defaultMaxTicks)
		return err
	}
	n := opts.Ticks
	if opts.Ms > n {
		n = opts.Ms
	}
	if n <= 0 {
		n = 1
	}
	for i := 0; i < n; i++ {
		if err := loop.Tick(); err != nil {
			return err
		}
	}
	return nil
}

// resolveRoot implements spec.md §6's root-binding precedence: an explicit
// --root name, then a "document" binding, then a "result" binding, then
// the program's last top-level binding.
func resolveRoot(compiled *compiler.Program, explicit string) (arena.SlotId, error) {
	if explicit != "" {
		slot, ok := compiled.Bindings[explicit]
		if !ok {
			return arena.NilSlot, fmt.Errorf("--root %q: no such top-level binding", explicit)
		}
		return slot, nil
	}
	if slot, ok := compiled.Bindings["document"]; ok {
		return slot, nil
	}
	if slot, ok := compiled.Bindings["result"]; ok {
		return slot, nil
	}
	if compiled.Root.Invalid() {
		return arena.NilSlot, fmt.Errorf("program has no top-level bindings")
	}
	return compiled.Root, nil
}
