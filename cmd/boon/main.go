// Command boon is the Boon reactive engine's CLI harness: compile and run
// a program (`run`), evaluate a single inline expression (`eval`), and run
// golden-file regression suites (`test`) (spec.md §6).
package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
)

// CLI is the top-level kong command tree. LogFormat is a global flag
// (ahead of any subcommand) selecting this package's own diagnostic
// logger's backend; it does not affect the engine's internal tick logger
// (see logging.go).
type CLI struct {
	LogFormat string  `name:"log-format" help:"diagnostics sink: stumpy or logrus." enum:"stumpy,logrus" default:"stumpy"`
	Run       RunCmd  `cmd:"" help:"Compile and run a program document, printing its resolved root binding."`
	Eval      EvalCmd `cmd:"" help:"Compile and run a single inline expression document."`
	Test      TestCmd `cmd:"" help:"Run one or more golden test files."`
}

// RunCmd implements `boon run <file>`.
type RunCmd struct {
	File      string `arg:"" type:"existingfile" help:"Path to a JSON AST program document."`
	Ticks     int    `help:"Run this many ticks." default:"0"`
	Ms        int    `help:"Run at least this many ticks (treated identically to --ticks; see DESIGN.md)." default:"0"`
	UntilIdle bool   `name:"until-idle" help:"Run until the engine reaches quiescence instead of a fixed tick count."`
	Root      string `help:"Explicit root binding name, overriding document/result/last-binding precedence."`
}

func (r *RunCmd) Run(log *cliLogger) error {
	data, err := os.ReadFile(r.File)
	if err != nil {
		return err
	}
	out, err := execDocument(data, false, execOptions{Ticks: r.Ticks, Ms: r.Ms, UntilIdle: r.UntilIdle, Root: r.Root})
	if err != nil {
		log.Error("run failed", field("file", r.File), field("error", err.Error()))
		return err
	}
	fmt.Println(out)
	return nil
}

// EvalCmd implements `boon eval <expr>`.
type EvalCmd struct {
	Expr      string `arg:"" help:"Inline JSON expression document."`
	Ticks     int    `help:"Run this many ticks." default:"0"`
	Ms        int    `help:"Run at least this many ticks (treated identically to --ticks; see DESIGN.md)." default:"0"`
	UntilIdle bool   `name:"until-idle" help:"Run until the engine reaches quiescence instead of a fixed tick count."`
	Root      string `help:"Explicit root binding name, overriding document/result/last-binding precedence."`
}

func (e *EvalCmd) Run(log *cliLogger) error {
	out, err := execDocument([]byte(e.Expr), true, execOptions{Ticks: e.Ticks, Ms: e.Ms, UntilIdle: e.UntilIdle, Root: e.Root})
	if err != nil {
		log.Error("eval failed", field("error", err.Error()))
		return err
	}
	fmt.Println(out)
	return nil
}

// TestCmd implements `boon test <files...>`.
type TestCmd struct {
	Files  []string `arg:"" type:"existingfile" help:"Golden test files."`
	Update bool     `help:"Rewrite each file's expect blocks with actual output instead of comparing."`
}

func (t *TestCmd) Run(log *cliLogger) error {
	failed := 0
	for _, path := range t.Files {
		ok, err := runGoldenFile(log, path, t.Update)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		if !ok {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d golden test file(s) failed", failed, len(t.Files))
	}
	return nil
}

func main() {
	os.Exit(run(os.Args[1:]))
}

// run parses args and dispatches to the selected subcommand, mapping
// kong's own parse-time validation (missing/invalid flags, a file
// argument that doesn't exist) to exit code 2 (usage error) and any
// error a subcommand's Run returns to exit code 1 (spec.md §6).
func run(args []string) int {
	var cli CLI
	parser, err := kong.New(&cli,
		kong.Name("boon"),
		kong.Description("Boon reactive engine CLI: run, eval, and golden-test a compiled program."),
	)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	ctx, err := parser.Parse(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	log := newCLILogger(cli.LogFormat)
	if err := ctx.Run(log); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
