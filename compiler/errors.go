package compiler

import (
	"fmt"

	"github.com/BoonLang/boon-sub004/internal/addr"
)

// CompileError is implemented by every typed compile-time diagnostic
// (spec.md §4.7 "Compile errors", §7 "Compile-time errors"). Grounded on
// the teacher's errors.go pattern of concrete typed error structs rather
// than bare errors.New sentinels, so callers can errors.As into the
// specific cause.
type CompileError interface {
	error
	// Span returns the source construct the error was raised against.
	Span() addr.SourceId
}

// PassedNotAvailable is raised when PASSED (or PASSED.a.b) is referenced
// outside any PASS context (spec.md §4.7 "PASS/PASSED": "Use outside a PASS
// context is a compile error").
type PassedNotAvailable struct {
	Source addr.SourceId
}

func (e *PassedNotAvailable) Error() string {
	return fmt.Sprintf("compiler: %s: PASSED referenced outside a PASS context", e.Source)
}
func (e *PassedNotAvailable) Span() addr.SourceId { return e.Source }

// UnknownVariable is raised when a Variable fails to resolve through
// locals, parameters, and module-level lookups, in that order (spec.md
// §4.7 "Scope/parameter handling").
type UnknownVariable struct {
	Source addr.SourceId
	Name   string
}

func (e *UnknownVariable) Error() string {
	return fmt.Sprintf("compiler: %s: unknown variable %q", e.Source, e.Name)
}
func (e *UnknownVariable) Span() addr.SourceId { return e.Source }

// UnknownFunction is raised when a FunctionCall's Path resolves neither to
// a builtin nor to a user-defined Function.
type UnknownFunction struct {
	Source addr.SourceId
	Path   string
}

func (e *UnknownFunction) Error() string {
	return fmt.Sprintf("compiler: %s: unknown function %q", e.Source, e.Path)
}
func (e *UnknownFunction) Span() addr.SourceId { return e.Source }

// TypeMismatch is raised when an expression's compile-time-known shape
// cannot satisfy its use (e.g. field access on a value with no known field
// map, a builtin called with a payload kind it cannot combine).
type TypeMismatch struct {
	Source addr.SourceId
	Detail string
}

func (e *TypeMismatch) Error() string {
	return fmt.Sprintf("compiler: %s: type mismatch: %s", e.Source, e.Detail)
}
func (e *TypeMismatch) Span() addr.SourceId { return e.Source }

// WidthMismatch is raised when a combiner/template construct is given an
// argument count that does not match its declared arity (spec.md §4.7
// "Compile errors": "WidthMismatch (for hardware subset)" — generalized
// here to any fixed-width construct, e.g. a builtin operator called with
// the wrong number of arguments).
type WidthMismatch struct {
	Source   addr.SourceId
	Expected int
	Actual   int
}

func (e *WidthMismatch) Error() string {
	return fmt.Sprintf("compiler: %s: expected %d argument(s), got %d", e.Source, e.Expected, e.Actual)
}
func (e *WidthMismatch) Span() addr.SourceId { return e.Source }

// NonTerminatingRecursion is raised when a FUNCTION calls itself (directly
// or through a chain of calls) without an intervening WHEN arm that does
// not itself recurse (spec.md §4.7 "FUNCTION compilation": "Recursion is
// permitted only when termination is provable structurally... otherwise
// rejected at compile time").
type NonTerminatingRecursion struct {
	Source addr.SourceId
	Path   string
}

func (e *NonTerminatingRecursion) Error() string {
	return fmt.Sprintf("compiler: %s: function %q recurses without a non-recursive WHEN arm to guard termination", e.Source, e.Path)
}
func (e *NonTerminatingRecursion) Span() addr.SourceId { return e.Source }

// CycleWithoutProgress is raised at compile time when a construct's shape
// makes an infinite compile-time expansion obvious without ever reaching a
// WHEN guard (e.g. a zero-argument function whose entire body is a call to
// itself). This is the compile-time sibling of engine.CycleWithoutProgress,
// which instead catches non-terminating *runtime* propagation (spec.md §7
// lists both under "Compile-time errors").
type CycleWithoutProgress struct {
	Source addr.SourceId
	Detail string
}

func (e *CycleWithoutProgress) Error() string {
	return fmt.Sprintf("compiler: %s: cycle without progress: %s", e.Source, e.Detail)
}
func (e *CycleWithoutProgress) Span() addr.SourceId { return e.Source }
