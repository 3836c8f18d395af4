package compiler

import (
	"github.com/BoonLang/boon-sub004/ast"
	"github.com/BoonLang/boon-sub004/internal/addr"
	"github.com/BoonLang/boon-sub004/internal/arena"
)

// scopeFrame is one link of a parent-chained binding scope. Locals pushed
// by an enclosing BLOCK or FUNCTION-argument binding shadow whatever the
// parent frame resolves, which is exactly spec.md §4.7's resolution order
// ("locals, then parameters, then module-level lookups") provided
// parameter frames always sit below any locals frame pushed on top of them
// and the module-level bindings frame is the root of every chain.
type scopeFrame struct {
	parent *scopeFrame
	locals map[string]arena.SlotId
}

func (f *scopeFrame) lookup(name string) (arena.SlotId, bool) {
	for s := f; s != nil; s = s.parent {
		if slot, ok := s.locals[name]; ok {
			return slot, true
		}
	}
	return arena.NilSlot, false
}

// Context is the compiler's mutable-by-copy compile-time environment: the
// current ScopeId, the variable-resolution chain, and the PASS stack
// (spec.md §4.7 "Scope/parameter handling"). LIST/map and List/remove
// templates need no extra capture bookkeeping here: each item instantiation
// recompiles the template body fresh (compileListMap/compileListRemove in
// list.go) under the same enclosing Context, so a captured outer name
// resolves through the ordinary scopeFrame chain to the one shared slot
// instead of a copy.
type Context struct {
	scope     addr.ScopeId
	vars      *scopeFrame
	passStack []arena.SlotId
	// callStack names the FUNCTION paths currently being compiled (i.e. on
	// the inlining stack), for the recursion-termination guard.
	callStack []string
	// guarded is true once compilation has passed through at least one WHEN
	// arm since the innermost recursive call began, satisfying spec.md's
	// "recursion under a WHEN that has at least one non-recursive arm" rule.
	guarded bool
}

func rootContext(scope addr.ScopeId) Context {
	return Context{scope: scope, vars: &scopeFrame{}}
}

func (c Context) withScope(scope addr.ScopeId) Context {
	c.scope = scope
	return c
}

func (c Context) withFrame(bindings map[string]arena.SlotId) Context {
	c.vars = &scopeFrame{parent: c.vars, locals: bindings}
	return c
}

func (c Context) lookup(name string) (arena.SlotId, bool) {
	return c.vars.lookup(name)
}

func (c Context) withPass(slot arena.SlotId) Context {
	n := make([]arena.SlotId, len(c.passStack)+1)
	copy(n, c.passStack)
	n[len(n)-1] = slot
	c.passStack = n
	return c
}

func (c Context) currentPass() (arena.SlotId, bool) {
	if len(c.passStack) == 0 {
		return arena.NilSlot, false
	}
	return c.passStack[len(c.passStack)-1], true
}

func (c Context) withCall(path string) (Context, bool) {
	for _, p := range c.callStack {
		if p == path {
			if !c.guarded {
				return c, false
			}
			break
		}
	}
	n := make([]string, len(c.callStack)+1)
	copy(n, c.callStack)
	n[len(n)-1] = path
	c.callStack = n
	c.guarded = false
	return c, true
}

// withGuard marks the current recursion chain as having passed through a
// WHEN arm, satisfying the non-recursive-arm termination rule for any
// further nested call.
func (c Context) withGuard() Context {
	c.guarded = true
	return c
}

// functionTable resolves a dotted FUNCTION path to its AST definition.
type functionTable map[string]*ast.Function

func pathKey(path []ast.StrSlice) string {
	s := ""
	for i, p := range path {
		if i > 0 {
			s += "."
		}
		s += p.Text
	}
	return s
}
