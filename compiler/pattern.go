package compiler

import (
	"github.com/BoonLang/boon-sub004/ast"
	"github.com/BoonLang/boon-sub004/engine"
	"github.com/BoonLang/boon-sub004/internal/addr"
	"github.com/BoonLang/boon-sub004/internal/arena"
)

// lowerPattern converts an ast.Pattern into the runtime engine.Pattern
// WHEN/WHILE test against. Structural field tests (TagPattern/RecordPattern
// Fields) are not encoded here — the engine tests only the discriminant
// (tag identity, numeric equality, wildcard); field destructuring binds
// names into the arm's own scope instead, via bindPattern below (see
// pattern.go's engine-side doc comment and DESIGN.md's WHEN entry).
func (c *Compiler) lowerPattern(p ast.Pattern) engine.Pattern {
	switch pat := p.(type) {
	case ast.WildcardPattern:
		return engine.Pattern{Kind: engine.PatternWildcard}
	case ast.NumberPattern:
		return engine.Pattern{Kind: engine.PatternNumber, Number: pat.Value}
	case ast.TagPattern:
		return engine.Pattern{Kind: engine.PatternTag, Tag: c.loop.Arena().InternTag(pat.Tag.Text)}
	case ast.BindingPattern:
		return engine.Pattern{Kind: engine.PatternBinding}
	case ast.RecordPattern:
		// A record pattern always matches. Its nested field sub-patterns
		// are not tested (a NumberPattern/TagPattern leaf that differs from
		// the field's value does not make the arm fail); bindPattern only
		// binds the names they introduce.
		return engine.Pattern{Kind: engine.PatternWildcard}
	default:
		return engine.Pattern{Kind: engine.PatternWildcard}
	}
}

// bindPattern walks p, binding every name it introduces into frame,
// resolved against subjectSlot (the arm's matched value, already compiled
// at id's source position). Recurses through TagPattern/RecordPattern
// Fields, resolving each named field statically when possible and falling
// back to the dynamic Router+Wire path otherwise (mirrors FieldAccess,
// literal.go).
func (c *Compiler) bindPattern(ctx Context, subjectSlot arena.SlotId, id addr.SourceId, p ast.Pattern, frame map[string]arena.SlotId) error {
	switch pat := p.(type) {
	case ast.WildcardPattern, ast.NumberPattern:
		return nil
	case ast.BindingPattern:
		frame[pat.Name.Text] = subjectSlot
		return nil
	case ast.TagPattern:
		return c.bindFieldPatterns(ctx, subjectSlot, id, pat.Fields, frame)
	case ast.RecordPattern:
		return c.bindFieldPatterns(ctx, subjectSlot, id, pat.Fields, frame)
	default:
		return nil
	}
}

func (c *Compiler) bindFieldPatterns(ctx Context, subjectSlot arena.SlotId, id addr.SourceId, fields []ast.FieldPattern, frame map[string]arena.SlotId) error {
	for _, fp := range fields {
		fieldSlot, err := c.resolveField(ctx, id, subjectSlot, fp.Name.Text)
		if err != nil {
			return err
		}
		if err := c.bindPattern(ctx, fieldSlot, id, fp.Pattern, frame); err != nil {
			return err
		}
	}
	return nil
}
