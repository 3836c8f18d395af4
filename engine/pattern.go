package engine

import "github.com/BoonLang/boon-sub004/internal/message"

// PatternKind discriminates Pattern's variants. The compiler lowers
// ast.Pattern into this simpler runtime shape; engine itself never depends
// on the ast package, keeping the compiled-graph layer free of
// parser-schema concerns (SPEC_FULL.md package table).
type PatternKind uint8

const (
	PatternWildcard PatternKind = iota
	PatternNumber
	PatternTag
	PatternBinding
)

// Pattern is the runtime-evaluated counterpart of ast.Pattern (spec.md
// §4.6 "WHEN pattern matching"). Structural destructuring of a matched
// tagged object's fields is compiled separately, as extra router bindings
// on the arm's body scope, rather than represented inline here — see
// DESIGN.md's WHEN entry.
type Pattern struct {
	Kind   PatternKind
	Number float64
	Tag    uint32
}

// Match reports whether p matches payload, following spec.md's listed
// match rules: numeric equality, tag equality, wildcard unconditional,
// and a bare-name binding that matches unconditionally (binding the whole
// value is the caller's responsibility once Match succeeds).
func (p Pattern) Match(payload message.Payload) bool {
	switch p.Kind {
	case PatternWildcard, PatternBinding:
		return true
	case PatternNumber:
		return payload.Kind == message.KindNumber && payload.Number == p.Number
	case PatternTag:
		switch payload.Kind {
		case message.KindTag:
			return payload.Tag == p.Tag
		case message.KindTaggedObject:
			return payload.TaggedObject.Tag == p.Tag
		default:
			return false
		}
	default:
		return false
	}
}
