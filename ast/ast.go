// Package ast defines the fixed schema the compiler consumes: the AST
// produced by the (out-of-scope, spec.md §1) source parser. Nothing here
// constructs this tree from source text — that is the parser's job — but
// the compiler (package compiler) depends on exactly this shape (spec.md
// §6 "Parser input (AST)").
package ast

import "github.com/BoonLang/boon-sub004/internal/addr"

// StrSlice is a borrowed identifier/string span, as produced by the parser.
// The engine core never mutates these; they are read-only input.
type StrSlice struct {
	Text string
}

func (s StrSlice) String() string { return s.Text }

// Expression is the sum type of every AST node the compiler must be able
// to lower. Each concrete type below embeds Source, its content-stable
// SourceId.
type Expression interface {
	expressionNode()
	NodeSource() addr.SourceId
}

// Source is embedded by every concrete Expression to carry its SourceId.
type Source struct {
	Id addr.SourceId
}

func (s Source) NodeSource() addr.SourceId { return s.Id }

// NumberLiteral is a constant numeric expression.
type NumberLiteral struct {
	Source
	Value float64
}

func (NumberLiteral) expressionNode() {}

// TextLiteral is a constant text expression with no interpolation.
type TextLiteral struct {
	Source
	Value string
}

func (TextLiteral) expressionNode() {}

// BooleanLiteral is a constant boolean expression.
type BooleanLiteral struct {
	Source
	Value bool
}

func (BooleanLiteral) expressionNode() {}

// Variable references a name resolved through the compiler's scope chain:
// locals, then parameters, then module-level lookups (spec.md §4.7).
type Variable struct {
	Source
	Name StrSlice
}

func (Variable) expressionNode() {}

// FieldAccess projects a field off a record- or tagged-object-valued
// expression.
type FieldAccess struct {
	Source
	Target Expression
	Field  StrSlice
}

func (FieldAccess) expressionNode() {}

// Argument is one actual argument of a FunctionCall.
type Argument struct {
	Name        StrSlice
	IsReferenced bool
	Value       Expression
}

// FunctionCall invokes the function stored at Path with Arguments
// (spec.md §6).
type FunctionCall struct {
	Source
	Path      []StrSlice
	Arguments []Argument
}

func (FunctionCall) expressionNode() {}

// RecordField is one field: value pair of a Record literal.
type RecordField struct {
	Name  StrSlice
	Value Expression
}

// Record is an anonymous record (object) literal.
type Record struct {
	Source
	Fields []RecordField
}

func (Record) expressionNode() {}

// Tagged is a tagged-object literal: Tag, applied to an optional payload
// record.
type Tagged struct {
	Source
	Tag    StrSlice
	Fields []RecordField
}

func (Tagged) expressionNode() {}

// Pipe desugars `lhs |> rhs` into an explicit pipe node; the compiler
// inlines this as "rhs applied with lhs bound as its implicit first
// argument/PASSED value", matching the PASS/PASSED contract (spec.md §4.7).
type Pipe struct {
	Source
	Left  Expression
	Right Expression
}

func (Pipe) expressionNode() {}

// WhenArm is one `pattern => body` arm of a WHEN expression.
type WhenArm struct {
	Pattern Pattern
	Body    Expression
}

// When is a WHEN pattern-mux expression: patterns tested in source order
// (spec.md §4.6 "WHEN pattern matching").
type When struct {
	Source
	Subject Expression
	Arms    []WhenArm
}

func (When) expressionNode() {}

// WhileArm is one `pattern => body` arm of a WHILE expression. WHILE differs
// from WHEN in that its active arm's body is a continuously-updating
// subgraph (a SwitchedWire), not a one-shot transform (spec.md §4.6).
type WhileArm struct {
	Pattern Pattern
	Body    Expression
}

// While is a WHILE switched-wire expression.
type While struct {
	Source
	Subject Expression
	Arms    []WhileArm
}

func (While) expressionNode() {}

// Block introduces lexical bindings without a new ScopeId; the final
// expression's value is the block's value (spec.md §4.7 "BLOCK
// compilation").
type Block struct {
	Source
	Bindings []BlockBinding
	Result   Expression
}

// BlockBinding is one `name: expr` binding inside a Block.
type BlockBinding struct {
	Name  StrSlice
	Value Expression
}

func (Block) expressionNode() {}

// ListItemTemplate is the template a List literal instantiates for every
// item — the compiler compiles Body once, in a template-capture
// subcontext, then clones its internal nodes per item at runtime
// (spec.md §4.6 "LIST/map external-dependency capture").
type ListItemTemplate struct {
	// ItemName binds each instantiation's current item value.
	ItemName StrSlice
	Body     Expression
}

// List is a LIST literal or a `source |> List/map { ... }` form; Items is
// non-nil for a literal list, Source_/Map is non-nil for a mapped list
// derived from an upstream source expression.
type List struct {
	Source
	// Items holds literal element expressions (non-map form).
	Items []Expression
	// MapSource, when non-nil, is the upstream list expression this List
	// maps over; Template is then the per-item body.
	MapSource Expression
	Template  *ListItemTemplate
}

func (List) expressionNode() {}

// ListRemove models a `source |> List/remove { ... }` site. Predicate
// selects which items to drop; each site maintains its own removed-key set
// at runtime (spec.md §4.6 "LIST/remove chaining").
type ListRemove struct {
	Source
	ListSource Expression
	Predicate  *ListItemTemplate
}

func (ListRemove) expressionNode() {}

// Latest is a `LATEST { a, b, ... }` combiner expression (spec.md §4.6
// Combiner row).
type Latest struct {
	Source
	Inputs []Expression
}

func (Latest) expressionNode() {}

// Hold is a `init |> HOLD name { body }` register expression. Name binds
// the register's current stored value as a local inside Body, breaking the
// cycle via the two-slot split described in spec.md's Design Notes.
type Hold struct {
	Source
	Init Expression
	Name StrSlice
	Body Expression
}

func (Hold) expressionNode() {}

// Then is a `trigger |> THEN { body }` transformer expression.
type Then struct {
	Source
	Trigger Expression
	Body    Expression
}

func (Then) expressionNode() {}

// TextPart is one element of a TEXT template's alternating literal/
// interpolation sequence (spec.md §6).
type TextPart struct {
	IsInterpolation bool
	Text            string     // valid when !IsInterpolation
	Value           Expression // valid when IsInterpolation
}

// TextTemplate is a `TEXT { ... }` expression.
type TextTemplate struct {
	Source
	Parts []TextPart
}

func (TextTemplate) expressionNode() {}

// PassedAlias models `PASSED` or `PASSED.a.b`: ExtraParts compiles to a
// chain of field-access wires rooted at the current PASS slot (spec.md
// §4.7 "PASS/PASSED").
type PassedAlias struct {
	Source
	ExtraParts []StrSlice
}

func (PassedAlias) expressionNode() {}

// Function is a top-level function definition, stored by its Path.
type Function struct {
	Source
	Path   []StrSlice
	Params []StrSlice
	Body   Expression
}

// Pattern is the sum type WHEN/WHILE arms match against (spec.md §4.6).
type Pattern interface {
	patternNode()
}

// WildcardPattern matches unconditionally.
type WildcardPattern struct{}

func (WildcardPattern) patternNode() {}

// NumberPattern matches by numeric equality.
type NumberPattern struct{ Value float64 }

func (NumberPattern) patternNode() {}

// TagPattern matches by tag equality, optionally destructuring the
// payload's fields recursively.
type TagPattern struct {
	Tag    StrSlice
	Fields []FieldPattern
}

func (TagPattern) patternNode() {}

// FieldPattern is one field:pattern pair inside a TagPattern/RecordPattern.
type FieldPattern struct {
	Name    StrSlice
	Pattern Pattern
}

// RecordPattern matches structurally against a record's fields,
// recursively.
type RecordPattern struct {
	Fields []FieldPattern
}

func (RecordPattern) patternNode() {}

// BindingPattern is a bare name: binds the entire matched value to a local
// scope slot.
type BindingPattern struct {
	Name StrSlice
}

func (BindingPattern) patternNode() {}

// Program is the top-level compilation unit: a set of function
// definitions plus top-level bindings, the last of which (absent an
// explicit root) becomes the CLI's output root per spec.md §6.
type Program struct {
	Functions []Function
	Bindings  []BlockBinding
}
