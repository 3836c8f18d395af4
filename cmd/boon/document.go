package main

import (
	"encoding/json"
	"fmt"

	"github.com/BoonLang/boon-sub004/ast"
	"github.com/BoonLang/boon-sub004/internal/addr"
)

// Package ast has no parser: its own doc comment says the AST tree is
// "out-of-scope" input the compiler depends on but never produces. This
// file is the CLI's substitute supply path: `run`/`eval`/`test` accept a
// JSON encoding of an ast.Program (or, for `eval`, a single ast.Expression)
// and decode it directly into the real ast.* types, assigning every node a
// SourceId as it goes since a hand-authored JSON document has none of its
// own.

// docNode is the flattened, kind-discriminated JSON shape of one
// ast.Expression. Only the fields relevant to Kind are populated; the rest
// are left at their zero value and ignored.
type docNode struct {
	Kind string `json:"kind"`

	Value float64 `json:"value"`
	Text  string  `json:"text"`
	Bool  bool    `json:"bool"`

	Name   string   `json:"name"`
	Target *docNode `json:"target"`
	Field  string   `json:"field"`

	Path      []string `json:"path"`
	Arguments []docArg `json:"arguments"`

	Tag    string     `json:"tag"`
	Fields []docField `json:"fields"`

	Left  *docNode `json:"left"`
	Right *docNode `json:"right"`

	Subject *docNode `json:"subject"`
	Arms    []docArm `json:"arms"`

	Bindings []docBinding `json:"bindings"`
	Result   *docNode     `json:"result"`

	Items     []*docNode   `json:"items"`
	MapSource *docNode     `json:"map_source"`
	Template  *docTemplate `json:"template"`

	ListSource *docNode     `json:"list_source"`
	Predicate  *docTemplate `json:"predicate"`

	Inputs []*docNode `json:"inputs"`

	Init *docNode `json:"init"`
	Body *docNode `json:"body"`

	Trigger *docNode `json:"trigger"`

	Parts []docTextPart `json:"parts"`

	ExtraParts []string `json:"extra_parts"`
}

type docArg struct {
	Name         string   `json:"name"`
	IsReferenced bool     `json:"is_referenced"`
	Value        *docNode `json:"value"`
}

type docField struct {
	Name  string   `json:"name"`
	Value *docNode `json:"value"`
}

type docTemplate struct {
	ItemName string   `json:"item_name"`
	Body     *docNode `json:"body"`
}

type docTextPart struct {
	IsInterpolation bool     `json:"is_interpolation"`
	Text            string   `json:"text"`
	Value           *docNode `json:"value"`
}

type docPattern struct {
	Kind   string            `json:"kind"`
	Value  float64           `json:"value"`
	Tag    string            `json:"tag"`
	Fields []docFieldPattern `json:"fields"`
	Name   string            `json:"name"`
}

type docFieldPattern struct {
	Name    string     `json:"name"`
	Pattern docPattern `json:"pattern"`
}

type docArm struct {
	Pattern docPattern `json:"pattern"`
	Body    *docNode   `json:"body"`
}

type docBinding struct {
	Name  string   `json:"name"`
	Value *docNode `json:"value"`
}

type docFunction struct {
	Path   []string `json:"path"`
	Params []string `json:"params"`
	Body   *docNode `json:"body"`
}

type docProgram struct {
	Functions []docFunction `json:"functions"`
	Bindings  []docBinding  `json:"bindings"`
}

// sourceAssigner hands out a fresh, strictly increasing SourceId per node
// decoded, in document preorder. It never returns addr.RootSource's zero
// value, keeping decoded nodes distinguishable from engine-internal ones.
type sourceAssigner struct{ n uint64 }

func (sa *sourceAssigner) next() addr.SourceId {
	sa.n++
	return addr.SourceId{StableId: sa.n, ParseOrder: uint32(sa.n)}
}

func strSlices(ss []string) []ast.StrSlice {
	out := make([]ast.StrSlice, len(ss))
	for i, s := range ss {
		out[i] = ast.StrSlice{Text: s}
	}
	return out
}

func (sa *sourceAssigner) toExpr(n *docNode) (ast.Expression, error) {
	if n == nil {
		return nil, fmt.Errorf("document: expected an expression, found null")
	}
	src := ast.Source{Id: sa.next()}
	switch n.Kind {
	case "number":
		return ast.NumberLiteral{Source: src, Value: n.Value}, nil
	case "text":
		return ast.TextLiteral{Source: src, Value: n.Text}, nil
	case "bool":
		return ast.BooleanLiteral{Source: src, Value: n.Bool}, nil
	case "variable":
		return ast.Variable{Source: src, Name: ast.StrSlice{Text: n.Name}}, nil
	case "field":
		target, err := sa.toExpr(n.Target)
		if err != nil {
			return nil, err
		}
		return ast.FieldAccess{Source: src, Target: target, Field: ast.StrSlice{Text: n.Field}}, nil
	case "call":
		args := make([]ast.Argument, len(n.Arguments))
		for i, a := range n.Arguments {
			v, err := sa.toExpr(a.Value)
			if err != nil {
				return nil, err
			}
			args[i] = ast.Argument{Name: ast.StrSlice{Text: a.Name}, IsReferenced: a.IsReferenced, Value: v}
		}
		return ast.FunctionCall{Source: src, Path: strSlices(n.Path), Arguments: args}, nil
	case "record":
		fields, err := sa.toFields(n.Fields)
		if err != nil {
			return nil, err
		}
		return ast.Record{Source: src, Fields: fields}, nil
	case "tagged":
		fields, err := sa.toFields(n.Fields)
		if err != nil {
			return nil, err
		}
		return ast.Tagged{Source: src, Tag: ast.StrSlice{Text: n.Tag}, Fields: fields}, nil
	case "pipe":
		left, err := sa.toExpr(n.Left)
		if err != nil {
			return nil, err
		}
		right, err := sa.toExpr(n.Right)
		if err != nil {
			return nil, err
		}
		return ast.Pipe{Source: src, Left: left, Right: right}, nil
	case "when":
		subject, err := sa.toExpr(n.Subject)
		if err != nil {
			return nil, err
		}
		arms := make([]ast.WhenArm, len(n.Arms))
		for i, a := range n.Arms {
			pat, err := sa.toPattern(a.Pattern)
			if err != nil {
				return nil, err
			}
			body, err := sa.toExpr(a.Body)
			if err != nil {
				return nil, err
			}
			arms[i] = ast.WhenArm{Pattern: pat, Body: body}
		}
		return ast.When{Source: src, Subject: subject, Arms: arms}, nil
	case "while":
		subject, err := sa.toExpr(n.Subject)
		if err != nil {
			return nil, err
		}
		arms := make([]ast.WhileArm, len(n.Arms))
		for i, a := range n.Arms {
			pat, err := sa.toPattern(a.Pattern)
			if err != nil {
				return nil, err
			}
			body, err := sa.toExpr(a.Body)
			if err != nil {
				return nil, err
			}
			arms[i] = ast.WhileArm{Pattern: pat, Body: body}
		}
		return ast.While{Source: src, Subject: subject, Arms: arms}, nil
	case "block":
		bindings, err := sa.toBindings(n.Bindings)
		if err != nil {
			return nil, err
		}
		result, err := sa.toExpr(n.Result)
		if err != nil {
			return nil, err
		}
		return ast.Block{Source: src, Bindings: bindings, Result: result}, nil
	case "list":
		items := make([]ast.Expression, len(n.Items))
		for i, it := range n.Items {
			v, err := sa.toExpr(it)
			if err != nil {
				return nil, err
			}
			items[i] = v
		}
		return ast.List{Source: src, Items: items}, nil
	case "list_map":
		mapSource, err := sa.toExpr(n.MapSource)
		if err != nil {
			return nil, err
		}
		tmpl, err := sa.toTemplate(n.Template)
		if err != nil {
			return nil, err
		}
		return ast.List{Source: src, MapSource: mapSource, Template: tmpl}, nil
	case "list_remove":
		listSource, err := sa.toExpr(n.ListSource)
		if err != nil {
			return nil, err
		}
		pred, err := sa.toTemplate(n.Predicate)
		if err != nil {
			return nil, err
		}
		return ast.ListRemove{Source: src, ListSource: listSource, Predicate: pred}, nil
	case "latest":
		inputs := make([]ast.Expression, len(n.Inputs))
		for i, in := range n.Inputs {
			v, err := sa.toExpr(in)
			if err != nil {
				return nil, err
			}
			inputs[i] = v
		}
		return ast.Latest{Source: src, Inputs: inputs}, nil
	case "hold":
		init, err := sa.toExpr(n.Init)
		if err != nil {
			return nil, err
		}
		body, err := sa.toExpr(n.Body)
		if err != nil {
			return nil, err
		}
		return ast.Hold{Source: src, Init: init, Name: ast.StrSlice{Text: n.Name}, Body: body}, nil
	case "then":
		trigger, err := sa.toExpr(n.Trigger)
		if err != nil {
			return nil, err
		}
		body, err := sa.toExpr(n.Body)
		if err != nil {
			return nil, err
		}
		return ast.Then{Source: src, Trigger: trigger, Body: body}, nil
	case "text_template":
		parts := make([]ast.TextPart, len(n.Parts))
		for i, p := range n.Parts {
			if p.IsInterpolation {
				v, err := sa.toExpr(p.Value)
				if err != nil {
					return nil, err
				}
				parts[i] = ast.TextPart{IsInterpolation: true, Value: v}
			} else {
				parts[i] = ast.TextPart{Text: p.Text}
			}
		}
		return ast.TextTemplate{Source: src, Parts: parts}, nil
	case "passed":
		return ast.PassedAlias{Source: src, ExtraParts: strSlices(n.ExtraParts)}, nil
	default:
		return nil, fmt.Errorf("document: unknown expression kind %q", n.Kind)
	}
}

func (sa *sourceAssigner) toFields(fields []docField) ([]ast.RecordField, error) {
	out := make([]ast.RecordField, len(fields))
	for i, f := range fields {
		v, err := sa.toExpr(f.Value)
		if err != nil {
			return nil, err
		}
		out[i] = ast.RecordField{Name: ast.StrSlice{Text: f.Name}, Value: v}
	}
	return out, nil
}

func (sa *sourceAssigner) toBindings(bindings []docBinding) ([]ast.BlockBinding, error) {
	out := make([]ast.BlockBinding, len(bindings))
	for i, b := range bindings {
		v, err := sa.toExpr(b.Value)
		if err != nil {
			return nil, err
		}
		out[i] = ast.BlockBinding{Name: ast.StrSlice{Text: b.Name}, Value: v}
	}
	return out, nil
}

func (sa *sourceAssigner) toTemplate(t *docTemplate) (*ast.ListItemTemplate, error) {
	if t == nil {
		return nil, nil
	}
	body, err := sa.toExpr(t.Body)
	if err != nil {
		return nil, err
	}
	return &ast.ListItemTemplate{ItemName: ast.StrSlice{Text: t.ItemName}, Body: body}, nil
}

func (sa *sourceAssigner) toPattern(p docPattern) (ast.Pattern, error) {
	switch p.Kind {
	case "", "wildcard":
		return ast.WildcardPattern{}, nil
	case "number":
		return ast.NumberPattern{Value: p.Value}, nil
	case "tag":
		fields, err := sa.toFieldPatterns(p.Fields)
		if err != nil {
			return nil, err
		}
		return ast.TagPattern{Tag: ast.StrSlice{Text: p.Tag}, Fields: fields}, nil
	case "record":
		fields, err := sa.toFieldPatterns(p.Fields)
		if err != nil {
			return nil, err
		}
		return ast.RecordPattern{Fields: fields}, nil
	case "binding":
		return ast.BindingPattern{Name: ast.StrSlice{Text: p.Name}}, nil
	default:
		return nil, fmt.Errorf("document: unknown pattern kind %q", p.Kind)
	}
}

func (sa *sourceAssigner) toFieldPatterns(fields []docFieldPattern) ([]ast.FieldPattern, error) {
	out := make([]ast.FieldPattern, len(fields))
	for i, f := range fields {
		pat, err := sa.toPattern(f.Pattern)
		if err != nil {
			return nil, err
		}
		out[i] = ast.FieldPattern{Name: ast.StrSlice{Text: f.Name}, Pattern: pat}
	}
	return out, nil
}

// decodeProgram parses data as a docProgram and converts it into an
// ast.Program, assigning SourceIds in document order.
func decodeProgram(data []byte) (*ast.Program, error) {
	var doc docProgram
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("document: %w", err)
	}
	sa := &sourceAssigner{}
	functions := make([]ast.Function, len(doc.Functions))
	for i, fn := range doc.Functions {
		body, err := sa.toExpr(fn.Body)
		if err != nil {
			return nil, fmt.Errorf("document: function %v: %w", fn.Path, err)
		}
		functions[i] = ast.Function{
			Source: ast.Source{Id: sa.next()},
			Path:   strSlices(fn.Path),
			Params: strSlices(fn.Params),
			Body:   body,
		}
	}
	bindings, err := sa.toBindings(doc.Bindings)
	if err != nil {
		return nil, err
	}
	return &ast.Program{Functions: functions, Bindings: bindings}, nil
}

// decodeExprProgram parses data as a single docNode (for `boon eval`) and
// wraps it as a one-binding ast.Program named "result", the CLI's root-
// binding precedence's third-choice name.
func decodeExprProgram(data []byte) (*ast.Program, error) {
	var n docNode
	if err := json.Unmarshal(data, &n); err != nil {
		return nil, fmt.Errorf("document: %w", err)
	}
	sa := &sourceAssigner{}
	expr, err := sa.toExpr(&n)
	if err != nil {
		return nil, err
	}
	return &ast.Program{Bindings: []ast.BlockBinding{{Name: ast.StrSlice{Text: "result"}, Value: expr}}}, nil
}
