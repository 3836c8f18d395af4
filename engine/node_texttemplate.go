package engine

import (
	"fmt"
	"strings"

	"github.com/BoonLang/boon-sub004/internal/addr"
	"github.com/BoonLang/boon-sub004/internal/arena"
	"github.com/BoonLang/boon-sub004/internal/message"
)

// TextPart is one literal-or-dependency-slot fragment of a compiled TEXT
// template, supplied by the compiler (spec.md §4.6 TextTemplate row:
// "State: template parts, dependency slots, cached string").
type TextPart struct {
	Literal  string
	IsDep    bool
	DepIndex int // index into deps, valid when IsDep
}

type textTemplateState struct {
	parts  []TextPart
	deps   []message.Payload
	hasDep []bool
	cached string
}

// NewTextTemplate allocates a TextTemplate node. deps lists each
// interpolated dependency's slot, in the order textParts reference them;
// the compiler assigns each a unique PortInput index (spec.md §4.7 "TEXT
// template compilation").
func NewTextTemplate(l *Loop, address addr.NodeAddress, owner addr.ScopeId, parts []TextPart, deps []arena.SlotId) arena.SlotId {
	slot := newNode(l, address, owner, KindTextTemplate, &textTemplateState{
		parts:  parts,
		deps:   make([]message.Payload, len(deps)),
		hasDep: make([]bool, len(deps)),
	})
	for i, dep := range deps {
		l.routes.AddRoute(dep, slot, addr.Port{Kind: addr.PortInput, Index: uint32(i)})
	}
	return slot
}

// textTemplateTransition re-renders whenever any dependency's port is
// dirtied (spec.md §4.6 TextTemplate row).
func textTemplateTransition(l *Loop, slot arena.SlotId, n *node, port addr.Port) (message.Payload, bool) {
	st := n.state.(*textTemplateState)
	scalar, has, _ := l.inbox.Take(message.Target{Slot: slot, Port: port})
	if !has {
		return message.Payload{}, false
	}
	idx := int(port.Index)
	if idx < 0 || idx >= len(st.deps) {
		return message.Payload{}, false
	}
	if scalar.IsFlushed() {
		return scalar, true
	}
	st.deps[idx] = scalar
	st.hasDep[idx] = true

	var b strings.Builder
	for _, part := range st.parts {
		if !part.IsDep {
			b.WriteString(part.Literal)
			continue
		}
		if part.DepIndex < len(st.hasDep) && st.hasDep[part.DepIndex] {
			b.WriteString(renderScalar(st.deps[part.DepIndex]))
		}
	}
	st.cached = b.String()
	return message.Str(st.cached), true
}

// renderScalar formats a payload's scalar value for TEXT interpolation.
func renderScalar(p message.Payload) string {
	switch p.Kind {
	case message.KindText:
		return p.Text.String()
	case message.KindNumber:
		return fmt.Sprintf("%v", p.Number)
	case message.KindBoolean:
		return fmt.Sprintf("%v", p.Boolean)
	case message.KindUnit:
		return ""
	default:
		return p.String()
	}
}
