package engine

import (
	"testing"

	"github.com/BoonLang/boon-sub004/internal/addr"
	"github.com/BoonLang/boon-sub004/internal/arena"
	"github.com/BoonLang/boon-sub004/internal/message"
	"github.com/stretchr/testify/require"
)

// TestTextTemplate_RendersOnEachDependencyChange pins boundary scenario 4
// (spec.md §8): `TEXT { value: {count} }` with count transitioning
// 0->1->2 renders "value: 0", "value: 1", "value: 2".
func TestTextTemplate_RendersOnEachDependencyChange(t *testing.T) {
	l := newTestLoop()
	countSlot := NewProducer(l, addrAt(1, addr.RootScope), addr.RootScope, message.Num(0))

	parts := []TextPart{
		{Literal: "value: "},
		{IsDep: true, DepIndex: 0},
	}
	tmpl := NewTextTemplate(l, addrAt(2, addr.RootScope), addr.RootScope, parts, []arena.SlotId{countSlot})
	require.NoError(t, l.Tick())
	require.Equal(t, "value: 0", l.Node(tmpl).state.(*textTemplateState).cached)

	l.Enqueue(countSlot, addr.Port{Kind: addr.PortDefault}, message.Num(1))
	require.NoError(t, l.Tick())
	require.Equal(t, "value: 1", l.Node(tmpl).state.(*textTemplateState).cached)

	l.Enqueue(countSlot, addr.Port{Kind: addr.PortDefault}, message.Num(2))
	require.NoError(t, l.Tick())
	require.Equal(t, "value: 2", l.Node(tmpl).state.(*textTemplateState).cached)
}
