package engine

import (
	"testing"

	"github.com/BoonLang/boon-sub004/internal/addr"
	"github.com/BoonLang/boon-sub004/internal/arena"
	"github.com/BoonLang/boon-sub004/internal/message"
	"github.com/stretchr/testify/require"
)

// TestWhen_FilterSemantics pins boundary scenario 3 (spec.md §8):
// `x |> WHEN { 1 => "one", 2 => "two" }` with x=3 produces no downstream
// emission; with x=1 produces "one".
func TestWhen_FilterSemantics(t *testing.T) {
	l := newTestLoop()
	mux := NewPatternMux(l, addrAt(1, addr.RootScope), addr.RootScope, []WhenArm{
		{Pattern: Pattern{Kind: PatternNumber, Number: 1}, BindSlot: arena.NilSlot, lastBody: message.Str("one"), hasBody: true},
		{Pattern: Pattern{Kind: PatternNumber, Number: 2}, BindSlot: arena.NilSlot, lastBody: message.Str("two"), hasBody: true},
	})

	l.Enqueue(mux, addr.Port{Kind: addr.PortDefault}, message.Num(3))
	require.NoError(t, l.Tick())
	require.False(t, l.Node(mux).hasValue, "no arm matches x=3: no emission")

	l.Enqueue(mux, addr.Port{Kind: addr.PortDefault}, message.Num(1))
	require.NoError(t, l.Tick())
	require.True(t, l.Node(mux).lastValue.Equal(message.Str("one")))
}
