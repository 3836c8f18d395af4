package engine

import (
	"testing"

	"github.com/BoonLang/boon-sub004/internal/addr"
	"github.com/BoonLang/boon-sub004/internal/message"
	"github.com/stretchr/testify/require"
)

func TestBus_FirstObservationEmitsHandleThenDeltas(t *testing.T) {
	l := newTestLoop()
	bus := NewBus(l, addrAt(1, addr.RootScope), addr.RootScope)

	// A bare, node-less arena slot used only as a subscriber identity, so
	// this test can inspect exactly what the Bus delivers without a real
	// node's transition (e.g. Wire) collapsing the handle/delta
	// distinction.
	sink := l.arena.Alloc()
	defaultPort := addr.Port{Kind: addr.PortDefault}
	l.routes.AddRoute(bus, sink, defaultPort)

	k1 := l.ListInsert(bus, 0, message.Str("a"))

	scalar, hasScalar, deltas := l.Inbox().Take(message.Target{Slot: sink, Port: defaultPort})
	require.True(t, hasScalar, "the bus's first emission is its ListHandle, delivered as a scalar")
	require.Equal(t, message.KindList, scalar.Kind)
	require.Equal(t, bus, scalar.List.Slot)

	require.Len(t, deltas, 1)
	require.Equal(t, message.KindListDelta, deltas[0].Kind)
	require.Equal(t, message.DeltaInsert, deltas[0].ListDelta.Kind)
	require.Equal(t, k1, deltas[0].ListDelta.Key)
}

func TestBus_ItemKeysAreStableAcrossReorder(t *testing.T) {
	l := newTestLoop()
	bus := NewBus(l, addrAt(1, addr.RootScope), addr.RootScope)
	k1 := l.ListInsert(bus, 0, message.Num(1))
	k2 := l.ListInsert(bus, 1, message.Num(2))
	require.NotEqual(t, k1, k2)

	l.ListMoveItem(bus, k1, 0, 1)
	st := l.Node(bus).state.(*busState)
	require.Equal(t, []message.ItemKey{k2, k1}, st.order, "move changes index, never key")
}
