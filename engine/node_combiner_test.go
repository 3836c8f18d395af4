package engine

import (
	"testing"

	"github.com/BoonLang/boon-sub004/internal/addr"
	"github.com/BoonLang/boon-sub004/internal/message"
	"github.com/stretchr/testify/require"
)

// TestLatest_EmitsOnceAllSeenThenEveryUpdate pins that a Combiner only
// starts emitting once every input has been seen at least once, then
// re-emits on each later input. Each input arrives in its own tick; the
// per-port last-writer-wins rule for same-tick deliveries is pinned by
// internal/message's TestInbox_ScalarLastWriterWins.
func TestLatest_EmitsOnceAllSeenThenEveryUpdate(t *testing.T) {
	l := newTestLoop()
	combiner := NewLatest(l, addrAt(1, addr.RootScope), addr.RootScope, 2)

	portA := addr.Port{Kind: addr.PortInput, Index: 0}
	portB := addr.Port{Kind: addr.PortInput, Index: 1}

	l.Enqueue(combiner, portA, message.Num(1))
	require.NoError(t, l.Tick())
	n := l.Node(combiner)
	require.False(t, n.hasValue, "only one of two inputs seen: no emission yet")

	l.Enqueue(combiner, portB, message.Num(2))
	require.NoError(t, l.Tick())
	n = l.Node(combiner)
	require.True(t, n.hasValue)
	require.True(t, n.lastValue.Equal(message.Num(2)), "boundary scenario 2: b arrives after a, b wins")

	l.Enqueue(combiner, portA, message.Num(3))
	require.NoError(t, l.Tick())
	require.True(t, l.Node(combiner).lastValue.Equal(message.Num(3)), "subsequent single-input updates re-emit immediately")
}

func TestLatest_FlushPropagatesImmediately(t *testing.T) {
	l := newTestLoop()
	combiner := NewLatest(l, addrAt(1, addr.RootScope), addr.RootScope, 2)
	portA := addr.Port{Kind: addr.PortInput, Index: 0}

	l.Enqueue(combiner, portA, message.Flush(message.Num(0)))
	require.NoError(t, l.Tick())
	n := l.Node(combiner)
	require.True(t, n.hasValue)
	require.True(t, n.lastValue.IsFlushed())
}
