package routing

import (
	"testing"

	"github.com/BoonLang/boon-sub004/internal/addr"
	"github.com/BoonLang/boon-sub004/internal/arena"
	"github.com/stretchr/testify/require"
)

func slot(i uint32) arena.SlotId { return arena.SlotId{Index: i, Generation: 1} }

func port(i uint32) addr.Port { return addr.Port{Kind: addr.PortInput, Index: i} }

var defaultPort = addr.Port{Kind: addr.PortDefault}

func TestAddRoute_Subscribers_InsertionOrder(t *testing.T) {
	tbl := New()
	src := slot(1)
	tbl.AddRoute(src, slot(2), defaultPort)
	tbl.AddRoute(src, slot(3), defaultPort)
	tbl.AddRoute(src, slot(2), port(1))

	subs := tbl.Subscribers(src)
	require.Equal(t, []Subscription{
		{Target: slot(2), Port: defaultPort},
		{Target: slot(3), Port: defaultPort},
		{Target: slot(2), Port: port(1)},
	}, subs)
}

func TestAddRoute_DuplicatesAreSeparateSubscriptions(t *testing.T) {
	tbl := New()
	src, tgt := slot(1), slot(2)
	tbl.AddRoute(src, tgt, defaultPort)
	tbl.AddRoute(src, tgt, defaultPort)
	require.Len(t, tbl.Subscribers(src), 2)

	tbl.RemoveRoute(src, tgt, defaultPort)
	require.Len(t, tbl.Subscribers(src), 1, "removing one duplicate route leaves the other")
	require.True(t, tbl.HasRoute(src, tgt, defaultPort))

	tbl.RemoveRoute(src, tgt, defaultPort)
	require.False(t, tbl.HasRoute(src, tgt, defaultPort))
}

func TestRemoveSlot_PurgesAsSourceAndTarget(t *testing.T) {
	tbl := New()
	a, b, c := slot(1), slot(2), slot(3)
	tbl.AddRoute(a, b, defaultPort) // a -> b
	tbl.AddRoute(b, c, defaultPort) // b -> c
	tbl.AddRoute(c, a, defaultPort) // c -> a (b is neither source nor target here)

	tbl.RemoveSlot(b)

	require.Empty(t, tbl.Subscribers(a), "a's route to b must be gone")
	require.Empty(t, tbl.Subscribers(b), "b's own routes must be gone")
	require.True(t, tbl.HasRoute(c, a, defaultPort), "unrelated routes survive")
}

func TestRemoveRoute_Missing_NoPanic(t *testing.T) {
	tbl := New()
	require.NotPanics(t, func() { tbl.RemoveRoute(slot(1), slot(2), defaultPort) })
}
