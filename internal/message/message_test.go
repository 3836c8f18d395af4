package message

import (
	"testing"

	"github.com/BoonLang/boon-sub004/internal/addr"
	"github.com/BoonLang/boon-sub004/internal/arena"
	"github.com/stretchr/testify/require"
)

var portA = addr.Port{Kind: addr.PortInput, Index: 0}
var portB = addr.Port{Kind: addr.PortInput, Index: 1}

func TestInbox_ScalarLastWriterWins(t *testing.T) {
	ib := NewInbox()
	target := Target{Slot: arena.SlotId{Index: 1, Generation: 1}, Port: portA}

	ib.Deliver(target, Num(1))
	ib.Deliver(target, Num(2))

	scalar, has, deltas := ib.Take(target)
	require.True(t, has)
	require.Equal(t, Num(2), scalar)
	require.Empty(t, deltas)
}

func TestInbox_DeltasAccumulateInOrder(t *testing.T) {
	ib := NewInbox()
	target := Target{Slot: arena.SlotId{Index: 1, Generation: 1}, Port: portA}

	key := ItemKey{Site: AllocSite{Source: 1}, Counter: 1}
	ib.Deliver(target, ListDeltaPayload(Insert(key, 0, Num(1))))
	ib.Deliver(target, ListDeltaPayload(Update(key, Num(2))))

	_, has, deltas := ib.Take(target)
	require.False(t, has, "no scalar was delivered")
	require.Len(t, deltas, 2)
	require.Equal(t, DeltaInsert, deltas[0].ListDelta.Kind)
	require.Equal(t, DeltaUpdate, deltas[1].ListDelta.Kind)
}

func TestInbox_TakeConsumes(t *testing.T) {
	ib := NewInbox()
	target := Target{Slot: arena.SlotId{Index: 1, Generation: 1}}
	ib.Deliver(target, Unit())
	require.True(t, ib.Peek(target))
	ib.Take(target)
	require.False(t, ib.Peek(target))
}

func TestInbox_PurgeSlot(t *testing.T) {
	ib := NewInbox()
	s := arena.SlotId{Index: 1, Generation: 1}
	ib.Deliver(Target{Slot: s, Port: portA}, Unit())
	ib.Deliver(Target{Slot: s, Port: portB}, Unit())
	ib.Deliver(Target{Slot: arena.SlotId{Index: 2, Generation: 1}}, Unit())

	ib.PurgeSlot(s)

	require.False(t, ib.Peek(Target{Slot: s, Port: portA}))
	require.False(t, ib.Peek(Target{Slot: s, Port: portB}))
	require.True(t, ib.Peek(Target{Slot: arena.SlotId{Index: 2, Generation: 1}}))
}

func TestPayload_Equal(t *testing.T) {
	require.True(t, Num(1).Equal(Num(1)))
	require.False(t, Num(1).Equal(Num(2)))
	require.True(t, Str("a").Equal(Str("a")))
	require.False(t, Str("a").Equal(Str("b")))
	require.True(t, Flush(Num(1)).Equal(Flush(Num(1))))
	require.False(t, Flush(Num(1)).Equal(Flush(Num(2))))
}

func TestFlush_IsFlushed(t *testing.T) {
	f := Flush(Num(5))
	require.True(t, f.IsFlushed())
	require.False(t, f.Flushed.IsFlushed())
	require.Equal(t, 5.0, f.Flushed.Number)
}
