package snapshot_test

import (
	"bytes"
	"encoding/gob"
	"testing"

	"github.com/BoonLang/boon-sub004/engine"
	"github.com/BoonLang/boon-sub004/host"
	"github.com/BoonLang/boon-sub004/internal/addr"
	"github.com/BoonLang/boon-sub004/internal/message"
	"github.com/BoonLang/boon-sub004/snapshot"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func mustGobEncode(t *testing.T, v any) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, gob.NewEncoder(&buf).Encode(v))
	return buf.Bytes()
}

func addrAt(stableId uint64) addr.NodeAddress {
	return addr.NodeAddress{Source: addr.SourceId{StableId: stableId}, Scope: addr.RootScope, NodePort: addr.Port{Kind: addr.PortDefault}}
}

func newLoop() *engine.Loop {
	return engine.New(&host.RecordingAdapter{})
}

func TestEncodeDecode_RoundTripsRegisterAndBus(t *testing.T) {
	l := newLoop()
	reg := engine.NewRegister(l, addrAt(1), addr.RootScope, message.Num(0))
	bus := engine.NewBus(l, addrAt(2), addr.RootScope)
	require.NoError(t, l.Tick())

	l.Enqueue(reg, addr.Port{Kind: addr.PortDefault}, message.Num(41))
	require.NoError(t, l.Tick())
	l.ListInsert(bus, 0, message.Str("a"))
	l.ListInsert(bus, 1, message.Str("b"))
	require.NoError(t, l.Tick())

	data, err := snapshot.Encode(l)
	require.NoError(t, err)

	snap, err := snapshot.Decode(data)
	require.NoError(t, err)
	require.Equal(t, snapshot.Version, snap.Version)
	require.Equal(t, l.CurrentTick(), snap.Tick)

	// A freshly recompiled Loop allocates the identical slots in the
	// identical order (deterministic compilation), which is what Restore
	// assumes; here that is modeled directly by rebuilding with the same
	// calls in the same order.
	l2 := newLoop()
	reg2 := engine.NewRegister(l2, addrAt(1), addr.RootScope, message.Num(0))
	bus2 := engine.NewBus(l2, addrAt(2), addr.RootScope)
	require.NoError(t, l2.Tick())
	require.Equal(t, reg, reg2)
	require.Equal(t, bus, bus2)

	require.NoError(t, snapshot.Restore(l2, data))

	restored := l2.ExportSnapshot()
	var registerValue message.Payload
	for _, n := range restored.Nodes {
		if n.Slot == reg2 {
			require.NotNil(t, n.Register)
			registerValue = n.Register.Value
		}
	}
	require.True(t, registerValue.Equal(message.Num(41)))

	items := l2.ListItems(bus2)
	require.Len(t, items, 2)
	v0, ok := l2.ListItemValue(bus2, items[0])
	require.True(t, ok)
	require.True(t, v0.Equal(message.Str("a")))
}

func TestDecode_RejectsVersionMismatch(t *testing.T) {
	l := newLoop()
	engine.NewRegister(l, addrAt(1), addr.RootScope, message.Num(0))
	require.NoError(t, l.Tick())

	exp := l.ExportSnapshot()
	exp.Version = snapshot.Version + 1

	// Re-encode a tampered version field directly, bypassing Encode (which
	// always stamps the current Version), to exercise Decode's guard.
	data := mustGobEncode(t, exp)

	_, err := snapshot.Decode(data)
	require.Error(t, err)
	var mismatch *snapshot.ErrVersionMismatch
	require.ErrorAs(t, err, &mismatch)
	require.Equal(t, snapshot.Version+1, mismatch.Got)
	require.Equal(t, snapshot.Version, mismatch.Want)
}

func TestEncode_PayloadRoundTripsExactly(t *testing.T) {
	l := newLoop()
	reg := engine.NewRegister(l, addrAt(1), addr.RootScope, message.Str("seed"))
	require.NoError(t, l.Tick())
	l.Enqueue(reg, addr.Port{Kind: addr.PortDefault}, message.Str("updated"))
	require.NoError(t, l.Tick())

	data, err := snapshot.Encode(l)
	require.NoError(t, err)
	snap, err := snapshot.Decode(data)
	require.NoError(t, err)

	var got message.Payload
	for _, n := range snap.Nodes {
		if n.Register != nil {
			got = n.Register.Value
		}
	}
	want := message.Str("updated")
	if diff := cmp.Diff(want.Text.String(), got.Text.String()); diff != "" {
		t.Fatalf("register value mismatch (-want +got):\n%s", diff)
	}
}
