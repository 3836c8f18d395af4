package engine

import (
	"testing"

	"github.com/BoonLang/boon-sub004/internal/addr"
	"github.com/BoonLang/boon-sub004/internal/message"
	"github.com/stretchr/testify/require"
)

// TestHold_FlushDoesNotCommitStoredValue pins boundary scenario 6
// (spec.md §8): HOLD initial 0; body emits Flushed(err); subscribers
// observe Flushed(err); HOLD's stored value remains 0; next non-flush
// trigger updates normally.
func TestHold_FlushDoesNotCommitStoredValue(t *testing.T) {
	l := newTestLoop()
	hold := NewRegister(l, addrAt(1, addr.RootScope), addr.RootScope, message.Num(0))
	require.NoError(t, l.Tick()) // flush the seeding emission

	l.Enqueue(hold, addr.Port{Kind: addr.PortDefault}, message.Flush(message.Str("boom")))
	require.NoError(t, l.Tick())
	n := l.Node(hold)
	require.True(t, n.lastValue.IsFlushed(), "subscribers observe the flushed payload")
	require.Equal(t, message.Num(0), n.state.(*registerState).value, "stored value is untouched by a flush")

	l.Enqueue(hold, addr.Port{Kind: addr.PortDefault}, message.Num(5))
	require.NoError(t, l.Tick())
	require.True(t, l.Node(hold).lastValue.Equal(message.Num(5)))
	require.Equal(t, message.Num(5), n.state.(*registerState).value, "a subsequent non-flush trigger commits normally")
}
