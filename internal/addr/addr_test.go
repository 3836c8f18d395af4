package addr

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDeriveScope_Deterministic(t *testing.T) {
	a := DeriveScope(RootScope, 42)
	b := DeriveScope(RootScope, 42)
	require.Equal(t, a, b, "same (parent, key) must always derive the same ScopeId")
	require.NotEqual(t, RootScope, a, "derived scopes must never collide with the reserved root constant")
}

func TestDeriveScope_DistinctKeysDistinctScopes(t *testing.T) {
	a := DeriveScope(RootScope, 1)
	b := DeriveScope(RootScope, 2)
	require.NotEqual(t, a, b, "two distinct list items sharing a SourceId must still get different ScopeIds")
}

func TestNodeAddress_Less_Ordering(t *testing.T) {
	low := NodeAddress{Source: SourceId{StableId: 1}, Scope: 0, NodePort: Port{Kind: PortDefault}}
	high := NodeAddress{Source: SourceId{StableId: 2}, Scope: 0, NodePort: Port{Kind: PortDefault}}
	require.True(t, low.Less(high))
	require.False(t, high.Less(low))
	require.Equal(t, 0, Compare(low, low))
	require.Equal(t, -1, Compare(low, high))
	require.Equal(t, 1, Compare(high, low))
}

func TestNodeAddress_Less_PortTiebreak(t *testing.T) {
	base := SourceId{StableId: 1}
	a := NodeAddress{Source: base, NodePort: Port{Kind: PortInput, Index: 0}}
	b := NodeAddress{Source: base, NodePort: Port{Kind: PortInput, Index: 1}}
	require.True(t, a.Less(b))
}

func TestPort_Less(t *testing.T) {
	require.True(t, Port{Kind: PortDefault}.Less(Port{Kind: PortInput}))
	require.True(t, Port{Kind: PortInput, Index: 0}.Less(Port{Kind: PortInput, Index: 1}))
	require.True(t, Port{Kind: PortField, Field: 0}.Less(Port{Kind: PortField, Field: 1}))
}

func TestSourceId_Less(t *testing.T) {
	require.True(t, SourceId{StableId: 1, ParseOrder: 5}.Less(SourceId{StableId: 1, ParseOrder: 6}))
	require.True(t, SourceId{StableId: 1, ParseOrder: 99}.Less(SourceId{StableId: 2, ParseOrder: 0}))
}
