package arena

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAlloc_FreeAndReuse_BumpsGeneration(t *testing.T) {
	a := New()
	s1 := a.Alloc()
	a.Set(s1, "hello")
	a.Free(s1)

	s2 := a.Alloc()
	require.Equal(t, s1.Index, s2.Index, "freed slots are reused by index")
	require.NotEqual(t, s1.Generation, s2.Generation, "generation must differ so the stale SlotId fails validity")
	require.False(t, a.Valid(s1), "stale SlotId must be invalid after reuse")
	require.True(t, a.Valid(s2))
}

func TestGet_StaleSlotId_Fails(t *testing.T) {
	a := New()
	s := a.Alloc()
	a.Free(s)
	_, ok := a.Get(s)
	require.False(t, ok)
}

func TestFree_InvalidSlot_Panics(t *testing.T) {
	a := New()
	s := a.Alloc()
	a.Free(s)
	require.Panics(t, func() { a.Free(s) })
}

func TestInternField_Idempotent(t *testing.T) {
	a := New()
	id1 := a.InternField("name")
	id2 := a.InternField("name")
	require.Equal(t, id1, id2)

	id3 := a.InternField("other")
	require.NotEqual(t, id1, id3)

	name, ok := a.FieldName(id1)
	require.True(t, ok)
	require.Equal(t, "name", name)
}

func TestIntern_RestorePreservesIds(t *testing.T) {
	a := New()
	_ = a.InternField("a")
	_ = a.InternField("b")
	saved := a.FieldNames()

	b := New()
	b.RestoreFieldNames(saved)
	require.Equal(t, uint32(0), b.InternField("a"))
	require.Equal(t, uint32(1), b.InternField("b"))
	require.Equal(t, uint32(2), b.InternField("c"), "new names still append after restore")
}

func TestStats(t *testing.T) {
	a := New()
	s1 := a.Alloc()
	_ = a.Alloc()
	a.Free(s1)

	stats := a.Stats()
	require.Equal(t, 1, stats.Live)
	require.Equal(t, 1, stats.FreeListed)
	require.Equal(t, 2, stats.Capacity)
}

func TestEach_OnlyLiveSlots(t *testing.T) {
	a := New()
	s1 := a.Alloc()
	a.Set(s1, 1)
	s2 := a.Alloc()
	a.Set(s2, 2)
	a.Free(s1)

	seen := map[uint32]any{}
	a.Each(func(s SlotId, ext any) { seen[s.Index] = ext })
	require.Len(t, seen, 1)
	require.Equal(t, 2, seen[s2.Index])
}
