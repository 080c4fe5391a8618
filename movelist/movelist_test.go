package movelist

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFromSliceToSliceRoundtrip(t *testing.T) {
	entries := []MoveEntry{
		{Dst: 0x2000, Src: 0x1000, Len: 0x100},
		{Dst: 0x3000, Src: 0x1100, Len: 0x200},
	}
	l := FromSlice(entries)
	require.Equal(t, entries, l.ToSlice())
	require.False(t, l.Empty())
}

func TestCloneIsIndependent(t *testing.T) {
	l := FromSlice([]MoveEntry{{Dst: 1, Src: 2, Len: 3}})
	c := l.Clone()
	slot := c.Front()
	e, _ := slot.Peek()
	e.Len = 99
	slot.Replace(e)
	require.EqualValues(t, 3, l.ToSlice()[0].Len, "mutating the clone must not affect the original")
	require.EqualValues(t, 99, c.ToSlice()[0].Len)
}

func TestPushBackAndFront(t *testing.T) {
	l := New()
	require.True(t, l.Empty())
	l.PushBack(MoveEntry{Dst: 1, Src: 2, Len: 3})
	l.PushBack(MoveEntry{Dst: 4, Src: 5, Len: 6})
	slot := l.Front()
	first, ok := slot.Peek()
	require.True(t, ok)
	require.EqualValues(t, 1, first.Dst)
	next := slot.Advance()
	second, ok := next.Peek()
	require.True(t, ok)
	require.EqualValues(t, 4, second.Dst)
	_, ok = next.Advance().Peek()
	require.False(t, ok)
}

func TestDeleteAdvancesToSuccessor(t *testing.T) {
	l := FromSlice([]MoveEntry{
		{Dst: 1, Src: 1, Len: 1},
		{Dst: 2, Src: 2, Len: 2},
		{Dst: 3, Src: 3, Len: 3},
	})
	slot := l.Front().Advance()
	l.Delete(slot)
	require.Equal(t, []MoveEntry{{Dst: 1, Src: 1, Len: 1}, {Dst: 3, Src: 3, Len: 3}}, l.ToSlice())
	remaining, ok := slot.Peek()
	require.True(t, ok)
	require.EqualValues(t, 3, remaining.Dst)
}

func TestFreeAll(t *testing.T) {
	l := FromSlice([]MoveEntry{{Dst: 1, Src: 1, Len: 1}, {Dst: 2, Src: 2, Len: 2}})
	l.FreeAll(l.Front())
	require.True(t, l.Empty())
}

func TestSplitAtPrefixMiddleSuffix(t *testing.T) {
	l := FromSlice([]MoveEntry{{Dst: 0x2000, Src: 0x1000, Len: 0x100}})
	mid, err := l.SplitAt(l.Front(), 0x1010, 0x10)
	require.NoError(t, err)

	midEntry, ok := mid.Peek()
	require.True(t, ok)
	require.Equal(t, MoveEntry{Dst: 0x2010, Src: 0x1010, Len: 0x10}, midEntry)

	all := l.ToSlice()
	require.Len(t, all, 3)
	require.Equal(t, MoveEntry{Dst: 0x2000, Src: 0x1000, Len: 0x10}, all[0])
	require.Equal(t, MoveEntry{Dst: 0x2010, Src: 0x1010, Len: 0x10}, all[1])
	require.Equal(t, MoveEntry{Dst: 0x2020, Src: 0x1020, Len: 0xe0}, all[2])
}

func TestSplitAtWholeEntryIsNoop(t *testing.T) {
	l := FromSlice([]MoveEntry{{Dst: 0x2000, Src: 0x1000, Len: 0x100}})
	mid, err := l.SplitAt(l.Front(), 0x1000, 0x100)
	require.NoError(t, err)
	require.Len(t, l.ToSlice(), 1)
	e, _ := mid.Peek()
	require.Equal(t, MoveEntry{Dst: 0x2000, Src: 0x1000, Len: 0x100}, e)
}

func TestSplitAtMiddleAndSuffixOnly(t *testing.T) {
	l := FromSlice([]MoveEntry{{Dst: 0x2000, Src: 0x1000, Len: 0x100}})
	mid, err := l.SplitAt(l.Front(), 0x1000, 0x10)
	require.NoError(t, err)
	all := l.ToSlice()
	require.Len(t, all, 2)
	e, _ := mid.Peek()
	require.Equal(t, all[0], e)
	require.Equal(t, MoveEntry{Dst: 0x2010, Src: 0x1010, Len: 0xf0}, all[1])
}

func TestSplitAtOutOfRangeErrors(t *testing.T) {
	l := FromSlice([]MoveEntry{{Dst: 0x2000, Src: 0x1000, Len: 0x100}})
	_, err := l.SplitAt(l.Front(), 0x1200, 0x10)
	require.Error(t, err)
	_, err = l.SplitAt(l.Front(), 0x1000, 0)
	require.Error(t, err)
}
