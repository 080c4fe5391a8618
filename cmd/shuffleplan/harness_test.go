package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mattkeenan/shuffleplan/movelist"
)

func TestParseHarness(t *testing.T) {
	input := "# scratch region\n0 2000 1000\n2000 1000 1000\n\n"
	moves, mm, err := parseHarness(strings.NewReader(input))
	require.NoError(t, err)
	require.Equal(t, []movelist.MoveEntry{{Dst: 0x2000, Src: 0x1000, Len: 0x1000}}, moves)
	rng, ok := mm.IsFreeZone(0x2000, 0x1000)
	require.True(t, ok)
	require.Equal(t, uint64(0x2000), rng.Start)
}

func TestParseHarnessRejectsMalformedLine(t *testing.T) {
	_, _, err := parseHarness(strings.NewReader("2000 1000\n"))
	require.Error(t, err)
}

func TestParseHarnessRejectsBadHex(t *testing.T) {
	_, _, err := parseHarness(strings.NewReader("zzzz 1000 1000\n"))
	require.Error(t, err)
}

func TestFormatCopy(t *testing.T) {
	got := formatCopy(movelist.MoveEntry{Dst: 0x2000, Src: 0x1000, Len: 0x1000})
	require.Equal(t, "0x00001000 bytes at 0x00001000 -> 0x00002000", got)
}
