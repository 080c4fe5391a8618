package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mattkeenan/shuffleplan/addrmap"
	"github.com/mattkeenan/shuffleplan/movelist"
)

// parseHarness reads the test harness input format: whitespace-separated
// hex triples "d s l" per line. A line with d = 0 declares a free
// scratch region (start=s, len=l); any other d declares a requested
// move (dst=d, src=s, len=l). Blank lines and lines starting with '#'
// are ignored.
func parseHarness(r io.Reader) ([]movelist.MoveEntry, *addrmap.Map, error) {
	moves := make([]movelist.MoveEntry, 0)
	mm := addrmap.New()

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 3 {
			return nil, nil, fmt.Errorf("line %d: expected 3 hex fields, got %d", lineNo, len(fields))
		}
		d, err := strconv.ParseUint(fields[0], 16, 64)
		if err != nil {
			return nil, nil, fmt.Errorf("line %d: bad dst field %q: %w", lineNo, fields[0], err)
		}
		s, err := strconv.ParseUint(fields[1], 16, 64)
		if err != nil {
			return nil, nil, fmt.Errorf("line %d: bad src field %q: %w", lineNo, fields[1], err)
		}
		l, err := strconv.ParseUint(fields[2], 16, 64)
		if err != nil {
			return nil, nil, fmt.Errorf("line %d: bad len field %q: %w", lineNo, fields[2], err)
		}

		if d == 0 {
			if err := mm.Add(s, l, addrmap.Free); err != nil {
				return nil, nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			continue
		}
		moves = append(moves, movelist.MoveEntry{Dst: d, Src: s, Len: l})
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, err
	}
	return moves, mm, nil
}

// formatCopy renders one emitted copy in the harness output format.
func formatCopy(m movelist.MoveEntry) string {
	return fmt.Sprintf("0x%08x bytes at 0x%08x -> 0x%08x", m.Len, m.Src, m.Dst)
}
