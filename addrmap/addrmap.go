// Package addrmap provides AddressMap, an ordered, coalesced index of
// address ranges tagged by kind.
//
// The index is an adaptation of the ordered skiplist used elsewhere in
// this codebase's lineage for zero-copy access to an existing item
// array: the same "walk down from the top level, remember the
// predecessor at each level" search that produces update/insert slots
// there produces the boundary-node slots Add needs here. Unlike that
// skiplist, a Map owns the records it indexes outright (there is no
// backing array it points into), so nodes carry their region kind
// directly rather than a pointer to external data, and there is no
// concurrent access to guard: a Map is built, queried, and mutated by
// a single planning call and never shared.
package addrmap

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/mattkeenan/shuffleplan/memaddr"
)

// RegionKind tags a span of the address space.
type RegionKind int

const (
	// Free memory is available for scratch use during planning.
	Free RegionKind = iota
	// Allocated memory is claimed, either by a source that has not yet
	// been consumed or by a destination that has already been written.
	Allocated
	// Reserved memory is off limits; the planner never claims it.
	Reserved
	// Zeroed memory reads as zero and is equivalent to Free for planning.
	Zeroed
	// End is the sentinel kind of the record marking the top of the map.
	End
)

func (k RegionKind) String() string {
	switch k {
	case Free:
		return "free"
	case Allocated:
		return "allocated"
	case Reserved:
		return "reserved"
	case Zeroed:
		return "zeroed"
	case End:
		return "end"
	default:
		return fmt.Sprintf("RegionKind(%d)", int(k))
	}
}

const (
	p               = 0.25
	defaultMaxLevel = 16
)

type node struct {
	start   memaddr.Addr
	kind    RegionKind
	forward []*node
}

// Map is an ordered sequence of region records, coalesced so that no
// two adjacent records share a kind. It always carries exactly one End
// record, at the current upper bound of the tracked address space.
type Map struct {
	header   *node
	end      *node
	level    int
	maxLevel int
	rnd      *rand.Rand
}

// New returns an empty Map: a single End record at address 0.
func New() *Map {
	end := &node{kind: End, forward: make([]*node, defaultMaxLevel)}
	header := &node{forward: make([]*node, defaultMaxLevel)}
	for i := range header.forward {
		header.forward[i] = end
	}
	return &Map{
		header:   header,
		end:      end,
		level:    0,
		maxLevel: defaultMaxLevel,
		rnd:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (m *Map) randomLevel() int {
	level := 0
	for m.rnd.Float64() < p && level < m.maxLevel-1 {
		level++
	}
	return level
}

// search returns, for each level, the last node whose start is < key
// (the predecessor slots an insert or delete at key would touch), and
// the node at key itself if one already exists.
func (m *Map) search(key memaddr.Addr) ([]*node, *node) {
	update := make([]*node, m.maxLevel)
	cur := m.header
	for i := m.level; i >= 0; i-- {
		for cur.forward[i] != m.end && cur.forward[i].start < key {
			cur = cur.forward[i]
		}
		update[i] = cur
	}
	next := cur.forward[0]
	if next != m.end && next.start == key {
		return update, next
	}
	return update, nil
}

// setBoundary creates or overwrites the boundary record at key.
func (m *Map) setBoundary(key memaddr.Addr, kind RegionKind) {
	update, cur := m.search(key)
	if cur != nil {
		cur.kind = kind
		return
	}
	level := m.randomLevel()
	if level > m.level {
		for i := m.level + 1; i <= level; i++ {
			update[i] = m.header
		}
		m.level = level
	}
	n := &node{start: key, kind: kind, forward: make([]*node, level+1)}
	for i := 0; i <= level; i++ {
		n.forward[i] = update[i].forward[i]
		update[i].forward[i] = n
	}
}

// deleteBoundary removes the boundary record at key, if one exists.
func (m *Map) deleteBoundary(key memaddr.Addr) {
	update, cur := m.search(key)
	if cur == nil {
		return
	}
	for i := 0; i < len(cur.forward); i++ {
		if update[i].forward[i] == cur {
			update[i].forward[i] = cur.forward[i]
		}
	}
	for m.level > 0 && m.header.forward[m.level] == m.end {
		m.level--
	}
}

// coalesceAt merges the record at key into its predecessor if they
// share a kind, deleting the record at key.
func (m *Map) coalesceAt(key memaddr.Addr) {
	update, cur := m.search(key)
	if cur == nil {
		return
	}
	pred := update[0]
	if pred == m.header {
		return
	}
	if pred.kind == cur.kind {
		m.deleteBoundary(key)
	}
}

// Add inserts the region [start, start+len) with the given kind,
// overwriting any overlapping prior classification, and coalesces the
// result with neighboring records of equal kind. If start+len reaches
// or passes the map's current upper bound, the bound grows to
// start+len.
func (m *Map) Add(start, length memaddr.Addr, kind RegionKind) error {
	if length == 0 {
		return nil
	}
	end := start + length
	if end < start {
		return fmt.Errorf("addrmap: range [%#x,+%#x) overflows the address space", start, length)
	}

	if m.end.start > 0 && start > m.end.start {
		// Growing the bound past a gap beyond any previously declared
		// region: the gap must not silently inherit whatever kind was
		// last declared at the old bound, so seal it as Allocated
		// before extending. Without this, two disjoint Free regions
		// added back to back would coalesce across the untouched
		// space between them.
		m.setBoundary(m.end.start, Allocated)
	}

	if start >= m.end.start || end >= m.end.start {
		m.end.start = end
	} else {
		// end stays within the existing bound; make sure a boundary
		// exists at `end` so the region past it keeps its old kind.
		update, cur := m.search(end)
		if cur == nil {
			// No predecessor means [start, end) is being carved out of
			// space nothing ever declared; default its far side to
			// Allocated for the same reason an unsealed gap defaults to
			// Allocated above, rather than leaking the End sentinel's
			// kind into an interior record.
			tailKind := Allocated
			if update[0] != m.header {
				tailKind = update[0].kind
			}
			m.setBoundary(end, tailKind)
		}
	}

	m.removeBetween(start, end)
	m.setBoundary(start, kind)

	if end < m.end.start {
		m.coalesceAt(end)
	}
	m.coalesceAt(start)
	return nil
}

// removeBetween deletes every boundary record strictly between start
// and end: once [start,end) is reclassified as one kind, the old
// interior boundaries it used to contain are superseded.
func (m *Map) removeBetween(start, end memaddr.Addr) {
	var toRemove []memaddr.Addr
	for n := m.header.forward[0]; n != m.end; n = n.forward[0] {
		if n.start > start && n.start < end {
			toRemove = append(toRemove, n.start)
		}
	}
	for _, key := range toRemove {
		m.deleteBoundary(key)
	}
}

// regionAt returns the full region (start, kind, and end) containing
// addr, or ok=false if addr is at or past the map's upper bound.
func (m *Map) regionAt(addr memaddr.Addr) (memaddr.Range, RegionKind, bool) {
	if addr >= m.end.start {
		return memaddr.Range{}, End, false
	}
	update, cur := m.search(addr)
	var n *node
	if cur != nil {
		n = cur
	} else {
		n = update[0]
		if n == m.header {
			return memaddr.Range{}, End, false
		}
	}
	return memaddr.Range{Start: n.start, Len: n.forward[0].start - n.start}, n.kind, true
}

// IsFreeZone returns the containing region iff addr lies inside a Free
// region that extends at least length bytes past addr.
func (m *Map) IsFreeZone(addr, length memaddr.Addr) (memaddr.Range, bool) {
	rng, kind, ok := m.regionAt(addr)
	if !ok || kind != Free {
		return memaddr.Range{}, false
	}
	if rng.End()-addr < length {
		return memaddr.Range{}, false
	}
	return rng, true
}

// Contains reports whether [addr, addr+length) lies entirely within a
// single region of the given kind.
func (m *Map) Contains(addr, length memaddr.Addr, kind RegionKind) bool {
	rng, k, ok := m.regionAt(addr)
	if !ok || k != kind {
		return false
	}
	return rng.End()-addr >= length
}

// SmallestFitFor returns the smallest Free region whose length is at
// least length, tie-breaking on the lowest start.
func (m *Map) SmallestFitFor(length memaddr.Addr) (memaddr.Addr, memaddr.Addr, bool) {
	var bestStart, bestLen memaddr.Addr
	found := false
	for n := m.header.forward[0]; n != m.end; n = n.forward[0] {
		if n.kind != Free {
			continue
		}
		regionLen := n.forward[0].start - n.start
		if regionLen < length {
			continue
		}
		if !found || regionLen < bestLen {
			bestStart, bestLen, found = n.start, regionLen, true
		}
	}
	return bestStart, bestLen, found
}

// LargestFree returns the Free region of maximum length, tie-breaking
// on the lowest start.
func (m *Map) LargestFree() (memaddr.Addr, memaddr.Addr, bool) {
	var bestStart, bestLen memaddr.Addr
	found := false
	for n := m.header.forward[0]; n != m.end; n = n.forward[0] {
		if n.kind != Free {
			continue
		}
		regionLen := n.forward[0].start - n.start
		if !found || regionLen > bestLen {
			bestStart, bestLen, found = n.start, regionLen, true
		}
	}
	return bestStart, bestLen, found
}

// Regions walks the coalesced map in address order, including the
// trailing End sentinel's bound as the final region's end.
func (m *Map) Regions(yield func(memaddr.Range, RegionKind) bool) {
	for n := m.header.forward[0]; n != m.end; n = n.forward[0] {
		rng := memaddr.Range{Start: n.start, Len: n.forward[0].start - n.start}
		if !yield(rng, n.kind) {
			return
		}
	}
}

// Bound returns the current upper bound of the tracked address space.
func (m *Map) Bound() memaddr.Addr {
	return m.end.start
}

// Clone deep-copies the map, preserving region order and kinds but
// rebuilding the index with fresh random levels, mirroring the
// teacher skiplist's Copy().
func (m *Map) Clone() *Map {
	out := New()
	out.end.start = m.end.start
	m.Regions(func(rng memaddr.Range, kind RegionKind) bool {
		out.setBoundary(rng.Start, kind)
		return true
	})
	return out
}
