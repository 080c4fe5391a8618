// Package movelist provides a singly-linked list of pending or emitted
// copy entries, mutated in place through Slot handles.
//
// A Slot names the location through which a node is currently
// reachable — literally a pointer to the pointer that holds it, the
// same trick the planner's eviction search uses to splice, split, and
// delete mid-traversal without a doubly-linked list or a sentinel head
// node. Go permits **node directly; Slot wraps it behind a small
// cursor API (Peek/Replace/Advance, with List.Delete removing the node
// a Slot names) so callers outside this package never touch the raw
// pointer.
package movelist

import (
	"errors"
	"fmt"

	"github.com/mattkeenan/shuffleplan/memaddr"
)

// MoveEntry is a pending or emitted (dst, src, len) copy.
type MoveEntry struct {
	Dst memaddr.Addr
	Src memaddr.Addr
	Len memaddr.Addr
}

type node struct {
	entry MoveEntry
	next  *node
}

// List is a singly-linked chain of MoveEntry nodes.
type List struct {
	head *node
}

// New returns an empty list.
func New() *List {
	return &List{}
}

// FromSlice builds a list as a deep copy of entries, preserving order.
func FromSlice(entries []MoveEntry) *List {
	l := New()
	for _, e := range entries {
		l.PushBack(e)
	}
	return l
}

// ToSlice returns the list's entries in order.
func (l *List) ToSlice() []MoveEntry {
	out := make([]MoveEntry, 0)
	for n := l.head; n != nil; n = n.next {
		out = append(out, n.entry)
	}
	return out
}

// Clone deep-copies the list, preserving order.
func (l *List) Clone() *List {
	return FromSlice(l.ToSlice())
}

// Empty reports whether the list has no entries.
func (l *List) Empty() bool {
	return l.head == nil
}

// PushBack appends e and returns a Slot naming the new node.
func (l *List) PushBack(e MoveEntry) Slot {
	pp := &l.head
	for *pp != nil {
		pp = &(*pp).next
	}
	*pp = &node{entry: e}
	return Slot{pp: pp}
}

// Front returns a Slot naming the first node, or an empty Slot if the
// list has no entries.
func (l *List) Front() Slot {
	return Slot{pp: &l.head}
}

// Slot names the position in a List through which a node is currently
// reachable.
type Slot struct {
	pp **node
}

// Peek returns the entry at the slot, or ok=false if the slot names no
// node (end of list).
func (s Slot) Peek() (MoveEntry, bool) {
	n := *s.pp
	if n == nil {
		return MoveEntry{}, false
	}
	return n.entry, true
}

// Replace overwrites the entry at the slot in place.
func (s Slot) Replace(e MoveEntry) {
	(*s.pp).entry = e
}

// Advance returns a Slot naming the node after this one.
func (s Slot) Advance() Slot {
	n := *s.pp
	return Slot{pp: &n.next}
}

// Delete unlinks and discards the node at slot; afterward slot names
// what was the successor.
func (l *List) Delete(slot Slot) {
	n := *slot.pp
	if n == nil {
		return
	}
	*slot.pp = n.next
}

// FreeAll deletes every node reachable from slot.
func (l *List) FreeAll(slot Slot) {
	for {
		if _, ok := slot.Peek(); !ok {
			return
		}
		l.Delete(slot)
	}
}

// SplitAt requires that [start, start+length) lies entirely within the
// entry named by slot, and rewrites that entry into up to three
// consecutive entries — prefix, middle, suffix — each preserving the
// original entry's dst-src delta. It returns a Slot naming the middle
// entry, which is exactly [start, start+length).
func (l *List) SplitAt(slot Slot, start, length memaddr.Addr) (Slot, error) {
	n := *slot.pp
	if n == nil {
		return Slot{}, errors.New("movelist: split of an empty slot")
	}
	e := n.entry
	if length == 0 || start < e.Src || start+length > e.Src+e.Len {
		return Slot{}, fmt.Errorf("movelist: split range [%#x,+%#x) is not contained in entry [%#x,+%#x)",
			start, length, e.Src, e.Len)
	}
	delta := e.Dst - e.Src

	midPP := slot.pp
	cur := n

	if start > e.Src {
		prefixLen := start - e.Src
		mid := &node{
			entry: MoveEntry{Dst: start + delta, Src: start, Len: e.Len - prefixLen},
			next:  cur.next,
		}
		cur.entry.Len = prefixLen
		cur.next = mid
		midPP = &cur.next
		cur = mid
	}

	if cur.entry.Len > length {
		sufStart := cur.entry.Src + length
		sufLen := cur.entry.Len - length
		suf := &node{
			entry: MoveEntry{Dst: sufStart + delta, Src: sufStart, Len: sufLen},
			next:  cur.next,
		}
		cur.entry.Len = length
		cur.next = suf
	}

	return Slot{pp: midPP}, nil
}
