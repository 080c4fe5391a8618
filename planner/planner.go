// Package planner computes an ordered, non-overlapping copy sequence
// that relocates every requested byte range to its destination,
// evicting obstructing pending moves into scratch space when direct
// placement isn't possible.
//
// This is the scheduling core of the shuffleplan module: the rest of
// the repository exists to feed it inputs (cmd/shuffleplan) and to
// give it somewhere to keep its working state (addrmap, movelist,
// overlap). The algorithm itself — classify the overlap, try a direct
// claim, fall back to evicting whatever occupies the critical byte,
// commit — is ported line for line from the bootloader relocation
// planner this module's semantics are drawn from; only the
// representation of "a pointer to a list" changed, from a raw C
// parent-pointer to the movelist.Slot cursor.
package planner

import (
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/mattkeenan/shuffleplan/addrmap"
	"github.com/mattkeenan/shuffleplan/internal/shufflelog"
	"github.com/mattkeenan/shuffleplan/memaddr"
	"github.com/mattkeenan/shuffleplan/movelist"
	"github.com/mattkeenan/shuffleplan/overlap"
)

// Options controls diagnostics. It never changes planning semantics.
type Options struct {
	// Logger receives structured trace events. Defaults to a no-op.
	Logger shufflelog.Logger
	// StrictInvariants runs the per-iteration assertions of the
	// testable-properties section on every step, panicking with a
	// diagnostic on violation. Meant for tests and debug builds, not
	// production use: a real violation means the planner itself is
	// broken, not that the input was bad.
	StrictInvariants bool
}

// Compute schedules copies that relocate every fragment in ifrags to
// its requested destination, given the free space and existing
// classifications in memmap. It returns the emitted copy sequence, or
// an error wrapping ErrInvalidInput, ErrOutOfMemory, or ErrInfeasible.
//
// memmap is read, never mutated: Compute builds its own private copy
// before touching anything.
func Compute(ifrags []movelist.MoveEntry, memmap *addrmap.Map, opts Options) ([]movelist.MoveEntry, error) {
	if opts.Logger == nil {
		opts.Logger = shufflelog.Nop()
	}
	log := opts.Logger.Named("planner")

	if err := validate(ifrags); err != nil {
		return nil, err
	}

	frags := movelist.FromSlice(ifrags)
	priv := addrmap.New()

	var seedErr error
	memmap.Regions(func(rng memaddr.Range, kind addrmap.RegionKind) bool {
		k := kind
		if k == addrmap.Zeroed {
			k = addrmap.Free
		}
		if err := priv.Add(rng.Start, rng.Len, k); err != nil {
			seedErr = err
			return false
		}
		return true
	})
	if seedErr != nil {
		return nil, fmt.Errorf("%w: seeding address map: %v", ErrOutOfMemory, seedErr)
	}
	for _, f := range ifrags {
		if err := priv.Add(f.Src, f.Len, addrmap.Allocated); err != nil {
			return nil, fmt.Errorf("%w: marking source allocated: %v", ErrOutOfMemory, err)
		}
	}

	out := movelist.New()

	for {
		progress := false
		slot := frags.Front()

		for {
			f, ok := slot.Peek()
			if !ok {
				break
			}

			if opts.StrictInvariants {
				assertAllocatedSource(priv, f)
			}

			if f.Dst == f.Src {
				frags.Delete(slot)
				progress = true
				continue
			}

			need := overlap.Classify(f.Dst, f.Src, f.Len)
			log.Debugw("classified fragment",
				"dst", f.Dst, "src", f.Src, "len", humanize.Bytes(f.Len),
				"needBase", need.Base, "needLen", need.Len,
				"critical", need.Critical, "dir", need.Dir.String())

			copyLen, reverse, err := claimOrEvict(priv, frags, out, slot, f, need, log)
			if err != nil {
				return nil, err
			}

			newSlot, err := commitChunk(priv, frags, out, slot, f, need.Len, copyLen, reverse)
			if err != nil {
				return nil, err
			}
			if opts.StrictInvariants {
				dst, n := f.Dst, f.Len
				if copyLen < need.Len {
					n = copyLen
					if reverse {
						dst += f.Len - copyLen
					}
				}
				assertDestinationAllocated(priv, dst, n)
			}
			slot = newSlot
			progress = true
		}

		if frags.Empty() {
			return out.ToSlice(), nil
		}
		if !progress {
			return nil, fmt.Errorf("%w: no progress possible with %d fragment(s) remaining", ErrInfeasible, countRemaining(frags))
		}
	}
}

func countRemaining(l *movelist.List) int {
	return len(l.ToSlice())
}

// claimOrEvict resolves one pending entry's need-window, either by
// claiming free space directly or by evicting whatever pending entry
// currently occupies the critical byte. It returns how many bytes of
// the need-window were cleared and whether a short commit must take
// its bytes from the tail of f's range rather than the head — true
// whenever need.Dir is Reverse, regardless of which path cleared the
// window.
func claimOrEvict(
	priv *addrmap.Map,
	frags *movelist.List,
	out *movelist.List,
	slot movelist.Slot,
	f movelist.MoveEntry,
	need overlap.Need,
	log shufflelog.Logger,
) (copyLen memaddr.Addr, reverse bool, err error) {
	if region, ok := priv.IsFreeZone(need.Critical, 1); ok {
		var avail memaddr.Addr
		if need.Dir == overlap.Reverse {
			avail = (need.Base + need.Len) - region.Start
		} else {
			avail = region.End() - need.Base
		}
		if avail > 0 {
			copyLen = min(need.Len, avail)
			if need.Dir == overlap.Reverse {
				if err := priv.Add(need.Base+need.Len-copyLen, copyLen, addrmap.Allocated); err != nil {
					return 0, false, fmt.Errorf("%w: claiming destination: %v", ErrOutOfMemory, err)
				}
			} else {
				if err := priv.Add(need.Base, copyLen, addrmap.Allocated); err != nil {
					return 0, false, fmt.Errorf("%w: claiming destination: %v", ErrOutOfMemory, err)
				}
			}
			return copyLen, need.Dir == overlap.Reverse, nil
		}
	}

	oSlot, o, found := findEvictable(slot, need.Critical)
	if !found {
		return 0, false, fmt.Errorf("%w: no pending fragment occupies critical byte %#x", ErrInfeasible, need.Critical)
	}

	targetDst, evictSrc, evictLen, err := planEviction(priv, o, need)
	if err != nil {
		return 0, false, err
	}

	log.Debugw("evicting",
		"occupant_src", o.Src, "occupant_dst", o.Dst, "occupant_len", humanize.Bytes(o.Len),
		"evict_src", evictSrc, "evict_len", humanize.Bytes(evictLen), "evict_dst", targetDst)

	if err := priv.Add(targetDst, evictLen, addrmap.Allocated); err != nil {
		return 0, false, fmt.Errorf("%w: claiming eviction target: %v", ErrOutOfMemory, err)
	}

	if evictLen < o.Len {
		split, err := frags.SplitAt(oSlot, evictSrc, evictLen)
		if err != nil {
			return 0, false, fmt.Errorf("%w: splitting evicted fragment: %v", ErrOutOfMemory, err)
		}
		oSlot = split
	}

	out.PushBack(movelist.MoveEntry{Dst: targetDst, Src: evictSrc, Len: evictLen})

	oEntry, _ := oSlot.Peek()
	oEntry.Src = targetDst
	oSlot.Replace(oEntry)

	// If the eviction freed more than f's need-window requires, give
	// the excess back to the free pool: first the part of the vacated
	// range below need.Base (after which evictSrc is moved up to
	// need.Base), then whatever still extends past evictSrc+need.Len.
	if evictLen > need.Len {
		if evictSrc < need.Base {
			if err := priv.Add(evictSrc, need.Base-evictSrc, addrmap.Free); err != nil {
				return 0, false, fmt.Errorf("%w: releasing excess eviction space: %v", ErrOutOfMemory, err)
			}
			evictLen -= need.Base - evictSrc
			evictSrc = need.Base
		}
		if evictLen > need.Len {
			if err := priv.Add(evictSrc+need.Len, evictLen-need.Len, addrmap.Free); err != nil {
				return 0, false, fmt.Errorf("%w: releasing excess eviction space: %v", ErrOutOfMemory, err)
			}
			evictLen = need.Len
		}
	}

	return evictLen, need.Dir == overlap.Reverse, nil
}

// findEvictable walks the pending list after slot looking for the
// entry whose source range covers critical.
func findEvictable(after movelist.Slot, critical memaddr.Addr) (movelist.Slot, movelist.MoveEntry, bool) {
	cur := after.Advance()
	for {
		e, ok := cur.Peek()
		if !ok {
			return movelist.Slot{}, movelist.MoveEntry{}, false
		}
		if e.Src <= critical && e.Src+e.Len > critical {
			return cur, e, true
		}
		cur = cur.Advance()
	}
}

// planEviction decides where to move o so it stops occupying the
// critical byte, preferring its own destination, then any free region
// that fits it whole, then the largest free region available (which
// may only fit part of o).
func planEviction(priv *addrmap.Map, o movelist.MoveEntry, need overlap.Need) (dst, src, length memaddr.Addr, err error) {
	if _, ok := priv.IsFreeZone(o.Dst, o.Len); ok {
		return o.Dst, o.Src, o.Len, nil
	}
	if start, _, ok := priv.SmallestFitFor(o.Len); ok {
		return start, o.Src, o.Len, nil
	}
	start, flen, ok := priv.LargestFree()
	if !ok {
		return 0, 0, 0, fmt.Errorf("%w: no free memory to evict %#x bytes at %#x into", ErrInfeasible, o.Len, o.Src)
	}
	if need.Dir == overlap.Reverse {
		src = max(o.Src, memaddr.SatSub(need.Critical+1, flen))
		length = need.Critical + 1 - src
	} else {
		src = need.Critical
		length = min(flen, o.Len-(need.Critical-o.Src))
	}
	return start, src, length, nil
}

// commitChunk finalizes the commit step for f: if copyLen falls short
// of needLen, f is split down to the copyLen-sized slice at the
// correct end (the tail, for a reverse commit) before being emitted,
// leaving the remainder pending for the next pass. Otherwise the
// entire entry commits as a single copy, which is always correct for
// an overlapping move once its need-window is satisfied.
func commitChunk(
	priv *addrmap.Map,
	frags *movelist.List,
	out *movelist.List,
	slot movelist.Slot,
	f movelist.MoveEntry,
	needLen, copyLen memaddr.Addr,
	reverse bool,
) (movelist.Slot, error) {
	if copyLen < needLen {
		src := f.Src
		if reverse {
			src += f.Len - copyLen
		}
		split, err := frags.SplitAt(slot, src, copyLen)
		if err != nil {
			return movelist.Slot{}, fmt.Errorf("%w: splitting committed fragment: %v", ErrOutOfMemory, err)
		}
		slot = split
		f, _ = slot.Peek()
	}

	out.PushBack(movelist.MoveEntry{Dst: f.Dst, Src: f.Src, Len: f.Len})

	if err := priv.Add(f.Dst, f.Len, addrmap.Allocated); err != nil {
		return movelist.Slot{}, fmt.Errorf("%w: marking destination allocated: %v", ErrOutOfMemory, err)
	}

	var freeBase, freeLen memaddr.Addr
	switch {
	case f.Dst > f.Src:
		freeBase = f.Src
		freeLen = min(f.Len, f.Dst-f.Src)
	case f.Src >= f.Dst+f.Len:
		freeBase = f.Src
		freeLen = f.Len
	default:
		freeLen = f.Src - f.Dst
		freeBase = f.Dst + f.Len
	}
	if freeLen > 0 {
		if err := priv.Add(freeBase, freeLen, addrmap.Free); err != nil {
			return movelist.Slot{}, fmt.Errorf("%w: marking vacated source free: %v", ErrOutOfMemory, err)
		}
	}

	frags.Delete(slot)
	return slot, nil
}
