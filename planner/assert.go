package planner

import (
	"fmt"

	"github.com/mattkeenan/shuffleplan/addrmap"
	"github.com/mattkeenan/shuffleplan/memaddr"
	"github.com/mattkeenan/shuffleplan/movelist"
)

// assertAllocatedSource panics if a pending fragment's source range is
// not wholly marked Allocated in priv. Only ever run under
// Options.StrictInvariants; a violation here means Compute itself
// corrupted its bookkeeping, not that the caller gave bad input.
func assertAllocatedSource(priv *addrmap.Map, f movelist.MoveEntry) {
	if !priv.Contains(f.Src, f.Len, addrmap.Allocated) {
		panic(fmt.Sprintf("planner: invariant violated: pending source [%#x,+%#x) is not allocated", f.Src, f.Len))
	}
}

// assertDestinationAllocated panics if a just-committed destination
// range is not wholly marked Allocated in priv.
func assertDestinationAllocated(priv *addrmap.Map, dst, length memaddr.Addr) {
	if !priv.Contains(dst, length, addrmap.Allocated) {
		panic(fmt.Sprintf("planner: invariant violated: committed destination [%#x,+%#x) is not allocated", dst, length))
	}
}
