package planner

import (
	"fmt"
	"sort"

	"github.com/hashicorp/go-multierror"

	"github.com/mattkeenan/shuffleplan/movelist"
)

// validate checks every fragment for the invariants Compute relies on
// before it does any planning work, collecting every violation
// instead of stopping at the first one.
func validate(ifrags []movelist.MoveEntry) error {
	var errs *multierror.Error
	valid := make([]int, 0, len(ifrags))
	for i, f := range ifrags {
		if f.Len == 0 {
			errs = multierror.Append(errs, fmt.Errorf("fragment %d: length must be > 0", i))
			continue
		}
		ok := true
		if f.Src+f.Len < f.Src {
			errs = multierror.Append(errs, fmt.Errorf("fragment %d: source range [%#x,+%#x) overflows the address space", i, f.Src, f.Len))
			ok = false
		}
		if f.Dst+f.Len < f.Dst {
			errs = multierror.Append(errs, fmt.Errorf("fragment %d: destination range [%#x,+%#x) overflows the address space", i, f.Dst, f.Len))
			ok = false
		}
		if ok {
			valid = append(valid, i)
		}
	}

	sort.Slice(valid, func(a, b int) bool { return ifrags[valid[a]].Src < ifrags[valid[b]].Src })
	for k := 1; k < len(valid); k++ {
		prev, cur := ifrags[valid[k-1]], ifrags[valid[k]]
		if prev.Src+prev.Len > cur.Src {
			errs = multierror.Append(errs, fmt.Errorf(
				"fragment %d source [%#x,+%#x) overlaps fragment %d source [%#x,+%#x)",
				valid[k-1], prev.Src, prev.Len, valid[k], cur.Src, cur.Len))
		}
	}

	if err := errs.ErrorOrNil(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}
