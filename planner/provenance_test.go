package planner

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mattkeenan/shuffleplan/movelist"
)

// requireProvenance implements the abstract byte-array correctness
// model: it replays every emitted copy against a synthetic buffer
// seeded so each address's initial content encodes its own address,
// then checks that every originally requested (dst, src, len) triple
// ends up holding the bytes that were at its source address before
// any copying began. This is the correctness property a plan actually
// has to satisfy; the exact number and order of emitted copies is an
// implementation detail of how eviction happened to chop things up.
func requireProvenance(t *testing.T, requested, emitted []movelist.MoveEntry) {
	t.Helper()

	var bound uint64
	for _, f := range requested {
		if e := f.Src + f.Len; e > bound {
			bound = e
		}
		if e := f.Dst + f.Len; e > bound {
			bound = e
		}
	}
	for _, m := range emitted {
		if e := m.Src + m.Len; e > bound {
			bound = e
		}
		if e := m.Dst + m.Len; e > bound {
			bound = e
		}
	}

	buf := make([]uint64, bound)
	for i := range buf {
		buf[i] = uint64(i)
	}

	for _, m := range emitted {
		tmp := make([]uint64, m.Len)
		copy(tmp, buf[m.Src:m.Src+m.Len])
		copy(buf[m.Dst:m.Dst+m.Len], tmp)
	}

	for _, f := range requested {
		for i := uint64(0); i < f.Len; i++ {
			require.Equal(t, f.Src+i, buf[f.Dst+i],
				"byte at dst %#x should carry the value originally at src %#x", f.Dst+i, f.Src+i)
		}
	}
}
