package alloc

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/internal/format"
)

// liveBlock records what a test wrote into an allocated block.
type liveBlock struct {
	size int
	tag  byte
}

// Test_RandomOps_KeepHeapConsistent drives a fixed-seed mix of malloc, free and
// realloc, running the checker after every operation and verifying that no
// live payload is ever disturbed.
func Test_RandomOps_KeepHeapConsistent(t *testing.T) {
	seeds := []uint64{1, 7, 42, 1337}
	if testing.Short() {
		seeds = seeds[:1]
	}

	for _, seed := range seeds {
		t.Run("", func(t *testing.T) {
			runRandomOps(t, seed, 3000)
		})
	}
}

func runRandomOps(t *testing.T, seed uint64, ops int) {
	rng := rand.New(rand.NewPCG(seed, seed^0x9E3779B97F4A7C15))
	a := newTestAllocator(t, 32<<20)

	live := make(map[Ptr]liveBlock)
	var order []Ptr // live handles, for random picks
	tag := byte(0)

	randSize := func() int {
		switch rng.IntN(10) {
		case 0:
			return 1 + rng.IntN(16)
		case 1:
			return 4096 + rng.IntN(20000)
		default:
			return 1 + rng.IntN(600)
		}
	}
	pick := func() (int, Ptr) {
		i := rng.IntN(len(order))
		return i, order[i]
	}
	drop := func(i int) {
		order[i] = order[len(order)-1]
		order = order[:len(order)-1]
	}

	for op := range ops {
		switch r := rng.IntN(10); {
		case r < 5 || len(order) == 0:
			size := randSize()
			p, err := a.Malloc(size)
			require.NoError(t, err, "op %d malloc(%d)", op, size)
			require.True(t, format.IsAligned(int(p)), "op %d: %s misaligned", op, p)
			require.GreaterOrEqual(t, a.UsableSize(p), size)
			_, dup := live[p]
			require.False(t, dup, "op %d: %s handed out twice", op, p)

			tag++
			fill(a, p, size, tag)
			live[p] = liveBlock{size: size, tag: tag}
			order = append(order, p)

		case r < 8:
			i, p := pick()
			requireFilled(t, a, p, live[p].size, live[p].tag)
			a.Free(p)
			delete(live, p)
			drop(i)

		default:
			i, p := pick()
			old := live[p]
			size := randSize()
			q, err := a.Realloc(p, size)
			require.NoError(t, err, "op %d realloc(%s, %d)", op, p, size)
			requireFilled(t, a, q, min(old.size, size), old.tag)

			tag++
			fill(a, q, size, tag)
			delete(live, p)
			live[q] = liveBlock{size: size, tag: tag}
			order[i] = q
		}

		require.NoError(t, a.Check(), "op %d", op)
	}

	for p, b := range live {
		requireFilled(t, a, p, b.size, b.tag)
		require.True(t, a.IsAllocated(p))
	}
	for _, p := range order {
		a.Free(p)
	}
	requireHeapOK(t, a)
	require.Len(t, a.Blocks(), 1, "freeing everything leaves one free block")
}
