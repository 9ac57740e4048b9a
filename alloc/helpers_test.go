package alloc

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/heap"
	"github.com/joshuapare/heapkit/internal/format"
)

// newTestAllocator creates an allocator on a slice-backed heap with the given
// limit (0 selects heap.DefaultLimit).
func newTestAllocator(t testing.TB, limit int) *SegregatedAllocator {
	t.Helper()

	a, err := New(heap.NewSlice(limit), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

// requireHeapOK fails the test if the heap checker reports a violation.
func requireHeapOK(t testing.TB, a *SegregatedAllocator) {
	t.Helper()
	require.NoError(t, a.Check())
}

// requireViolation runs the checker and asserts it reports prop at block bp.
func requireViolation(t *testing.T, a *SegregatedAllocator, bp Ptr, prop string) {
	t.Helper()

	err := a.Check()
	require.ErrorIs(t, err, ErrCorrupt)

	var ce *CheckError
	require.ErrorAs(t, err, &ce)
	require.Equal(t, prop, ce.Property, "detail: %s", ce.Detail)
	require.Equal(t, bp, ce.Block)
}

// mustMalloc allocates size bytes or fails the test.
func mustMalloc(t testing.TB, a *SegregatedAllocator, size int) Ptr {
	t.Helper()
	p, err := a.Malloc(size)
	require.NoError(t, err)
	require.NotEqual(t, Nil, p)
	return p
}

// fill writes v into the first n payload bytes of p.
func fill(a *SegregatedAllocator, p Ptr, n int, v byte) {
	b := a.Bytes(p)[:n]
	for i := range b {
		b[i] = v
	}
}

// requireFilled asserts the first n payload bytes of p all equal v.
func requireFilled(t testing.TB, a *SegregatedAllocator, p Ptr, n int, v byte) {
	t.Helper()
	for i, got := range a.Bytes(p)[:n] {
		if got != v {
			require.Failf(t, "payload damaged", "block %s byte %d: got 0x%02X want 0x%02X", p, i, got, v)
		}
	}
}

// blockAt returns the block starting at p from a heap walk.
func blockAt(t testing.TB, a *SegregatedAllocator, p Ptr) BlockInfo {
	t.Helper()
	for _, b := range a.Blocks() {
		if b.Ptr == p {
			return b
		}
	}
	require.Failf(t, "no such block", "block %s not found by heap walk", p)
	return BlockInfo{}
}

// firstBlock is the payload offset of the first block after the prologue.
const firstBlock = Ptr(format.PrefixSize)
