package trace

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/alloc"
	"github.com/joshuapare/heapkit/heap"
)

func newAllocator(t *testing.T) *alloc.SegregatedAllocator {
	t.Helper()
	a, err := alloc.New(heap.NewSlice(0), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

var strict = ReplayOptions{CheckEach: true, Verify: true}

func TestReplay_Files(t *testing.T) {
	for _, name := range []string{"short1.rep", "realloc.rep"} {
		t.Run(name, func(t *testing.T) {
			tr, err := Open(filepath.Join("testdata", name))
			require.NoError(t, err)

			res, err := Replay(context.Background(), newAllocator(t), tr, strict)
			require.NoError(t, err)
			assert.Equal(t, len(tr.Ops), res.Ops)
			assert.Positive(t, res.PeakPayload)
			assert.Positive(t, res.Utilization)
			assert.LessOrEqual(t, res.Utilization, 1.0)
			require.NotNil(t, res.Stats)
		})
	}
}

func TestReplay_Generated(t *testing.T) {
	tr := Generate(11, GenConfig{IDs: 2000, MaxSize: 8192})
	a := newAllocator(t)

	res, err := Replay(context.Background(), a, tr, ReplayOptions{Verify: true})
	require.NoError(t, err)

	allocs, reallocs, frees := tr.Counts()
	assert.Equal(t, allocs, res.Allocs)
	assert.Equal(t, reallocs, res.Reallocs)
	assert.Equal(t, frees, res.Frees)
	assert.Equal(t, a.HeapSize(), res.HeapSize)
	require.NoError(t, a.Check())
}

func TestReplay_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Replay(ctx, newAllocator(t), Generate(1, GenConfig{IDs: 10}), strict)
	require.ErrorIs(t, err, context.Canceled)
}

func TestReplay_DuplicateAlloc(t *testing.T) {
	tr := &Trace{NumIDs: 1, Ops: []Op{{Kind: OpAlloc, Size: 8}, {Kind: OpAlloc, Size: 8}}}

	_, err := Replay(context.Background(), newAllocator(t), tr, strict)
	require.ErrorIs(t, err, ErrSyntax)
}

func TestReplay_RejectsBadIDs(t *testing.T) {
	tests := []struct {
		name string
		tr   *Trace
	}{
		{"too many ids", &Trace{NumIDs: MaxIDs + 1}},
		{"negative id count", &Trace{NumIDs: -1}},
		{"id past range", &Trace{NumIDs: 1, Ops: []Op{{Kind: OpAlloc, ID: 1, Size: 8}}}},
		{"negative id", &Trace{NumIDs: 1, Ops: []Op{{Kind: OpFree, ID: -1}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Replay(context.Background(), newAllocator(t), tt.tr, strict)
			require.ErrorIs(t, err, ErrSyntax)
		})
	}
}

func TestReplay_OutOfMemory(t *testing.T) {
	a, err := alloc.New(heap.NewSlice(8192), nil)
	require.NoError(t, err)
	defer a.Close()

	tr := &Trace{NumIDs: 1, Ops: []Op{{Kind: OpAlloc, Size: 100000}}}
	res, err := Replay(context.Background(), a, tr, strict)
	require.ErrorIs(t, err, alloc.ErrOutOfMemory)
	assert.Zero(t, res.Ops)
}

// faultyAllocator wraps a real allocator and breaks one property on demand.
type faultyAllocator struct {
	*alloc.SegregatedAllocator
	fault string
	last  alloc.Ptr
}

func (f *faultyAllocator) Malloc(size int) (alloc.Ptr, error) {
	p, err := f.SegregatedAllocator.Malloc(size)
	if err != nil {
		return p, err
	}
	switch f.fault {
	case "overlap":
		if f.last != alloc.Nil {
			p = f.last
		}
	case "misaligned":
		p += 4
	case "nil":
		p = alloc.Nil
	case "scribble":
		if f.last != alloc.Nil {
			f.Bytes(f.last)[0] ^= 0xFF
		}
	}
	f.last = p
	return p, nil
}

func TestReplay_DetectsFaults(t *testing.T) {
	tr := &Trace{NumIDs: 3, Ops: []Op{
		{Kind: OpAlloc, ID: 0, Size: 64},
		{Kind: OpAlloc, ID: 1, Size: 64},
		{Kind: OpFree, ID: 0},
		{Kind: OpFree, ID: 1},
	}}

	for _, fault := range []string{"overlap", "misaligned", "nil", "scribble"} {
		t.Run(fault, func(t *testing.T) {
			fa := &faultyAllocator{SegregatedAllocator: newAllocator(t), fault: fault}

			_, err := Replay(context.Background(), fa, tr, ReplayOptions{Verify: true})
			require.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestReplay_CheckEachReportsCorruption(t *testing.T) {
	tr := &Trace{NumIDs: 1, Ops: []Op{{Kind: OpAlloc, ID: 0, Size: 8}, {Kind: OpFree, ID: 0}}}

	res, err := Replay(context.Background(), &corrupting{newAllocator(t)}, tr, strict)
	require.ErrorIs(t, err, ErrValidation)
	require.ErrorIs(t, err, alloc.ErrCorrupt)
	var ce *alloc.CheckError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, alloc.PropBadPrologue, ce.Property)
	assert.Contains(t, err.Error(), "heap check")
	assert.Equal(t, 1, res.Ops, "stops after the first failed check")
}

// corrupting reports a broken heap from its checker.
type corrupting struct {
	*alloc.SegregatedAllocator
}

func (c *corrupting) Check() error {
	return &alloc.CheckError{Block: c.HeapStart(), Property: alloc.PropBadPrologue, Detail: "test"}
}
