package trace

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/joshuapare/heapkit/alloc"
	"github.com/joshuapare/heapkit/internal/format"
)

// ctxCheckInterval is how many ops run between context checks.
const ctxCheckInterval = 1024

// ReplayOptions controls validation during Replay.
type ReplayOptions struct {
	// CheckEach runs the allocator's heap checker after every operation.
	// Ignored for allocators without a Check() error method.
	CheckEach bool

	// Verify fills payloads with an id-derived pattern and checks that it
	// survives until the block is resized or freed.
	Verify bool
}

// Result summarizes one replay.
type Result struct {
	Name        string
	Ops         int
	Allocs      int
	Reallocs    int
	Frees       int
	PeakPayload int           // largest sum of live request sizes
	HeapSize    int           // heap size after the last op
	Utilization float64       // PeakPayload / HeapSize
	Elapsed     time.Duration // wall time of the op loop
	Stats       *alloc.Stats  // nil unless the allocator reports stats
}

// Throughput returns operations per second.
func (r *Result) Throughput() float64 {
	if r.Elapsed <= 0 {
		return 0
	}
	return float64(r.Ops) / r.Elapsed.Seconds()
}

type checker interface {
	Check() error
}

type statser interface {
	Stats() alloc.Stats
}

// span is a live block's payload range [start, end) tagged with its id.
type span struct {
	start, end int
	id         int
}

// replayer holds the state of one replay.
type replayer struct {
	a    alloc.Allocator
	opts ReplayOptions

	ptrs  []alloc.Ptr // by id; alloc.Nil when not live
	sizes []int       // request size by id
	live  []span      // sorted by start
	bytes int         // sum of live request sizes
}

// Replay executes t against a. It stops at the first allocator error,
// validation failure or context cancellation and returns the partial result
// alongside the error. A trace whose id space exceeds MaxIDs is rejected with
// ErrSyntax and no result.
func Replay(ctx context.Context, a alloc.Allocator, t *Trace, opts ReplayOptions) (*Result, error) {
	if t.NumIDs < 0 || t.NumIDs > MaxIDs {
		return nil, errors.Wrapf(ErrSyntax, "trace %s: %d ids outside [0, %d]", t.Name, t.NumIDs, MaxIDs)
	}

	rp := &replayer{
		a:     a,
		opts:  opts,
		ptrs:  make([]alloc.Ptr, t.NumIDs),
		sizes: make([]int, t.NumIDs),
	}
	res := &Result{Name: t.Name}

	chk, _ := a.(checker)
	if !opts.CheckEach {
		chk = nil
	}

	start := time.Now()
	err := func() error {
		for i, op := range t.Ops {
			if i%ctxCheckInterval == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}
			if err := rp.apply(op); err != nil {
				return errors.Wrapf(err, "op %d (%s id %d)", i, op.Kind, op.ID)
			}
			res.Ops++
			switch op.Kind {
			case OpAlloc:
				res.Allocs++
			case OpRealloc:
				res.Reallocs++
			case OpFree:
				res.Frees++
			}
			res.PeakPayload = max(res.PeakPayload, rp.bytes)

			if chk != nil {
				if err := chk.Check(); err != nil {
					return errors.Wrapf(errors.Join(ErrValidation, err),
						"op %d (%s id %d): heap check", i, op.Kind, op.ID)
				}
			}
		}
		return rp.verifyAll()
	}()
	res.Elapsed = time.Since(start)

	res.HeapSize = a.HeapSize()
	if res.HeapSize > 0 {
		res.Utilization = float64(res.PeakPayload) / float64(res.HeapSize)
	}
	if s, ok := a.(statser); ok {
		st := s.Stats()
		res.Stats = &st
	}

	if err != nil {
		return res, errors.Wrapf(err, "trace %s", t.Name)
	}
	return res, nil
}

func (rp *replayer) apply(op Op) error {
	if op.ID < 0 || op.ID >= len(rp.ptrs) {
		return errors.Wrapf(ErrSyntax, "id %d out of range [0, %d)", op.ID, len(rp.ptrs))
	}
	switch op.Kind {
	case OpAlloc:
		if rp.ptrs[op.ID] != alloc.Nil {
			return errors.Wrap(ErrSyntax, "id already allocated")
		}
		p, err := rp.a.Malloc(op.Size)
		if err != nil {
			return err
		}
		return rp.track(op.ID, p, op.Size)

	case OpRealloc:
		old := rp.ptrs[op.ID]
		oldSize := rp.sizes[op.ID]
		if old != alloc.Nil {
			if err := rp.verify(op.ID); err != nil {
				return err
			}
		}
		p, err := rp.a.Realloc(old, op.Size)
		if err != nil {
			return err
		}
		rp.untrack(op.ID)
		if p != alloc.Nil && rp.opts.Verify {
			if err := rp.checkPattern(op.ID, p, min(oldSize, op.Size)); err != nil {
				return err
			}
		}
		return rp.track(op.ID, p, op.Size)

	case OpFree:
		p := rp.ptrs[op.ID]
		if p != alloc.Nil {
			if err := rp.verify(op.ID); err != nil {
				return err
			}
		}
		rp.untrack(op.ID)
		rp.a.Free(p)
		return nil
	}
	return errors.Wrapf(ErrSyntax, "unknown op %s", op.Kind)
}

// track validates a freshly returned block and records it as live.
func (rp *replayer) track(id int, p alloc.Ptr, size int) error {
	if p == alloc.Nil {
		if size > 0 {
			return errors.Wrapf(ErrValidation, "allocator returned nil for %d bytes", size)
		}
		return nil
	}

	start, end := int(p), int(p)+size
	if !format.IsAligned(start) {
		return errors.Wrapf(ErrValidation, "block %s is not 8-byte aligned", p)
	}
	if start < format.PrefixSize || end > rp.a.HeapSize() {
		return errors.Wrapf(ErrValidation, "block %s [%d, %d) outside heap [%d, %d)",
			p, start, end, format.PrefixSize, rp.a.HeapSize())
	}
	if got := len(rp.a.Bytes(p)); got < size {
		return errors.Wrapf(ErrValidation, "block %s has %d payload bytes, requested %d", p, got, size)
	}

	i, _ := slices.BinarySearchFunc(rp.live, start, func(s span, off int) int { return cmp.Compare(s.start, off) })
	if i > 0 && rp.live[i-1].end > start {
		prev := rp.live[i-1]
		return errors.Wrapf(ErrValidation, "block %s [%d, %d) overlaps id %d [%d, %d)",
			p, start, end, prev.id, prev.start, prev.end)
	}
	if i < len(rp.live) && rp.live[i].start < end {
		next := rp.live[i]
		return errors.Wrapf(ErrValidation, "block %s [%d, %d) overlaps id %d [%d, %d)",
			p, start, end, next.id, next.start, next.end)
	}
	rp.live = slices.Insert(rp.live, i, span{start: start, end: end, id: id})

	rp.ptrs[id] = p
	rp.sizes[id] = size
	rp.bytes += size

	if rp.opts.Verify {
		pat := pattern(id)
		b := rp.a.Bytes(p)[:size]
		for j := range b {
			b[j] = pat
		}
	}
	return nil
}

// untrack forgets the live block of id, if any.
func (rp *replayer) untrack(id int) {
	p := rp.ptrs[id]
	if p == alloc.Nil {
		return
	}
	i, found := slices.BinarySearchFunc(rp.live, int(p), func(s span, off int) int { return cmp.Compare(s.start, off) })
	if found {
		rp.live = slices.Delete(rp.live, i, i+1)
	}
	rp.bytes -= rp.sizes[id]
	rp.ptrs[id] = alloc.Nil
	rp.sizes[id] = 0
}

// verify checks the pattern of the live block of id.
func (rp *replayer) verify(id int) error {
	if !rp.opts.Verify {
		return nil
	}
	return rp.checkPattern(id, rp.ptrs[id], rp.sizes[id])
}

func (rp *replayer) checkPattern(id int, p alloc.Ptr, n int) error {
	pat := pattern(id)
	for j, b := range rp.a.Bytes(p)[:n] {
		if b != pat {
			return errors.Wrapf(ErrValidation, "id %d block %s: payload byte %d is 0x%02X, want 0x%02X",
				id, p, j, b, pat)
		}
	}
	return nil
}

func (rp *replayer) verifyAll() error {
	for _, s := range rp.live {
		if err := rp.verify(s.id); err != nil {
			return err
		}
	}
	return nil
}

// pattern is the fill byte for block id.
func pattern(id int) byte {
	return byte(id*0x9D + 0x5B)
}
