// Package heap provides the heap-growth primitive used by the allocator.
//
// # Overview
//
// A Memory is one contiguous, growable byte region addressed by offsets from
// its start. Sbrk extends it by a byte count and returns the previous break,
// exactly like the Unix sbrk call:
//
//	mem := heap.NewSlice(64 << 20)
//	old, err := mem.Sbrk(4096)
//	if err != nil {
//	    return err // heap.ErrExhausted
//	}
//	region := mem.Bytes()[old : old+4096]
//
// # Implementations
//
// SliceMemory: a Go slice grown with append. The backing array may move when
// the region grows, so callers must hold offsets, never slices, across Sbrk.
//
// MmapMemory: an anonymous private mapping reserved up front (linux, darwin).
// The break moves inside the reservation, so the backing array never moves and
// untouched pages are never committed by the OS.
//
// # Thread Safety
//
// Memory instances are not thread-safe. Each allocator owns its Memory.
package heap
