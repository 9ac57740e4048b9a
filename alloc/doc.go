// Package alloc provides a malloc-compatible allocator over a single growable
// heap region.
//
// # Overview
//
// This package implements dynamic memory allocation using boundary-tagged
// blocks and a segregated free-list table. Freed memory is reused immediately,
// adjacent free blocks are merged on every free, and the heap grows in
// page-sized chunks through the heap.Memory primitive.
//
// # Allocator Interface
//
// The core abstraction is the Allocator interface:
//
//   - Malloc(size): Allocate a block with at least size payload bytes
//   - Free(p): Return a block for reuse
//   - Realloc(p, size): Resize a block, in place when possible
//   - Bytes(p): Payload view of a block
//
// # Usage Example
//
//	a, err := alloc.New(heap.NewSlice(0), nil)
//	if err != nil {
//	    return err
//	}
//	defer a.Close()
//
//	p, err := a.Malloc(100)
//	if err != nil {
//	    return err // alloc.ErrOutOfMemory
//	}
//	copy(a.Bytes(p), payload)
//
//	p, err = a.Realloc(p, 400)
//	...
//	a.Free(p)
//
// # Block Layout
//
// Blocks are addressed by Ptr, the offset of their payload inside the heap.
// Payload offsets are always 8-byte aligned. Each block carries a header word
// before the payload and an identical footer word at its end:
//
//	| size|a | payload ...................... | size|a |
//	  header                                   footer
//
// Free blocks keep their free-list links in the first 8 payload bytes, as
// 32-bit heap offsets. Because links are offsets rather than addresses, the
// heap stays valid when the backing memory relocates.
//
// # Size Classes
//
// The allocator maintains 17 segregated free lists:
//
//	Class  0:     <= 24 bytes
//	Class  1:  25 -  32 bytes
//	Class  2:  33 -  64 bytes
//	...
//	Class 15: 256K - 512K
//	Class 16: > 512K
//
// Lists are LIFO. Allocation is first fit, scanning classes upward from the
// smallest class that could hold the request.
//
// # Heap Growth
//
// When no free block fits, the heap is extended by max(request, ChunkSize)
// bytes and the new region is merged with a trailing free block, if any.
// The heap never shrinks.
//
// # Thread Safety
//
// Allocator instances are not thread-safe. Independent instances may be used
// from different goroutines.
//
// # Diagnostics
//
// Check walks every free list and then the whole heap and reports the first
// violated invariant as a *CheckError. It is a debugging aid and is never run
// implicitly.
package alloc
