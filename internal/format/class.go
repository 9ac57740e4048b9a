package format

import "math/bits"

// Size classes:
//
//	Class  0:        <= 24 bytes
//	Class  1:   25 -   32 bytes
//	Class  2:   33 -   64 bytes
//	Class  3:   65 -  128 bytes
//	...
//	Class 15: 256K - 512K
//	Class 16: > 512K

// ClassOf returns the size class a block of the given size belongs to.
// The same function picks the first class the fit finder scans.
// Class 0 also takes 16-byte blocks, which only arise by freeing a minimum allocation.
func ClassOf(size uint32) int {
	if size <= MinFreeBlockSize {
		return 0
	}
	c := bits.Len32(size-1) - 4
	if c < 1 {
		return 1
	}
	if c >= NumClasses {
		return NumClasses - 1
	}
	return c
}

// ClassLimit returns the largest block size held by class c, or 0 for the
// last, unbounded class.
func ClassLimit(c int) uint32 {
	switch {
	case c == 0:
		return MinFreeBlockSize
	case c >= NumClasses-1:
		return 0
	default:
		return 1 << (c + 4)
	}
}
