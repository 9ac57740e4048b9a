package alloc

import (
	"fmt"
	"io"

	"github.com/joshuapare/heapkit/internal/format"
)

// Stats holds allocator counters.
type Stats struct {
	AllocCalls     int   // Total Malloc() calls, including zero-size requests
	AllocFastPath  int   // Allocations served from a free list
	AllocSlowPath  int   // Allocations that required heap growth
	FreeCalls      int   // Free() calls with a non-nil block
	ReallocCalls   int   // Total Realloc() calls
	ReallocInPlace int   // Growing reallocs served by extending the last block
	ReallocMoved   int   // Growing reallocs that copied to a new block
	SplitCount     int   // Blocks split by place or a shrinking realloc
	CoalesceNone   int   // Frees with no free neighbour
	CoalesceNext   int   // Merges with the following block only
	CoalescePrev   int   // Merges with the preceding block only
	CoalesceBoth   int   // Merges with both neighbours
	GrowCalls      int   // Successful heap extensions
	GrowBytes      int64 // Total bytes added by heap extensions
	BytesAllocated int64 // Block bytes handed out (including tags)
	BytesFreed     int64 // Block bytes returned (including tags)

	HeapSize   int   // Current heap size
	FreeBlocks int   // Blocks on the free lists
	FreeBytes  int64 // Bytes on the free lists
}

// Stats returns a snapshot of the counters plus current free-list totals.
func (a *SegregatedAllocator) Stats() Stats {
	s := a.stats
	s.HeapSize = len(a.data)
	for _, list := range a.FreeLists() {
		for _, p := range list {
			s.FreeBlocks++
			s.FreeBytes += int64(a.BlockSize(p))
		}
	}
	return s
}

// PrintStats writes allocator statistics to w.
func (a *SegregatedAllocator) PrintStats(w io.Writer) {
	s := a.Stats()
	fmt.Fprintf(w, "\n=== ALLOCATOR STATISTICS ===\n")
	fmt.Fprintf(w, "Heap size:          %d bytes (%d extensions, %d bytes added)\n",
		s.HeapSize, s.GrowCalls, s.GrowBytes)
	fmt.Fprintf(w, "Alloc calls:        %d (fast: %d, slow: %d)\n",
		s.AllocCalls, s.AllocFastPath, s.AllocSlowPath)
	fmt.Fprintf(w, "Free calls:         %d\n", s.FreeCalls)
	fmt.Fprintf(w, "Realloc calls:      %d (in place: %d, moved: %d)\n",
		s.ReallocCalls, s.ReallocInPlace, s.ReallocMoved)
	fmt.Fprintf(w, "Bytes allocated:    %d\n", s.BytesAllocated)
	fmt.Fprintf(w, "Bytes freed:        %d\n", s.BytesFreed)
	fmt.Fprintf(w, "Splits:             %d\n", s.SplitCount)
	fmt.Fprintf(w, "Coalesce:           none=%d next=%d prev=%d both=%d\n",
		s.CoalesceNone, s.CoalesceNext, s.CoalescePrev, s.CoalesceBoth)

	fmt.Fprintf(w, "\nFree lists:\n")
	for c, list := range a.FreeLists() {
		if len(list) == 0 {
			continue
		}
		fmt.Fprintf(w, "  Class %2d (%s): %d blocks\n", c, classRange(c), len(list))
	}

	avg := int64(0)
	if s.FreeBlocks > 0 {
		avg = s.FreeBytes / int64(s.FreeBlocks)
	}
	fmt.Fprintf(w, "Total: %d free blocks, %d bytes free, avg=%d bytes/block\n",
		s.FreeBlocks, s.FreeBytes, avg)
	fmt.Fprintf(w, "============================\n\n")
}

// classRange renders the size range of class c.
func classRange(c int) string {
	switch {
	case c == 0:
		return fmt.Sprintf("<= %d", format.ClassLimit(0))
	case c == format.NumClasses-1:
		return fmt.Sprintf("> %d", format.ClassLimit(c-1))
	default:
		return fmt.Sprintf("%d-%d", format.ClassLimit(c-1)+1, format.ClassLimit(c))
	}
}
