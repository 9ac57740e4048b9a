package alloc

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/joshuapare/heapkit/internal/format"
)

// Violated properties reported by Check.
const (
	PropListBounds     = "list-bounds"      // listed block outside the heap or misaligned
	PropListedAlloc    = "listed-allocated" // listed block has its allocated bit set
	PropWrongClass     = "wrong-class"      // listed block sits in the wrong size class
	PropBrokenLink     = "broken-link"      // next/prev link outside the heap, to an allocated block, or asymmetric
	PropListCycle      = "list-cycle"       // list longer than the heap could hold
	PropListedTwice    = "listed-twice"     // block reachable from more than one list position
	PropTagMismatch    = "tag-mismatch"     // header and footer differ
	PropBadSize        = "bad-size"         // block size misaligned, too small, or past the heap
	PropBadPrologue    = "bad-prologue"     // prologue tags damaged
	PropBadEpilogue    = "bad-epilogue"     // walk did not end exactly at the epilogue
	PropUnlistedFree   = "unlisted-free"    // free block missing from every list
	PropMissedCoalesce = "missed-coalesce"  // two adjacent free blocks
	PropStaleList      = "stale-list-entry" // listed offset is not a block start
)

// CheckError describes the first invariant violation found by Check.
type CheckError struct {
	Block    Ptr    // Offending block
	Property string // One of the Prop* constants
	Detail   string
}

func (e *CheckError) Error() string {
	return fmt.Sprintf("alloc: check failed at block %s: %s: %s", e.Block, e.Property, e.Detail)
}

// Is makes every CheckError match ErrCorrupt.
func (e *CheckError) Is(target error) bool {
	return target == ErrCorrupt
}

func violation(bp uint32, prop string, msg string, args ...any) error {
	return &CheckError{Block: Ptr(bp), Property: prop, Detail: fmt.Sprintf(msg, args...)}
}

// Check validates the free lists and the heap.
//
// Pass one follows every size class list and verifies each listed block is in
// bounds, free, in the right class, with sane and symmetric links. Pass two
// walks the heap from the prologue to the epilogue and verifies tags agree,
// every free block was listed exactly once, and no two free blocks touch.
//
// Returns nil or a *CheckError (which matches ErrCorrupt). Check never
// modifies the heap.
func (a *SegregatedAllocator) Check() error {
	data := a.data
	lo := a.start + format.PrologueSize // first block
	hi := uint32(len(data))             // epilogue payload offset

	inHeap := func(bp uint32) bool {
		return bp >= lo && bp < hi && format.IsAligned(int(bp)) && format.CheckBounds(data, bp) == nil
	}

	maxLen := int(hi-lo)/format.MinBlockSize + 1
	listed := make(map[uint32]int)
	var order []uint32 // listed blocks in list order

	for c := range a.heads {
		prev := format.Nil
		n := 0
		for bp := a.heads[c]; bp != format.Nil; bp = format.NextLink(data, bp) {
			if n++; n > maxLen {
				return violation(bp, PropListCycle, "class %d has more than %d entries", c, maxLen)
			}
			if !inHeap(bp) {
				return violation(bp, PropListBounds, "class %d entry outside heap [%d, %d)", c, lo, hi)
			}
			hdr := format.ReadU32(data, format.Header(bp))
			if ftr := format.ReadU32(data, format.Footer(data, bp)); hdr != ftr {
				return violation(bp, PropTagMismatch, "header 0x%X footer 0x%X", hdr, ftr)
			}
			if format.IsAlloc(hdr) {
				return violation(bp, PropListedAlloc, "class %d entry is marked allocated", c)
			}
			if want := format.ClassOf(format.SizeOf(hdr)); want != c {
				return violation(bp, PropWrongClass, "size %d belongs in class %d, found in %d",
					format.SizeOf(hdr), want, c)
			}
			if p := format.PrevLink(data, bp); p != prev {
				return violation(bp, PropBrokenLink, "prev link %d, expected %d", p, prev)
			}
			for _, link := range [2]uint32{format.NextLink(data, bp), format.PrevLink(data, bp)} {
				if link == format.Nil {
					continue
				}
				if !inHeap(link) {
					return violation(bp, PropBrokenLink, "link %d outside heap [%d, %d)", link, lo, hi)
				}
				if format.BlockAlloc(data, link) {
					return violation(bp, PropBrokenLink, "link %d points at an allocated block", link)
				}
			}
			if other, dup := listed[bp]; dup {
				return violation(bp, PropListedTwice, "listed in class %d and class %d", other, c)
			}
			listed[bp] = c
			order = append(order, bp)
			prev = bp
		}
	}

	prologue := format.Pack(format.PrologueSize, true)
	if format.ReadU32(data, format.Header(a.start)) != prologue ||
		format.ReadU32(data, int(a.start)) != prologue {
		return violation(a.start, PropBadPrologue, "prologue tags damaged")
	}

	prevFree := false
	var prevBP uint32
	bp := lo
	for {
		if bp > hi {
			return violation(bp, PropBadEpilogue, "walk overran heap end %d", hi)
		}
		hdr := format.ReadU32(data, format.Header(bp))
		size := format.SizeOf(hdr)
		if size == 0 {
			if !format.IsAlloc(hdr) {
				return violation(bp, PropBadEpilogue, "epilogue marked free")
			}
			if bp != hi {
				return violation(bp, PropBadEpilogue, "zero-size block before heap end %d", hi)
			}
			break
		}
		if size < format.MinBlockSize || !format.IsAligned(int(size)) || format.CheckBounds(data, bp) != nil {
			return violation(bp, PropBadSize, "size %d", size)
		}
		if ftr := format.ReadU32(data, format.Footer(data, bp)); hdr != ftr {
			return violation(bp, PropTagMismatch, "header 0x%X footer 0x%X", hdr, ftr)
		}
		if format.IsAlloc(hdr) {
			prevFree = false
		} else {
			if prevFree {
				return violation(bp, PropMissedCoalesce, "free block follows free block %s", Ptr(prevBP))
			}
			if _, ok := listed[bp]; !ok {
				return violation(bp, PropUnlistedFree, "free block of size %d is in no list", size)
			}
			delete(listed, bp)
			prevFree = true
		}
		prevBP = bp
		bp += size
	}

	for _, bp := range order {
		if c, stale := listed[bp]; stale {
			return violation(bp, PropStaleList, "class %d entry is not a block start", c)
		}
	}
	return nil
}

// Consistent runs Check and logs the diagnostic on failure.
func (a *SegregatedAllocator) Consistent() bool {
	err := a.Check()
	if err == nil {
		return true
	}
	a.log.Warn("heap consistency check failed", zap.Error(err))
	return false
}
