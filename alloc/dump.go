package alloc

import (
	"io"

	"github.com/cockroachdb/errors"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"

	"github.com/joshuapare/heapkit/internal/format"
)

// dumpBufferSize is the streaming buffer used by WriteJSON.
const dumpBufferSize = 4096

// WriteJSON writes a map of the heap to w: bounds, counters, free-list
// populations and every block in address order.
func (a *SegregatedAllocator) WriteJSON(w io.Writer) error {
	jw := jwriter.NewStreamingWriter(w, dumpBufferSize)
	obj := jw.Object()
	a.writeJSONFields(&obj)
	obj.End()
	if err := jw.Flush(); err != nil {
		return errors.Wrap(err, "alloc: write heap map")
	}
	return errors.Wrap(jw.Error(), "alloc: write heap map")
}

// MarshalJSON renders the heap map as a single JSON document.
func (a *SegregatedAllocator) MarshalJSON() ([]byte, error) {
	jw := jwriter.NewWriter()
	obj := jw.Object()
	a.writeJSONFields(&obj)
	obj.End()
	return jw.Bytes(), jw.Error()
}

func (a *SegregatedAllocator) writeJSONFields(obj *jwriter.ObjectState) {
	s := a.Stats()

	obj.Name("heapStart").Int(int(a.start))
	obj.Name("heapSize").Int(s.HeapSize)
	obj.Name("limit").Int(a.mem.Limit())

	stats := obj.Name("stats").Object()
	stats.Name("allocCalls").Int(s.AllocCalls)
	stats.Name("allocFastPath").Int(s.AllocFastPath)
	stats.Name("allocSlowPath").Int(s.AllocSlowPath)
	stats.Name("freeCalls").Int(s.FreeCalls)
	stats.Name("reallocCalls").Int(s.ReallocCalls)
	stats.Name("reallocInPlace").Int(s.ReallocInPlace)
	stats.Name("reallocMoved").Int(s.ReallocMoved)
	stats.Name("splits").Int(s.SplitCount)
	stats.Name("growCalls").Int(s.GrowCalls)
	stats.Name("growBytes").Int(int(s.GrowBytes))
	stats.Name("freeBlocks").Int(s.FreeBlocks)
	stats.Name("freeBytes").Int(int(s.FreeBytes))
	stats.End()

	classes := obj.Name("classes").Array()
	for c, list := range a.FreeLists() {
		cls := classes.Object()
		cls.Name("class").Int(c)
		cls.Name("range").String(classRange(c))
		cls.Name("count").Int(len(list))
		cls.End()
	}
	classes.End()

	blocks := obj.Name("blocks").Array()
	a.Walk(func(b BlockInfo) bool {
		blk := blocks.Object()
		blk.Name("ptr").Int(int(b.Ptr))
		blk.Name("size").Int(b.Size)
		blk.Name("allocated").Bool(b.Allocated)
		if !b.Allocated {
			blk.Name("class").Int(format.ClassOf(uint32(b.Size)))
		}
		blk.End()
		return true
	})
	blocks.End()
}
