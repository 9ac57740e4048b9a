package trace

import (
	"io"

	"github.com/cockroachdb/errors"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
)

// WriteJSONFields writes r as fields of an enclosing JSON object.
func (r *Result) WriteJSONFields(obj *jwriter.ObjectState) {
	obj.Name("name").String(r.Name)
	obj.Name("ops").Int(r.Ops)
	obj.Name("allocs").Int(r.Allocs)
	obj.Name("reallocs").Int(r.Reallocs)
	obj.Name("frees").Int(r.Frees)
	obj.Name("peakPayload").Int(r.PeakPayload)
	obj.Name("heapSize").Int(r.HeapSize)
	obj.Name("utilization").Float64(r.Utilization)
	obj.Name("elapsedNs").Int(int(r.Elapsed.Nanoseconds()))
	obj.Name("opsPerSec").Float64(r.Throughput())
	if r.Stats != nil {
		s := obj.Name("stats").Object()
		s.Name("growCalls").Int(r.Stats.GrowCalls)
		s.Name("splits").Int(r.Stats.SplitCount)
		s.Name("coalesces").Int(r.Stats.CoalesceNext + r.Stats.CoalescePrev + r.Stats.CoalesceBoth)
		s.Name("reallocInPlace").Int(r.Stats.ReallocInPlace)
		s.Name("reallocMoved").Int(r.Stats.ReallocMoved)
		s.End()
	}
}

// WriteResults writes results as a JSON array to w.
func WriteResults(w io.Writer, results []*Result) error {
	jw := jwriter.NewStreamingWriter(w, 4096)
	arr := jw.Array()
	for _, r := range results {
		obj := arr.Object()
		r.WriteJSONFields(&obj)
		obj.End()
	}
	arr.End()
	if err := jw.Flush(); err != nil {
		return errors.Wrap(err, "trace: write results")
	}
	return errors.Wrap(jw.Error(), "trace: write results")
}
