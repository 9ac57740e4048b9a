package trace

import (
	"fmt"
	"math/rand/v2"
)

// GenConfig shapes a generated trace.
type GenConfig struct {
	IDs         int     // distinct block ids (default 1000, at most MaxIDs)
	MinSize     int     // smallest request (default 1)
	MaxSize     int     // largest request (default 4096)
	ReallocRate float64 // share of live-block operations that resize instead of free (default 0.2, at most 0.9)
}

// DefaultGenConfig is used for zero fields of a GenConfig.
var DefaultGenConfig = GenConfig{
	IDs:         1000,
	MinSize:     1,
	MaxSize:     4096,
	ReallocRate: 0.2,
}

func (c GenConfig) withDefaults() GenConfig {
	if c.IDs <= 0 {
		c.IDs = DefaultGenConfig.IDs
	}
	c.IDs = min(c.IDs, MaxIDs)
	if c.MinSize <= 0 {
		c.MinSize = DefaultGenConfig.MinSize
	}
	if c.MaxSize < c.MinSize {
		c.MaxSize = max(DefaultGenConfig.MaxSize, c.MinSize)
	}
	if c.ReallocRate <= 0 {
		c.ReallocRate = DefaultGenConfig.ReallocRate
	}
	// Every id must eventually be freed.
	c.ReallocRate = min(c.ReallocRate, 0.9)
	return c
}

// Generate builds a well-formed random trace. Every id is allocated exactly
// once, optionally resized, and freed before the trace ends. The same seed and
// config always produce the same trace.
func Generate(seed int64, cfg GenConfig) *Trace {
	cfg = cfg.withDefaults()
	rng := rand.New(rand.NewPCG(uint64(seed), uint64(seed)>>1|1))
	size := func() int { return cfg.MinSize + rng.IntN(cfg.MaxSize-cfg.MinSize+1) }

	t := &Trace{
		Name:   fmt.Sprintf("gen-%d", seed),
		NumIDs: cfg.IDs,
		Weight: 1,
	}

	var live []int
	nextID := 0
	for nextID < cfg.IDs || len(live) > 0 {
		if nextID < cfg.IDs && (len(live) == 0 || rng.IntN(2) == 0) {
			t.Ops = append(t.Ops, Op{Kind: OpAlloc, ID: nextID, Size: size()})
			live = append(live, nextID)
			nextID++
			continue
		}

		i := rng.IntN(len(live))
		id := live[i]
		if rng.Float64() < cfg.ReallocRate {
			t.Ops = append(t.Ops, Op{Kind: OpRealloc, ID: id, Size: size()})
			continue
		}
		t.Ops = append(t.Ops, Op{Kind: OpFree, ID: id})
		live[i] = live[len(live)-1]
		live = live[:len(live)-1]
	}

	t.SuggestedHeap = cfg.IDs * cfg.MaxSize
	return t
}
