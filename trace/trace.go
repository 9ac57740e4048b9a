package trace

import "fmt"

// Kind is the operation code of a trace line.
type Kind byte

const (
	OpAlloc   Kind = 'a'
	OpRealloc Kind = 'r'
	OpFree    Kind = 'f'
)

func (k Kind) String() string {
	switch k {
	case OpAlloc:
		return "alloc"
	case OpRealloc:
		return "realloc"
	case OpFree:
		return "free"
	default:
		return fmt.Sprintf("Kind(%q)", byte(k))
	}
}

// MaxIDs bounds the id space of a trace. Replay keeps per-id state.
const MaxIDs = 1 << 20

// Op is one trace operation. Size is unused for OpFree.
type Op struct {
	Kind Kind
	ID   int
	Size int
}

// Trace is a parsed allocation trace.
type Trace struct {
	Name          string // file name, or a generated label
	SuggestedHeap int    // header line 1, informational
	NumIDs        int    // ids range over [0, NumIDs)
	Weight        int    // header line 4, informational
	Ops           []Op
}

// Counts returns the number of operations of each kind.
func (t *Trace) Counts() (allocs, reallocs, frees int) {
	for _, op := range t.Ops {
		switch op.Kind {
		case OpAlloc:
			allocs++
		case OpRealloc:
			reallocs++
		case OpFree:
			frees++
		}
	}
	return allocs, reallocs, frees
}
