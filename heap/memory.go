package heap

import "github.com/cockroachdb/errors"

// Memory is the heap-growth primitive.
type Memory interface {
	// Sbrk extends the region by incr bytes and returns the previous break.
	// The new bytes are zeroed. An increment of zero returns the current break.
	Sbrk(incr int) (int, error)

	// Bytes returns the region [0, break).
	Bytes() []byte

	// Size returns the current break.
	Size() int

	// Limit returns the largest break this Memory will ever grant.
	Limit() int

	// Close releases the region. The Memory cannot be used afterwards.
	Close() error
}

// DefaultLimit is the region limit used when none is given (64 MiB).
const DefaultLimit = 64 << 20

// checkIncr validates an Sbrk request against the current break and limit.
func checkIncr(brk, limit, incr int) error {
	if incr < 0 {
		return ErrNegativeIncrement
	}
	if incr > limit-brk {
		return ErrExhausted
	}
	return nil
}

// Backend names a Memory implementation.
type Backend string

const (
	BackendSlice Backend = "slice"
	BackendMmap  Backend = "mmap"
)

// New creates a Memory of the given backend kind.
func New(backend Backend, limit int) (Memory, error) {
	switch backend {
	case BackendSlice, "":
		return NewSlice(limit), nil
	case BackendMmap:
		return NewMmap(limit)
	default:
		return nil, errors.Newf("heap: unknown backend %q", backend)
	}
}

//go:generate go run go.uber.org/mock/mockgen -destination=../internal/mocks/mock_memory.go -package=mocks github.com/joshuapare/heapkit/heap Memory
