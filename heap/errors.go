package heap

import "github.com/cockroachdb/errors"

var (
	// ErrExhausted indicates the region cannot grow by the requested amount.
	ErrExhausted = errors.New("heap: address space exhausted")

	// ErrNegativeIncrement indicates a negative Sbrk increment. The heap never shrinks.
	ErrNegativeIncrement = errors.New("heap: negative increment")

	// ErrClosed indicates use of a Memory after Close.
	ErrClosed = errors.New("heap: memory closed")
)
