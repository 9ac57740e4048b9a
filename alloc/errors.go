package alloc

import "github.com/cockroachdb/errors"

var (
	// ErrInit indicates the heap prefix or the first chunk could not be obtained.
	ErrInit = errors.New("alloc: initialization failed")

	// ErrOutOfMemory indicates the heap could not grow enough to satisfy a request.
	ErrOutOfMemory = errors.New("alloc: out of memory")

	// ErrBadSize indicates a negative request size.
	ErrBadSize = errors.New("alloc: negative size")

	// ErrCorrupt indicates the consistency checker found a violated invariant.
	ErrCorrupt = errors.New("alloc: heap corrupt")
)
