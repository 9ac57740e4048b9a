package trace

import "github.com/cockroachdb/errors"

var (
	// ErrSyntax indicates a malformed trace file.
	ErrSyntax = errors.New("trace: syntax error")

	// ErrValidation indicates the allocator returned a block that violates
	// a correctness property during replay.
	ErrValidation = errors.New("trace: validation failed")
)
