package format

import "github.com/cockroachdb/errors"

// ErrTruncated indicates the buffer lacked the bytes required for a block.
var ErrTruncated = errors.New("format: truncated buffer")
