package alloc

import (
	"os"

	"go.uber.org/zap"

	"github.com/joshuapare/heapkit/internal/format"
)

// Runtime debug flag for allocation logging - controlled by HEAPKIT_LOG_ALLOC env var.
var logAlloc = os.Getenv("HEAPKIT_LOG_ALLOC") != ""

// Config controls allocator behaviour.
type Config struct {
	// ChunkSize is the minimum number of bytes the heap grows by when no free
	// block fits. Rounded up to 8 bytes and to at least the smallest free block
	// (24 bytes). Zero selects format.ChunkSize (4 KiB).
	ChunkSize int

	// Logger receives debug events (heap growth, slow-path allocations,
	// exhaustion, checker failures). If nil, a development logger is used when
	// HEAPKIT_LOG_ALLOC is set, otherwise logging is disabled.
	Logger *zap.Logger
}

// DefaultConfig is used when New receives a nil config.
var DefaultConfig = Config{
	ChunkSize: format.ChunkSize,
}

func (c *Config) chunkSize() int {
	if c.ChunkSize <= 0 {
		return format.ChunkSize
	}
	return max(format.Align8(c.ChunkSize), format.MinFreeBlockSize)
}

func (c *Config) logger() *zap.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	if logAlloc {
		if l, err := zap.NewDevelopment(); err == nil {
			return l.Named("alloc")
		}
	}
	return zap.NewNop()
}
