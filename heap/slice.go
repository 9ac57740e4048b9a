package heap

import "github.com/cockroachdb/errors"

// SliceMemory is a Memory backed by a growable Go slice.
type SliceMemory struct {
	data   []byte
	limit  int
	closed bool
}

var _ Memory = (*SliceMemory)(nil)

// NewSlice creates a slice-backed region that grows up to limit bytes.
// A limit <= 0 selects DefaultLimit.
func NewSlice(limit int) *SliceMemory {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &SliceMemory{limit: limit}
}

// Sbrk implements Memory.
func (m *SliceMemory) Sbrk(incr int) (int, error) {
	if m.closed {
		return 0, ErrClosed
	}
	old := len(m.data)
	if err := checkIncr(old, m.limit, incr); err != nil {
		return 0, errors.Wrapf(err, "sbrk %d at break %d (limit %d)", incr, old, m.limit)
	}
	m.data = append(m.data, make([]byte, incr)...)
	return old, nil
}

// Bytes implements Memory.
func (m *SliceMemory) Bytes() []byte { return m.data }

// Size implements Memory.
func (m *SliceMemory) Size() int { return len(m.data) }

// Limit implements Memory.
func (m *SliceMemory) Limit() int { return m.limit }

// Close implements Memory.
func (m *SliceMemory) Close() error {
	m.data = nil
	m.closed = true
	return nil
}
