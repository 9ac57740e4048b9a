//go:build !linux && !darwin

package heap

// MmapMemory falls back to a region preallocated in full on platforms
// without the unix mmap call. The backing array never moves.
type MmapMemory struct {
	region []byte
	brk    int
}

var _ Memory = (*MmapMemory)(nil)

// NewMmap preallocates limit bytes. A limit <= 0 selects DefaultLimit.
func NewMmap(limit int) (*MmapMemory, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &MmapMemory{region: make([]byte, limit)}, nil
}

// Sbrk implements Memory.
func (m *MmapMemory) Sbrk(incr int) (int, error) {
	if m.region == nil {
		return 0, ErrClosed
	}
	old := m.brk
	if err := checkIncr(old, len(m.region), incr); err != nil {
		return 0, err
	}
	m.brk += incr
	return old, nil
}

// Bytes implements Memory.
func (m *MmapMemory) Bytes() []byte {
	if m.region == nil {
		return nil
	}
	return m.region[:m.brk:m.brk]
}

// Size implements Memory.
func (m *MmapMemory) Size() int { return m.brk }

// Limit implements Memory.
func (m *MmapMemory) Limit() int { return len(m.region) }

// Close releases the region.
func (m *MmapMemory) Close() error {
	m.region = nil
	m.brk = 0
	return nil
}
