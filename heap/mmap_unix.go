//go:build linux || darwin

package heap

import (
	"github.com/cockroachdb/errors"
	"golang.org/x/sys/unix"
)

// MmapMemory is a Memory backed by an anonymous private mapping of limit
// bytes. Only the prefix up to the break is exposed.
type MmapMemory struct {
	region []byte
	brk    int
}

var _ Memory = (*MmapMemory)(nil)

// NewMmap reserves limit bytes of address space. Pages are committed by the
// OS on first touch. A limit <= 0 selects DefaultLimit.
func NewMmap(limit int) (*MmapMemory, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	region, err := unix.Mmap(
		-1,
		0,
		limit,
		unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_ANON|unix.MAP_PRIVATE,
	)
	if err != nil {
		return nil, errors.Wrapf(err, "heap: mmap %d bytes", limit)
	}
	return &MmapMemory{region: region}, nil
}

// Sbrk implements Memory. Anonymous pages are zero on first touch, so no
// clearing is needed.
func (m *MmapMemory) Sbrk(incr int) (int, error) {
	if m.region == nil {
		return 0, ErrClosed
	}
	old := m.brk
	if err := checkIncr(old, len(m.region), incr); err != nil {
		return 0, errors.Wrapf(err, "sbrk %d at break %d (limit %d)", incr, old, len(m.region))
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

// Close unmaps the region.
func (m *MmapMemory) Close() error {
	if m.region == nil {
		return nil
	}
	err := unix.Munmap(m.region)
	m.region = nil
	m.brk = 0
	if err != nil {
		return errors.Wrap(err, "heap: munmap")
	}
	return nil
}
