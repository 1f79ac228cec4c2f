package core

import (
	"fmt"
	"io"

	"krunq/internal/target"
)

// image adapts a flat byte source into the target address space using the
// layout's segment map. Addresses outside every segment are unmapped.
type image struct {
	r    io.ReaderAt
	segs []Segment
}

func (m *image) read(addr uint64, p []byte) error {
	n := uint64(len(p))
	for _, seg := range m.segs {
		if addr < seg.Addr || addr+n > seg.Addr+seg.Size {
			continue
		}
		if _, err := m.r.ReadAt(p, seg.Off+int64(addr-seg.Addr)); err != nil {
			return fmt.Errorf("image read at %#x: %w", addr, err)
		}
		return nil
	}
	return fmt.Errorf("%w: %#x (%d bytes)", target.ErrUnmapped, addr, n)
}
