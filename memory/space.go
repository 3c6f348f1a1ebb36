// Package memory implements Evil VM's address spaces (section 4.2) and
// the logical-name memory map that resolves ram/program/stack onto them
// (section 4.3).
package memory

import (
	"github.com/ezrec/evilvm/cell"
)

// Space is a fixed-size, bounds-checked array of cells, each holding
// char_bit bits (section 3, "Address space"). A Space may be marked
// read-only. The memory map never sets this flag: program space's
// read-only rule is held by its View (memmap.go), so an alias of the same
// Space under another name stays writable.
type Space struct {
	width    cell.Width
	cells    []uint64
	readOnly bool
}

// NewSpace allocates a Space of size cells, all initialized to zero.
func NewSpace(width cell.Width, size uint, readOnly bool) *Space {
	return &Space{
		width:    width,
		cells:    make([]uint64, size),
		readOnly: readOnly,
	}
}

// Size reports the number of cells in the space.
func (s *Space) Size() uint { return uint(len(s.cells)) }

// ReadOnly reports whether writes to this space are rejected.
func (s *Space) ReadOnly() bool { return s.readOnly }

// SetReadOnly changes the read-only flag.
func (s *Space) SetReadOnly(ro bool) { s.readOnly = ro }

func (s *Space) bounds(addr uint64, n uint) error {
	if n == 0 {
		return nil
	}
	if addr >= uint64(len(s.cells)) || uint64(len(s.cells))-addr < uint64(n) {
		return ErrOutOfBounds
	}
	return nil
}

// LoadCell reads a single cell.
func (s *Space) LoadCell(addr uint64) (uint64, error) {
	if err := s.bounds(addr, 1); err != nil {
		return 0, err
	}
	return s.cells[addr], nil
}

// StoreCell writes a single cell, masked to char_bit bits.
func (s *Space) StoreCell(addr uint64, v uint64) error {
	if err := s.bounds(addr, 1); err != nil {
		return err
	}
	if s.readOnly {
		return ErrReadOnly
	}
	s.cells[addr] = v & s.width.CellMask()
	return nil
}

// LoadBytes reads n consecutive cells starting at addr.
func (s *Space) LoadBytes(addr uint64, n uint) ([]uint64, error) {
	if err := s.bounds(addr, n); err != nil {
		return nil, err
	}
	out := make([]uint64, n)
	copy(out, s.cells[addr:addr+uint64(n)])
	return out, nil
}

// StoreBytes writes cells starting at addr, masking each to char_bit
// bits.
func (s *Space) StoreBytes(addr uint64, cells []uint64) error {
	if err := s.bounds(addr, uint(len(cells))); err != nil {
		return err
	}
	if s.readOnly {
		return ErrReadOnly
	}
	mask := s.width.CellMask()
	for i, c := range cells {
		s.cells[addr+uint64(i)] = c & mask
	}
	return nil
}

// LoadWord reads word_size cells starting at addr, little-endian, and
// returns them as a Word. The in-memory layout never depends on opcode
// parity (section 4.2): word load/store is always little-endian.
func (s *Space) LoadWord(addr uint64) (cell.Word, error) {
	cells, err := s.LoadBytes(addr, s.width.WordSize)
	if err != nil {
		return cell.Word{}, err
	}
	big := cell.Unpack(cells, s.width.CharBit, cell.Little)
	return cell.ValueFromBig(s.width.WordBits(), big), nil
}

// StoreWord writes w as word_size cells starting at addr, little-endian.
func (s *Space) StoreWord(addr uint64, w cell.Word) error {
	cells := cell.Pack(w.Big(), s.width.CharBit, s.width.WordSize, cell.Little)
	return s.StoreBytes(addr, cells)
}

// LoadAddr reads addr_size cells starting at addr, little-endian, and
// returns them as an Addr.
func (s *Space) LoadAddr(addr uint64) (cell.Addr, error) {
	cells, err := s.LoadBytes(addr, s.width.AddrSize)
	if err != nil {
		return cell.Addr{}, err
	}
	big := cell.Unpack(cells, s.width.CharBit, cell.Little)
	return cell.ValueFromBig(s.width.AddrBits(), big), nil
}

// StoreAddr writes a as addr_size cells starting at addr, little-endian.
func (s *Space) StoreAddr(addr uint64, a cell.Addr) error {
	cells := cell.Pack(a.Big(), s.width.CharBit, s.width.AddrSize, cell.Little)
	return s.StoreBytes(addr, cells)
}
