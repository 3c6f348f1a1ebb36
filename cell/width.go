// Package cell implements Evil VM's configurable cell/word/address geometry:
// the endian codec (pack/unpack), and width-aware arithmetic values used by
// the register file and memory subsystem.
package cell

import (
	"errors"

	"github.com/ezrec/evilvm/translate"
)

var f = translate.From

var (
	ErrCharBitRange  = errors.New(f("char_bit must be between 1 and 64"))
	ErrWordSizeRange = errors.New(f("word_size must be between 1 and 8"))
	ErrAddrSizeRange = errors.New(f("addr_size must be between 1 and 8"))
	ErrWordTooWide   = errors.New(f("char_bit * word_size exceeds the register width ceiling"))
	ErrAddrTooWide   = errors.New(f("char_bit * addr_size exceeds the register width ceiling"))
)

// MaxRegisterBits is the widest a Word or Addr may be. It is kept below
// uint256's native 256-bit container so that width-aware carry/overflow
// detection (which adds two masked operands and compares) never overflows
// the container itself. See SPEC_FULL.md section D.5.
const MaxRegisterBits = 248

// Width describes the configurable geometry of a VM instance: how many
// bits make up a cell, how many cells make up a word, and how many cells
// make up an address.
type Width struct {
	CharBit  uint // bits per cell, 1..64
	WordSize uint // cells per word, 1..8
	AddrSize uint // cells per address, 1..8
}

// DefaultWidth is the configuration used when the host does not override
// it, matching the CLI defaults in spec.md section 6.
var DefaultWidth = Width{CharBit: 9, WordSize: 7, AddrSize: 5}

// Validate reports whether the width configuration is usable.
func (w Width) Validate() error {
	switch {
	case w.CharBit < 1 || w.CharBit > 64:
		return ErrCharBitRange
	case w.WordSize < 1 || w.WordSize > 8:
		return ErrWordSizeRange
	case w.AddrSize < 1 || w.AddrSize > 8:
		return ErrAddrSizeRange
	case w.CharBit*w.WordSize > MaxRegisterBits:
		return ErrWordTooWide
	case w.CharBit*w.AddrSize > MaxRegisterBits:
		return ErrAddrTooWide
	}
	return nil
}

// CellMask is the mask of the low CharBit bits, the value every cell must
// fit within (invariant 1 of spec.md section 3).
func (w Width) CellMask() uint64 {
	return mask64(w.CharBit)
}

// WordBits is the total bit width of a word: word_size * char_bit.
func (w Width) WordBits() uint {
	return w.CharBit * w.WordSize
}

// AddrBits is the total bit width of an address: addr_size * char_bit.
func (w Width) AddrBits() uint {
	return w.CharBit * w.AddrSize
}

func mask64(bits uint) uint64 {
	if bits >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << bits) - 1
}
