package cpu

import (
	"testing"

	"github.com/ezrec/evilvm/cell"
	"github.com/stretchr/testify/assert"
)

func TestRegistersByteWritePreservesHighBits(t *testing.T) {
	r := NewRegisters(cell.Width{CharBit: 8, WordSize: 2, AddrSize: 2})
	r.Set(RegA, cell.ValueFromUint64(16, 0xBEEF))
	r.SetByte(RegA, 8, 0x42)
	assert.EqualValues(t, 0xBE42, r.Get(RegA).Uint64())
}

func TestRegistersFlags(t *testing.T) {
	r := NewRegisters(cell.DefaultWidth)
	r.SetFlags(true, false, true, false)
	assert.True(t, r.Flag(FlagZ))
	assert.False(t, r.Flag(FlagC))
	assert.True(t, r.Flag(FlagS))
	assert.False(t, r.Flag(FlagO))

	r.SetFlags(false, true, false, true)
	assert.False(t, r.Flag(FlagZ))
	assert.True(t, r.Flag(FlagC))
	assert.False(t, r.Flag(FlagS))
	assert.True(t, r.Flag(FlagO))
}

func TestRegByName(t *testing.T) {
	reg, ok := RegByName("sp")
	assert.True(t, ok)
	assert.Equal(t, RegSP, reg)

	_, ok = RegByName("zz")
	assert.False(t, ok)
}

func TestRegisterNativeWidths(t *testing.T) {
	width := cell.Width{CharBit: 9, WordSize: 7, AddrSize: 5}
	r := NewRegisters(width)
	assert.EqualValues(t, width.WordBits(), r.A.Bits())
	assert.EqualValues(t, width.AddrBits(), r.IP.Bits())
}
