package memory_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/evilvm/cell"
	"github.com/ezrec/evilvm/memory"
)

func TestSpaceCellRoundTrip(t *testing.T) {
	assert := assert.New(t)

	width := cell.Width{CharBit: 9, WordSize: 7, AddrSize: 5}
	s := memory.NewSpace(width, 16, false)

	assert.NoError(s.StoreCell(3, 0x1ff))
	got, err := s.LoadCell(3)
	assert.NoError(err)
	assert.Equal(uint64(0x1ff), got)
}

func TestSpaceOutOfBounds(t *testing.T) {
	assert := assert.New(t)

	width := cell.Width{CharBit: 8, WordSize: 2, AddrSize: 2}
	s := memory.NewSpace(width, 4, false)

	_, err := s.LoadCell(4)
	assert.ErrorIs(err, memory.ErrOutOfBounds)

	err = s.StoreCell(10, 1)
	assert.ErrorIs(err, memory.ErrOutOfBounds)
}

func TestSpaceReadOnly(t *testing.T) {
	assert := assert.New(t)

	width := cell.Width{CharBit: 8, WordSize: 2, AddrSize: 2}
	s := memory.NewSpace(width, 4, true)

	err := s.StoreCell(0, 1)
	assert.ErrorIs(err, memory.ErrReadOnly)
}

func TestSpaceWordRoundTrip(t *testing.T) {
	assert := assert.New(t)

	width := cell.Width{CharBit: 8, WordSize: 2, AddrSize: 2}
	s := memory.NewSpace(width, 8, false)

	w := cell.ValueFromBig(width.WordBits(), big.NewInt(0x1234))
	assert.NoError(s.StoreWord(0, w))

	cells, err := s.LoadBytes(0, 2)
	assert.NoError(err)
	assert.Equal([]uint64{0x34, 0x12}, cells)

	got, err := s.LoadWord(0)
	assert.NoError(err)
	assert.Equal(uint64(0x1234), got.Uint64())
}

func TestSpaceAddrRoundTrip(t *testing.T) {
	assert := assert.New(t)

	width := cell.Width{CharBit: 8, WordSize: 2, AddrSize: 2}
	s := memory.NewSpace(width, 8, false)

	a := cell.ValueFromBig(width.AddrBits(), big.NewInt(0xabcd))
	assert.NoError(s.StoreAddr(2, a))

	got, err := s.LoadAddr(2)
	assert.NoError(err)
	assert.Equal(uint64(0xabcd), got.Uint64())
}
