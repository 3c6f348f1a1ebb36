package cell_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/evilvm/cell"
)

func TestWidthValidate(t *testing.T) {
	assert := assert.New(t)

	assert.NoError(cell.DefaultWidth.Validate())

	assert.ErrorIs(cell.Width{CharBit: 0, WordSize: 1, AddrSize: 1}.Validate(), cell.ErrCharBitRange)
	assert.ErrorIs(cell.Width{CharBit: 65, WordSize: 1, AddrSize: 1}.Validate(), cell.ErrCharBitRange)
	assert.ErrorIs(cell.Width{CharBit: 8, WordSize: 0, AddrSize: 1}.Validate(), cell.ErrWordSizeRange)
	assert.ErrorIs(cell.Width{CharBit: 8, WordSize: 9, AddrSize: 1}.Validate(), cell.ErrWordSizeRange)
	assert.ErrorIs(cell.Width{CharBit: 8, WordSize: 1, AddrSize: 0}.Validate(), cell.ErrAddrSizeRange)
	assert.ErrorIs(cell.Width{CharBit: 8, WordSize: 1, AddrSize: 9}.Validate(), cell.ErrAddrSizeRange)

	assert.ErrorIs(cell.Width{CharBit: 64, WordSize: 8, AddrSize: 1}.Validate(), cell.ErrWordTooWide)
	assert.ErrorIs(cell.Width{CharBit: 64, WordSize: 1, AddrSize: 8}.Validate(), cell.ErrAddrTooWide)

	assert.NoError(cell.Width{CharBit: 16, WordSize: 8, AddrSize: 8}.Validate())
}

func TestWidthMaskAndBits(t *testing.T) {
	assert := assert.New(t)

	w := cell.Width{CharBit: 9, WordSize: 7, AddrSize: 5}
	assert.Equal(uint64(0x1ff), w.CellMask())
	assert.Equal(uint(63), w.WordBits())
	assert.Equal(uint(45), w.AddrBits())
}
