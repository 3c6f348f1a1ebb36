package cell_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/evilvm/cell"
)

func TestPackUnpackLittle(t *testing.T) {
	assert := assert.New(t)

	cells := cell.Pack(big.NewInt(0x1a2b3c), 8, 3, cell.Little)
	assert.Equal([]uint64{0x3c, 0x2b, 0x1a}, cells)

	got := cell.Unpack(cells, 8, cell.Little)
	assert.Equal(big.NewInt(0x1a2b3c), got)
}

func TestPackUnpackBig(t *testing.T) {
	assert := assert.New(t)

	cells := cell.Pack(big.NewInt(0x1a2b3c), 8, 3, cell.Big)
	assert.Equal([]uint64{0x1a, 0x2b, 0x3c}, cells)

	got := cell.Unpack(cells, 8, cell.Big)
	assert.Equal(big.NewInt(0x1a2b3c), got)
}

func TestEndianOfParity(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(cell.Little, cell.EndianOf(0))
	assert.Equal(cell.Big, cell.EndianOf(1))
	assert.Equal(cell.Little, cell.EndianOf(42))
	assert.Equal(cell.Big, cell.EndianOf(43))
}

func TestPackMasksOutOfRangeValues(t *testing.T) {
	assert := assert.New(t)

	// 0x1ff does not fit in 2 cells of 4 bits (16 values), so it wraps mod 256.
	cells := cell.Pack(big.NewInt(0x1ff), 4, 2, cell.Little)
	got := cell.Unpack(cells, 4, cell.Little)
	assert.Equal(big.NewInt(0x1ff%256), got)
}

func FuzzPackUnpackRoundTrip(f *testing.F) {
	f.Add(int64(0), uint(4), uint(1), false)
	f.Add(int64(0xff), uint(8), uint(4), true)
	f.Add(int64(-1), uint(9), uint(7), false)

	f.Fuzz(func(t *testing.T, value int64, charBit uint, n uint, big_ bool) {
		charBit = 1 + charBit%16
		n = 1 + n%8

		endian := cell.Little
		if big_ {
			endian = cell.Big
		}

		v := big.NewInt(value)
		cells := cell.Pack(v, charBit, n, endian)
		if len(cells) != int(n) {
			t.Fatalf("Pack returned %d cells, want %d", len(cells), n)
		}
		for _, c := range cells {
			if c >= uint64(1)<<charBit {
				t.Fatalf("cell %d exceeds char_bit width %d", c, charBit)
			}
		}

		got := cell.Unpack(cells, charBit, endian)

		span := new(big.Int).Lsh(big.NewInt(1), charBit*n)
		want := new(big.Int).Mod(v, span)
		if want.Sign() < 0 {
			want.Add(want, span)
		}

		if got.Cmp(want) != 0 {
			t.Fatalf("round trip mismatch: got %v want %v (value=%v charBit=%d n=%d endian=%v)",
				got, want, value, charBit, n, endian)
		}
	})
}
