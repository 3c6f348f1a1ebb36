package cell_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/evilvm/cell"
)

func TestValueMask(t *testing.T) {
	assert := assert.New(t)

	v := cell.ValueFromUint64(4, 0xff)
	assert.Equal(uint64(0xf), v.Uint64())
}

func TestValueAddCarry(t *testing.T) {
	assert := assert.New(t)

	a := cell.ValueFromUint64(8, 0xff)
	b := cell.ValueFromUint64(8, 0x02)

	sum, carry := a.Add(b)
	assert.True(carry)
	assert.Equal(uint64(0x01), sum.Uint64())

	a = cell.ValueFromUint64(8, 0x10)
	b = cell.ValueFromUint64(8, 0x02)
	sum, carry = a.Add(b)
	assert.False(carry)
	assert.Equal(uint64(0x12), sum.Uint64())
}

func TestValueSubBorrow(t *testing.T) {
	assert := assert.New(t)

	a := cell.ValueFromUint64(8, 0x01)
	b := cell.ValueFromUint64(8, 0x02)

	diff, borrow := a.Sub(b)
	assert.True(borrow)
	assert.Equal(uint64(0xff), diff.Uint64())
}

func TestValueSignAndSignedBig(t *testing.T) {
	assert := assert.New(t)

	zero := cell.ValueFromUint64(8, 0)
	assert.Equal(0, zero.Sign())

	pos := cell.ValueFromUint64(8, 0x7f)
	assert.Equal(1, pos.Sign())
	assert.Equal(big.NewInt(0x7f), pos.SignedBig())

	neg := cell.ValueFromUint64(8, 0xff)
	assert.Equal(-1, neg.Sign())
	assert.Equal(big.NewInt(-1), neg.SignedBig())
}

func TestValueFromBig(t *testing.T) {
	assert := assert.New(t)

	v := cell.ValueFromBig(16, big.NewInt(0x12345))
	assert.Equal(uint64(0x2345), v.Uint64())
}

func TestValueEqualAndIsZero(t *testing.T) {
	assert := assert.New(t)

	a := cell.ValueFromUint64(8, 0)
	assert.True(a.IsZero())

	b := cell.ValueFromUint64(8, 0)
	assert.True(a.Equal(b))

	c := cell.ValueFromUint64(8, 1)
	assert.False(a.Equal(c))
}
