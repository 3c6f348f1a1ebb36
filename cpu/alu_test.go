package cpu

import (
	"testing"

	"github.com/ezrec/evilvm/cell"
	"github.com/stretchr/testify/assert"
)

func TestAluAddOverflow(t *testing.T) {
	// S5: char_bit=8, 0xFF + 1 wraps to 0, Z=1, C=1, O=0.
	a := cell.ValueFromUint64(8, 0xFF)
	b := cell.ValueFromUint64(8, 1)
	result, z, c, s, o, divZero := Alu(OpAdd, 8, a, b)

	assert.False(t, divZero)
	assert.EqualValues(t, 0, result.Uint64())
	assert.True(t, z)
	assert.True(t, c)
	assert.False(t, s)
	assert.False(t, o)
}

func TestAluSignedOverflow(t *testing.T) {
	// 0x7F + 1 (signed 127+1) overflows into negative, but does not carry
	// unsigned.
	a := cell.ValueFromUint64(8, 0x7F)
	b := cell.ValueFromUint64(8, 1)
	result, z, c, s, o, _ := Alu(OpAdd, 8, a, b)

	assert.EqualValues(t, 0x80, result.Uint64())
	assert.False(t, z)
	assert.False(t, c)
	assert.True(t, s)
	assert.True(t, o)
}

func TestAluSubBorrow(t *testing.T) {
	a := cell.ValueFromUint64(8, 0)
	b := cell.ValueFromUint64(8, 1)
	result, _, c, _, _, _ := Alu(OpSub, 8, a, b)

	assert.EqualValues(t, 0xFF, result.Uint64())
	assert.True(t, c)
}

func TestAluDivByZero(t *testing.T) {
	a := cell.ValueFromUint64(8, 10)
	b := cell.ValueFromUint64(8, 0)
	_, _, _, _, _, divZero := Alu(OpDiv, 8, a, b)
	assert.True(t, divZero)
}

func TestAluDivTruncatesTowardZero(t *testing.T) {
	// -7 / 2 == -3 (truncation toward zero, sign of dividend), in an 8-bit
	// two's-complement field: -7 is 0xF9, 2 is 0x02.
	a := cell.ValueFromUint64(8, 0xF9)
	b := cell.ValueFromUint64(8, 2)
	result, _, _, _, _, divZero := Alu(OpDiv, 8, a, b)
	assert.False(t, divZero)
	assert.Equal(t, int64(-3), result.SignedBig().Int64())
}

func TestAluModSignOfDividend(t *testing.T) {
	a := cell.ValueFromUint64(8, 0xF9) // -7
	b := cell.ValueFromUint64(8, 2)
	result, _, _, _, _, _ := Alu(OpMod, 8, a, b)
	assert.Equal(t, int64(-1), result.SignedBig().Int64())
}

func TestAluBitwiseClearsCarryAndOverflow(t *testing.T) {
	a := cell.ValueFromUint64(8, 0xFF)
	b := cell.ValueFromUint64(8, 0xFF)
	_, _, c, _, o, _ := Alu(OpAnd, 8, a, b)
	assert.False(t, c)
	assert.False(t, o)
}

func TestAluShiftClamps(t *testing.T) {
	a := cell.ValueFromUint64(8, 0xFF)
	huge := cell.ValueFromUint64(8, 200)
	result, _, _, _, _, _ := Alu(OpShl, 8, a, huge)
	assert.EqualValues(t, 0, result.Uint64())
}

func TestAluCmpLeavesResultUnobserved(t *testing.T) {
	a := cell.ValueFromUint64(8, 5)
	b := cell.ValueFromUint64(8, 5)
	_, z, _, _, _, _ := Alu(OpCmp, 8, a, b)
	assert.True(t, z)
}
