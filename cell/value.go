package cell

import (
	"math/big"

	"github.com/holiman/uint256"
)

// Value is a width-aware arithmetic value: a Word or an Addr, stored in a
// 256-bit container so configurations past uint64 (up to MaxRegisterBits)
// don't overflow Go's native integer types. Only the low `bits` bits of
// the container are ever significant; Mask enforces that after every
// mutation.
type Value struct {
	bits uint
	i    uint256.Int
}

// NewValue builds a Value of the given bit width, initialized to zero.
func NewValue(bits uint) Value {
	return Value{bits: bits}
}

// ValueFromUint64 builds a Value of the given bit width from a uint64,
// masked to that width.
func ValueFromUint64(bits uint, v uint64) Value {
	val := Value{bits: bits}
	val.i.SetUint64(v)
	val.Mask()
	return val
}

// ValueFromBig builds a Value of the given bit width from a big.Int,
// masked to that width.
func ValueFromBig(bits uint, v *big.Int) Value {
	val := Value{bits: bits}
	val.i.SetFromBig(new(big.Int).Mod(v, new(big.Int).Lsh(big.NewInt(1), bits)))
	val.Mask()
	return val
}

// Bits reports the value's configured bit width.
func (v Value) Bits() uint { return v.bits }

// Mask clears any bits above the configured width, the invariant every
// register and memory cell holds between instructions.
func (v *Value) Mask() {
	if v.bits >= 256 {
		return
	}
	var bound uint256.Int
	bound.Lsh(uint256.NewInt(1), v.bits)
	v.i.Mod(&v.i, &bound)
}

// Uint64 returns the low 64 bits of the value.
func (v Value) Uint64() uint64 { return v.i.Uint64() }

// Big returns the value as a big.Int.
func (v Value) Big() *big.Int { return v.i.ToBig() }

// Sign interprets the value as a two's-complement signed integer of its
// configured width and returns -1, 0, or 1 per the usual Sign convention.
func (v Value) Sign() int {
	if v.bits == 0 {
		return 0
	}
	if v.i.IsZero() {
		return 0
	}
	var signBit uint256.Int
	signBit.Lsh(uint256.NewInt(1), v.bits-1)
	if v.i.Lt(&signBit) {
		return 1
	}
	return -1
}

// SignedBig returns the value as a signed big.Int, interpreting the top
// bit of its configured width as the sign bit (two's complement).
func (v Value) SignedBig() *big.Int {
	b := v.i.ToBig()
	var signBit uint256.Int
	signBit.Lsh(uint256.NewInt(1), v.bits-1)
	if v.i.Lt(&signBit) || v.bits == 0 {
		return b
	}
	span := new(big.Int).Lsh(big.NewInt(1), v.bits)
	return new(big.Int).Sub(b, span)
}

// Add returns v+other, masked to v's width, and whether an unsigned carry
// out of the top bit occurred.
func (v Value) Add(other Value) (Value, bool) {
	var sum uint256.Int
	sum.Add(&v.i, &other.i)
	result := Value{bits: v.bits, i: sum}
	var bound uint256.Int
	bound.Lsh(uint256.NewInt(1), v.bits)
	carry := !sum.Lt(&bound)
	result.Mask()
	return result, carry
}

// Sub returns v-other, masked to v's width, and whether an unsigned
// borrow occurred (v < other).
func (v Value) Sub(other Value) (Value, bool) {
	borrow := v.i.Lt(&other.i)
	var diff uint256.Int
	diff.Sub(&v.i, &other.i)
	result := Value{bits: v.bits, i: diff}
	result.Mask()
	return result, borrow
}

// Equal reports whether two values of the same width hold the same bits.
func (v Value) Equal(other Value) bool {
	return v.i.Eq(&other.i)
}

// IsZero reports whether the value is zero.
func (v Value) IsZero() bool { return v.i.IsZero() }

// SetUint64 overwrites the value from a uint64, masked to its width.
func (v *Value) SetUint64(x uint64) {
	v.i.SetUint64(x)
	v.Mask()
}

// SetBig overwrites the value from a big.Int, masked to its width.
func (v *Value) SetBig(x *big.Int) {
	v.i.SetFromBig(x)
	v.Mask()
}

// And, Or, Xor, Not, Shl, Shr, Mul, Neg perform bitwise/arithmetic
// operations masked to v's width. Shr is a logical (unsigned) shift: the
// value's container never carries a sign outside its configured width.
func (v Value) And(other Value) Value {
	var r uint256.Int
	r.And(&v.i, &other.i)
	out := Value{bits: v.bits, i: r}
	out.Mask()
	return out
}

func (v Value) Or(other Value) Value {
	var r uint256.Int
	r.Or(&v.i, &other.i)
	out := Value{bits: v.bits, i: r}
	out.Mask()
	return out
}

func (v Value) Xor(other Value) Value {
	var r uint256.Int
	r.Xor(&v.i, &other.i)
	out := Value{bits: v.bits, i: r}
	out.Mask()
	return out
}

func (v Value) Not() Value {
	var r uint256.Int
	r.Not(&v.i)
	out := Value{bits: v.bits, i: r}
	out.Mask()
	return out
}

func (v Value) Shl(n uint) Value {
	var r uint256.Int
	r.Lsh(&v.i, n)
	out := Value{bits: v.bits, i: r}
	out.Mask()
	return out
}

func (v Value) Shr(n uint) Value {
	var r uint256.Int
	r.Rsh(&v.i, n)
	out := Value{bits: v.bits, i: r}
	out.Mask()
	return out
}

func (v Value) Mul(other Value) Value {
	var r uint256.Int
	r.Mul(&v.i, &other.i)
	out := Value{bits: v.bits, i: r}
	out.Mask()
	return out
}

func (v Value) Neg() Value {
	var zero, r uint256.Int
	r.Sub(&zero, &v.i)
	out := Value{bits: v.bits, i: r}
	out.Mask()
	return out
}

// Word is a register- or memory-word-sized value, word_size*char_bit bits
// wide.
type Word = Value

// Addr is an address-sized value, addr_size*char_bit bits wide.
type Addr = Value
