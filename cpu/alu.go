package cpu

import (
	"math/big"

	"github.com/ezrec/evilvm/cell"
)

// AluOp identifies one arithmetic/logic operation (section 4.5).
type AluOp int

const (
	OpAdd AluOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpAnd
	OpOr
	OpXor
	OpNot
	OpNeg
	OpShl
	OpShr
	OpCmp
)

// aluIsArithmetic reports whether op participates in unsigned/signed
// overflow detection (C/O flags). Bitwise operations clear C and O;
// only the true arithmetic family computes them (section 4.4, 9).
func aluIsArithmetic(op AluOp) bool {
	switch op {
	case OpAdd, OpSub, OpMul, OpDiv, OpMod, OpNeg, OpCmp:
		return true
	default:
		return false
	}
}

// Alu evaluates a binary or unary ALU op on a and b (b is ignored for
// OpNot/OpNeg), both masked to bits-wide values, and returns the result
// plus the four flag values. div/mod by zero is reported via divByZero.
func Alu(op AluOp, bits uint, a, b cell.Value) (result cell.Value, z, c, s, o bool, divByZero bool) {
	span := new(big.Int).Lsh(big.NewInt(1), bits)
	signedLow := new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), bits-1))
	signedHigh := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), bits-1), big.NewInt(1))

	var unsignedRaw, signedRaw *big.Int

	switch op {
	case OpAdd:
		unsignedRaw = new(big.Int).Add(a.Big(), b.Big())
		signedRaw = new(big.Int).Add(a.SignedBig(), b.SignedBig())
	case OpSub, OpCmp:
		unsignedRaw = new(big.Int).Sub(a.Big(), b.Big())
		signedRaw = new(big.Int).Sub(a.SignedBig(), b.SignedBig())
	case OpMul:
		unsignedRaw = new(big.Int).Mul(a.Big(), b.Big())
		signedRaw = new(big.Int).Mul(a.SignedBig(), b.SignedBig())
	case OpDiv:
		if b.IsZero() {
			divByZero = true
			return
		}
		signedRaw = new(big.Int).Quo(a.SignedBig(), b.SignedBig())
		unsignedRaw = new(big.Int).Mod(signedRaw, span)
	case OpMod:
		if b.IsZero() {
			divByZero = true
			return
		}
		signedRaw = new(big.Int).Rem(a.SignedBig(), b.SignedBig())
		unsignedRaw = new(big.Int).Mod(signedRaw, span)
	case OpAnd:
		result = a.And(b)
	case OpOr:
		result = a.Or(b)
	case OpXor:
		result = a.Xor(b)
	case OpNot:
		result = a.Not()
	case OpNeg:
		unsignedRaw = new(big.Int).Neg(a.Big())
		signedRaw = new(big.Int).Neg(a.SignedBig())
	case OpShl:
		result = a.Shl(clampShift(b, bits))
	case OpShr:
		result = a.Shr(clampShift(b, bits))
	}

	if unsignedRaw != nil {
		result = cell.ValueFromBig(bits, unsignedRaw)
		c = unsignedRaw.Sign() < 0 || unsignedRaw.Cmp(span) >= 0
		o = signedRaw.Cmp(signedLow) < 0 || signedRaw.Cmp(signedHigh) > 0
	}

	z = result.IsZero()
	s = result.Sign() < 0

	if !aluIsArithmetic(op) {
		c, o = false, false
	}

	return
}

// clampShift caps a shift amount at bits: a shift of bits-or-more always
// produces zero (for OpShl) or zero (for OpShr, since Shr is logical),
// and uint256's own Lsh/Rsh only guarantee that behavior for n < 256.
func clampShift(amount cell.Value, bits uint) uint {
	n := amount.Uint64()
	if n > uint64(bits) {
		return bits
	}
	return uint(n)
}
