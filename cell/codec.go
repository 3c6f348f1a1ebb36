package cell

import "math/big"

// Endian selects the byte order used to encode a multi-cell value. Evil VM
// opcodes pick their operand endianness by opcode parity (section 4.1):
// even opcodes decode little-endian, odd opcodes decode big-endian. This
// choice affects only the wire encoding of operands, never how a word sits
// in RAM or a register.
type Endian bool

const (
	Little Endian = false
	Big    Endian = true
)

// EndianOf returns the operand endianness for a given opcode, per the
// even/odd parity rule.
func EndianOf(opcode uint64) Endian {
	if opcode%2 == 0 {
		return Little
	}
	return Big
}

// Pack encodes value as n cells of charBit bits each, in the given
// endianness. value is reduced mod 2^(charBit*n) first, matching the
// masked semantics of section 4.1 rather than rejecting out-of-range
// values.
//
// Pack works in math/big rather than a fixed-width integer so the codec
// itself stays correct across the full char_bit/cell-count sweep (section
// 8, Testable Property 1) independent of any register-width ceiling the
// CPU imposes elsewhere.
func Pack(value *big.Int, charBit, n uint, endian Endian) []uint64 {
	cellMod := new(big.Int).Lsh(big.NewInt(1), charBit)
	span := new(big.Int).Lsh(big.NewInt(1), charBit*n)

	v := new(big.Int).Mod(value, span)
	if v.Sign() < 0 {
		v.Add(v, span)
	}

	le := make([]uint64, n)
	rem := new(big.Int)
	for i := uint(0); i < n; i++ {
		v.DivMod(v, cellMod, rem)
		le[i] = rem.Uint64()
	}

	if endian == Little {
		return le
	}
	return reversed(le)
}

// Unpack decodes n cells, each holding charBit bits, in the given
// endianness, back into a value.
func Unpack(cells []uint64, charBit uint, endian Endian) *big.Int {
	le := cells
	if endian == Big {
		le = reversed(cells)
	}

	value := new(big.Int)
	for i := len(le) - 1; i >= 0; i-- {
		value.Lsh(value, charBit)
		value.Or(value, new(big.Int).SetUint64(le[i]))
	}
	return value
}

func reversed(cells []uint64) []uint64 {
	out := make([]uint64, len(cells))
	for i, c := range cells {
		out[len(cells)-1-i] = c
	}
	return out
}
