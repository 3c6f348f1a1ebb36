package cpu

import "github.com/ezrec/evilvm/cell"

// Reg identifies one of the five architectural registers (section 3).
type Reg int

const (
	RegA  Reg = iota // accumulator, word-wide
	RegC             // counter, word-wide
	RegF             // flags, word-wide
	RegIP            // instruction pointer, address-wide
	RegSP            // return-stack pointer, address-wide
)

var regNames = map[Reg]string{
	RegA: "a", RegC: "c", RegF: "f", RegIP: "ip", RegSP: "sp",
}

func (r Reg) String() string {
	if name, ok := regNames[r]; ok {
		return name
	}
	return "?"
}

// RegByName resolves an assembler register name to its Reg value.
func RegByName(name string) (Reg, bool) {
	for r, n := range regNames {
		if n == name {
			return r, true
		}
	}
	return 0, false
}

// Flag bits within F, fixed positions (section 3 says bit positions are
// implementation-defined but fixed).
const (
	FlagZ = uint(iota) // zero
	FlagC              // carry/borrow
	FlagS              // sign
	FlagO              // overflow
)

// Registers is the architectural register file.
type Registers struct {
	A, C, F cell.Word
	IP, SP  cell.Addr
}

// NewRegisters builds a zeroed register file for the given geometry.
func NewRegisters(width cell.Width) Registers {
	return Registers{
		A:  cell.NewValue(width.WordBits()),
		C:  cell.NewValue(width.WordBits()),
		F:  cell.NewValue(width.WordBits()),
		IP: cell.NewValue(width.AddrBits()),
		SP: cell.NewValue(width.AddrBits()),
	}
}

// Get reads a register by its Reg id. byte/word/addr truncation is the
// caller's responsibility (section 4.4); Cpu.regValue and
// Cpu.setRegValue do it.
func (r *Registers) Get(reg Reg) cell.Value {
	switch reg {
	case RegA:
		return r.A
	case RegC:
		return r.C
	case RegF:
		return r.F
	case RegIP:
		return r.IP
	case RegSP:
		return r.SP
	default:
		return cell.Value{}
	}
}

// Set writes a whole register (word or address width, matching its
// natural width).
func (r *Registers) Set(reg Reg, v cell.Value) {
	switch reg {
	case RegA:
		r.A = v
	case RegC:
		r.C = v
	case RegF:
		r.F = v
	case RegIP:
		r.IP = v
	case RegSP:
		r.SP = v
	}
}

// SetByte writes only the low char_bit bits of a register, leaving
// higher bits untouched (section 4.4).
func (r *Registers) SetByte(reg Reg, charBit uint, low uint64) {
	cur := r.Get(reg)
	mask := cell.Width{CharBit: charBit, WordSize: 1}.CellMask()
	lowVal := cell.ValueFromUint64(cur.Bits(), low&mask)
	hiMask := cell.ValueFromUint64(cur.Bits(), mask).Not()
	r.Set(reg, cur.And(hiMask).Or(lowVal))
}

// Flag reads one bit of F.
func (r *Registers) Flag(bit uint) bool {
	return r.F.Shr(bit).And(cell.ValueFromUint64(r.F.Bits(), 1)).Uint64() != 0
}

// SetFlag writes one bit of F.
func (r *Registers) SetFlag(bit uint, set bool) {
	mask := cell.ValueFromUint64(r.F.Bits(), 1).Shl(bit)
	if set {
		r.F = r.F.Or(mask)
	} else {
		r.F = r.F.And(mask.Not())
	}
}

// SetFlags writes Z, C, S, O together, as every arithmetic/logic
// instruction does (section 4.4).
func (r *Registers) SetFlags(z, c, s, o bool) {
	r.SetFlag(FlagZ, z)
	r.SetFlag(FlagC, c)
	r.SetFlag(FlagS, s)
	r.SetFlag(FlagO, o)
}
