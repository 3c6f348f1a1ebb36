package cpu

import (
	"math/big"

	"github.com/ezrec/evilvm/cell"
)

// ArgKind is an operand's addressing/encoding class (section 4.5).
type ArgKind int

const (
	ArgNone ArgKind = iota
	ArgReg             // register id, 1 cell
	ArgImmByte         // 1 cell
	ArgImmWord         // word_size cells
	ArgImmAddr         // addr_size cells (also used for labels and .rel offsets)
)

// Operand is one decoded instruction argument. For ArgReg, Reg names the
// register and Val is unused; decoding a register operand's *value* (at
// the suffix's width) is left to the instruction's Exec function, since
// the same register id is read at different widths depending on .b/.w.
type Operand struct {
	Kind ArgKind
	Reg  Reg
	Val  cell.Value
}

// fetch reads the opcode and its operands from program space at the
// current IP, advances IP past the whole instruction, and returns the
// matched instruction definition with its decoded operands (section 4.6).
func (c *Cpu) fetch() (*InstrDef, []Operand, error) {
	ip := c.Regs.IP.Uint64()

	opcodeCell, err := c.Program.LoadCell(ip)
	if err != nil {
		return nil, nil, err
	}

	def := instrTable[opcodeCell]
	if def == nil {
		return nil, nil, ErrUnknownOpcode
	}

	endian := cell.EndianOf(opcodeCell)
	cursor := ip + 1

	ops := make([]Operand, len(def.Operands))
	for i, kind := range def.Operands {
		switch kind {
		case ArgReg:
			regCells, err := c.Program.LoadBytes(cursor, 1)
			if err != nil {
				return nil, nil, err
			}
			cursor++
			reg := Reg(regCells[0])
			if _, ok := regNames[reg]; !ok {
				return nil, nil, ErrInvalidRegister
			}
			ops[i] = Operand{Kind: ArgReg, Reg: reg}

		case ArgImmByte:
			cells, err := c.Program.LoadBytes(cursor, 1)
			if err != nil {
				return nil, nil, err
			}
			cursor++
			ops[i] = Operand{Kind: kind, Val: cell.ValueFromUint64(c.Width.CharBit, cells[0])}

		case ArgImmWord:
			cells, err := c.Program.LoadBytes(cursor, c.Width.WordSize)
			if err != nil {
				return nil, nil, err
			}
			cursor += uint64(c.Width.WordSize)
			raw := cell.Unpack(cells, c.Width.CharBit, endian)
			ops[i] = Operand{Kind: kind, Val: cell.ValueFromBig(c.Width.WordBits(), raw)}

		case ArgImmAddr:
			cells, err := c.Program.LoadBytes(cursor, c.Width.AddrSize)
			if err != nil {
				return nil, nil, err
			}
			cursor += uint64(c.Width.AddrSize)
			raw := cell.Unpack(cells, c.Width.CharBit, endian)
			val := cell.ValueFromBig(c.Width.AddrBits(), raw)
			if def.Relative {
				offset := val.SignedBig()
				target := new(big.Int).Add(new(big.Int).SetUint64(cursor), offset)
				val = cell.ValueFromBig(c.Width.AddrBits(), target)
			}
			ops[i] = Operand{Kind: kind, Val: val}
		}
	}

	c.Regs.IP = cell.ValueFromUint64(c.Width.AddrBits(), cursor)

	return def, ops, nil
}
