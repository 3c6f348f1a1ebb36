package cpu

import (
	"errors"

	"github.com/ezrec/evilvm/cell"
	"github.com/ezrec/evilvm/memory"
)

// InstrDef is one row of the closed instruction table: a mnemonic (as
// the assembler spells it, including any suffix), the operand classes
// it expects in encoded form, whether its address operand is a .rel
// displacement, and the semantic action over the CPU (section 4.5).
type InstrDef struct {
	Mnemonic string
	Operands []ArgKind
	Relative bool
	Exec     func(c *Cpu, ops []Operand) error
}

// instrTable maps opcode (0-255) to its definition; nil entries are
// unassigned and decode as UNKNOWN_OPCODE.
var instrTable [256]*InstrDef

// mnemonicTable maps the assembler-facing mnemonic text to its opcode
// number, built alongside instrTable.
var mnemonicTable = map[string]int{}

func assign(table []InstrDef) {
	for i, def := range table {
		d := def
		instrTable[i] = &d
		mnemonicTable[d.Mnemonic] = i
	}
}

// Opcode looks up the assigned opcode number for a mnemonic, as spelled
// by buildTable below (e.g. "add.b.r", "mov.b.i2r", "jmp.rel").
func Opcode(mnemonic string) (int, bool) {
	n, ok := mnemonicTable[mnemonic]
	return n, ok
}

// Lookup returns the instruction definition assigned to opcode.
func Lookup(opcode int) *InstrDef {
	if opcode < 0 || opcode >= len(instrTable) {
		return nil
	}
	return instrTable[opcode]
}

func init() {
	assign(buildTable())
}

// buildTable constructs the closed instruction enumeration in a fixed
// order; opcode numbers are assigned by table position, so reordering
// this slice changes the whole table's numbering (section 4.5: "The
// instruction table is a closed enumeration assigned stable opcode
// numbers at VM build time").
func buildTable() []InstrDef {
	var table []InstrDef

	table = append(table, movOps()...)
	table = append(table, loadStoreOps()...)
	table = append(table, aluBinaryOps()...)
	table = append(table, aluShiftOps()...)
	table = append(table, aluUnaryOps()...)
	table = append(table, jumpOps()...)
	table = append(table, loopCallOps()...)
	table = append(table, stackOps()...)
	table = append(table, ioOps()...)
	table = append(table, terminalOps()...)

	return table
}

func widthOf(c *Cpu, suffix string) uint {
	if suffix == "w" {
		return c.Width.WordBits()
	}
	return c.Width.CharBit
}

// --- data movement: mov.{b,w}.{i2r,r2r} ---

func movOps() []InstrDef {
	var out []InstrDef
	for _, suffix := range []string{"b", "w"} {
		suffix := suffix
		immClass := ArgImmByte
		if suffix == "w" {
			immClass = ArgImmWord
		}

		out = append(out, InstrDef{
			Mnemonic: "mov." + suffix + ".i2r",
			Operands: []ArgKind{ArgReg, immClass},
			Exec: func(c *Cpu, ops []Operand) error {
				width := widthOf(c, suffix)
				c.setRegValue(ops[0].Reg, width, cell.ValueFromBig(width, ops[1].Val.Big()))
				return nil
			},
		})
		out = append(out, InstrDef{
			Mnemonic: "mov." + suffix + ".r2r",
			Operands: []ArgKind{ArgReg, ArgReg},
			Exec: func(c *Cpu, ops []Operand) error {
				width := widthOf(c, suffix)
				c.setRegValue(ops[0].Reg, width, c.regValue(ops[1].Reg, width))
				return nil
			},
		})
	}
	return out
}

// --- load/store: ldb/ldw/lda, stb/stw/sta, lpb ---

func loadStoreOps() []InstrDef {
	return []InstrDef{
		{
			Mnemonic: "ldb",
			Operands: []ArgKind{ArgReg, ArgReg},
			Exec: func(c *Cpu, ops []Operand) error {
				addr := c.regValue(ops[1].Reg, c.Width.AddrBits()).Uint64()
				v, err := c.Ram.LoadCell(addr)
				if err != nil {
					return err
				}
				c.setRegValue(ops[0].Reg, c.Width.CharBit, cell.ValueFromUint64(c.Width.CharBit, v))
				return nil
			},
		},
		{
			Mnemonic: "ldw",
			Operands: []ArgKind{ArgReg, ArgReg},
			Exec: func(c *Cpu, ops []Operand) error {
				addr := c.regValue(ops[1].Reg, c.Width.AddrBits()).Uint64()
				v, err := c.Ram.LoadWord(addr)
				if err != nil {
					return err
				}
				c.setRegValue(ops[0].Reg, c.Width.WordBits(), v)
				return nil
			},
		},
		{
			Mnemonic: "lda",
			Operands: []ArgKind{ArgReg, ArgReg},
			Exec: func(c *Cpu, ops []Operand) error {
				addr := c.regValue(ops[1].Reg, c.Width.AddrBits()).Uint64()
				v, err := c.Ram.LoadAddr(addr)
				if err != nil {
					return err
				}
				c.setRegValue(ops[0].Reg, c.Width.AddrBits(), v)
				return nil
			},
		},
		{
			Mnemonic: "stb",
			Operands: []ArgKind{ArgReg, ArgReg},
			Exec: func(c *Cpu, ops []Operand) error {
				addr := c.regValue(ops[0].Reg, c.Width.AddrBits()).Uint64()
				v := c.regValue(ops[1].Reg, c.Width.CharBit)
				return c.Ram.StoreCell(addr, v.Uint64())
			},
		},
		{
			Mnemonic: "stw",
			Operands: []ArgKind{ArgReg, ArgReg},
			Exec: func(c *Cpu, ops []Operand) error {
				addr := c.regValue(ops[0].Reg, c.Width.AddrBits()).Uint64()
				v := c.regValue(ops[1].Reg, c.Width.WordBits())
				return c.Ram.StoreWord(addr, v)
			},
		},
		{
			Mnemonic: "sta",
			Operands: []ArgKind{ArgReg, ArgReg},
			Exec: func(c *Cpu, ops []Operand) error {
				addr := c.regValue(ops[0].Reg, c.Width.AddrBits()).Uint64()
				v := c.regValue(ops[1].Reg, c.Width.AddrBits())
				return c.Ram.StoreAddr(addr, v)
			},
		},
		{
			Mnemonic: "lpb",
			Operands: []ArgKind{ArgReg, ArgReg},
			Exec: func(c *Cpu, ops []Operand) error {
				addr := c.regValue(ops[1].Reg, c.Width.AddrBits()).Uint64()
				v, err := c.Program.LoadCell(addr)
				if err != nil {
					return err
				}
				c.setRegValue(ops[0].Reg, c.Width.CharBit, cell.ValueFromUint64(c.Width.CharBit, v))
				return nil
			},
		},
	}
}

// --- arithmetic/logic binary ops: {add,sub,mul,div,mod,and,or,xor,cmp}.{b,w}.{r,i} ---

var binaryOps = []struct {
	name string
	op   AluOp
}{
	{"add", OpAdd}, {"sub", OpSub}, {"mul", OpMul}, {"div", OpDiv}, {"mod", OpMod},
	{"and", OpAnd}, {"or", OpOr}, {"xor", OpXor}, {"cmp", OpCmp},
}

func aluBinaryOps() []InstrDef {
	var out []InstrDef
	for _, b := range binaryOps {
		b := b
		for _, suffix := range []string{"b", "w"} {
			suffix := suffix
			for _, form := range []string{"r", "i"} {
				form := form
				srcClass := ArgReg
				if form == "i" {
					if suffix == "w" {
						srcClass = ArgImmWord
					} else {
						srcClass = ArgImmByte
					}
				}
				out = append(out, InstrDef{
					Mnemonic: b.name + "." + suffix + "." + form,
					Operands: []ArgKind{ArgReg, srcClass},
					Exec: func(c *Cpu, ops []Operand) error {
						width := widthOf(c, suffix)
						a := c.regValue(ops[0].Reg, width)
						bv := c.operandValue(width, ops[1])
						result, z, cf, s, o, divZero := Alu(b.op, width, a, bv)
						if divZero {
							return ErrDivByZero
						}
						if b.op != OpCmp {
							c.setRegValue(ops[0].Reg, width, result)
						}
						c.Regs.SetFlags(z, cf, s, o)
						return nil
					},
				})
			}
		}
	}
	return out
}

// --- shifts: {shl,shr}.{b,w}.{r,i} ---

func aluShiftOps() []InstrDef {
	var out []InstrDef
	shifts := []struct {
		name string
		op   AluOp
	}{{"shl", OpShl}, {"shr", OpShr}}

	for _, sh := range shifts {
		sh := sh
		for _, suffix := range []string{"b", "w"} {
			suffix := suffix
			for _, form := range []string{"r", "i"} {
				form := form
				srcClass := ArgReg
				if form == "i" {
					srcClass = ArgImmByte
				}
				out = append(out, InstrDef{
					Mnemonic: sh.name + "." + suffix + "." + form,
					Operands: []ArgKind{ArgReg, srcClass},
					Exec: func(c *Cpu, ops []Operand) error {
						width := widthOf(c, suffix)
						a := c.regValue(ops[0].Reg, width)
						amount := c.operandValue(c.Width.CharBit, ops[1])
						result, z, cf, s, o, _ := Alu(sh.op, width, a, amount)
						c.setRegValue(ops[0].Reg, width, result)
						c.Regs.SetFlags(z, cf, s, o)
						return nil
					},
				})
			}
		}
	}
	return out
}

// --- unary: {not,neg}.{b,w} ---

func aluUnaryOps() []InstrDef {
	var out []InstrDef
	unary := []struct {
		name string
		op   AluOp
	}{{"not", OpNot}, {"neg", OpNeg}}

	for _, u := range unary {
		u := u
		for _, suffix := range []string{"b", "w"} {
			suffix := suffix
			out = append(out, InstrDef{
				Mnemonic: u.name + "." + suffix,
				Operands: []ArgKind{ArgReg},
				Exec: func(c *Cpu, ops []Operand) error {
					width := widthOf(c, suffix)
					a := c.regValue(ops[0].Reg, width)
					result, z, cf, s, o, _ := Alu(u.op, width, a, cell.Value{})
					c.setRegValue(ops[0].Reg, width, result)
					c.Regs.SetFlags(z, cf, s, o)
					return nil
				},
			})
		}
	}
	return out
}

// --- control flow: conditional jumps, each absolute and .rel ---

var jumpConds = []struct {
	name string
	test func(r *Registers) bool
}{
	{"jmp", func(r *Registers) bool { return true }},
	{"je", func(r *Registers) bool { return r.Flag(FlagZ) }},
	{"jne", func(r *Registers) bool { return !r.Flag(FlagZ) }},
	{"jb", func(r *Registers) bool { return r.Flag(FlagC) }},
	{"jbe", func(r *Registers) bool { return r.Flag(FlagC) || r.Flag(FlagZ) }},
	{"ja", func(r *Registers) bool { return !r.Flag(FlagC) && !r.Flag(FlagZ) }},
	{"jae", func(r *Registers) bool { return !r.Flag(FlagC) }},
	{"jl", func(r *Registers) bool { return r.Flag(FlagS) != r.Flag(FlagO) }},
	{"jle", func(r *Registers) bool { return r.Flag(FlagS) != r.Flag(FlagO) || r.Flag(FlagZ) }},
	{"jg", func(r *Registers) bool { return r.Flag(FlagS) == r.Flag(FlagO) && !r.Flag(FlagZ) }},
	{"jge", func(r *Registers) bool { return r.Flag(FlagS) == r.Flag(FlagO) }},
}

func jumpOps() []InstrDef {
	var out []InstrDef
	for _, j := range jumpConds {
		j := j
		out = append(out, InstrDef{
			Mnemonic: j.name,
			Operands: []ArgKind{ArgImmAddr},
			Exec: func(c *Cpu, ops []Operand) error {
				if j.test(&c.Regs) {
					c.Regs.IP = ops[0].Val
				}
				return nil
			},
		})
		out = append(out, InstrDef{
			Mnemonic: j.name + ".rel",
			Operands: []ArgKind{ArgImmAddr},
			Relative: true,
			Exec: func(c *Cpu, ops []Operand) error {
				if j.test(&c.Regs) {
					c.Regs.IP = ops[0].Val
				}
				return nil
			},
		})
	}
	return out
}

// --- loop/call/ret/halt ---

func loopCallOps() []InstrDef {
	var out []InstrDef

	for _, rel := range []bool{false, true} {
		rel := rel
		mnemonic := "loop"
		if rel {
			mnemonic = "loop.rel"
		}
		out = append(out, InstrDef{
			Mnemonic: mnemonic,
			Operands: []ArgKind{ArgImmAddr},
			Relative: rel,
			Exec: func(c *Cpu, ops []Operand) error {
				width := c.Width.WordBits()
				next, _ := c.Regs.C.Sub(cell.ValueFromUint64(width, 1))
				c.Regs.C = next
				if !next.IsZero() {
					c.Regs.IP = ops[0].Val
				}
				return nil
			},
		})
	}

	for _, rel := range []bool{false, true} {
		rel := rel
		mnemonic := "call"
		if rel {
			mnemonic = "call.rel"
		}
		out = append(out, InstrDef{
			Mnemonic: mnemonic,
			Operands: []ArgKind{ArgImmAddr},
			Relative: rel,
			Exec: func(c *Cpu, ops []Operand) error {
				sp := c.Regs.SP.Uint64()
				if err := c.Stack.StoreAddr(sp, c.Regs.IP); err != nil {
					if errors.Is(err, memory.ErrOutOfBounds) {
						return ErrStackOverflow
					}
					return err
				}
				c.Regs.SP, _ = c.Regs.SP.Add(cell.ValueFromUint64(c.Width.AddrBits(), uint64(c.Width.AddrSize)))
				c.Regs.IP = ops[0].Val
				return nil
			},
		})
	}

	out = append(out, InstrDef{
		Mnemonic: "ret",
		Operands: nil,
		Exec: func(c *Cpu, ops []Operand) error {
			addrSize := cell.ValueFromUint64(c.Width.AddrBits(), uint64(c.Width.AddrSize))
			newSP, borrow := c.Regs.SP.Sub(addrSize)
			if borrow {
				return ErrStackUnderflow
			}
			addr, err := c.Stack.LoadAddr(newSP.Uint64())
			if err != nil {
				return err
			}
			c.Regs.SP = newSP
			c.Regs.IP = addr
			return nil
		},
	})

	out = append(out, InstrDef{
		Mnemonic: "halt",
		Operands: nil,
		Exec: func(c *Cpu, ops []Operand) error {
			c.Halted = true
			return nil
		},
	})

	return out
}

// --- stack: push/pop ---

func stackOps() []InstrDef {
	return []InstrDef{
		{
			Mnemonic: "push",
			Operands: []ArgKind{ArgReg},
			Exec: func(c *Cpu, ops []Operand) error {
				v := c.regValue(ops[0].Reg, c.Width.WordBits())
				sp := c.Regs.SP.Uint64()
				if err := c.Stack.StoreWord(sp, v); err != nil {
					if errors.Is(err, memory.ErrOutOfBounds) {
						return ErrStackOverflow
					}
					return err
				}
				c.Regs.SP, _ = c.Regs.SP.Add(cell.ValueFromUint64(c.Width.AddrBits(), uint64(c.Width.WordSize)))
				return nil
			},
		},
		{
			Mnemonic: "pop",
			Operands: []ArgKind{ArgReg},
			Exec: func(c *Cpu, ops []Operand) error {
				wordSize := cell.ValueFromUint64(c.Width.AddrBits(), uint64(c.Width.WordSize))
				newSP, borrow := c.Regs.SP.Sub(wordSize)
				if borrow {
					return ErrStackUnderflow
				}
				v, err := c.Stack.LoadWord(newSP.Uint64())
				if err != nil {
					return err
				}
				c.Regs.SP = newSP
				c.setRegValue(ops[0].Reg, c.Width.WordBits(), v)
				return nil
			},
		},
	}
}

// --- I/O: in/out ---

func ioOps() []InstrDef {
	return []InstrDef{
		{
			Mnemonic: "in",
			Operands: nil,
			Exec: func(c *Cpu, ops []Operand) error {
				v, err := c.In.Recv()
				if err != nil {
					c.Regs.SetByte(RegA, c.Width.CharBit, c.Width.CellMask())
					c.Regs.SetFlag(FlagC, true)
					return nil
				}
				c.Regs.SetByte(RegA, c.Width.CharBit, v)
				return nil
			},
		},
		{
			Mnemonic: "out",
			Operands: nil,
			Exec: func(c *Cpu, ops []Operand) error {
				low := c.regValue(RegA, c.Width.CharBit).Uint64()
				if c.Term != nil {
					c.Term.Put(byte(low))
				}
				return c.Out.Send(low)
			},
		},
	}
}

// --- terminal: seek a, b ---

func terminalOps() []InstrDef {
	var out []InstrDef
	for _, aForm := range []ArgKind{ArgReg, ArgImmWord} {
		for _, bForm := range []ArgKind{ArgReg, ArgImmWord} {
			aForm, bForm := aForm, bForm
			name := "seek." + argFormName(aForm) + argFormName(bForm)
			out = append(out, InstrDef{
				Mnemonic: name,
				Operands: []ArgKind{aForm, bForm},
				Exec: func(c *Cpu, ops []Operand) error {
					col := int(c.operandValue(c.Width.WordBits(), ops[0]).Uint64())
					row := int(c.operandValue(c.Width.WordBits(), ops[1]).Uint64())
					if c.Term != nil {
						c.Term.Seek(col, row)
					}
					return nil
				},
			})
		}
	}
	return out
}

func argFormName(k ArgKind) string {
	if k == ArgReg {
		return "r"
	}
	return "i"
}
