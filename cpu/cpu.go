// Package cpu implements Evil VM's register file, ALU, instruction
// table, decoder, and fetch-execute loop (sections 3, 4.4-4.7).
package cpu

import (
	"errors"
	"log"

	"github.com/ezrec/evilvm/cell"
	"github.com/ezrec/evilvm/device"
	"github.com/ezrec/evilvm/memory"
)

// Cpu is the execution context: register file, the three resolved
// memory views, and the I/O devices `in`/`out`/`seek` talk to.
type Cpu struct {
	Verbose bool // Set to enable verbose per-instruction logging.

	Width cell.Width
	Regs  Registers

	Ram     *memory.View
	Program *memory.View
	Stack   *memory.View

	In   device.Channel
	Out  device.Channel
	Term *device.Terminal

	Halted bool
	Ticks  uint64
}

// NewCpu builds a Cpu over an already-constructed memory map and I/O
// devices, with a zeroed register file (section 3's "Lifecycles").
func NewCpu(width cell.Width, mem *memory.Map, in, out device.Channel, term *device.Terminal) (*Cpu, error) {
	ram, err := mem.Resolve(memory.Ram)
	if err != nil {
		return nil, err
	}
	program, err := mem.Resolve(memory.Program)
	if err != nil {
		return nil, err
	}
	stack, err := mem.Resolve(memory.Stack)
	if err != nil {
		return nil, err
	}

	return &Cpu{
		Width:   width,
		Regs:    NewRegisters(width),
		Ram:     ram,
		Program: program,
		Stack:   stack,
		In:      in,
		Out:     out,
		Term:    term,
	}, nil
}

// String dumps the current register file and tick count, in the
// teacher's "% 5s: value" register-dump style.
func (c *Cpu) String() (text string) {
	regs := []struct {
		name string
		val  cell.Value
	}{
		{"a", c.Regs.A}, {"c", c.Regs.C}, {"f", c.Regs.F},
		{"ip", c.Regs.IP}, {"sp", c.Regs.SP},
	}
	for _, r := range regs {
		text += f("% 5s: %#x\n", r.name, r.val.Uint64())
	}
	text += f("ticks: %d\n", c.Ticks)
	return
}

// regValue reads reg at the given bit width (section 4.4's width tag).
func (c *Cpu) regValue(reg Reg, width uint) cell.Value {
	return cell.ValueFromBig(width, c.Regs.Get(reg).Big())
}

// setRegValue writes reg at the given bit width: a full write if width
// matches the register's native width, otherwise a partial byte write
// that preserves the untouched high bits (section 4.4).
func (c *Cpu) setRegValue(reg Reg, width uint, v cell.Value) {
	if width == c.Regs.Get(reg).Bits() {
		c.Regs.Set(reg, v)
	} else {
		c.Regs.SetByte(reg, width, v.Uint64())
	}
}

// operandValue resolves a decoded Operand to its value at the given
// width: a register read for ArgReg, or the already-decoded immediate
// re-masked to width otherwise.
func (c *Cpu) operandValue(width uint, op Operand) cell.Value {
	if op.Kind == ArgReg {
		return c.regValue(op.Reg, width)
	}
	return cell.ValueFromBig(width, op.Val.Big())
}

// Step fetches and executes exactly one instruction.
func (c *Cpu) Step() error {
	faultIP := c.Regs.IP.Uint64()

	def, ops, err := c.fetch()
	if err != nil {
		return c.fault(faultIP, err)
	}

	if c.Verbose {
		log.Printf("%#x: %s", faultIP, def.Mnemonic)
	}

	if err := def.Exec(c, ops); err != nil {
		return c.fault(faultIP, err)
	}

	c.Ticks++
	return nil
}

// ErrMaxTicksExceeded is a host-level safety stop (not a guest fault):
// the supplemented `--max-ticks` flag lets a caller bound a runaway
// program instead of running forever (SPEC_FULL.md, Supplemented
// features).
var ErrMaxTicksExceeded = errors.New(f("max ticks exceeded"))

// Run steps the CPU until halt, fault, or maxTicks is reached (0 means
// unbounded).
func (c *Cpu) Run(maxTicks uint64) error {
	for !c.Halted {
		if maxTicks > 0 && c.Ticks >= maxTicks {
			return ErrMaxTicksExceeded
		}
		if err := c.Step(); err != nil {
			return err
		}
	}
	return nil
}

// fault classifies a low-level error (an instruction table miss, a
// memory.Err*, or one of this package's own sentinels) into a Fault
// carrying the faulting IP, per section 7.
func (c *Cpu) fault(ip uint64, err error) *Fault {
	kind := err
	switch {
	case errors.Is(err, memory.ErrOutOfBounds):
		kind = ErrOutOfBounds
	case errors.Is(err, memory.ErrReadOnly):
		kind = ErrReadOnlyWrite
	}
	return &Fault{Kind: kind, IP: ip, Err: err}
}
