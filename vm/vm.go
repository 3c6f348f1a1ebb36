// Package vm wires together the cell geometry, memory map, assembler,
// CPU, and I/O devices into one runnable Evil VM instance, the way
// cmd/ucapp/main.go wires cpu.Assembler + emulator.Emulator in the
// teacher.
package vm

import (
	"io"
	"log"

	"github.com/ezrec/evilvm/cell"
	"github.com/ezrec/evilvm/cpu"
	"github.com/ezrec/evilvm/device"
	"github.com/ezrec/evilvm/memory"
)

// VM owns an assembled program, its memory map, and the CPU executing
// it. Verbose mirrors cpu.Cpu.Verbose.
type VM struct {
	Config Config
	Cpu    *cpu.Cpu
	Prog   *cpu.Program

	Verbose bool
}

// New assembles source and builds the memory map, CPU, and I/O devices
// described by cfg. in/out back the `in`/`out` instructions; when
// cfg.TermWidth and cfg.TermHeight are both positive, a terminal writing
// to out is attached and backs `seek`.
func New(cfg Config, source io.Reader, in io.Reader, out io.Writer) (*VM, error) {
	if err := cfg.Width.Validate(); err != nil {
		return nil, &ConfigError{Err: err}
	}

	asm := cpu.NewAssembler(cfg.Width)
	prog, err := asm.Assemble(source)
	if err != nil {
		return nil, &AssembleError{Err: err}
	}

	progSize := cfg.ProgramSize
	if progSize == 0 {
		progSize = uint(len(prog.Image))
	}
	if progSize < uint(len(prog.Image)) {
		progSize = uint(len(prog.Image))
	}

	mem, err := memory.NewMap(cfg.Width, memory.Sizes{
		Ram:     cfg.RamSize,
		Program: progSize,
		Stack:   cfg.StackSize,
	}, cfg.MapMemory)
	if err != nil {
		return nil, &ConfigError{Err: err}
	}

	if err := mem.LoadProgram(prog.Image); err != nil {
		return nil, &ConfigError{Err: err}
	}

	var term *device.Terminal
	if cfg.TermWidth > 0 && cfg.TermHeight > 0 {
		term = device.NewTerminal(cfg.TermWidth, cfg.TermHeight, out)
	}

	channel := device.NewStream(in, out)

	c, err := cpu.NewCpu(cfg.Width, mem, channel, channel, term)
	if err != nil {
		return nil, &ConfigError{Err: err}
	}

	return &VM{Config: cfg, Cpu: c, Prog: prog}, nil
}

// Reset zeroes the register file, leaving program/memory contents
// untouched (section 3, "Lifecycles": program is loaded once, never
// rewritten).
func (v *VM) Reset() {
	v.Cpu.Regs = cpu.NewRegisters(v.Config.Width)
	v.Cpu.Halted = false
	v.Cpu.Ticks = 0
}

// Run drives the CPU to completion: halt, fault, or MaxTicks exceeded.
// It flushes the terminal, if any, before returning.
func (v *VM) Run() error {
	v.Cpu.Verbose = v.Verbose
	err := v.Cpu.Run(v.Config.MaxTicks)
	if v.Cpu.Term != nil {
		if ferr := v.Cpu.Term.Flush(); ferr != nil && err == nil {
			err = ferr
		}
	}
	if v.Verbose {
		log.Print(v.Cpu.String())
	}
	return err
}

// Width is a convenience accessor, used by host tooling that only has
// a *VM and needs the geometry for e.g. disassembly.
func Width(v *VM) cell.Width { return v.Config.Width }
