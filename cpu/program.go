package cpu

import "github.com/ezrec/evilvm/cell"

// Program is the assembler's output: a cell sequence ready to be loaded
// into program space at offset 0 (section 3, "Program image"), plus the
// resolved symbol table for diagnostics and tooling.
type Program struct {
	Width  cell.Width
	Image  []uint64
	Labels map[string]uint64
}
