package vm

import "github.com/ezrec/evilvm/cell"

// Config describes one VM instance's geometry, memory sizes, and
// optional space aliasing (section 4.2, 4.3, section 6's CLI surface).
type Config struct {
	Width cell.Width

	RamSize     uint
	StackSize   uint
	ProgramSize uint // 0 means size to the assembled image

	// MapMemory holds "name=name" aliasing directives, as accepted by
	// memory.NewMap.
	MapMemory []string

	// MaxTicks bounds Run's step count; 0 means unbounded (supplemented
	// feature, SPEC_FULL.md section C).
	MaxTicks uint64

	// TermWidth/TermHeight size the character-grid terminal backing
	// `seek`/`out`. Zero means no terminal is attached.
	TermWidth  int
	TermHeight int
}

// DefaultConfig matches the CLI defaults in spec.md section 6.
func DefaultConfig() Config {
	return Config{
		Width:     cell.DefaultWidth,
		RamSize:   1024,
		StackSize: 256,
	}
}
