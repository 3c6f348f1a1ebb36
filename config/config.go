// Package config loads Evil VM's geometry/memory settings from an
// optional TOML file, to be overridden by CLI flags, matching how
// cmd/ucapp/main.go layers plain flag.* values (SPEC_FULL.md section
// A.3).
package config

import (
	"os"

	"github.com/BurntSushi/toml"

	"github.com/ezrec/evilvm/vm"
)

// File is the on-disk shape of a TOML config file. Fields are pointers
// so an absent key can be told apart from an explicit zero: Apply
// overlays only the keys the file sets.
type File struct {
	CharBit  *uint `toml:"char_bit"`
	WordSize *uint `toml:"word_size"`
	AddrSize *uint `toml:"addr_size"`

	RamSize     *uint `toml:"ram_size"`
	StackSize   *uint `toml:"stack_size"`
	ProgramSize *uint `toml:"program_size"`

	MapMemory []string `toml:"map_memory"`

	MaxTicks *uint64 `toml:"max_ticks"`

	TermWidth  *int `toml:"term_width"`
	TermHeight *int `toml:"term_height"`
}

// Load reads and decodes a TOML file at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f File
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

// Apply overlays the file's explicitly-set fields onto a base vm.Config,
// returning the merged result. A nil File is a no-op.
func Apply(base vm.Config, f *File) vm.Config {
	if f == nil {
		return base
	}
	cfg := base
	if f.CharBit != nil {
		cfg.Width.CharBit = *f.CharBit
	}
	if f.WordSize != nil {
		cfg.Width.WordSize = *f.WordSize
	}
	if f.AddrSize != nil {
		cfg.Width.AddrSize = *f.AddrSize
	}
	if f.RamSize != nil {
		cfg.RamSize = *f.RamSize
	}
	if f.StackSize != nil {
		cfg.StackSize = *f.StackSize
	}
	if f.ProgramSize != nil {
		cfg.ProgramSize = *f.ProgramSize
	}
	if len(f.MapMemory) > 0 {
		cfg.MapMemory = f.MapMemory
	}
	if f.MaxTicks != nil {
		cfg.MaxTicks = *f.MaxTicks
	}
	if f.TermWidth != nil {
		cfg.TermWidth = *f.TermWidth
	}
	if f.TermHeight != nil {
		cfg.TermHeight = *f.TermHeight
	}
	return cfg
}
