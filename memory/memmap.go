package memory

import (
	"strings"

	"github.com/ezrec/evilvm/cell"
)

// Name identifies one of the three logical address spaces (section 3).
type Name string

const (
	Ram     Name = "ram"
	Program Name = "program"
	Stack   Name = "stack"
)

func (n Name) valid() bool {
	return n == Ram || n == Program || n == Stack
}

// View is a logical name's handle onto a backing Space. The read-only
// bit travels with the name, not the backing array (section 4.3): two
// names aliased onto the same Space may still differ in whether writes
// through them are accepted.
type View struct {
	name     Name
	space    *Space
	readOnly bool
}

// Size reports the view's backing space size, in cells.
func (v *View) Size() uint { return v.space.Size() }

func (v *View) checkWrite() error {
	if v.readOnly {
		return ErrReadOnly
	}
	return nil
}

// LoadCell reads a single cell.
func (v *View) LoadCell(addr uint64) (uint64, error) { return v.space.LoadCell(addr) }

// StoreCell writes a single cell, subject to the view's read-only bit.
func (v *View) StoreCell(addr uint64, val uint64) error {
	if err := v.checkWrite(); err != nil {
		return err
	}
	return v.space.StoreCell(addr, val)
}

// LoadWord reads a word, little-endian.
func (v *View) LoadWord(addr uint64) (cell.Word, error) { return v.space.LoadWord(addr) }

// StoreWord writes a word, little-endian, subject to the view's
// read-only bit.
func (v *View) StoreWord(addr uint64, w cell.Word) error {
	if err := v.checkWrite(); err != nil {
		return err
	}
	return v.space.StoreWord(addr, w)
}

// LoadAddr reads an address, little-endian.
func (v *View) LoadAddr(addr uint64) (cell.Addr, error) { return v.space.LoadAddr(addr) }

// StoreAddr writes an address, little-endian, subject to the view's
// read-only bit.
func (v *View) StoreAddr(addr uint64, a cell.Addr) error {
	if err := v.checkWrite(); err != nil {
		return err
	}
	return v.space.StoreAddr(addr, a)
}

// LoadBytes reads n consecutive cells.
func (v *View) LoadBytes(addr uint64, n uint) ([]uint64, error) {
	return v.space.LoadBytes(addr, n)
}

// StoreBytes writes consecutive cells, subject to the view's read-only
// bit.
func (v *View) StoreBytes(addr uint64, cells []uint64) error {
	if err := v.checkWrite(); err != nil {
		return err
	}
	return v.space.StoreBytes(addr, cells)
}

// Map resolves the three logical names to backing spaces, honoring
// caller-supplied aliasing directives (section 4.3).
type Map struct {
	views map[Name]*View
}

// Sizes gives the default (unaliased) size in cells for each logical
// space.
type Sizes struct {
	Ram     uint
	Program uint
	Stack   uint
}

// NewMap builds a memory map. aliases is a list of "name=name" directives
// (e.g. "ram=program"); transitivity is applied, so "ram=program" plus
// "stack=program" puts all three in one group. An aliased group's backing
// space is sized to the largest of its members' default sizes.
func NewMap(width cell.Width, sizes Sizes, aliases []string) (*Map, error) {
	parent := map[Name]Name{Ram: Ram, Program: Program, Stack: Stack}
	var find func(Name) Name
	find = func(n Name) Name {
		if parent[n] != n {
			parent[n] = find(parent[n])
		}
		return parent[n]
	}
	union := func(a, b Name) {
		ra, rb := find(a), find(b)
		if ra != rb {
			parent[ra] = rb
		}
	}

	for _, directive := range aliases {
		lhs, rhs, ok := strings.Cut(directive, "=")
		if !ok {
			return nil, ErrUnknownSpace
		}
		a, b := Name(strings.TrimSpace(lhs)), Name(strings.TrimSpace(rhs))
		if !a.valid() || !b.valid() {
			return nil, ErrUnknownSpace
		}
		union(a, b)
	}

	defaultSize := map[Name]uint{Ram: sizes.Ram, Program: sizes.Program, Stack: sizes.Stack}

	groupSize := map[Name]uint{}
	groupSpace := map[Name]*Space{}
	views := map[Name]*View{}

	for _, n := range []Name{Ram, Program, Stack} {
		root := find(n)
		if defaultSize[n] > groupSize[root] {
			groupSize[root] = defaultSize[n]
		}
	}

	for _, n := range []Name{Ram, Program, Stack} {
		root := find(n)
		sp, ok := groupSpace[root]
		if !ok {
			sp = NewSpace(width, groupSize[root], false)
			groupSpace[root] = sp
		}
		views[n] = &View{name: n, space: sp, readOnly: n == Program}
	}

	return &Map{views: views}, nil
}

// Resolve returns the View for a logical name.
func (m *Map) Resolve(name Name) (*View, error) {
	v, ok := m.views[name]
	if !ok {
		return nil, ErrUnknownSpace
	}
	return v, nil
}

// LoadProgram writes the assembled program image into program space,
// bypassing the read-only bit that governs ordinary guest writes (section
// 3, invariant 4: program is never written after load — this is the load).
func (m *Map) LoadProgram(image []uint64) error {
	return m.views[Program].space.StoreBytes(0, image)
}
