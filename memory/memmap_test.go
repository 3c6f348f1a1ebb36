package memory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/evilvm/cell"
	"github.com/ezrec/evilvm/memory"
)

func defaultWidth() cell.Width {
	return cell.Width{CharBit: 9, WordSize: 7, AddrSize: 5}
}

func TestMemoryMapDefaultIsolation(t *testing.T) {
	assert := assert.New(t)

	m, err := memory.NewMap(defaultWidth(), memory.Sizes{Ram: 16, Program: 16, Stack: 16}, nil)
	assert.NoError(err)

	ram, err := m.Resolve(memory.Ram)
	assert.NoError(err)
	assert.NoError(ram.StoreCell(0, 42))

	assert.NoError(m.LoadProgram([]uint64{1, 2, 3}))

	prog, err := m.Resolve(memory.Program)
	assert.NoError(err)
	got, err := prog.LoadCell(0)
	assert.NoError(err)
	assert.Equal(uint64(1), got)

	ramGot, err := ram.LoadCell(0)
	assert.NoError(err)
	assert.Equal(uint64(42), ramGot)

	err = prog.StoreCell(0, 9)
	assert.ErrorIs(err, memory.ErrReadOnly)
}

func TestMemoryMapAliasRamProgram(t *testing.T) {
	assert := assert.New(t)

	m, err := memory.NewMap(defaultWidth(), memory.Sizes{Ram: 16, Program: 16, Stack: 16},
		[]string{"ram=program"})
	assert.NoError(err)

	ram, err := m.Resolve(memory.Ram)
	assert.NoError(err)
	prog, err := m.Resolve(memory.Program)
	assert.NoError(err)

	// Write through ram succeeds even though ram and program share a
	// backing array: the read-only bit travels with the "program" name.
	assert.NoError(ram.StoreCell(5, 42))

	got, err := prog.LoadCell(5)
	assert.NoError(err)
	assert.Equal(uint64(42), got)

	err = prog.StoreCell(5, 1)
	assert.ErrorIs(err, memory.ErrReadOnly)
}

func TestMemoryMapAliasSizing(t *testing.T) {
	assert := assert.New(t)

	m, err := memory.NewMap(defaultWidth(), memory.Sizes{Ram: 8, Program: 32, Stack: 16},
		[]string{"ram=program"})
	assert.NoError(err)

	ram, err := m.Resolve(memory.Ram)
	assert.NoError(err)
	assert.Equal(uint(32), ram.Size())
}

func TestMemoryMapUnknownAlias(t *testing.T) {
	assert := assert.New(t)

	_, err := memory.NewMap(defaultWidth(), memory.Sizes{Ram: 8, Program: 8, Stack: 8},
		[]string{"ram=nope"})
	assert.ErrorIs(err, memory.ErrUnknownSpace)
}
