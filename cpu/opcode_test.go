package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInstructionTableHasNoDuplicateMnemonics(t *testing.T) {
	table := buildTable()
	seen := map[string]bool{}
	for _, def := range table {
		assert.Falsef(t, seen[def.Mnemonic], "duplicate mnemonic %q", def.Mnemonic)
		seen[def.Mnemonic] = true
	}
}

func TestInstructionTableFitsInOneByte(t *testing.T) {
	table := buildTable()
	assert.LessOrEqual(t, len(table), 256)
}

func TestInstructionGroupCounts(t *testing.T) {
	assert.Len(t, movOps(), 4)
	assert.Len(t, loadStoreOps(), 7)
	assert.Len(t, aluBinaryOps(), 36)
	assert.Len(t, aluShiftOps(), 8)
	assert.Len(t, aluUnaryOps(), 4)
	assert.Len(t, jumpOps(), 22)
	assert.Len(t, loopCallOps(), 6)
	assert.Len(t, stackOps(), 2)
	assert.Len(t, ioOps(), 2)
	assert.Len(t, terminalOps(), 4)
}

func TestOpcodeLookupRoundTrip(t *testing.T) {
	n, ok := Opcode("halt")
	assert.True(t, ok)
	def := Lookup(n)
	assert.NotNil(t, def)
	assert.Equal(t, "halt", def.Mnemonic)
}

func TestOpcodeUnknownMnemonic(t *testing.T) {
	_, ok := Opcode("not.a.real.mnemonic")
	assert.False(t, ok)
}

func TestLookupOutOfRange(t *testing.T) {
	assert.Nil(t, Lookup(-1))
	assert.Nil(t, Lookup(99999))
}
