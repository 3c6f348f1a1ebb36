package device

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTerminalSeekClamps(t *testing.T) {
	term := NewTerminal(4, 3, &bytes.Buffer{})
	term.Seek(100, -5)
	assert.Equal(t, 3, term.x)
	assert.Equal(t, 0, term.y)
}

func TestTerminalPutAdvancesAndWraps(t *testing.T) {
	term := NewTerminal(2, 2, &bytes.Buffer{})
	term.Put('a')
	term.Put('b')
	assert.Equal(t, 0, term.x)
	assert.Equal(t, 1, term.y)

	term.Put('c')
	term.Put('d')
	// bottom-right corner reached; a further advance clamps the row
	// instead of wrapping past it (decision D.2).
	assert.Equal(t, 1, term.y)
}

func TestTerminalFlush(t *testing.T) {
	out := &bytes.Buffer{}
	term := NewTerminal(2, 1, out)
	term.Put('x')
	require := assert.New(t)
	require.NoError(term.Flush())
	require.Equal("x \n", out.String())
}
