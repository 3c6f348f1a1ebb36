package device

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamRecvSend(t *testing.T) {
	in := bytes.NewBufferString("ab")
	out := &bytes.Buffer{}
	s := NewStream(in, out)

	v, err := s.Recv()
	require.NoError(t, err)
	assert.EqualValues(t, 'a', v)

	require.NoError(t, s.Send(v))
	assert.Equal(t, "a", out.String())
}

func TestStreamRecvEOF(t *testing.T) {
	s := NewStream(&bytes.Buffer{}, &bytes.Buffer{})
	_, err := s.Recv()
	assert.ErrorIs(t, err, ErrEOF)
}
