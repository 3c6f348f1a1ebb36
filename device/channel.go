package device

import (
	"io"
)

// Channel is a byte-granular blocking stream, the unit `in`/`out` talk to
// (section 6). Unlike the teacher's bit-at-a-time Tape, Evil VM's cells
// are the atomic transfer unit, so Recv/Send move one cell value at a
// time; callers are responsible for masking to char_bit width.
type Channel interface {
	// Recv reads one byte from the input side. It returns ErrEOF (not a
	// wrapped io.EOF) when the stream is exhausted, so callers can test
	// with a simple ==.
	Recv() (uint64, error)
	// Send writes one byte to the output side.
	Send(v uint64) error
}

// Stream is a Channel backed by a pair of io.Reader/io.Writer, the
// default wiring for stdin/stdout (section 6's "never assumes a
// terminal"). Grounded on the teacher's Tape, narrowed from bit to byte
// granularity.
type Stream struct {
	In  io.Reader
	Out io.Writer
}

// NewStream builds a Stream channel over the given reader/writer.
func NewStream(in io.Reader, out io.Writer) *Stream {
	return &Stream{In: in, Out: out}
}

func (s *Stream) Recv() (uint64, error) {
	var one [1]byte
	n, err := s.In.Read(one[:])
	if n == 1 {
		// A reader may return the last byte together with io.EOF; the
		// byte is delivered and the next Recv reports ErrEOF.
		return uint64(one[0]), nil
	}
	if err == nil || err == io.EOF {
		return 0, ErrEOF
	}
	return 0, err
}

func (s *Stream) Send(v uint64) error {
	_, err := s.Out.Write([]byte{byte(v)})
	return err
}
