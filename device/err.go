// Package device implements Evil VM's host-facing I/O: the byte-granular
// stream channel that backs `in`/`out`, and the character-grid terminal
// that backs `seek` (section 4.5, section 6).
package device

import (
	"errors"

	"github.com/ezrec/evilvm/translate"
)

var f = translate.From

// ErrEOF is returned by Channel.Recv when the underlying stream is
// exhausted; the CPU's `in` handler turns this into the guest-visible
// all-ones/C-flag signal rather than a fault (section 9.c).
var ErrEOF = errors.New(f("channel: end of stream"))
