package memory

import (
	"errors"

	"github.com/ezrec/evilvm/translate"
)

var f = translate.From

var (
	// ErrOutOfBounds is returned when a load or store touches an index
	// outside a space's [0, size) range.
	ErrOutOfBounds = errors.New(f("memory access out of bounds"))
	// ErrReadOnly is returned when a store targets a read-only space.
	ErrReadOnly = errors.New(f("write to read-only memory"))
	// ErrUnknownSpace is returned when a memory map name isn't one of
	// ram, program, or stack.
	ErrUnknownSpace = errors.New(f("unknown address space name"))
)
