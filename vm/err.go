package vm

import (
	"errors"

	"github.com/ezrec/evilvm/translate"
)

var f = translate.From

// ExitCode maps a Run outcome to the exit code section 6 specifies: 0 on
// clean halt, 1 on a guest fault, 2 on an assembly error, 64 on bad
// arguments (configuration that never reaches assembly at all).
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.As(err, new(*AssembleError)):
		return 2
	case errors.As(err, new(*ConfigError)):
		return 64
	default:
		return 1
	}
}

// ConfigError wraps a bad CLI/TOML configuration (exit code 64).
type ConfigError struct {
	Err error
}

func (e *ConfigError) Error() string { return f("configuration: %v", e.Err) }
func (e *ConfigError) Unwrap() error { return e.Err }

// AssembleError wraps an assembly-time failure (exit code 2), so the
// host doesn't need to know the cpu package's own error shapes to pick
// the right exit code.
type AssembleError struct {
	Err error
}

func (e *AssembleError) Error() string { return f("assemble: %v", e.Err) }
func (e *AssembleError) Unwrap() error { return e.Err }
