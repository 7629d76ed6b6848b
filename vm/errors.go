package vm

import (
	"errors"
	"fmt"
	"math/big"
)

// Conditions that end a run. None of them is recoverable; the caller may
// start a fresh run afterwards. Running out of input is not among them: it
// suspends the machine instead.
var (
	ErrMalformedProgram   = errors.New("program text contains no integers")
	ErrUnknownOpcode      = errors.New("unknown opcode")
	ErrUnsupportedMode    = errors.New("unsupported parameter mode")
	ErrInvalidWriteTarget = errors.New("immediate mode used as write target")
	ErrNegativeAddress    = errors.New("negative address access")
	ErrAddressRange       = errors.New("address out of range")
)

// Fault describes a failure raised while executing an instruction.
type Fault struct {
	PC   int64    // address of the failing instruction
	Cell *big.Int // raw cell at PC, nil if it could not be read
	Err  error    // one of the Err* conditions, possibly wrapped
}

func (f *Fault) Error() string {
	if f.Cell == nil {
		return fmt.Sprintf("pc=%d: %v", f.PC, f.Err)
	}
	return fmt.Sprintf("pc=%d cell=%s: %v", f.PC, f.Cell, f.Err)
}

func (f *Fault) Unwrap() error {
	return f.Err
}
