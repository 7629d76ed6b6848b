package vm

import (
	"fmt"
	"math/big"
)

// ---------------------------------------------------------------------------
// Opcode definitions
// ---------------------------------------------------------------------------

// Opcode selects the operation of an instruction: the two low decimal
// digits of the instruction cell.
type Opcode int

const (
	OpAdd                Opcode = 1  // dst := a + b
	OpMultiply           Opcode = 2  // dst := a * b
	OpInput              Opcode = 3  // dst := next input, suspends when none
	OpOutput             Opcode = 4  // emit a
	OpJumpIfTrue         Opcode = 5  // pc := target if a != 0
	OpJumpIfFalse        Opcode = 6  // pc := target if a == 0
	OpLessThan           Opcode = 7  // dst := a < b
	OpEquals             Opcode = 8  // dst := a == b
	OpAdjustRelativeBase Opcode = 9  // relative base += a
	OpHalt               Opcode = 99 // stop
)

// ---------------------------------------------------------------------------
// Opcode metadata
// ---------------------------------------------------------------------------

// OpcodeInfo holds metadata about an opcode.
type OpcodeInfo struct {
	Name   string // human-readable name
	Params int    // number of parameters following the instruction cell
	Writes bool   // last parameter is a write destination
}

var opcodeTable = map[Opcode]OpcodeInfo{
	OpAdd:                {"Add", 3, true},
	OpMultiply:           {"Multiply", 3, true},
	OpInput:              {"Input", 1, true},
	OpOutput:             {"Output", 1, false},
	OpJumpIfTrue:         {"JumpIfTrue", 2, false},
	OpJumpIfFalse:        {"JumpIfFalse", 2, false},
	OpLessThan:           {"LessThan", 3, true},
	OpEquals:             {"Equals", 3, true},
	OpAdjustRelativeBase: {"AdjustRelativeBase", 1, false},
	OpHalt:               {"Halt", 0, false},
}

// Valid reports whether op names an instruction.
func (op Opcode) Valid() bool {
	_, ok := opcodeTable[op]
	return ok
}

// Info returns the metadata for an opcode.
func (op Opcode) Info() OpcodeInfo {
	if info, ok := opcodeTable[op]; ok {
		return info
	}
	return OpcodeInfo{Name: fmt.Sprintf("UNKNOWN_%d", int(op))}
}

// Width returns the number of cells the instruction occupies.
func (op Opcode) Width() int64 {
	return int64(op.Info().Params) + 1
}

// String implements the Stringer interface.
func (op Opcode) String() string {
	return op.Info().Name
}

// ---------------------------------------------------------------------------
// Parameter modes
// ---------------------------------------------------------------------------

// Mode says how a raw parameter maps to a value or an address.
type Mode int

const (
	ModePosition  Mode = 0 // parameter is an address
	ModeImmediate Mode = 1 // parameter is the value itself
	ModeRelative  Mode = 2 // parameter is an offset from the relative base
)

func (m Mode) String() string {
	switch m {
	case ModePosition:
		return "position"
	case ModeImmediate:
		return "immediate"
	case ModeRelative:
		return "relative"
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// ---------------------------------------------------------------------------
// Decoding
// ---------------------------------------------------------------------------

// Instruction is a decoded instruction cell.
type Instruction struct {
	Op    Opcode
	Modes []Mode // least-significant mode digit first
}

// Mode returns the addressing mode of parameter i. Parameters beyond the
// encoded digits are in position mode.
func (in Instruction) Mode(i int) Mode {
	if i < len(in.Modes) {
		return in.Modes[i]
	}
	return ModePosition
}

var hundred = big.NewInt(100)

// Decode splits an instruction cell into its opcode and parameter modes.
// Mode digits are not checked here; an unsupported mode only fails when
// its parameter is used.
func Decode(cell *big.Int) (Instruction, error) {
	if cell.Sign() < 0 {
		return Instruction{}, fmt.Errorf("%s: %w", cell, ErrUnknownOpcode)
	}
	rest, code := new(big.Int).QuoRem(cell, hundred, new(big.Int))
	op := Opcode(code.Int64())
	if !op.Valid() {
		return Instruction{}, fmt.Errorf("'%d' is not a valid instruction: %w", int(op), ErrUnknownOpcode)
	}

	in := Instruction{Op: op}
	if rest.Sign() == 0 {
		return in, nil
	}
	digits := rest.String()
	in.Modes = make([]Mode, len(digits))
	for i := range digits {
		in.Modes[i] = Mode(digits[len(digits)-1-i] - '0')
	}
	return in, nil
}
