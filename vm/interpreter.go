package vm

import (
	"fmt"
	"math/big"

	"github.com/tliron/commonlog"
)

// ---------------------------------------------------------------------------
// Interpreter: fetch, decode, dispatch
// ---------------------------------------------------------------------------

// step executes the instruction at pc. Errors come back as *Fault.
func (m *Machine) step() (StepResult, error) {
	if m.pc >= m.mem.Size() {
		m.log.Noticef("pc %d ran past end of memory (%d)", m.pc, m.mem.Size())
		return StepHalt, nil
	}

	cell, err := m.mem.Read(m.pc)
	if err != nil {
		return StepHalt, m.fault(nil, err)
	}
	in, err := Decode(cell)
	if err != nil {
		return StepHalt, m.fault(cell, err)
	}
	if m.log.AllowLevel(commonlog.Debug) {
		m.log.Debug(m.describe(in))
	}

	res, err := m.dispatch(in)
	if err != nil {
		return StepHalt, m.fault(cell, err)
	}
	if res != StepNeedInput {
		m.steps++
	}
	return res, nil
}

func (m *Machine) dispatch(in Instruction) (StepResult, error) {
	switch in.Op {
	case OpAdd:
		return m.binary(in, func(a, b *big.Int) *big.Int { return new(big.Int).Add(a, b) })

	case OpMultiply:
		return m.binary(in, func(a, b *big.Int) *big.Int { return new(big.Int).Mul(a, b) })

	case OpInput:
		if len(m.inputs) == 0 {
			return StepNeedInput, nil
		}
		dst, err := m.address(in, 0)
		if err != nil {
			return StepHalt, err
		}
		if err := m.mem.Write(dst, m.inputs[0]); err != nil {
			return StepHalt, err
		}
		m.inputs = m.inputs[1:]
		m.pc += 2

	case OpOutput:
		v, err := m.value(in, 0)
		if err != nil {
			return StepHalt, err
		}
		m.outputs = append(m.outputs, new(big.Int).Set(v))
		m.pc += 2

	case OpJumpIfTrue:
		return m.jump(in, func(v *big.Int) bool { return v.Sign() != 0 })

	case OpJumpIfFalse:
		return m.jump(in, func(v *big.Int) bool { return v.Sign() == 0 })

	case OpLessThan:
		return m.binary(in, func(a, b *big.Int) *big.Int { return boolValue(a.Cmp(b) < 0) })

	case OpEquals:
		return m.binary(in, func(a, b *big.Int) *big.Int { return boolValue(a.Cmp(b) == 0) })

	case OpAdjustRelativeBase:
		v, err := m.value(in, 0)
		if err != nil {
			return StepHalt, err
		}
		m.relativeBase = new(big.Int).Add(m.relativeBase, v)
		m.pc += 2

	case OpHalt:
		return StepHalt, nil

	default:
		return StepHalt, fmt.Errorf("'%d' is not a valid instruction: %w", int(in.Op), ErrUnknownOpcode)
	}
	return StepContinue, nil
}

// binary handles the three-operand instructions: dst := f(a, b).
func (m *Machine) binary(in Instruction, f func(a, b *big.Int) *big.Int) (StepResult, error) {
	a, err := m.value(in, 0)
	if err != nil {
		return StepHalt, err
	}
	b, err := m.value(in, 1)
	if err != nil {
		return StepHalt, err
	}
	dst, err := m.address(in, 2)
	if err != nil {
		return StepHalt, err
	}
	if err := m.mem.Write(dst, f(a, b)); err != nil {
		return StepHalt, err
	}
	m.pc += 4
	return StepContinue, nil
}

// jump sets pc to the second parameter when cond holds for the first,
// otherwise skips the instruction.
func (m *Machine) jump(in Instruction, cond func(*big.Int) bool) (StepResult, error) {
	v, err := m.value(in, 0)
	if err != nil {
		return StepHalt, err
	}
	if !cond(v) {
		m.pc += 3
		return StepContinue, nil
	}
	target, err := m.value(in, 1)
	if err != nil {
		return StepHalt, err
	}
	pc, err := toAddress(target)
	if err != nil {
		return StepHalt, fmt.Errorf("jump target: %w", err)
	}
	m.pc = pc
	return StepContinue, nil
}

// ---------------------------------------------------------------------------
// Operand resolution
// ---------------------------------------------------------------------------

// raw returns parameter i exactly as stored after the instruction cell.
func (m *Machine) raw(i int) (*big.Int, error) {
	return m.mem.Read(m.pc + int64(i) + 1)
}

// value resolves parameter i for reading.
func (m *Machine) value(in Instruction, i int) (*big.Int, error) {
	p, err := m.raw(i)
	if err != nil {
		return nil, err
	}
	switch mode := in.Mode(i); mode {
	case ModeImmediate:
		return p, nil
	case ModePosition, ModeRelative:
		addr, err := m.effective(mode, p)
		if err != nil {
			return nil, err
		}
		return m.mem.Read(addr)
	default:
		return nil, fmt.Errorf("'%d' is not a supported mode: %w", int(mode), ErrUnsupportedMode)
	}
}

// address resolves parameter i as a write destination.
func (m *Machine) address(in Instruction, i int) (int64, error) {
	p, err := m.raw(i)
	if err != nil {
		return 0, err
	}
	switch mode := in.Mode(i); mode {
	case ModeImmediate:
		return 0, fmt.Errorf("parameter %d of %s: %w", i+1, in.Op, ErrInvalidWriteTarget)
	case ModePosition, ModeRelative:
		return m.effective(mode, p)
	default:
		return 0, fmt.Errorf("'%d' is not a supported mode: %w", int(mode), ErrUnsupportedMode)
	}
}

func (m *Machine) effective(mode Mode, p *big.Int) (int64, error) {
	if mode == ModeRelative {
		return toAddress(new(big.Int).Add(m.relativeBase, p))
	}
	return toAddress(p)
}

func (m *Machine) fault(cell *big.Int, err error) *Fault {
	return &Fault{PC: m.pc, Cell: cell, Err: err}
}
