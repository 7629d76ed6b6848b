package vm

import (
	"math/big"

	"github.com/google/uuid"
	"github.com/tliron/commonlog"
)

// ---------------------------------------------------------------------------
// Machine state
// ---------------------------------------------------------------------------

// State describes where a machine is in its run.
type State int

const (
	StateIdle      State = iota // never started
	StateRunning                // inside Execute or Step
	StateSuspended              // waiting for input, resumable
	StateHalted                 // finished, next Execute starts over
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateSuspended:
		return "suspended"
	case StateHalted:
		return "halted"
	}
	return "unknown"
}

// StepResult tells the run loop what to do after an instruction.
type StepResult int

const (
	StepContinue  StepResult = iota // keep going
	StepNeedInput                   // Input found no queued value; pc unchanged
	StepHalt                        // Halt executed or pc ran off the end
)

// ---------------------------------------------------------------------------
// Machine
// ---------------------------------------------------------------------------

// Machine executes an Intcode program. Each call to Execute either starts
// a fresh run from the program's base image or, if the previous call
// suspended for input, resumes exactly where it stopped.
//
// A Machine is not safe for concurrent use. Machines built from the same
// Program share only that immutable Program.
type Machine struct {
	ID string

	program *Program
	mem     *Memory

	pc           int64
	relativeBase *big.Int
	state        State
	steps        uint64

	inputs  []*big.Int
	outputs []*big.Int

	log commonlog.Logger
}

// New parses program text and returns an idle machine for it. Text without
// integers yields a machine whose first run halts immediately; callers that
// need to reject such input use LoadProgram.
func New(text string) *Machine {
	return NewMachine(ParseProgram(text))
}

// NewMachine returns an idle machine for p.
func NewMachine(p *Program) *Machine {
	id := uuid.NewString()
	return &Machine{
		ID:           id,
		program:      p,
		mem:          p.Memory(),
		relativeBase: zero,
		log:          commonlog.NewKeyValueLogger(commonlog.GetLogger("intcode.vm"), "machine", id[:8]),
	}
}

// Clone returns a new idle machine running the same program.
func (m *Machine) Clone() *Machine {
	return NewMachine(m.program)
}

// Program returns the base image the machine runs.
func (m *Machine) Program() *Program {
	return m.program
}

// Execute runs the machine until it halts or needs more input, and returns
// every value output during this call. A suspended machine resumes with the
// new inputs; any other machine starts a fresh run. Inputs not consumed by
// the time the call returns are discarded.
//
// A fault ends the run: the machine is left halted and the outputs produced
// before the fault are returned together with the error.
func (m *Machine) Execute(inputs ...*big.Int) ([]*big.Int, error) {
	if m.state != StateSuspended {
		m.start()
	}
	m.inputs = inputs
	m.outputs = nil
	m.state = StateRunning

	for {
		res, err := m.step()
		if err != nil {
			m.state = StateHalted
			m.log.Errorf("run failed after %d steps: %v", m.steps, err)
			return m.outputs, err
		}
		switch res {
		case StepNeedInput:
			m.state = StateSuspended
			m.log.Infof("suspended at %d awaiting input", m.pc)
			return m.outputs, nil
		case StepHalt:
			m.state = StateHalted
			m.log.Infof("halted at %d after %d steps", m.pc, m.steps)
			return m.outputs, nil
		}
	}
}

// ExecuteInts is Execute with int64 inputs.
func (m *Machine) ExecuteInts(inputs ...int64) ([]*big.Int, error) {
	return m.Execute(Ints(inputs...)...)
}

// Step executes a single instruction. An idle or halted machine starts a
// fresh run first. Values output by the instruction are appended to
// Outputs.
func (m *Machine) Step() (StepResult, error) {
	if m.state == StateIdle || m.state == StateHalted {
		m.start()
	}
	m.state = StateRunning
	res, err := m.step()
	switch {
	case err != nil, res == StepHalt:
		m.state = StateHalted
	case res == StepNeedInput:
		m.state = StateSuspended
	}
	return res, err
}

// Reset abandons the current run. The next Execute starts fresh.
func (m *Machine) Reset() {
	m.state = StateIdle
	m.start()
}

// Running reports whether the machine has a run in progress that can still
// make progress, including while it waits for input.
func (m *Machine) Running() bool {
	return m.state == StateRunning || m.state == StateSuspended
}

// State returns the current state.
func (m *Machine) State() State {
	return m.state
}

// PC returns the program counter.
func (m *Machine) PC() int64 {
	return m.pc
}

// RelativeBase returns the relative base register.
func (m *Machine) RelativeBase() *big.Int {
	return new(big.Int).Set(m.relativeBase)
}

// Steps returns the number of instructions executed in the current run.
func (m *Machine) Steps() uint64 {
	return m.steps
}

// Outputs returns the values output since the last Execute began.
func (m *Machine) Outputs() []*big.Int {
	return m.outputs
}

// Peek reads working memory.
func (m *Machine) Peek(addr int64) (*big.Int, error) {
	v, err := m.mem.Read(addr)
	if err != nil {
		return nil, err
	}
	return new(big.Int).Set(v), nil
}

// Snapshot returns the working memory as a standalone Program.
func (m *Machine) Snapshot() *Program {
	return &Program{mem: m.mem.Clone()}
}

// start resets registers and clones the base image.
func (m *Machine) start() {
	m.mem = m.program.Memory()
	m.pc = 0
	m.relativeBase = zero
	m.steps = 0
	m.inputs = nil
	m.outputs = nil
}
