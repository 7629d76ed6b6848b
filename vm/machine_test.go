package vm

import (
	"math/big"
	"testing"
)

// ---------------------------------------------------------------------------
// Suspension and resume
// ---------------------------------------------------------------------------

func TestMachineSuspendsWithoutInput(t *testing.T) {
	m := New("3,0,4,0,99")
	if m.Running() {
		t.Error("idle machine reports running")
	}

	out, err := m.Execute()
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if len(out) != 0 {
		t.Errorf("outputs = %v, want none", out)
	}
	if !m.Running() {
		t.Error("Running() = false while suspended, want true")
	}
	if m.State() != StateSuspended {
		t.Errorf("state = %s, want suspended", m.State())
	}
	if m.PC() != 0 {
		t.Errorf("pc = %d, want 0 (input not consumed)", m.PC())
	}
	if got := peek(t, m, 0); got != 3 {
		t.Errorf("cell 0 = %d, want 3 (no side effects)", got)
	}

	out, err = m.ExecuteInts(7)
	if err != nil {
		t.Fatalf("resume failed: %v", err)
	}
	if vals, _ := Int64s(out); !equalInts(vals, []int64{7}) {
		t.Errorf("outputs = %v, want [7]", vals)
	}
	if m.Running() {
		t.Error("Running() = true after halt, want false")
	}
}

func TestMachineResumeKeepsState(t *testing.T) {
	// Reads two inputs one resume at a time and outputs their sum.
	m := New("3,11,3,12,1,11,12,13,4,13,99")

	out, err := m.ExecuteInts(30)
	if err != nil || len(out) != 0 {
		t.Fatalf("first call = %v, %v", out, err)
	}
	if m.PC() != 2 {
		t.Errorf("pc = %d after first input, want 2", m.PC())
	}

	out, err = m.ExecuteInts(12)
	if err != nil {
		t.Fatal(err)
	}
	if vals, _ := Int64s(out); !equalInts(vals, []int64{42}) {
		t.Errorf("outputs = %v, want [42]", vals)
	}
}

func TestMachineOutputsClearedEachCall(t *testing.T) {
	// Echo loop: output each input until input 0.
	m := New("3,100,4,100,1005,100,0,99")

	out, _ := m.ExecuteInts(1, 2)
	if vals, _ := Int64s(out); !equalInts(vals, []int64{1, 2}) {
		t.Errorf("first outputs = %v, want [1 2]", vals)
	}
	out, _ = m.ExecuteInts(3)
	if vals, _ := Int64s(out); !equalInts(vals, []int64{3}) {
		t.Errorf("second outputs = %v, want [3]", vals)
	}
	out, _ = m.ExecuteInts(0)
	if vals, _ := Int64s(out); !equalInts(vals, []int64{0}) {
		t.Errorf("final outputs = %v, want [0]", vals)
	}
	if m.Running() {
		t.Error("machine still running after input 0")
	}
}

func TestMachineExtraInputsDiscarded(t *testing.T) {
	m := New("3,0,4,0,99")
	out, err := m.ExecuteInts(5, 6, 7)
	if err != nil {
		t.Fatal(err)
	}
	if vals, _ := Int64s(out); !equalInts(vals, []int64{5}) {
		t.Errorf("outputs = %v, want [5]", vals)
	}

	// A halted machine starts over; old inputs are gone.
	out, err = m.Execute()
	if err != nil || len(out) != 0 {
		t.Errorf("fresh run = %v, %v; want suspension with no output", out, err)
	}
	if m.State() != StateSuspended {
		t.Errorf("state = %s, want suspended", m.State())
	}
}

// ---------------------------------------------------------------------------
// Fresh runs and the base image
// ---------------------------------------------------------------------------

func TestMachineFreshRunUsesBaseImage(t *testing.T) {
	m := New("1,0,0,0,99")
	for i := 0; i < 3; i++ {
		if _, err := m.Execute(); err != nil {
			t.Fatal(err)
		}
		if got := peek(t, m, 0); got != 2 {
			t.Errorf("run %d: cell 0 = %d, want 2", i, got)
		}
	}
	if got := m.Program().String(); got != "1,0,0,0,99" {
		t.Errorf("base image = %q, want unchanged", got)
	}
}

func TestMachineNeverMutatesProgram(t *testing.T) {
	base := ParseProgram("1,0,0,3,99")
	for noun := int64(0); noun < 4; noun++ {
		for verb := int64(0); verb < 4; verb++ {
			p, err := base.With(map[int64]*big.Int{1: Int(noun), 2: Int(verb)})
			if err != nil {
				t.Fatal(err)
			}
			m := NewMachine(p)
			if _, err := m.Execute(); err != nil {
				t.Fatalf("noun=%d verb=%d: %v", noun, verb, err)
			}
			if p.At(3).Int64() != 3 {
				t.Errorf("noun=%d verb=%d: patched program mutated", noun, verb)
			}
		}
	}
	if got := base.String(); got != "1,0,0,3,99" {
		t.Errorf("base = %q, want unchanged", got)
	}
}

func TestMachineReset(t *testing.T) {
	m := New("3,0,4,0,99")
	m.Execute()
	if m.State() != StateSuspended {
		t.Fatalf("state = %s, want suspended", m.State())
	}

	m.Reset()
	if m.State() != StateIdle || m.Running() {
		t.Errorf("after Reset: state = %s, running = %v", m.State(), m.Running())
	}
	out, err := m.ExecuteInts(9)
	if err != nil {
		t.Fatal(err)
	}
	if vals, _ := Int64s(out); !equalInts(vals, []int64{9}) {
		t.Errorf("outputs = %v, want [9]", vals)
	}
}

func TestMachineRestartAfterFault(t *testing.T) {
	// Input 0 jumps to cell 12, which holds 98; anything else is echoed.
	m := New("3,11,1006,11,12,4,11,99,0,0,0,0,98")
	if _, err := m.ExecuteInts(0); err == nil {
		t.Fatal("expected fault")
	}
	if m.State() != StateHalted {
		t.Errorf("state = %s, want halted", m.State())
	}
	out, err := m.ExecuteInts(4)
	if err != nil {
		t.Fatalf("fresh run failed: %v", err)
	}
	if vals, _ := Int64s(out); !equalInts(vals, []int64{4}) {
		t.Errorf("outputs = %v, want [4]", vals)
	}
}

// ---------------------------------------------------------------------------
// Stepping
// ---------------------------------------------------------------------------

func TestMachineStep(t *testing.T) {
	m := New("1101,2,3,5,99,0")
	res, err := m.Step()
	if err != nil || res != StepContinue {
		t.Fatalf("Step = %v, %v", res, err)
	}
	if m.PC() != 4 || m.Steps() != 1 {
		t.Errorf("pc/steps = %d/%d, want 4/1", m.PC(), m.Steps())
	}
	if got := peek(t, m, 5); got != 5 {
		t.Errorf("cell 5 = %d, want 5", got)
	}

	res, err = m.Step()
	if err != nil || res != StepHalt {
		t.Fatalf("Step = %v, %v; want halt", res, err)
	}
	if m.State() != StateHalted {
		t.Errorf("state = %s, want halted", m.State())
	}

	// Stepping a halted machine starts a fresh run.
	m.Step()
	if m.PC() != 4 || m.Steps() != 1 {
		t.Errorf("after restart pc/steps = %d/%d, want 4/1", m.PC(), m.Steps())
	}
}

func TestMachineStepOutputs(t *testing.T) {
	m := New("104,8,99")
	m.Step()
	if vals, _ := Int64s(m.Outputs()); !equalInts(vals, []int64{8}) {
		t.Errorf("Outputs() = %v, want [8]", vals)
	}
}

func TestMachineStepInputSuspends(t *testing.T) {
	m := New("3,0,99")
	res, err := m.Step()
	if err != nil || res != StepNeedInput {
		t.Fatalf("Step = %v, %v; want need-input", res, err)
	}
	if m.State() != StateSuspended || m.PC() != 0 {
		t.Errorf("state/pc = %s/%d, want suspended/0", m.State(), m.PC())
	}
}

// ---------------------------------------------------------------------------
// Isolation between machines
// ---------------------------------------------------------------------------

func TestMachineOutputsAreCopies(t *testing.T) {
	m := New("4,3,99,11")
	out, err := m.Execute()
	if err != nil {
		t.Fatal(err)
	}
	out[0].SetInt64(1000)
	if got := peek(t, m, 3); got != 11 {
		t.Errorf("cell 3 = %d after mutating output, want 11", got)
	}
}

func TestMachineInputsAreCopied(t *testing.T) {
	m := New("3,0,99")
	in := Int(5)
	m.Execute(in)
	in.SetInt64(6)
	if got := peek(t, m, 0); got != 5 {
		t.Errorf("cell 0 = %d after mutating input, want 5", got)
	}
}

func TestMachineCloneIsIndependent(t *testing.T) {
	a := New("3,0,4,0,99")
	a.Execute()
	b := a.Clone()

	if b.State() != StateIdle {
		t.Errorf("clone state = %s, want idle", b.State())
	}
	if a.ID == b.ID {
		t.Error("clone shares the machine id")
	}
	if b.Program() != a.Program() {
		t.Error("clone should share the base program")
	}

	out, _ := b.ExecuteInts(1)
	if vals, _ := Int64s(out); !equalInts(vals, []int64{1}) {
		t.Errorf("clone outputs = %v, want [1]", vals)
	}
	if a.State() != StateSuspended {
		t.Errorf("original state = %s, want suspended", a.State())
	}
}

// Amplifier chains are built by callers on top of Execute/Running.

func runAmplifiers(t *testing.T, prog string, phases []int64) int64 {
	t.Helper()
	base := New(prog)
	amps := make([]*Machine, len(phases))
	for i, phase := range phases {
		amps[i] = base.Clone()
		if out, err := amps[i].ExecuteInts(phase); err != nil || len(out) != 0 {
			t.Fatalf("amp %d phase setup = %v, %v", i, out, err)
		}
	}

	signal := Int(0)
	for amps[len(amps)-1].State() != StateHalted {
		for i, amp := range amps {
			out, err := amp.Execute(signal)
			if err != nil {
				t.Fatalf("amp %d: %v", i, err)
			}
			if len(out) == 0 {
				t.Fatalf("amp %d produced no signal", i)
			}
			signal = out[len(out)-1]
		}
	}
	return signal.Int64()
}

func TestMachineAmplifierChain(t *testing.T) {
	prog := "3,15,3,16,1002,16,10,16,1,16,15,15,4,15,99,0,0"
	if got := runAmplifiers(t, prog, []int64{4, 3, 2, 1, 0}); got != 43210 {
		t.Errorf("signal = %d, want 43210", got)
	}
}

func TestMachineAmplifierFeedbackLoop(t *testing.T) {
	prog := "3,26,1001,26,-4,26,3,27,1002,27,2,27,1,27,26," +
		"27,4,27,1001,28,-1,28,1005,28,6,99,0,0,5"
	if got := runAmplifiers(t, prog, []int64{9, 8, 7, 6, 5}); got != 139629729 {
		t.Errorf("signal = %d, want 139629729", got)
	}
}

// ---------------------------------------------------------------------------
// State names
// ---------------------------------------------------------------------------

func TestStateString(t *testing.T) {
	tests := map[State]string{
		StateIdle:      "idle",
		StateRunning:   "running",
		StateSuspended: "suspended",
		StateHalted:    "halted",
		State(42):      "unknown",
	}
	for s, want := range tests {
		if s.String() != want {
			t.Errorf("State(%d).String() = %q, want %q", int(s), s.String(), want)
		}
	}
}
