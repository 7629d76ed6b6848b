package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math/big"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tliron/commonlog"

	"github.com/chazu/intcode/manifest"
	"github.com/chazu/intcode/vm"
)

var log = commonlog.GetLogger("intcode.cli")

// options collects everything a single invocation needs. Flags override
// manifest values.
type options struct {
	programPath     string
	imageIn         string
	imageOut        string
	inputs          string
	patches         string
	manifestPatches map[int64]*big.Int
	interactive     bool
	disassemble     bool
}

// applyManifest fills in what the command line left unset. Patches and
// inputs describe the manifest's own program, so they are skipped when a
// program was named on the command line.
func (o *options) applyManifest(m *manifest.Manifest) error {
	if o.imageOut == "" {
		o.imageOut = m.ImageOutputPath()
	}
	o.interactive = o.interactive || m.Run.Interactive

	if o.programPath != "" || o.imageIn != "" {
		if len(m.Patch) > 0 || len(m.Run.Inputs) > 0 {
			log.Noticef("program given on the command line, ignoring patches and inputs from %s", filepath.Join(m.Dir, manifest.FileName))
		}
		return nil
	}

	o.programPath = m.ProgramPath()
	o.imageIn = m.ImagePath()
	if len(m.Run.Inputs) > 0 {
		vals := make([]string, len(m.Run.Inputs))
		for i, v := range m.Run.Inputs {
			vals[i] = strconv.FormatInt(v, 10)
		}
		o.inputs = strings.Join(vals, ",")
	}
	patches, err := m.Patches()
	if err != nil {
		return err
	}
	o.manifestPatches = patches
	return nil
}

// run loads the program and either disassembles or executes it.
func run(opts options, stdin io.Reader, stdout io.Writer) error {
	prog, err := loadProgram(opts)
	if err != nil {
		return err
	}

	if opts.imageOut != "" {
		if err := vm.WriteImageFile(opts.imageOut, prog); err != nil {
			return err
		}
		log.Infof("wrote image %s (%d cells)", opts.imageOut, prog.Len())
	}

	if opts.disassemble {
		fmt.Fprintln(stdout, vm.Disassemble(prog))
		return nil
	}

	m := vm.NewMachine(prog)
	outputs, err := m.Execute(vm.ParseValues(opts.inputs)...)
	printOutputs(stdout, outputs)
	if err != nil {
		return err
	}

	if !opts.interactive {
		if m.Running() {
			log.Noticef("program suspended at %d awaiting input", m.PC())
		}
		return nil
	}
	return interact(m, stdin, stdout)
}

// loadProgram reads the program from an image or from text, then applies
// manifest patches followed by -set patches.
func loadProgram(opts options) (*vm.Program, error) {
	var prog *vm.Program
	var err error
	switch {
	case opts.imageIn != "":
		prog, err = vm.ReadImageFile(opts.imageIn)
	case opts.programPath != "":
		prog, err = vm.ReadProgramFile(opts.programPath)
	default:
		return nil, errors.New("no program given (pass a file, -image, or a manifest)")
	}
	if err != nil {
		return nil, err
	}

	if len(opts.manifestPatches) > 0 {
		if prog, err = prog.With(opts.manifestPatches); err != nil {
			return nil, err
		}
	}
	if opts.patches != "" {
		overrides, err := parsePatches(opts.patches)
		if err != nil {
			return nil, err
		}
		if prog, err = prog.With(overrides); err != nil {
			return nil, err
		}
	}
	return prog, nil
}

// parsePatches parses "addr=value,addr=value".
func parsePatches(s string) (map[int64]*big.Int, error) {
	out := make(map[int64]*big.Int)
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		k, v, ok := strings.Cut(part, "=")
		if !ok {
			return nil, fmt.Errorf("patch %q: expected addr=value", part)
		}
		addr, err := strconv.ParseInt(strings.TrimSpace(k), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("patch %q: bad address: %w", part, err)
		}
		val, ok := new(big.Int).SetString(strings.TrimSpace(v), 10)
		if !ok {
			return nil, fmt.Errorf("patch %q: bad value", part)
		}
		out[addr] = val
	}
	return out, nil
}

// interact resumes a suspended machine with one line of stdin per resume.
// Lines starting with ':' are commands.
func interact(m *vm.Machine, stdin io.Reader, stdout io.Writer) error {
	scanner := bufio.NewScanner(stdin)
	for m.Running() {
		fmt.Fprint(stdout, "? ")
		if !scanner.Scan() {
			fmt.Fprintln(stdout)
			log.Noticef("input closed while program awaits input at %d", m.PC())
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())

		if line == "exit" || line == "quit" {
			return nil
		}
		if strings.HasPrefix(line, ":") {
			handleCommand(m, line, stdout)
			continue
		}

		outputs, err := m.Execute(vm.ParseValues(line)...)
		printOutputs(stdout, outputs)
		if err != nil {
			return err
		}
	}
	return nil
}

func handleCommand(m *vm.Machine, line string, stdout io.Writer) {
	fields := strings.Fields(line)
	switch fields[0] {
	case ":state":
		fmt.Fprintf(stdout, "state=%s pc=%d rb=%s steps=%d\n", m.State(), m.PC(), m.RelativeBase(), m.Steps())
	case ":peek":
		if len(fields) < 2 {
			fmt.Fprintln(stdout, "usage: :peek ADDR")
			return
		}
		addr, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			fmt.Fprintf(stdout, "bad address %q\n", fields[1])
			return
		}
		v, err := m.Peek(addr)
		if err != nil {
			fmt.Fprintf(stdout, "error: %v\n", err)
			return
		}
		fmt.Fprintln(stdout, v)
	case ":dis":
		line, _ := vm.DisassembleAt(m.Snapshot(), m.PC())
		fmt.Fprintln(stdout, line)
	case ":help":
		fmt.Fprintln(stdout, ":state        show registers")
		fmt.Fprintln(stdout, ":peek ADDR    read working memory")
		fmt.Fprintln(stdout, ":dis          disassemble the instruction at pc")
		fmt.Fprintln(stdout, "exit          stop")
	default:
		fmt.Fprintf(stdout, "unknown command %s (try :help)\n", fields[0])
	}
}

func printOutputs(w io.Writer, outputs []*big.Int) {
	if len(outputs) > 0 {
		fmt.Fprintln(w, vm.FormatValues(outputs))
	}
}
