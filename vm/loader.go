package vm

import (
	"fmt"
	"math/big"
	"os"
	"regexp"
	"strings"
)

// ---------------------------------------------------------------------------
// Program: the immutable base image a machine starts every run from
// ---------------------------------------------------------------------------

// Program is a loaded Intcode program. It is never modified once built;
// machines execute against clones of its memory.
type Program struct {
	mem *Memory
}

var integerPattern = regexp.MustCompile(`-?\d+`)

// ParseProgram reads every signed base-10 integer in text, in order, into
// addresses 0..N-1. Any non-digit characters separate values. Text without
// integers yields an empty program.
func ParseProgram(text string) *Program {
	return NewProgram(ParseValues(text)...)
}

// ParseValues extracts every signed base-10 integer in text, in order.
func ParseValues(text string) []*big.Int {
	toks := integerPattern.FindAllString(text, -1)
	vals := make([]*big.Int, 0, len(toks))
	for _, tok := range toks {
		if v, ok := new(big.Int).SetString(tok, 10); ok {
			vals = append(vals, v)
		}
	}
	return vals
}

// LoadProgram parses text and rejects programs without any integers.
func LoadProgram(text string) (*Program, error) {
	p := ParseProgram(text)
	if p.Len() == 0 {
		return nil, ErrMalformedProgram
	}
	return p, nil
}

// ReadProgramFile loads the program stored as text in path.
func ReadProgramFile(path string) (*Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	p, err := LoadProgram(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// NewProgram builds a program from a dense list of values.
func NewProgram(values ...*big.Int) *Program {
	mem := NewMemory()
	for i, v := range values {
		mem.cells[int64(i)] = new(big.Int).Set(v)
	}
	mem.size = int64(len(values))
	return &Program{mem: mem}
}

// Len returns the number of cells in the program.
func (p *Program) Len() int {
	return p.mem.Len()
}

// Size returns one past the highest address of the program.
func (p *Program) Size() int64 {
	return p.mem.Size()
}

// At returns a copy of the value at addr, zero when unset or negative.
func (p *Program) At(addr int64) *big.Int {
	v, err := p.mem.Read(addr)
	if err != nil {
		return new(big.Int)
	}
	return new(big.Int).Set(v)
}

// Memory returns a fresh working copy of the program's memory.
func (p *Program) Memory() *Memory {
	return p.mem.Clone()
}

// With returns a copy of the program with the given cells replaced. The
// receiver is left untouched.
func (p *Program) With(overrides map[int64]*big.Int) (*Program, error) {
	mem := p.mem.Clone()
	for addr, v := range overrides {
		if err := mem.Write(addr, v); err != nil {
			return nil, fmt.Errorf("patch: %w", err)
		}
	}
	return &Program{mem: mem}, nil
}

// String serializes the program back to comma-separated text. Gaps in a
// sparse program are written as zeros.
func (p *Program) String() string {
	var sb strings.Builder
	for addr := int64(0); addr < p.mem.Size(); addr++ {
		if addr > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(p.At(addr).String())
	}
	return sb.String()
}
