package vm

import (
	"fmt"
	"math/big"
	"strings"
)

// ---------------------------------------------------------------------------
// Disassembly
// ---------------------------------------------------------------------------

// formatOperand renders a parameter according to its mode:
// position [7], immediate 7, relative [rb+7] / [rb-7].
func formatOperand(mode Mode, p *big.Int) string {
	switch mode {
	case ModePosition:
		return "[" + p.String() + "]"
	case ModeImmediate:
		return p.String()
	case ModeRelative:
		if p.Sign() < 0 {
			return "[rb" + p.String() + "]"
		}
		return "[rb+" + p.String() + "]"
	}
	return "?" + p.String()
}

// DisassembleAt decodes the cell at addr and returns its text along with the
// number of cells consumed. Cells that do not decode to an instruction with
// supported modes are rendered as data and consume one cell.
func DisassembleAt(p *Program, addr int64) (string, int64) {
	cell := p.At(addr)
	in, err := Decode(cell)
	if err != nil || addr+in.Op.Width() > p.Size() {
		return fmt.Sprintf("%04d  DATA %s", addr, cell), 1
	}
	info := in.Op.Info()
	for i := 0; i < info.Params; i++ {
		switch m := in.Mode(i); {
		case m > ModeRelative:
			return fmt.Sprintf("%04d  DATA %s", addr, cell), 1
		case m == ModeImmediate && info.Writes && i == info.Params-1:
			return fmt.Sprintf("%04d  DATA %s", addr, cell), 1
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%04d  %s", addr, info.Name)
	for i := 0; i < info.Params; i++ {
		sb.WriteByte(' ')
		sb.WriteString(formatOperand(in.Mode(i), p.At(addr+int64(i)+1)))
	}
	return sb.String(), in.Op.Width()
}

// Disassemble renders a whole program by linear sweep from address 0.
// Programs freely mix code and data, so data that happens to decode is
// shown as an instruction.
func Disassemble(p *Program) string {
	var lines []string
	for addr := int64(0); addr < p.Size(); {
		line, n := DisassembleAt(p, addr)
		lines = append(lines, line)
		addr += n
	}
	return strings.Join(lines, "\n")
}
