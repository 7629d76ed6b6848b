package vm

import (
	"strconv"
	"strings"
)

// describe renders the instruction at pc for tracing: each raw cell, with
// parameters followed by their resolved value in parentheses. A write
// destination shows the address it resolves to.
//
//	Add: 1101 3(3) 4(4) 0(->0)
func (m *Machine) describe(in Instruction) string {
	var sb strings.Builder
	info := in.Op.Info()
	sb.WriteString(info.Name)
	sb.WriteByte(':')

	for i := 0; i <= info.Params; i++ {
		sb.WriteByte(' ')
		cell, err := m.mem.Read(m.pc + int64(i))
		if err != nil {
			sb.WriteByte('?')
			continue
		}
		sb.WriteString(cell.String())
		if i == 0 {
			continue
		}

		sb.WriteByte('(')
		param := i - 1
		if info.Writes && i == info.Params {
			if addr, err := m.address(in, param); err == nil {
				sb.WriteString("->")
				sb.WriteString(strconv.FormatInt(addr, 10))
			} else {
				sb.WriteByte('?')
			}
		} else if v, err := m.value(in, param); err == nil {
			sb.WriteString(v.String())
		} else {
			sb.WriteByte('?')
		}
		sb.WriteByte(')')
	}
	return sb.String()
}
