package vm

import (
	"math/big"
	"strings"
)

// ---------------------------------------------------------------------------
// Values: every memory cell, input and output is an arbitrary-precision
// integer. Stored values are never mutated in place; arithmetic always
// allocates a fresh result.
// ---------------------------------------------------------------------------

var (
	zero = big.NewInt(0)
	one  = big.NewInt(1)
)

// Int returns a new big integer holding v.
func Int(v int64) *big.Int {
	return big.NewInt(v)
}

// Ints converts a list of int64 values into big integers.
func Ints(vs ...int64) []*big.Int {
	out := make([]*big.Int, len(vs))
	for i, v := range vs {
		out[i] = big.NewInt(v)
	}
	return out
}

// Int64s converts big integers back to int64. The second result is false
// if any value does not fit.
func Int64s(vs []*big.Int) ([]int64, bool) {
	out := make([]int64, len(vs))
	for i, v := range vs {
		if !v.IsInt64() {
			return nil, false
		}
		out[i] = v.Int64()
	}
	return out, true
}

// FormatValues renders values as comma-separated text, the same layout
// program text uses.
func FormatValues(vs []*big.Int) string {
	var sb strings.Builder
	for i, v := range vs {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(v.String())
	}
	return sb.String()
}

func boolValue(b bool) *big.Int {
	if b {
		return one
	}
	return zero
}
