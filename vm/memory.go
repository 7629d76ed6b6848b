package vm

import (
	"fmt"
	"math/big"
	"sort"
)

// ---------------------------------------------------------------------------
// Memory: sparse integer store
// ---------------------------------------------------------------------------

// Memory maps non-negative addresses to integer values. Addresses that were
// never written read as zero, and any non-negative address may be written.
// Memory never shrinks.
type Memory struct {
	cells map[int64]*big.Int
	size  int64 // one past the highest address ever set
}

// NewMemory creates an empty memory.
func NewMemory() *Memory {
	return &Memory{cells: make(map[int64]*big.Int)}
}

// Read returns the value at addr, or zero if addr was never written.
// The returned value must not be modified.
func (m *Memory) Read(addr int64) (*big.Int, error) {
	if addr < 0 {
		return nil, fmt.Errorf("read %d: %w", addr, ErrNegativeAddress)
	}
	if v, ok := m.cells[addr]; ok {
		return v, nil
	}
	return zero, nil
}

// Write stores a copy of v at addr, growing the memory if needed.
func (m *Memory) Write(addr int64, v *big.Int) error {
	if addr < 0 {
		return fmt.Errorf("write %d: %w", addr, ErrNegativeAddress)
	}
	m.cells[addr] = new(big.Int).Set(v)
	if addr >= m.size {
		m.size = addr + 1
	}
	return nil
}

// Size returns one past the highest address ever set.
func (m *Memory) Size() int64 {
	return m.size
}

// Len returns the number of addresses holding a value.
func (m *Memory) Len() int {
	return len(m.cells)
}

// Addresses returns every set address in ascending order.
func (m *Memory) Addresses() []int64 {
	addrs := make([]int64, 0, len(m.cells))
	for a := range m.cells {
		addrs = append(addrs, a)
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i] < addrs[j] })
	return addrs
}

// Clone returns an independent copy. Stored values are immutable, so only
// the map is copied.
func (m *Memory) Clone() *Memory {
	c := &Memory{
		cells: make(map[int64]*big.Int, len(m.cells)),
		size:  m.size,
	}
	for a, v := range m.cells {
		c.cells[a] = v
	}
	return c
}

// toAddress converts an effective address to a memory index.
func toAddress(v *big.Int) (int64, error) {
	if v.Sign() < 0 {
		return 0, fmt.Errorf("address %s: %w", v, ErrNegativeAddress)
	}
	if !v.IsInt64() {
		return 0, fmt.Errorf("address %s: %w", v, ErrAddressRange)
	}
	return v.Int64(), nil
}
