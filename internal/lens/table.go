package lens

import (
	"fmt"
	"sort"
)

// Table is an immutable address → descriptor mapping over the closed
// interval [Min, Max]. Addresses inside the interval need not be mapped.
type Table struct {
	min     int
	max     int
	entries map[int]Descriptor
}

// NewTable copies entries into a new table. Every key must lie in
// [minAddr, maxAddr].
func NewTable(minAddr, maxAddr int, entries map[int]Descriptor) (*Table, error) {
	if minAddr > maxAddr {
		return nil, fmt.Errorf("invalid address range [%d, %d]", minAddr, maxAddr)
	}

	copied := make(map[int]Descriptor, len(entries))
	for addr, desc := range entries {
		if addr < minAddr || addr > maxAddr {
			return nil, fmt.Errorf("address %d (%s) is outside range [%d, %d]", addr, desc.Name, minAddr, maxAddr)
		}
		copied[addr] = desc
	}

	return &Table{min: minAddr, max: maxAddr, entries: copied}, nil
}

// Lookup returns the descriptor bound to address.
func (t *Table) Lookup(address int) (Descriptor, bool) {
	d, ok := t.entries[address]
	return d, ok
}

// Min returns the lowest legal address.
func (t *Table) Min() int { return t.min }

// Max returns the highest legal address.
func (t *Table) Max() int { return t.max }

// Addresses returns the mapped addresses in ascending order.
func (t *Table) Addresses() []int {
	addrs := make([]int, 0, len(t.entries))
	for addr := range t.entries {
		addrs = append(addrs, addr)
	}
	sort.Ints(addrs)
	return addrs
}
