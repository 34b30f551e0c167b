// Package sync provides the ownership primitives used by the kernel. The
// target runs a single logical thread of control so these primitives assert
// correctness invariants instead of arbitrating between executing contexts.
package sync

import "sync/atomic"

// ExclusiveCell guards a resource that must only ever be touched by a single
// logical owner at a time. Re-entering a held cell indicates a logic error
// (there is no second context that could legitimately contend for it) so
// Acquire panics instead of blocking.
type ExclusiveCell struct {
	state uint32

	// name is included in the re-entry panic message.
	name string
}

// NewExclusiveCell returns a cell identified by name in diagnostics.
func NewExclusiveCell(name string) ExclusiveCell {
	return ExclusiveCell{name: name}
}

// Acquire takes ownership of the cell. It panics if the cell is already
// held.
func (c *ExclusiveCell) Acquire() {
	if atomic.SwapUint32(&c.state, 1) != 0 {
		panic("sync: exclusive cell " + c.name + " re-entered while held")
	}
}

// Release relinquishes a held cell.
func (c *ExclusiveCell) Release() {
	atomic.StoreUint32(&c.state, 0)
}
