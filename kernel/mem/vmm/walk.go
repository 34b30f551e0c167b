package vmm

import (
	"unsafe"

	"rvos/kernel/mem"
	"rvos/kernel/mem/pmm"
)

var (
	// ptePtrFn returns a pointer to the entry at the supplied address.
	// It is overridden by tests that need to intercept entry accesses.
	// When compiling the kernel this function is automatically inlined.
	ptePtrFn = func(entryAddr uintptr) *Entry {
		return (*Entry)(unsafe.Pointer(entryAddr))
	}
)

// Visitor is the policy object that drives Walk. The walker owns tree
// navigation only; every mapping decision is delegated to the visitor:
//
//   - Start is called once and returns the position where traversal
//     begins, allowing the policy to skip leading unmapped regions.
//   - Arrive is called with each slot that could become a leaf. The policy
//     either writes a completed leaf entry through pte and returns the next
//     position to visit, or returns false to end the traversal.
//   - Meet is called when descending towards the current position requires
//     a table node that does not exist yet. The policy provides a fresh,
//     zeroed table frame and returns the branch entry pointing at it; the
//     walker installs the entry and descends through it.
type Visitor interface {
	Start(pos Pos) Pos
	Arrive(pte *Entry, pos Pos) (Pos, bool)
	Meet(level uint8, pte Entry, pos Pos) Entry
}

// Walk traverses the page table tree rooted at root top-down, delegating
// all mapping decisions to the supplied visitor. Table nodes are accessed
// through their physical frame addresses so Walk must run while physical
// memory is identity-mapped (or before paging is enabled), which holds for
// the whole kernel-space construction window.
func Walk(root pmm.Frame, visitor Visitor) {
	pos := visitor.Start(Pos{Level: mem.PageLevels - 1})

	for pos.Level < mem.PageLevels {
		// descend from the root to the table holding the slot for pos,
		// materializing missing intermediate nodes along the way
		tableAddr := root.Address()
		for level := uint8(mem.PageLevels - 1); level > pos.Level; level-- {
			pte := ptePtrFn(tableEntryAddr(tableAddr, tableIndex(pos.Page, level)))
			if !pte.HasFlags(FlagValid) {
				*pte = visitor.Meet(level, *pte, pos)
			}
			tableAddr = pte.Frame().Address()
		}

		pte := ptePtrFn(tableEntryAddr(tableAddr, tableIndex(pos.Page, pos.Level)))
		next, ok := visitor.Arrive(pte, pos)
		if !ok {
			return
		}
		pos = next
	}
}
