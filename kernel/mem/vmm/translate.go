package vmm

import (
	"rvos/kernel"
	"rvos/kernel/mem"
	"rvos/kernel/mem/pmm"
)

var (
	// ErrInvalidMapping is returned when trying to look up a virtual
	// address that does not resolve to a mapped physical page.
	ErrInvalidMapping = &kernel.Error{Module: "vmm", Message: "virtual address does not point to a mapped physical page"}
)

// Translate resolves virtAddr through the table rooted at root by
// performing a software table walk. It returns the physical address that
// virtAddr maps to together with the permission flags of the leaf entry
// covering it.
func Translate(root pmm.Frame, virtAddr uintptr) (uintptr, EntryFlag, *kernel.Error) {
	tableAddr := root.Address()

	for level := uint8(mem.PageLevels - 1); ; level-- {
		pte := ptePtrFn(tableEntryAddr(tableAddr, tableIndex(PageFromAddress(virtAddr), level)))

		if !pte.HasFlags(FlagValid) {
			return 0, 0, ErrInvalidMapping
		}

		if pte.IsLeaf() {
			// a leaf above level 0 covers a super-page; the low
			// bits of the virtual address select into it
			offset := virtAddr & (mem.LevelSpan(level) - 1)
			return pte.Frame().Address() | offset, pte.Flags(), nil
		}

		if level == 0 {
			// branch entry at the last level; the table is malformed
			return 0, 0, ErrInvalidMapping
		}

		tableAddr = pte.Frame().Address()
	}
}
