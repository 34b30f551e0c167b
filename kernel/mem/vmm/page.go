package vmm

import "rvos/kernel/mem"

// Page describes a virtual memory page index (VPN).
type Page uintptr

// Address returns the virtual memory address where this Page begins.
func (p Page) Address() uintptr {
	return uintptr(p << mem.PageShift)
}

// PageFromAddress returns the Page that contains the given virtual address.
// Addresses that are not page-aligned are rounded down to the containing
// page.
func PageFromAddress(virtAddr uintptr) Page {
	return Page((virtAddr & ^(uintptr(mem.PageSize - 1))) >> mem.PageShift)
}

// tableIndex extracts the slot index for page at the given table level.
func tableIndex(page Page, level uint8) uintptr {
	return (uintptr(page) >> (mem.PageLevelBits * uint(level))) & (mem.EntriesPerTable - 1)
}

// Pos identifies a slot in the page table tree by the level of the table
// holding the slot and the first page of the address range the slot covers.
type Pos struct {
	Level uint8
	Page  Page
}

// Base returns the virtual address where the range covered by this
// position begins.
func (pos Pos) Base() uintptr {
	return pos.Page.Address()
}

// Next returns the position of the slot that follows pos at the same
// level, covering the immediately adjacent address range.
func (pos Pos) Next() Pos {
	return Pos{
		Level: pos.Level,
		Page:  pos.Page + Page(1)<<(mem.PageLevelBits*uint(pos.Level)),
	}
}
