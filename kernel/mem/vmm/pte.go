// Package vmm implements the construction of the kernel's virtual address
// space: an Sv39 three-level page table assembled by a generic tree walker
// that is driven by a pluggable mapping policy.
package vmm

import (
	"rvos/kernel/mem"
	"rvos/kernel/mem/pmm"
)

// EntryFlag describes a flag that can be applied to a page table entry.
type EntryFlag uintptr

// Sv39 page table entry flags.
const (
	FlagValid EntryFlag = 1 << iota
	FlagRead
	FlagWrite
	FlagExec
	FlagUser
	FlagGlobal
	FlagAccessed
	FlagDirty

	// FlagRWX is the permission set of the transition region which must
	// stay mapped identically across address-space switches.
	FlagRWX = FlagRead | FlagWrite | FlagExec
)

const (
	// ppnShift is the bit position of the physical page number inside a
	// page table entry.
	ppnShift = 10

	// ppnMask covers the 44 physical page number bits of an entry.
	ppnMask = (uintptr(1) << 44) - 1

	// flagMask covers the flag bits of an entry.
	flagMask = (uintptr(1) << ppnShift) - 1
)

// Entry describes an Sv39 page table entry. An entry encodes a physical
// frame number together with a set of flags: an entry without FlagValid is
// unused, a valid entry carrying any of the R/W/X permissions is a leaf and
// a valid entry without permissions is a branch pointing at the next-level
// table.
type Entry uintptr

// NewEntry returns an entry that points to the supplied frame with the
// supplied flags set.
func NewEntry(frame pmm.Frame, flags EntryFlag) Entry {
	return Entry((uintptr(frame)&ppnMask)<<ppnShift) | Entry(flags)
}

// HasFlags returns true if this entry has all the input flags set.
func (pte Entry) HasFlags(flags EntryFlag) bool {
	return (uintptr(pte) & uintptr(flags)) == uintptr(flags)
}

// HasAnyFlag returns true if this entry has at least one of the input flags set.
func (pte Entry) HasAnyFlag(flags EntryFlag) bool {
	return (uintptr(pte) & uintptr(flags)) != 0
}

// SetFlags sets the input list of flags on the page table entry.
func (pte *Entry) SetFlags(flags EntryFlag) {
	*pte = Entry(uintptr(*pte) | uintptr(flags))
}

// ClearFlags unsets the input list of flags from the page table entry.
func (pte *Entry) ClearFlags(flags EntryFlag) {
	*pte = Entry(uintptr(*pte) &^ uintptr(flags))
}

// Flags returns the flag bits of this entry.
func (pte Entry) Flags() EntryFlag {
	return EntryFlag(uintptr(pte) & flagMask)
}

// Frame returns the physical frame that this entry points to.
func (pte Entry) Frame() pmm.Frame {
	return pmm.Frame((uintptr(pte) >> ppnShift) & ppnMask)
}

// SetFrame updates the entry to point to the given physical frame.
func (pte *Entry) SetFrame(frame pmm.Frame) {
	*pte = Entry(uintptr(*pte)&flagMask) | Entry((uintptr(frame)&ppnMask)<<ppnShift)
}

// IsLeaf returns true if this entry terminates a translation, carrying the
// permissions for the address range it covers.
func (pte Entry) IsLeaf() bool {
	return pte.HasFlags(FlagValid) && pte.HasAnyFlag(FlagRWX)
}

// IsBranch returns true if this entry points at a lower-level table.
func (pte Entry) IsBranch() bool {
	return pte.HasFlags(FlagValid) && !pte.HasAnyFlag(FlagRWX)
}

// tableEntryAddr returns the address of the entry with the given index
// inside the table node that starts at tableAddr.
func tableEntryAddr(tableAddr, index uintptr) uintptr {
	return tableAddr + index<<mem.PointerShift
}
