package vmm

import (
	"rvos/kernel"
	"rvos/kernel/kfmt"
	"rvos/kernel/mem"
	"rvos/kernel/mem/pmm"
)

var (
	// zeroRangeFn zeroes a byte range. Freshly allocated table frames
	// pass through it before they become reachable from the tree.
	zeroRangeFn = func(addr, size uintptr) {
		kernel.Memset(addr, 0, size)
	}

	// panicFn is the escalation target for allocation failures during
	// table construction. A partially built kernel table can neither be
	// retried nor abandoned so the failure is terminal. Mocked by tests.
	panicFn = kfmt.Panic

	errTableFrameSize = &kernel.Error{Module: "vmm", Message: "page table frame allocation returned an unexpected block size"}
)

// Layout describes the linker-provided boundary addresses that partition
// the kernel image. All boundaries are trusted to be page-aligned and
// monotonically increasing.
type Layout struct {
	// Start is the address of the first mapped kernel byte.
	Start uintptr

	// CodeEnd terminates the executable+readable code region.
	CodeEnd uintptr

	// TransitEnd terminates the fully permissive transition region
	// holding the trap/trampoline code that must stay mapped identically
	// before and after address-space switches.
	TransitEnd uintptr

	// RodataEnd terminates the read-only data region.
	RodataEnd uintptr

	// End terminates the read-write data and uninitialized-data region;
	// addresses at or beyond it stay unmapped.
	End uintptr
}

// KernelSpaceBuilder is the mapping policy that constructs the kernel's
// own address space: an identity mapping (the kernel is linked and runs at
// its load address) with per-region permissions derived from the image
// layout. Table frames are drawn from the coarse physical allocator
// through an explicit handle.
type KernelSpaceBuilder struct {
	alloc  *pmm.BuddyAllocator
	layout Layout
}

// Start positions the traversal at the 4 KiB slot covering the first
// kernel byte.
func (b *KernelSpaceBuilder) Start(Pos) Pos {
	return Pos{Level: 0, Page: PageFromAddress(b.layout.Start)}
}

// Arrive installs the identity leaf for the page at pos with the
// permissions of the image region the page falls in, or stops the
// traversal once the image has been fully covered.
func (b *KernelSpaceBuilder) Arrive(pte *Entry, pos Pos) (Pos, bool) {
	var flags EntryFlag

	switch addr := pos.Base(); {
	case addr < b.layout.CodeEnd:
		flags = FlagRead | FlagExec
	case addr < b.layout.TransitEnd:
		flags = FlagRWX
	case addr < b.layout.RodataEnd:
		flags = FlagRead
	case addr < b.layout.End:
		flags = FlagRead | FlagWrite
	default:
		return Pos{}, false
	}

	// identity mapping: the physical frame number equals the page number
	*pte = NewEntry(pmm.Frame(pos.Page), flags|FlagValid)
	return pos.Next(), true
}

// Meet provides a branch entry to a freshly allocated, zeroed table frame.
// Failure to allocate one is fatal: a half-built kernel mapping must never
// become active.
func (b *KernelSpaceBuilder) Meet(level uint8, _ Entry, _ Pos) Entry {
	frame, err := allocTableFrame(b.alloc)
	if err != nil {
		panicFn(err)
	}

	return NewEntry(frame, FlagValid)
}

// allocTableFrame draws a single zeroed page table frame from the supplied
// allocator.
func allocTableFrame(alloc *pmm.BuddyAllocator) (pmm.Frame, *kernel.Error) {
	addr, size, err := alloc.Allocate(uintptr(mem.PageSize), uintptr(mem.PageSize))
	if err != nil {
		return pmm.InvalidFrame, err
	}
	if size != uintptr(mem.PageSize) {
		return pmm.InvalidFrame, errTableFrameSize
	}

	zeroRangeFn(addr, size)
	return pmm.FrameFromAddress(addr), nil
}

// CreateKernelSpace allocates a root table frame and builds the identity
// mapping for the kernel image described by layout, drawing every table
// frame from alloc. It returns the root frame of the constructed table.
func CreateKernelSpace(alloc *pmm.BuddyAllocator, layout Layout) (pmm.Frame, *kernel.Error) {
	root, err := allocTableFrame(alloc)
	if err != nil {
		return pmm.InvalidFrame, err
	}

	Walk(root, &KernelSpaceBuilder{alloc: alloc, layout: layout})

	kfmt.Printf("[vmm] kernel space: 0x%x - 0x%x, root table at 0x%x\n",
		layout.Start, layout.End, root.Address())

	return root, nil
}
