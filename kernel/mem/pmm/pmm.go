package pmm

import (
	"rvos/kernel"
	"rvos/kernel/kfmt"
	"rvos/kernel/mem"
)

// Block geometry for the coarse allocator instance that owns the physical
// pool: page-sized base blocks up to 16-page blocks.
const (
	// FrameBaseOrder is log2 of the coarse allocator's smallest block,
	// a single page frame.
	FrameBaseOrder = mem.PageShift

	// FrameOrderCount is the number of size classes managed by the
	// coarse allocator.
	FrameOrderCount = 5
)

var (
	// frameAllocator is the coarse buddy instance owning the entire
	// physical memory pool. It hands out page-table frames and the
	// blocks that refill the kernel heap.
	frameAllocator BuddyAllocator

	// kernelHeap is the process-wide dynamic allocation backend.
	kernelHeap heapAllocator

	errPoolNotAligned = &kernel.Error{Module: "pmm", Message: "physical pool must start and end on a page boundary"}
)

// Init seeds the physical memory allocation sub-system with the statically
// reserved pool [poolStart, poolStart+poolSize) and prepares the kernel
// heap on top of it. Both values must be page-aligned.
func Init(poolStart, poolSize uintptr) *kernel.Error {
	pageMask := uintptr(mem.PageSize - 1)
	if poolSize == 0 || poolStart&pageMask != 0 || poolSize&pageMask != 0 {
		return errPoolNotAligned
	}

	frameAllocator.Init(FrameBaseOrder, FrameOrderCount)
	frameAllocator.Transfer(poolStart, poolSize)
	kernelHeap.Init(&frameAllocator)

	kfmt.Printf("[pmm] physical pool: 0x%x - 0x%x (%d frames)\n",
		poolStart, poolStart+poolSize, uint64(poolSize>>mem.PageShift))

	return nil
}

// FrameAllocator exposes the coarse allocator as an explicit handle. The
// page table builder draws its table frames through this handle so that the
// allocation relationship stays visible at the call sites.
func FrameAllocator() *BuddyAllocator {
	return &frameAllocator
}

// AllocFrame reserves a single physical frame from the pool.
func AllocFrame() (Frame, *kernel.Error) {
	addr, _, err := frameAllocator.Allocate(uintptr(mem.PageSize), uintptr(mem.PageSize))
	if err != nil {
		return InvalidFrame, err
	}

	return FrameFromAddress(addr), nil
}

// HeapAllocate reserves a block for a kernel data structure. It returns the
// block address and the actual block size.
func HeapAllocate(align, size uintptr) (uintptr, uintptr) {
	return kernelHeap.Allocate(align, size)
}

// HeapFree returns a block previously obtained from HeapAllocate.
func HeapFree(addr, size uintptr) {
	kernelHeap.Deallocate(addr, size)
}
