package pmm

import (
	"rvos/kernel"
	"rvos/kernel/kfmt"
	"rvos/kernel/sync"
)

// Block geometry for the fine-grained allocator instance that backs kernel
// dynamic allocations: 8-byte base blocks up to blocks matching the largest
// block served by the physical pool allocator.
const (
	heapBaseOrder  = 3
	heapOrderCount = 14
)

var (
	// allocFailedFn is invoked when the heap cannot be refilled from
	// the physical pool. This is the terminal out-of-memory path; the
	// default implementation halts the system. Mocked by tests.
	allocFailedFn = func(err *kernel.Error) {
		kfmt.Panic(err)
	}

	errHeapExhausted = &kernel.Error{Module: "heap", Message: "out of memory: physical pool cannot refill the kernel heap"}
)

// heapAllocator serves arbitrary small allocations for kernel data
// structures out of a fine-grained buddy instance. When the fine instance
// runs dry, the heap pulls exactly one block of the fine instance's largest
// size from the coarse physical pool, folds it into the fine free lists and
// retries once; a second failure is escalated as a fatal out-of-memory
// condition.
//
// The heap is reachable from every allocation site in the kernel so its
// state sits behind an exclusive-access cell. The cell does not arbitrate
// between contexts (there is only one); it asserts that no allocation
// re-enters the allocator.
type heapAllocator struct {
	cell   sync.ExclusiveCell
	fine   BuddyAllocator
	coarse *BuddyAllocator
}

// Init prepares the heap to serve allocations backed by the supplied
// physical pool allocator.
func (h *heapAllocator) Init(coarse *BuddyAllocator) {
	h.cell = sync.NewExclusiveCell("kernel-heap")
	h.coarse = coarse
	h.fine.Init(heapBaseOrder, heapOrderCount)
}

// Allocate reserves a block satisfying the requested alignment and size.
// It returns the block address and its actual size. Exhaustion of the
// physical pool does not return; it reports a fatal out-of-memory
// condition instead.
func (h *heapAllocator) Allocate(align, size uintptr) (uintptr, uintptr) {
	h.cell.Acquire()
	defer h.cell.Release()

	addr, gotSize, err := h.fine.Allocate(align, size)
	if err == nil {
		return addr, gotSize
	}

	// Pull one max-order block from the physical pool, fold it in and
	// retry exactly once.
	refillSize := h.fine.MaxBlockSize()
	blockAddr, blockSize, err := h.coarse.Allocate(refillSize, refillSize)
	if err != nil {
		allocFailedFn(errHeapExhausted)
		return 0, 0
	}
	h.fine.Transfer(blockAddr, blockSize)

	addr, gotSize, err = h.fine.Allocate(align, size)
	if err != nil {
		allocFailedFn(errHeapExhausted)
		return 0, 0
	}

	return addr, gotSize
}

// Deallocate returns a block obtained from Allocate. The memory stays with
// the heap; blocks are never handed back to the physical pool.
func (h *heapAllocator) Deallocate(addr, size uintptr) {
	h.cell.Acquire()
	defer h.cell.Release()

	h.fine.Deallocate(addr, size)
}
