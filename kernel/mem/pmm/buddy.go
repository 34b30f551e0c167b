package pmm

import (
	"sort"

	"rvos/kernel"
)

// ErrExhausted is returned by Allocate when no size class can satisfy a
// request, even after splitting the largest available free block. Callers
// owning a larger pool may recover by transferring more memory in; at the
// physical pool itself the condition is terminal.
var ErrExhausted = &kernel.Error{Module: "pmm", Message: "buddy allocator exhausted"}

// maxBuddyOrders caps the number of doubling size classes a single
// allocator instance can manage.
const maxBuddyOrders = 16

// BuddyAllocator hands out power-of-two sized, naturally aligned blocks
// carved out of the address ranges transferred into it. An instance is
// parameterized by its base order (log2 of the smallest block size) and the
// number of doubling size classes it manages. One free list is kept per
// size class; adjacent free blocks of the same size are eagerly merged into
// the next larger class so that after every Deallocate no two free buddies
// coexist unmerged.
type BuddyAllocator struct {
	baseOrder  uint8
	orderCount uint8

	// freeBlocks[class] holds the start addresses of free blocks of
	// size 1<<(baseOrder+class), sorted in ascending address order.
	freeBlocks [maxBuddyOrders][]uintptr
}

// Init resets the allocator free lists and records the block geometry. No
// memory is made available until a call to Transfer hands a region in.
func (a *BuddyAllocator) Init(baseOrder, orderCount uint8) {
	if orderCount > maxBuddyOrders {
		orderCount = maxBuddyOrders
	}

	a.baseOrder = baseOrder
	a.orderCount = orderCount
	for i := range a.freeBlocks {
		a.freeBlocks[i] = a.freeBlocks[i][:0]
	}
}

// blockSize returns the size of the blocks tracked by the given size class.
func (a *BuddyAllocator) blockSize(class uint8) uintptr {
	return uintptr(1) << (a.baseOrder + class)
}

// MaxBlockSize returns the size of the largest block this instance can
// track. Refill requests against a backing allocator are sized to this
// value.
func (a *BuddyAllocator) MaxBlockSize() uintptr {
	return a.blockSize(a.orderCount - 1)
}

// classFor returns the smallest size class whose blocks satisfy both the
// requested size and alignment. Free blocks are always aligned to their own
// size so any class at least as large as align yields a suitably aligned
// address. The second return value is false when no class is large enough.
func (a *BuddyAllocator) classFor(align, size uintptr) (uint8, bool) {
	for class := uint8(0); class < a.orderCount; class++ {
		if blockSize := a.blockSize(class); blockSize >= size && blockSize >= align {
			return class, true
		}
	}

	return 0, false
}

// Transfer folds the address range [addr, addr+size) into the allocator
// free lists, decomposing it greedily into the largest blocks that are
// naturally aligned at their position and still fit the remaining range.
// The range start must be aligned to the base block size and size must be a
// multiple of it; both are trusted, not checked.
func (a *BuddyAllocator) Transfer(addr, size uintptr) {
	for size >= a.blockSize(0) {
		class := a.orderCount - 1
		for class > 0 && (addr&(a.blockSize(class)-1) != 0 || a.blockSize(class) > size) {
			class--
		}

		a.insertFree(addr, class)
		addr += a.blockSize(class)
		size -= a.blockSize(class)
	}
}

// Allocate reserves the smallest free block whose size and alignment
// satisfy the request, lazily splitting a larger block when no exact-size
// block is free. On success it returns the block address together with the
// actual block size which may exceed the requested one.
func (a *BuddyAllocator) Allocate(align, size uintptr) (uintptr, uintptr, *kernel.Error) {
	class, fits := a.classFor(align, size)
	if !fits {
		return 0, 0, ErrExhausted
	}

	for source := class; source < a.orderCount; source++ {
		if len(a.freeBlocks[source]) == 0 {
			continue
		}

		// detach the lowest-addressed block of this class
		addr := a.freeBlocks[source][0]
		a.freeBlocks[source] = a.freeBlocks[source][:copy(a.freeBlocks[source], a.freeBlocks[source][1:])]

		// split down to the requested class; each step returns the
		// upper half to the free list below. The upper half's buddy
		// is the lower half being handed out so no merge can occur.
		for source > class {
			source--
			a.insertSorted(addr+a.blockSize(source), source)
		}

		return addr, a.blockSize(class), nil
	}

	return 0, 0, ErrExhausted
}

// Deallocate returns the block at addr to its size-class free list and
// merges it with its buddy as long as the buddy is free as well,
// propagating the merge upward through the size classes.
func (a *BuddyAllocator) Deallocate(addr, size uintptr) {
	class, fits := a.classFor(1, size)
	if !fits {
		class = a.orderCount - 1
	}

	a.insertFree(addr, class)
}

// insertFree adds the block at addr to the free list for class after
// repeatedly merging it with its buddy. The buddy of a block is located at
// its own address with the block-size bit flipped; whenever the buddy is
// free too, both blocks are replaced by the containing block of the next
// larger class.
func (a *BuddyAllocator) insertFree(addr uintptr, class uint8) {
	for class < a.orderCount-1 {
		buddy := addr ^ a.blockSize(class)
		if !a.removeFree(buddy, class) {
			break
		}

		addr &= ^a.blockSize(class)
		class++
	}

	a.insertSorted(addr, class)
}

// insertSorted places addr into the free list for class keeping the list
// sorted by address.
func (a *BuddyAllocator) insertSorted(addr uintptr, class uint8) {
	list := a.freeBlocks[class]
	at := sort.Search(len(list), func(i int) bool { return list[i] >= addr })

	list = append(list, 0)
	copy(list[at+1:], list[at:])
	list[at] = addr
	a.freeBlocks[class] = list
}

// removeFree detaches addr from the free list for class. It returns false
// if addr is not on that list.
func (a *BuddyAllocator) removeFree(addr uintptr, class uint8) bool {
	list := a.freeBlocks[class]
	at := sort.Search(len(list), func(i int) bool { return list[i] >= addr })
	if at == len(list) || list[at] != addr {
		return false
	}

	a.freeBlocks[class] = list[:at+copy(list[at:], list[at+1:])]
	return true
}

// freeBytes returns the total number of bytes currently sitting on the
// allocator free lists. It is used by diagnostics and tests.
func (a *BuddyAllocator) freeBytes() uintptr {
	var total uintptr
	for class := uint8(0); class < a.orderCount; class++ {
		total += uintptr(len(a.freeBlocks[class])) * a.blockSize(class)
	}

	return total
}
