package vmm

import (
	"runtime"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rvos/kernel"
	"rvos/kernel/mem"
	"rvos/kernel/mem/pmm"
)

// newTestPool returns a coarse allocator seeded with pageCount frames of
// real, page-aligned host memory so that walks can dereference the table
// frames they allocate.
func newTestPool(t *testing.T, pageCount int) *pmm.BuddyAllocator {
	t.Helper()

	slab := make([]byte, (pageCount+1)*int(mem.PageSize))
	base := (uintptr(unsafe.Pointer(&slab[0])) + uintptr(mem.PageSize-1)) & ^uintptr(mem.PageSize-1)

	alloc := new(pmm.BuddyAllocator)
	alloc.Init(pmm.FrameBaseOrder, pmm.FrameOrderCount)
	alloc.Transfer(base, uintptr(pageCount)*uintptr(mem.PageSize))

	t.Cleanup(func() { runtime.KeepAlive(slab) })
	return alloc
}

// mustAllocTableFrame hands out one zeroed table frame from the test pool.
func mustAllocTableFrame(t *testing.T, alloc *pmm.BuddyAllocator) pmm.Frame {
	t.Helper()

	addr, size, err := alloc.Allocate(uintptr(mem.PageSize), uintptr(mem.PageSize))
	require.Nil(t, err)
	kernel.Memset(addr, 0, size)
	return pmm.FrameFromAddress(addr)
}

// recordingVisitor maps [startPage, limit) with one identity leaf per page
// and records every navigation decision the walker delegates to it.
type recordingVisitor struct {
	t     *testing.T
	alloc *pmm.BuddyAllocator

	startPage Page
	limit     Page

	meetLevels []uint8
	arrived    []uintptr
}

func (v *recordingVisitor) Start(Pos) Pos {
	return Pos{Level: 0, Page: v.startPage}
}

func (v *recordingVisitor) Arrive(pte *Entry, pos Pos) (Pos, bool) {
	if pos.Page >= v.limit {
		return Pos{}, false
	}

	v.arrived = append(v.arrived, pos.Base())
	*pte = NewEntry(pmm.Frame(pos.Page), FlagValid|FlagRead)
	return pos.Next(), true
}

func (v *recordingVisitor) Meet(level uint8, _ Entry, _ Pos) Entry {
	v.meetLevels = append(v.meetLevels, level)
	return NewEntry(mustAllocTableFrame(v.t, v.alloc), FlagValid)
}

func TestWalkCreatesTablesOnDemand(t *testing.T) {
	pool := newTestPool(t, 8)
	root := mustAllocTableFrame(t, pool)

	// two pages straddling a 2 MiB boundary force a second level-0 table
	visitor := &recordingVisitor{
		t:         t,
		alloc:     pool,
		startPage: PageFromAddress(0x1ff000),
		limit:     PageFromAddress(0x201000),
	}

	Walk(root, visitor)

	// one level-1 table for the walked GiB region plus one level-0
	// table per touched 2 MiB region
	assert.Equal(t, []uint8{2, 1, 1}, visitor.meetLevels)
	assert.Equal(t, []uintptr{0x1ff000, 0x200000}, visitor.arrived)

	for _, virtAddr := range []uintptr{0x1ff000, 0x200000} {
		physAddr, flags, err := Translate(root, virtAddr)
		require.Nil(t, err)
		assert.Equal(t, virtAddr, physAddr)
		assert.Equal(t, FlagValid|FlagRead, flags)
	}

	// the page right after the mapped window must stay unmapped
	_, _, err := Translate(root, 0x201000)
	assert.Equal(t, ErrInvalidMapping, err)
}

// hugePageVisitor installs a single 2 MiB identity leaf at level 1.
type hugePageVisitor struct {
	t     *testing.T
	alloc *pmm.BuddyAllocator

	base uintptr
	done bool
}

func (v *hugePageVisitor) Start(Pos) Pos {
	return Pos{Level: 1, Page: PageFromAddress(v.base)}
}

func (v *hugePageVisitor) Arrive(pte *Entry, pos Pos) (Pos, bool) {
	if v.done {
		return Pos{}, false
	}

	v.done = true
	*pte = NewEntry(pmm.Frame(pos.Page), FlagValid|FlagRead|FlagWrite)
	return pos.Next(), true
}

func (v *hugePageVisitor) Meet(level uint8, _ Entry, _ Pos) Entry {
	return NewEntry(mustAllocTableFrame(v.t, v.alloc), FlagValid)
}

func TestWalkSupportsSuperPageLeaves(t *testing.T) {
	pool := newTestPool(t, 4)
	root := mustAllocTableFrame(t, pool)

	visitor := &hugePageVisitor{t: t, alloc: pool, base: 0x40000000}
	Walk(root, visitor)

	// a single branch from the root suffices for a level-1 leaf
	physAddr, flags, err := Translate(root, 0x40123456)
	require.Nil(t, err)
	assert.Equal(t, uintptr(0x40123456), physAddr)
	assert.Equal(t, FlagValid|FlagRead|FlagWrite, flags)
}
