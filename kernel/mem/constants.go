package mem

// The Sv39 translation scheme used by the kernel splits virtual addresses
// into a page offset plus one 9-bit index per page table level. The
// constants below describe that geometry; they are plain arithmetic facts
// about the format and carry no architecture build constraints.
const (
	// PointerShift is equal to log2 of the page table entry size.
	PointerShift = 3

	// PageShift is equal to log2(PageSize). This constant is used when
	// we need to convert a physical address to a page number (shift
	// right by PageShift) and vice-versa.
	PageShift = 12

	// PageSize defines the system's page size in bytes.
	PageSize = Size(1 << PageShift)

	// PageLevels is the number of page table levels. The root table
	// sits at level PageLevels-1, leaf 4 KiB entries at level 0.
	PageLevels = 3

	// PageLevelBits is the number of virtual address bits that index a
	// single page table level.
	PageLevelBits = 9

	// EntriesPerTable is the number of entries in one page table node.
	EntriesPerTable = 1 << PageLevelBits
)

// LevelShift returns log2 of the address span covered by a single entry at
// the given page table level: 12 (4 KiB) at level 0, 21 (2 MiB) at level 1
// and 30 (1 GiB) at level 2.
func LevelShift(level uint8) uint {
	return PageShift + PageLevelBits*uint(level)
}

// LevelSpan returns the address span in bytes covered by a single entry at
// the given page table level.
func LevelSpan(level uint8) uintptr {
	return uintptr(1) << LevelShift(level)
}
