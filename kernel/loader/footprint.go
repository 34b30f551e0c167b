package loader

const (
	frameShift = 12

	// each level-0 table maps a 2 MiB region, each level-1 table a 1 GiB
	// region
	level0Shift = 21
	level1Shift = 30

	// fixed reservation for the user stack region placed at a high
	// address outside any segment: two data frames plus the level-0 and
	// level-1 tables covering that address
	stackDataFrames  = 2
	stackTableFrames = 2

	noRegion = ^uint64(0)
)

// FrameFootprint computes the total number of physical frames required to
// map the supplied segments into a fresh three-level address space: the
// root table, one level-1 table per distinct 1 GiB region touched, one
// level-0 table per distinct 2 MiB region touched, one data frame per
// 4 KiB page of each segment's in-memory span, and the fixed stack
// reservation.
//
// Segments must be sorted by virtual address and pairwise non-overlapping.
// That precondition lets a single forward-advancing high-water mark per
// table level detect region boundaries in one pass; it is not validated
// here and violating it yields meaningless counts.
func FrameFootprint(segs []LoadSegment) uint64 {
	// the root table covers the entire address space and always exists
	count := uint64(1)

	covered1G := noRegion
	covered2M := noRegion

	for _, seg := range segs {
		if seg.MemSize == 0 {
			continue
		}

		lastAddr := seg.VirtEnd() - 1

		for r := seg.VirtAddr >> level1Shift; r <= lastAddr>>level1Shift; r++ {
			if covered1G == noRegion || r > covered1G {
				covered1G = r
				count++
			}
		}

		for r := seg.VirtAddr >> level0Shift; r <= lastAddr>>level0Shift; r++ {
			if covered2M == noRegion || r > covered2M {
				covered2M = r
				count++
			}
		}

		// data frames depend on the in-memory span only; file size is
		// irrelevant as bss pages still occupy frames
		count += lastAddr>>frameShift - seg.VirtAddr>>frameShift + 1
	}

	return count + stackDataFrames + stackTableFrames
}
