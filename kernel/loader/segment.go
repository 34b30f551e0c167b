// Package loader provides the tooling for inspecting executable images
// before they are admitted into the system: filtering images the
// supervisor can actually run and predicting the number of physical
// frames an image needs before committing any allocator state to it.
package loader

// SegmentFlags encodes the access permissions of a load segment. The bit
// layout follows the ELF program header flag word.
type SegmentFlags uint8

const (
	// SegmentExec marks the segment as executable.
	SegmentExec SegmentFlags = 1 << iota

	// SegmentWrite marks the segment as writable.
	SegmentWrite

	// SegmentRead marks the segment as readable.
	SegmentRead
)

// LoadSegment describes one contiguous region of an executable image that
// must be mapped into memory. MemSize may exceed FileSize; the excess is
// zero-initialized space (bss) that occupies frames but no file bytes.
type LoadSegment struct {
	// Offset is the location of the segment's first byte in the image file.
	Offset uint64

	// FileSize is the number of bytes backed by file contents.
	FileSize uint64

	// VirtAddr is the virtual address where the segment gets mapped.
	VirtAddr uint64

	// MemSize is the size of the segment's in-memory span.
	MemSize uint64

	// Flags holds the segment access permissions.
	Flags SegmentFlags
}

// VirtEnd returns the first virtual address past the segment's in-memory
// span.
func (s LoadSegment) VirtEnd() uint64 {
	return s.VirtAddr + s.MemSize
}
