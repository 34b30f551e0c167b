package loader

import (
	"debug/elf"
	"sort"
)

// IsLoadable reports whether img is an executable this supervisor can map:
// a statically linked RISC-V executable. Images of any other machine or
// type (shared objects, relocatables, core dumps) must be skipped by the
// caller rather than measured.
func IsLoadable(img *elf.File) bool {
	return img.Type == elf.ET_EXEC && img.Machine == elf.EM_RISCV
}

// LoadSegmentsFromELF extracts the loadable program headers of img as a
// segment list sorted by virtual address, the form the footprint
// calculator consumes.
func LoadSegmentsFromELF(img *elf.File) []LoadSegment {
	var segs []LoadSegment

	for _, prog := range img.Progs {
		if prog.Type != elf.PT_LOAD {
			continue
		}

		segs = append(segs, LoadSegment{
			Offset:   prog.Off,
			FileSize: prog.Filesz,
			VirtAddr: prog.Vaddr,
			MemSize:  prog.Memsz,
			Flags:    segmentFlags(prog.Flags),
		})
	}

	sort.Slice(segs, func(i, j int) bool {
		return segs[i].VirtAddr < segs[j].VirtAddr
	})

	return segs
}

func segmentFlags(progFlags elf.ProgFlag) SegmentFlags {
	var flags SegmentFlags

	if progFlags&elf.PF_X != 0 {
		flags |= SegmentExec
	}
	if progFlags&elf.PF_W != 0 {
		flags |= SegmentWrite
	}
	if progFlags&elf.PF_R != 0 {
		flags |= SegmentRead
	}

	return flags
}
