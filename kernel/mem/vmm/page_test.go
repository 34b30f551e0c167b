package vmm

import "testing"

func TestPageFromAddress(t *testing.T) {
	specs := []struct {
		input uintptr
		exp   Page
	}{
		{0, Page(0)},
		{4095, Page(0)},
		{4096, Page(1)},
		{0x80200fff, Page(0x80200)},
	}

	for specIndex, spec := range specs {
		if got := PageFromAddress(spec.input); got != spec.exp {
			t.Errorf("[spec %d] expected returned page to be %v; got %v", specIndex, spec.exp, got)
		}
	}
}

func TestPosNext(t *testing.T) {
	specs := []struct {
		pos     Pos
		expBase uintptr
	}{
		// level 0 steps advance by one 4 KiB page
		{Pos{Level: 0, Page: PageFromAddress(0x80200000)}, 0x80201000},
		// level 1 steps advance by 2 MiB
		{Pos{Level: 1, Page: PageFromAddress(0x80200000)}, 0x80400000},
		// level 2 steps advance by 1 GiB
		{Pos{Level: 2, Page: PageFromAddress(0x40000000)}, 0x80000000},
	}

	for specIndex, spec := range specs {
		next := spec.pos.Next()

		if next.Level != spec.pos.Level {
			t.Errorf("[spec %d] expected Next to preserve the level", specIndex)
		}

		if got := next.Base(); got != spec.expBase {
			t.Errorf("[spec %d] expected next base to be 0x%x; got 0x%x", specIndex, spec.expBase, got)
		}
	}
}

func TestTableIndex(t *testing.T) {
	// 0x80404000 decomposes into the per-level indices (2, 2, 4)
	page := PageFromAddress(0x80404000)

	specs := []struct {
		level uint8
		exp   uintptr
	}{
		{2, 2},
		{1, 2},
		{0, 4},
	}

	for specIndex, spec := range specs {
		if got := tableIndex(page, spec.level); got != spec.exp {
			t.Errorf("[spec %d] expected index at level %d to be %d; got %d", specIndex, spec.level, spec.exp, got)
		}
	}
}
