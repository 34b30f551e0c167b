package vmm

import (
	"testing"

	"rvos/kernel/mem/pmm"
)

func TestEntryFlags(t *testing.T) {
	var pte Entry

	if pte.HasAnyFlag(FlagValid | FlagRWX) {
		t.Fatal("expected a zero entry to have no flags set")
	}

	pte.SetFlags(FlagValid | FlagRead | FlagWrite)

	if !pte.HasFlags(FlagValid | FlagRead | FlagWrite) {
		t.Fatal("expected entry to report the flags just set")
	}

	if pte.HasFlags(FlagValid | FlagExec) {
		t.Fatal("expected HasFlags to require all input flags")
	}

	pte.ClearFlags(FlagWrite)

	if pte.HasAnyFlag(FlagWrite) {
		t.Fatal("expected FlagWrite to be cleared")
	}

	if got := pte.Flags(); got != FlagValid|FlagRead {
		t.Fatalf("expected remaining flags to be valid+read; got %b", got)
	}
}

func TestEntryFrameRoundTrip(t *testing.T) {
	frame := pmm.Frame(0x80200)

	pte := NewEntry(frame, FlagValid|FlagRead|FlagExec)

	if got := pte.Frame(); got != frame {
		t.Fatalf("expected entry frame to be %x; got %x", frame, got)
	}

	if got := pte.Flags(); got != FlagValid|FlagRead|FlagExec {
		t.Fatalf("unexpected flags: %b", got)
	}

	// pointing the entry elsewhere must preserve the flags
	pte.SetFrame(pmm.Frame(0x1234))
	if got := pte.Frame(); got != pmm.Frame(0x1234) {
		t.Fatalf("expected entry frame to be 0x1234; got %x", got)
	}
	if got := pte.Flags(); got != FlagValid|FlagRead|FlagExec {
		t.Fatalf("expected SetFrame to preserve flags; got %b", got)
	}
}

func TestEntryKind(t *testing.T) {
	specs := []struct {
		pte       Entry
		expLeaf   bool
		expBranch bool
	}{
		{NewEntry(1, FlagValid|FlagRead), true, false},
		{NewEntry(1, FlagValid|FlagRWX), true, false},
		{NewEntry(1, FlagValid), false, true},
		{NewEntry(1, FlagRead), false, false}, // not valid
		{Entry(0), false, false},
	}

	for specIndex, spec := range specs {
		if got := spec.pte.IsLeaf(); got != spec.expLeaf {
			t.Errorf("[spec %d] expected IsLeaf to return %t; got %t", specIndex, spec.expLeaf, got)
		}

		if got := spec.pte.IsBranch(); got != spec.expBranch {
			t.Errorf("[spec %d] expected IsBranch to return %t; got %t", specIndex, spec.expBranch, got)
		}
	}
}
