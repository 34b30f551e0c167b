package vmm

import "rvos/kernel/mem/pmm"

// SatpModeSv39 is the translation mode value the platform writes into the
// active-table register together with the root frame number.
const SatpModeSv39 = 8

var (
	// installTableFn performs the hardware register write that switches
	// the active translation table. The platform entry code installs the
	// real implementation; tests substitute their own.
	installTableFn = func(mode uint64, root pmm.Frame) {}
)

// SetActiveTableInstaller registers the platform call that installs
// (mode, root table) into the hardware.
func SetActiveTableInstaller(fn func(mode uint64, root pmm.Frame)) {
	installTableFn = fn
}

// Activate installs the table rooted at root as the active translation
// table in Sv39 mode. The mapping must be fully constructed before this
// call; afterwards the old mapping must not be relied upon unless it is
// known to still be identity-mapped.
func Activate(root pmm.Frame) {
	installTableFn(SatpModeSv39, root)
}
