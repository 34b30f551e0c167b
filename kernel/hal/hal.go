// Package hal connects the kernel's hardware-independent services to the
// supervisor execution environment.
package hal

import (
	"rvos/kernel/kfmt"
	"rvos/kernel/sbi"
)

// InitConsole routes kernel log output to the environment console. Output
// buffered before this call is flushed to the console as part of the sink
// registration.
func InitConsole() {
	kfmt.SetOutputSink(sbi.ConsoleWriter())
}
