// Package sbi provides the kernel's view of the supervisor execution
// environment. The environment implements console output and system reset
// on behalf of the kernel; both are exposed here as narrow hooks that the
// platform entry code installs at boot and that tests can swap out.
package sbi

import "io"

// ShutdownReason is passed to the environment when the kernel requests a
// system reset.
type ShutdownReason uint32

// Reasons for a kernel-initiated shutdown.
const (
	ReasonNone ShutdownReason = iota
	ReasonSystemFailure
)

var (
	// putCharFn emits a single byte to the environment console. It
	// defaults to a no-op until the platform installs the real call.
	putCharFn = func(b byte) {}

	// shutdownFn requests a system reset from the environment. The
	// default implementation spins forever which matches the behavior
	// of a reset call that never returns.
	shutdownFn = func(reason ShutdownReason) {
		for {
		}
	}
)

// SetPutChar installs the environment call used for console output.
func SetPutChar(fn func(byte)) {
	putCharFn = fn
}

// SetShutdownHandler installs the environment call used for system reset.
func SetShutdownHandler(fn func(ShutdownReason)) {
	shutdownFn = fn
}

// Shutdown requests a system reset with the supplied reason. Calls to
// Shutdown are not expected to return.
func Shutdown(reason ShutdownReason) {
	shutdownFn(reason)
}

// consoleWriter adapts the environment's put-char call to io.Writer so it
// can back the kernel formatter.
type consoleWriter struct{}

// Write writes len(p) bytes from p to the environment console.
func (consoleWriter) Write(p []byte) (int, error) {
	for _, b := range p {
		putCharFn(b)
	}

	return len(p), nil
}

// ConsoleWriter returns an io.Writer that emits each written byte through
// the environment console call.
func ConsoleWriter() io.Writer {
	return consoleWriter{}
}
