package kfmt

import (
	"rvos/kernel"
	"rvos/kernel/sbi"
)

var (
	// shutdownFn is mocked by tests.
	shutdownFn = sbi.Shutdown

	errRuntimePanic = &kernel.Error{Module: "rt", Message: "unknown cause"}
)

// Panic outputs the supplied error (if not nil) to the console and requests
// a system reset from the environment. Calls to Panic never return. Any
// unrecoverable kernel condition, in particular exhaustion of the physical
// memory pool, funnels through here.
func Panic(e interface{}) {
	var err *kernel.Error

	switch t := e.(type) {
	case *kernel.Error:
		err = t
	case string:
		errRuntimePanic.Message = t
		err = errRuntimePanic
	case error:
		errRuntimePanic.Message = t.Error()
		err = errRuntimePanic
	}

	Printf("\n-----------------------------------\n")
	if err != nil {
		Printf("[%s] unrecoverable error: %s\n", err.Module, err.Message)
	}
	Printf("*** kernel panic: system halted ***")
	Printf("\n-----------------------------------\n")

	shutdownFn(sbi.ReasonSystemFailure)
}
