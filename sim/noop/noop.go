// Package noop is a sim.Runtime that treats every host call as
// returning zero unchanged, mirroring sheens' interpreters/noop.
// Interpreter. It exists for tests and for backend.Descriptor
// round-trip checks that don't exercise Call.arbitrary/span semantics.
package noop

import (
	"context"
	"log"

	"github.com/loomlang/loom/sim"
)

var _ sim.Runtime = (*Runtime)(nil)

// Runtime answers every Arbitrary/Span call with 0, optionally
// logging that it was asked to.
type Runtime struct {
	// Silent, if false, logs a warning on every call, matching
	// sheens' noop.Interpreter.
	Silent bool
}

// NewRuntime makes a silent Runtime.
func NewRuntime() *Runtime {
	return &Runtime{Silent: true}
}

func (r *Runtime) Arbitrary(ctx context.Context, ix int, args []uint64) (uint64, error) {
	if !r.Silent {
		log.Printf("sim/noop: arbitrary call %d ignored", ix)
	}
	return 0, nil
}

func (r *Runtime) Span(ctx context.Context, name string, start, end int, buf []byte) (uint64, error) {
	if !r.Silent {
		log.Printf("sim/noop: span callback %q ignored", name)
	}
	return 0, nil
}
