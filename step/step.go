// Package step defines the unit of provisioning work: a named action guarded
// by a precondition (skip when already satisfied) and verified by a
// postcondition.
package step

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/arkadix/hostforge/runtime"
)

// Step is a single named unit of provisioning work.
//
// Precondition and Postcondition are pure observations of host state. They
// must not mutate anything; all mutation belongs in Execute.
type Step interface {
	// Name returns the short identifier of the step.
	Name() string

	// Description returns a human-readable summary of what the step does.
	Description() string

	// Init stores the runtime and a scoped logger, and validates whatever
	// the step needs before the sequence starts.
	Init(rt runtime.Runtime, logger *logrus.Entry) error

	// Precondition reports whether the step's outcome is already in place.
	// True means Execute is skipped entirely.
	Precondition(ctx context.Context) (bool, error)

	// Execute performs the step's action. Errors should carry a fault.Kind.
	Execute(ctx context.Context) error

	// Postcondition verifies that Execute achieved the step's outcome.
	Postcondition(ctx context.Context) (bool, error)
}
