package step

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/arkadix/hostforge/common"
	"github.com/arkadix/hostforge/runtime"
)

// BaseStep provides common fields and default method implementations for
// steps. Concrete steps embed it and override Execute plus the conditions.
type BaseStep struct {
	NameField        string
	DescriptionField string
	Logger           *logrus.Entry
	Runtime          runtime.Runtime
}

// NewBaseStep initializes the common fields. Concrete steps call this in
// their own constructors.
func NewBaseStep(name, description string) BaseStep {
	return BaseStep{
		NameField:        name,
		DescriptionField: description,
	}
}

// Name returns the name of the step.
func (bs *BaseStep) Name() string {
	return bs.NameField
}

// Description returns the description of the step.
func (bs *BaseStep) Description() string {
	return bs.DescriptionField
}

// Init stores the runtime and scopes the logger to this step.
func (bs *BaseStep) Init(rt runtime.Runtime, logger *logrus.Entry) error {
	if rt == nil {
		return errors.Errorf("runtime cannot be nil for step %q", bs.NameField)
	}
	if logger == nil {
		logger = logrus.NewEntry(logrus.New())
	}
	bs.Logger = logger.WithField(common.LogFieldStep, bs.NameField)
	bs.Runtime = rt
	return nil
}

// Precondition defaults to false: the step always runs unless a concrete
// step knows how to detect prior completion.
func (bs *BaseStep) Precondition(ctx context.Context) (bool, error) {
	return false, nil
}

// Execute must be overridden by concrete steps.
func (bs *BaseStep) Execute(ctx context.Context) error {
	return errors.Errorf("Execute not implemented for step %q", bs.NameField)
}

// Postcondition defaults to true: steps without a dedicated verification
// succeed when their action returns no error.
func (bs *BaseStep) Postcondition(ctx context.Context) (bool, error) {
	return true, nil
}
