// Package packages installs the build prerequisites for the source builds
// later in the sequence.
package packages

import (
	"context"

	"github.com/arkadix/hostforge/pkgmgr"
	"github.com/arkadix/hostforge/step"
)

// InstallPrerequisites installs the configured package list and, unless
// disabled, applies pending yum updates.
type InstallPrerequisites struct {
	step.BaseStep
}

func New() *InstallPrerequisites {
	return &InstallPrerequisites{
		BaseStep: step.NewBaseStep("install-packages", "Install build prerequisites and apply package updates"),
	}
}

func (s *InstallPrerequisites) yum() *pkgmgr.Manager {
	return pkgmgr.NewYum(s.Runtime.Executor())
}

// Precondition is satisfied when every prerequisite package is already
// installed. Updates are tied to the install: a host that has all
// prerequisites counts as provisioned and is not updated again.
func (s *InstallPrerequisites) Precondition(ctx context.Context) (bool, error) {
	return s.yum().AllInstalled(ctx, s.Runtime.Spec().Packages...)
}

func (s *InstallPrerequisites) Execute(ctx context.Context) error {
	spec := s.Runtime.Spec()
	yum := s.yum()

	s.Logger.Infof("installing %d prerequisite packages", len(spec.Packages))
	if err := yum.Install(ctx, spec.Packages...); err != nil {
		return err
	}

	if spec.ApplyUpdates != nil && *spec.ApplyUpdates {
		s.Logger.Info("applying pending package updates")
		if err := yum.Update(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (s *InstallPrerequisites) Postcondition(ctx context.Context) (bool, error) {
	return s.yum().AllInstalled(ctx, s.Runtime.Spec().Packages...)
}
