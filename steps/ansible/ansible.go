// Package ansible installs Ansible through the versioned pip of the
// source-built Python.
package ansible

import (
	"context"
	"fmt"

	"github.com/arkadix/hostforge/fault"
	"github.com/arkadix/hostforge/step"
)

// InstallAnsible upgrades pip and installs the configured Ansible package.
type InstallAnsible struct {
	step.BaseStep
}

func New() *InstallAnsible {
	return &InstallAnsible{
		BaseStep: step.NewBaseStep("install-ansible", "Install Ansible via pip"),
	}
}

// Precondition is satisfied when ansible already resolves on the path.
func (s *InstallAnsible) Precondition(ctx context.Context) (bool, error) {
	return s.Runtime.Prober().CommandExists(ctx, "ansible")
}

func (s *InstallAnsible) Execute(ctx context.Context) error {
	pip := s.Runtime.Spec().Python.Pip()

	s.Logger.Infof("upgrading pip via %s", pip)
	if err := s.pipInstall(ctx, pip, "pip"); err != nil {
		return err
	}

	pkg := s.Runtime.Spec().Ansible.Package
	s.Logger.Infof("installing %s via %s", pkg, pip)
	return s.pipInstall(ctx, pip, pkg)
}

func (s *InstallAnsible) pipInstall(ctx context.Context, pip, pkg string) error {
	command := fmt.Sprintf("%s install --upgrade %s", pip, pkg)
	_, stderr, code, err := s.Runtime.Executor().SudoExecute(ctx, command)
	if err != nil {
		return fault.Wrapf(fault.KindPackageManager, err, "could not run %q", command)
	}
	if code != 0 {
		return fault.New(fault.KindPackageManager, "%q exited %d: %s", command, code, stderr)
	}
	return nil
}

// Postcondition verifies ansible resolves and answers a version probe.
func (s *InstallAnsible) Postcondition(ctx context.Context) (bool, error) {
	exists, err := s.Runtime.Prober().CommandExists(ctx, "ansible")
	if err != nil || !exists {
		return false, err
	}
	if _, err := s.Runtime.Prober().Version(ctx, "ansible --version"); err != nil {
		return false, nil
	}
	return true, nil
}
