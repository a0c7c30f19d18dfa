// Package repos writes the yum repository definitions the rest of the
// sequence depends on. CentOS 7 mirrors were retired, so the default
// definitions point at vault.centos.org and the EPEL archive.
package repos

import (
	"context"

	"github.com/arkadix/hostforge/pkgmgr"
	"github.com/arkadix/hostforge/step"
)

// ConfigureRepos ensures every configured repository definition is present in
// /etc/yum.repos.d and refreshes the yum metadata cache afterwards.
type ConfigureRepos struct {
	step.BaseStep
}

func New() *ConfigureRepos {
	return &ConfigureRepos{
		BaseStep: step.NewBaseStep("configure-repos", "Write yum repository definitions and refresh the package cache"),
	}
}

func (s *ConfigureRepos) yum() *pkgmgr.Manager {
	return pkgmgr.NewYum(s.Runtime.Executor())
}

// Precondition is satisfied when every repo file on the host already has the
// desired content.
func (s *ConfigureRepos) Precondition(ctx context.Context) (bool, error) {
	yum := s.yum()
	for _, repo := range s.Runtime.Spec().Repos {
		ok, err := yum.RepoFileMatches(ctx, repo)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func (s *ConfigureRepos) Execute(ctx context.Context) error {
	yum := s.yum()
	for _, repo := range s.Runtime.Spec().Repos {
		s.Logger.Infof("writing repo definition %s", pkgmgr.RepoFilePath(repo))
		if err := yum.WriteRepoFile(ctx, repo); err != nil {
			return err
		}
	}
	s.Logger.Info("refreshing yum metadata cache")
	return yum.MakeCache(ctx)
}

func (s *ConfigureRepos) Postcondition(ctx context.Context) (bool, error) {
	return s.Precondition(ctx)
}
