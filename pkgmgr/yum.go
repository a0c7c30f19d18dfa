// Package pkgmgr is a thin yum/rpm client over an Executor. All mutating
// operations go through sudo; probes (rpm -q) do not.
package pkgmgr

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/arkadix/hostforge/common"
	"github.com/arkadix/hostforge/config"
	"github.com/arkadix/hostforge/executor"
	"github.com/arkadix/hostforge/fault"
	"github.com/arkadix/hostforge/util"
)

const repoFileTpl = `[{{ .Name }}]
name={{ .Description }}
baseurl={{ .BaseURL }}
enabled={{ .Enabled }}
gpgcheck={{ .GPGCheck }}
{{- if .GPGKey }}
gpgkey={{ .GPGKey }}
{{- end }}
`

// Manager drives yum and rpm on the target host.
type Manager struct {
	exec executor.Executor
}

// NewYum creates a Manager over the given executor.
func NewYum(exec executor.Executor) *Manager {
	return &Manager{exec: exec}
}

func (m *Manager) sudo(ctx context.Context, command string) error {
	_, stderr, code, err := m.exec.SudoExecute(ctx, command)
	if err != nil {
		return fault.Wrapf(fault.KindPackageManager, err, "could not run %q", command)
	}
	if code != 0 {
		return fault.New(fault.KindPackageManager, "%q exited %d: %s", command, code, strings.TrimSpace(stderr))
	}
	return nil
}

// Install installs the given packages (yum install -y).
func (m *Manager) Install(ctx context.Context, packages ...string) error {
	if len(packages) == 0 {
		return nil
	}
	return m.sudo(ctx, "yum install -y "+strings.Join(packages, " "))
}

// Remove removes the given packages (yum remove -y).
func (m *Manager) Remove(ctx context.Context, packages ...string) error {
	if len(packages) == 0 {
		return nil
	}
	return m.sudo(ctx, "yum remove -y "+strings.Join(packages, " "))
}

// MakeCache refreshes the yum metadata cache.
func (m *Manager) MakeCache(ctx context.Context) error {
	return m.sudo(ctx, "yum makecache")
}

// Update applies all pending package updates (yum update -y).
func (m *Manager) Update(ctx context.Context) error {
	return m.sudo(ctx, "yum update -y")
}

// IsInstalled reports whether the named package is installed (rpm -q).
func (m *Manager) IsInstalled(ctx context.Context, pkg string) (bool, error) {
	_, _, code, err := m.exec.Execute(ctx, "rpm -q "+pkg)
	if err != nil {
		return false, fault.Wrapf(fault.KindPackageManager, err, "could not query package %s", pkg)
	}
	return code == 0, nil
}

// AllInstalled reports whether every named package is installed.
func (m *Manager) AllInstalled(ctx context.Context, packages ...string) (bool, error) {
	for _, pkg := range packages {
		ok, err := m.IsInstalled(ctx, pkg)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// RepoFilePath returns where the definition file for a repo is written.
func RepoFilePath(repo config.RepoSpec) string {
	return filepath.Join(common.YumRepoDir, fmt.Sprintf("%s.repo", repo.Name))
}

// RenderRepoFile renders the definition file body for a repo.
func RenderRepoFile(repo config.RepoSpec) (string, error) {
	enabled := 0
	if repo.IsEnabled() {
		enabled = 1
	}
	gpgcheck := 0
	if repo.GPGCheck {
		gpgcheck = 1
	}
	description := repo.Description
	if description == "" {
		description = repo.Name
	}
	body, err := util.RenderString(repoFileTpl, util.Data{
		"Name":        repo.Name,
		"Description": description,
		"BaseURL":     repo.BaseURL,
		"Enabled":     enabled,
		"GPGCheck":    gpgcheck,
		"GPGKey":      repo.GPGKey,
	})
	if err != nil {
		return "", fault.Wrapf(fault.KindPackageManager, err, "could not render repo file for %s", repo.Name)
	}
	return body, nil
}

// WriteRepoFile writes the repository definition to /etc/yum.repos.d.
func (m *Manager) WriteRepoFile(ctx context.Context, repo config.RepoSpec) error {
	body, err := RenderRepoFile(repo)
	if err != nil {
		return err
	}
	if err := m.exec.SudoWriteFile(ctx, RepoFilePath(repo), []byte(body), common.FileMode0644); err != nil {
		return fault.Wrapf(fault.KindPackageManager, err, "could not write repo file for %s", repo.Name)
	}
	return nil
}

// RepoFileMatches reports whether the repo definition on the host already has
// the desired content.
func (m *Manager) RepoFileMatches(ctx context.Context, repo config.RepoSpec) (bool, error) {
	want, err := RenderRepoFile(repo)
	if err != nil {
		return false, err
	}
	path := RepoFilePath(repo)
	exists, err := m.exec.FileExists(ctx, path)
	if err != nil || !exists {
		return false, err
	}
	got, err := m.exec.ReadFile(ctx, path)
	if err != nil {
		return false, fault.Wrapf(fault.KindPackageManager, err, "could not read repo file for %s", repo.Name)
	}
	return string(got) == want, nil
}
