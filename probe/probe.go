// Package probe implements read-only observations of host state: command
// presence, version strings, and basic host facts. Preconditions and
// postconditions are built exclusively from probes, so they never mutate the
// target.
package probe

import (
	"context"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/arkadix/hostforge/cache"
	"github.com/arkadix/hostforge/common"
	"github.com/arkadix/hostforge/executor"
	"github.com/arkadix/hostforge/util"
)

// Prober runs observations against a target through its executor. Host facts
// are memoized for the lifetime of the prober; they do not change during a
// run.
type Prober struct {
	exec  executor.Executor
	facts *cache.Cache[string, string]
}

// New creates a Prober over the given executor.
func New(exec executor.Executor) *Prober {
	return &Prober{
		exec:  exec,
		facts: cache.New[string, string](),
	}
}

// CommandExists reports whether name resolves on the target's search path.
func (p *Prober) CommandExists(ctx context.Context, name string) (bool, error) {
	_, found, err := p.exec.LookPath(ctx, name)
	return found, err
}

// CommandPath resolves name on the target's search path.
func (p *Prober) CommandPath(ctx context.Context, name string) (string, bool, error) {
	return p.exec.LookPath(ctx, name)
}

// Version runs the given probe command (e.g. "python3.11 --version") and
// returns the first line of its combined output. Version banners commonly go
// to either stream, so both are considered.
func (p *Prober) Version(ctx context.Context, command string) (string, error) {
	stdout, stderr, code, err := p.exec.Execute(ctx, command)
	if err != nil {
		return "", errors.Wrapf(err, "version probe %q could not run", command)
	}
	if code != 0 {
		return "", errors.Errorf("version probe %q exited %d: %s", command, code, strings.TrimSpace(stderr))
	}
	out := util.FirstLine(stdout)
	if out == "" {
		out = util.FirstLine(stderr)
	}
	return out, nil
}

// VersionContains reports whether the output of the probe command contains
// want. A probe that cannot run at all (missing binary) reports false rather
// than an error, so preconditions on absent components read naturally.
func (p *Prober) VersionContains(ctx context.Context, command, want string) (bool, error) {
	fields := strings.Fields(command)
	if len(fields) > 0 {
		exists, err := p.CommandExists(ctx, fields[0])
		if err != nil {
			return false, err
		}
		if !exists {
			return false, nil
		}
	}
	line, err := p.Version(ctx, command)
	if err != nil {
		return false, err
	}
	return strings.Contains(line, want), nil
}

// FileExists reports whether path exists as a regular file on the target.
func (p *Prober) FileExists(ctx context.Context, path string) (bool, error) {
	return p.exec.FileExists(ctx, path)
}

// DirExists reports whether path exists as a directory on the target.
func (p *Prober) DirExists(ctx context.Context, path string) (bool, error) {
	return p.exec.DirExists(ctx, path)
}

// Facts describes the static identity of the target host.
type Facts struct {
	OSID      string // e.g. "centos"
	OSVersion string // e.g. "7"
	Arch      common.Arch
	CPUCount  int
}

const (
	factOSID      = "os_id"
	factOSVersion = "os_version"
	factArch      = "arch"
	factCPUCount  = "cpu_count"
)

// Facts gathers (and memoizes) host facts.
func (p *Prober) Facts(ctx context.Context) (*Facts, error) {
	osID, err := p.facts.GetOrCompute(factOSID, func() (string, error) {
		return p.osReleaseField(ctx, "ID")
	})
	if err != nil {
		return nil, err
	}
	osVersion, err := p.facts.GetOrCompute(factOSVersion, func() (string, error) {
		return p.osReleaseField(ctx, "VERSION_ID")
	})
	if err != nil {
		return nil, err
	}
	archRaw, err := p.facts.GetOrCompute(factArch, func() (string, error) {
		return p.commandFirstLine(ctx, "uname -m")
	})
	if err != nil {
		return nil, err
	}
	cpuRaw, err := p.facts.GetOrCompute(factCPUCount, func() (string, error) {
		return p.commandFirstLine(ctx, "nproc")
	})
	if err != nil {
		return nil, err
	}

	cpus, err := strconv.Atoi(cpuRaw)
	if err != nil || cpus < 1 {
		cpus = 1
	}

	return &Facts{
		OSID:      osID,
		OSVersion: osVersion,
		Arch:      common.NormalizeArch(archRaw),
		CPUCount:  cpus,
	}, nil
}

func (p *Prober) commandFirstLine(ctx context.Context, command string) (string, error) {
	stdout, stderr, code, err := p.exec.Execute(ctx, command)
	if err != nil {
		return "", errors.Wrapf(err, "fact probe %q could not run", command)
	}
	if code != 0 {
		return "", errors.Errorf("fact probe %q exited %d: %s", command, code, strings.TrimSpace(stderr))
	}
	return util.FirstLine(stdout), nil
}

func (p *Prober) osReleaseField(ctx context.Context, key string) (string, error) {
	content, err := p.exec.ReadFile(ctx, "/etc/os-release")
	if err != nil {
		return "", errors.Wrap(err, "failed to read /etc/os-release")
	}
	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, key+"=") {
			continue
		}
		val := strings.TrimPrefix(line, key+"=")
		return strings.Trim(val, `"`), nil
	}
	return "", errors.Errorf("field %s not present in /etc/os-release", key)
}
