// Package build wraps the source build toolchain: archive extraction,
// configure, make with a parallelism hint, privileged install targets, and
// dynamic linker registration.
package build

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/arkadix/hostforge/common"
	"github.com/arkadix/hostforge/executor"
	"github.com/arkadix/hostforge/fault"
)

// Toolchain drives builds on the target host through its executor.
type Toolchain struct {
	exec executor.Executor
}

// New creates a Toolchain over the given executor.
func New(exec executor.Executor) *Toolchain {
	return &Toolchain{exec: exec}
}

func (t *Toolchain) run(ctx context.Context, command string, privileged bool) error {
	var stderr string
	var code int
	var err error
	if privileged {
		_, stderr, code, err = t.exec.SudoExecute(ctx, command)
	} else {
		_, stderr, code, err = t.exec.Execute(ctx, command)
	}
	if err != nil {
		return fault.Wrapf(fault.KindBuild, err, "could not run %q", command)
	}
	if code != 0 {
		return fault.New(fault.KindBuild, "%q exited %d: %s", command, code, lastLines(stderr, 5))
	}
	return nil
}

// lastLines keeps error output readable; a failed make prints thousands of
// lines and only the tail matters.
func lastLines(s string, n int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}

// Extract unpacks a gzipped tarball into destDir on the target.
func (t *Toolchain) Extract(ctx context.Context, archivePath, destDir string) error {
	if err := t.exec.MkDirAll(ctx, destDir, common.FileMode0755); err != nil {
		return fault.Wrapf(fault.KindBuild, err, "could not create extraction directory %s", destDir)
	}
	return t.run(ctx, fmt.Sprintf(common.UntarCmdTpl, archivePath, destDir), false)
}

// Configure runs the given configure invocation inside srcDir.
func (t *Toolchain) Configure(ctx context.Context, srcDir, configureCmd string) error {
	return t.run(ctx, fmt.Sprintf(common.ShellInDirCmdTpl, srcDir, configureCmd), false)
}

// Make compiles with the given parallelism inside srcDir.
func (t *Toolchain) Make(ctx context.Context, srcDir string, jobs int) error {
	if jobs < 1 {
		jobs = 1
	}
	return t.run(ctx, fmt.Sprintf(common.MakeCmdTpl, srcDir, jobs), false)
}

// MakeTarget runs a make target (install, altinstall) inside srcDir with
// privileges, since install prefixes are system paths.
func (t *Toolchain) MakeTarget(ctx context.Context, srcDir, target string) error {
	return t.run(ctx, fmt.Sprintf(common.MakeTargetCmdTpl, srcDir, target), true)
}

// LinkerConfPath returns the ld.so.conf.d file used for a component.
func LinkerConfPath(name string) string {
	return filepath.Join(common.LdSoConfDir, name+".conf")
}

// RegisterLibDir writes a dynamic linker path file for libDir and refreshes
// the linker cache.
func (t *Toolchain) RegisterLibDir(ctx context.Context, name, libDir string) error {
	path := LinkerConfPath(name)
	if err := t.exec.SudoWriteFile(ctx, path, []byte(libDir+"\n"), common.FileMode0644); err != nil {
		return fault.Wrapf(fault.KindBuild, err, "could not write linker config %s", path)
	}
	return t.run(ctx, "ldconfig", true)
}

// LibDirRegistered reports whether the linker path file for name already
// names libDir.
func (t *Toolchain) LibDirRegistered(ctx context.Context, name, libDir string) (bool, error) {
	path := LinkerConfPath(name)
	exists, err := t.exec.FileExists(ctx, path)
	if err != nil || !exists {
		return false, err
	}
	content, err := t.exec.ReadFile(ctx, path)
	if err != nil {
		return false, fault.Wrapf(fault.KindBuild, err, "could not read linker config %s", path)
	}
	return strings.TrimSpace(string(content)) == libDir, nil
}
