// Package python builds CPython from source against the freshly built
// OpenSSL and installs it via make altinstall so the system python stays
// untouched.
package python

import (
	"context"
	"fmt"
	"path"
	"path/filepath"

	"github.com/arkadix/hostforge/build"
	"github.com/arkadix/hostforge/common"
	"github.com/arkadix/hostforge/download"
	"github.com/arkadix/hostforge/fault"
	"github.com/arkadix/hostforge/step"
)

const linkerConfName = "python3"

// BuildPython downloads, compiles and installs the configured CPython
// release, then links the versioned interpreter and pip into /usr/local/bin.
type BuildPython struct {
	step.BaseStep
}

func New() *BuildPython {
	return &BuildPython{
		BaseStep: step.NewBaseStep("build-python", "Build and install Python from source against the local OpenSSL"),
	}
}

// Precondition treats an interpreter of the target version on the path as
// proof of prior completion; alwaysRebuild in the config overrides that.
func (s *BuildPython) Precondition(ctx context.Context) (bool, error) {
	spec := s.Runtime.Spec().Python
	if spec.AlwaysRebuild {
		return false, nil
	}
	return s.Runtime.Prober().VersionContains(ctx, spec.Interpreter()+" --version", spec.Version)
}

func (s *BuildPython) Execute(ctx context.Context) error {
	spec := s.Runtime.Spec().Python
	workDir := s.Runtime.WorkDir()
	tc := build.New(s.Runtime.Executor())

	archive := filepath.Join(workDir, path.Base(spec.URL))
	skipped, err := download.New(s.Runtime.Executor()).Fetch(ctx, spec.URL, archive, spec.SHA256)
	if err != nil {
		return err
	}
	if skipped {
		s.Logger.Infof("reusing existing tarball %s", archive)
	}

	if err := tc.Extract(ctx, archive, workDir); err != nil {
		return err
	}

	srcDir := filepath.Join(workDir, "Python-"+spec.Version)
	configure := fmt.Sprintf("./configure --prefix=%s --with-openssl=%s --enable-optimizations",
		spec.Prefix, s.Runtime.Spec().OpenSSL.Prefix)
	s.Logger.Infof("configuring python %s in %s", spec.Version, srcDir)
	if err := tc.Configure(ctx, srcDir, configure); err != nil {
		return err
	}

	jobs, err := build.Jobs(ctx, s.Runtime.Spec().Parallelism, s.Runtime.Prober())
	if err != nil {
		return err
	}
	s.Logger.Infof("compiling with make -j%d", jobs)
	if err := tc.Make(ctx, srcDir, jobs); err != nil {
		return err
	}
	// altinstall keeps /usr/bin/python (yum depends on it) out of the way.
	if err := tc.MakeTarget(ctx, srcDir, "altinstall"); err != nil {
		return err
	}

	if err := tc.RegisterLibDir(ctx, linkerConfName, filepath.Join(spec.Prefix, "lib")); err != nil {
		return err
	}

	for _, name := range []string{spec.Interpreter(), spec.Pip()} {
		if err := s.link(ctx, filepath.Join(spec.Prefix, "bin", name), filepath.Join("/usr/local/bin", name)); err != nil {
			return err
		}
	}
	return nil
}

func (s *BuildPython) link(ctx context.Context, target, linkName string) error {
	command := fmt.Sprintf(common.SymlinkCmdTpl, target, linkName)
	_, stderr, code, err := s.Runtime.Executor().SudoExecute(ctx, command)
	if err != nil {
		return fault.Wrapf(fault.KindBuild, err, "could not link %s", linkName)
	}
	if code != 0 {
		return fault.New(fault.KindBuild, "%q exited %d: %s", command, code, stderr)
	}
	return nil
}

func (s *BuildPython) Postcondition(ctx context.Context) (bool, error) {
	spec := s.Runtime.Spec().Python
	return s.Runtime.Prober().VersionContains(ctx, spec.Interpreter()+" --version", spec.Version)
}
