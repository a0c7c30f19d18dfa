// Package openssl builds OpenSSL from source. CentOS 7 ships OpenSSL 1.0.2,
// which modern Python refuses to link against, so the sequence installs a
// newer release under its own prefix.
package openssl

import (
	"context"
	"fmt"
	"path"
	"path/filepath"

	"github.com/arkadix/hostforge/build"
	"github.com/arkadix/hostforge/download"
	"github.com/arkadix/hostforge/step"
)

// linkerConfName is the ld.so.conf.d entry owned by this step.
const linkerConfName = "openssl"

// BuildOpenSSL downloads, compiles and installs the configured OpenSSL
// release and registers its library directory with the dynamic linker.
type BuildOpenSSL struct {
	step.BaseStep
}

func New() *BuildOpenSSL {
	return &BuildOpenSSL{
		BaseStep: step.NewBaseStep("build-openssl", "Build and install OpenSSL from source"),
	}
}

func (s *BuildOpenSSL) binary() string {
	return filepath.Join(s.Runtime.Spec().OpenSSL.Prefix, "bin", "openssl")
}

func (s *BuildOpenSSL) libDir() string {
	return filepath.Join(s.Runtime.Spec().OpenSSL.Prefix, "lib")
}

// Precondition is satisfied when the installed binary already reports the
// target version.
func (s *BuildOpenSSL) Precondition(ctx context.Context) (bool, error) {
	spec := s.Runtime.Spec().OpenSSL
	return s.Runtime.Prober().VersionContains(ctx, s.binary()+" version", spec.Version)
}

func (s *BuildOpenSSL) Execute(ctx context.Context) error {
	spec := s.Runtime.Spec().OpenSSL
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

	srcDir := filepath.Join(workDir, "openssl-"+spec.Version)
	configure := fmt.Sprintf("./config --prefix=%s --openssldir=%s shared zlib", spec.Prefix, spec.Prefix)
	s.Logger.Infof("configuring openssl %s in %s", spec.Version, srcDir)
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
	if err := tc.MakeTarget(ctx, srcDir, "install"); err != nil {
		return err
	}

	s.Logger.Infof("registering %s with the dynamic linker", s.libDir())
	return tc.RegisterLibDir(ctx, linkerConfName, s.libDir())
}

// Postcondition verifies both the reported version and the linker
// registration, since a build that installs but is not in the linker path
// breaks the Python build downstream.
func (s *BuildOpenSSL) Postcondition(ctx context.Context) (bool, error) {
	spec := s.Runtime.Spec().OpenSSL
	ok, err := s.Runtime.Prober().VersionContains(ctx, s.binary()+" version", spec.Version)
	if err != nil || !ok {
		return false, err
	}
	return build.New(s.Runtime.Executor()).LibDirRegistered(ctx, linkerConfName, s.libDir())
}
