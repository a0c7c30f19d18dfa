// Package executor abstracts command execution and file access on the target
// host. Steps never touch ambient host state directly; everything goes
// through an Executor so the sequence can run against the local machine, a
// remote host over SSH, or a fake in tests.
package executor

import (
	"context"
	"io/fs"
)

// Executor executes commands and manages files on a target system.
type Executor interface {
	// Execute runs a shell command on the target and returns stdout, stderr
	// and the exit code. A non-nil error means the command could not be run
	// at all; a non-zero exit code alone is not an error.
	Execute(ctx context.Context, command string) (stdout string, stderr string, exitCode int, err error)

	// SudoExecute runs a shell command with superuser privileges.
	SudoExecute(ctx context.Context, command string) (stdout string, stderr string, exitCode int, err error)

	// LookPath resolves a command name against the target's search path.
	// found is false when the command does not exist; err reports probe
	// failures only.
	LookPath(ctx context.Context, name string) (path string, found bool, err error)

	// FileExists reports whether path exists and is a regular file.
	FileExists(ctx context.Context, path string) (bool, error)

	// DirExists reports whether path exists and is a directory.
	DirExists(ctx context.Context, path string) (bool, error)

	// MkDirAll creates a directory tree on the target.
	MkDirAll(ctx context.Context, path string, mode fs.FileMode) error

	// WriteFile writes content to path on the target, creating parents as
	// needed, with the executor's own privileges.
	WriteFile(ctx context.Context, path string, content []byte, mode fs.FileMode) error

	// SudoWriteFile writes content to a path the login user may not own,
	// staging through a temporary file where escalation is needed.
	SudoWriteFile(ctx context.Context, path string, content []byte, mode fs.FileMode) error

	// ReadFile reads the file at path on the target.
	ReadFile(ctx context.Context, path string) ([]byte, error)

	// Remove deletes a path recursively on the target.
	Remove(ctx context.Context, path string) error
}
