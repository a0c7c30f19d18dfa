package executor

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	xfile "github.com/arkadix/hostforge/file"
)

// localExecutor implements Executor for the machine the process runs on.
type localExecutor struct {
	shell string
}

// NewLocalExecutor creates an Executor for local operations. Commands run
// through /bin/sh -c so compound commands (cd X && make) work.
func NewLocalExecutor() Executor {
	return &localExecutor{shell: "/bin/sh"}
}

func (l *localExecutor) run(ctx context.Context, command string) (string, string, int, error) {
	cmd := exec.CommandContext(ctx, l.shell, "-c", command)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return stdout.String(), stderr.String(), 0, nil
	}
	if exitErr, ok := err.(*exec.ExitError); ok {
		// Non-zero exit is reported through the code, not the error.
		return stdout.String(), stderr.String(), exitErr.ExitCode(), nil
	}
	return stdout.String(), stderr.String(), -1, fmt.Errorf("failed to run command %q: %w", command, err)
}

func (l *localExecutor) Execute(ctx context.Context, command string) (string, string, int, error) {
	if strings.TrimSpace(command) == "" {
		return "", "", 0, fmt.Errorf("empty command")
	}
	return l.run(ctx, command)
}

func (l *localExecutor) SudoExecute(ctx context.Context, command string) (string, string, int, error) {
	if strings.TrimSpace(command) == "" {
		return "", "", 0, fmt.Errorf("empty command")
	}
	if os.Geteuid() == 0 {
		// Already root, no need for a sudo round-trip.
		return l.run(ctx, command)
	}
	return l.run(ctx, sudoCommand(command))
}

func (l *localExecutor) LookPath(ctx context.Context, name string) (string, bool, error) {
	path, err := exec.LookPath(name)
	if err == nil {
		return path, true, nil
	}
	// A name without a slash misses with exec.ErrNotFound; an absolute path
	// (the version probes use those) misses with the stat fs.ErrNotExist,
	// both wrapped in *exec.Error.
	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	return "", false, err
}

func (l *localExecutor) FileExists(ctx context.Context, path string) (bool, error) {
	return xfile.FileExists(path)
}

func (l *localExecutor) DirExists(ctx context.Context, path string) (bool, error) {
	return xfile.IsDir(path)
}

func (l *localExecutor) MkDirAll(ctx context.Context, path string, mode fs.FileMode) error {
	return os.MkdirAll(path, mode)
}

func (l *localExecutor) WriteFile(ctx context.Context, path string, content []byte, mode fs.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create parent directory of %s: %w", path, err)
	}
	if err := os.WriteFile(path, content, mode); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	// WriteFile does not change the mode of a pre-existing file.
	return os.Chmod(path, mode)
}

func (l *localExecutor) SudoWriteFile(ctx context.Context, path string, content []byte, mode fs.FileMode) error {
	err := l.WriteFile(ctx, path, content, mode)
	if err == nil || os.Geteuid() == 0 || !errors.Is(err, fs.ErrPermission) {
		return err
	}

	// The direct write was denied; stage through a temp file and install it
	// with escalated privileges.
	tmp, err := os.CreateTemp("", "hostforge-*")
	if err != nil {
		return fmt.Errorf("failed to create staging file for %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to stage content for %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to stage content for %s: %w", path, err)
	}

	install := fmt.Sprintf("install -D -m %03o %s %s", mode.Perm(), tmp.Name(), path)
	_, stderr, code, err := l.run(ctx, sudoCommand(install))
	if err != nil {
		return err
	}
	if code != 0 {
		return fmt.Errorf("privileged write to %s exited %d: %s", path, code, strings.TrimSpace(stderr))
	}
	return nil
}

func (l *localExecutor) ReadFile(ctx context.Context, path string) ([]byte, error) {
	return os.ReadFile(path)
}

func (l *localExecutor) Remove(ctx context.Context, path string) error {
	return os.RemoveAll(path)
}
