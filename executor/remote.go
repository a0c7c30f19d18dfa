package executor

import (
	"context"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/arkadix/hostforge/connector"
)

// remoteExecutor implements Executor on top of an established SSH connection.
type remoteExecutor struct {
	conn connector.Connection
}

// NewRemoteExecutor creates an Executor that runs everything on the host
// behind the given connection.
func NewRemoteExecutor(conn connector.Connection) Executor {
	return &remoteExecutor{conn: conn}
}

func (r *remoteExecutor) Execute(ctx context.Context, command string) (string, string, int, error) {
	stdout, stderr, code, err := r.conn.Exec(ctx, command)
	return string(stdout), string(stderr), code, err
}

func (r *remoteExecutor) SudoExecute(ctx context.Context, command string) (string, string, int, error) {
	stdout, stderr, code, err := r.conn.Exec(ctx, sudoCommand(command))
	return string(stdout), string(stderr), code, err
}

func (r *remoteExecutor) LookPath(ctx context.Context, name string) (string, bool, error) {
	stdout, _, code, err := r.conn.Exec(ctx, fmt.Sprintf("command -v %s", name))
	if err != nil {
		return "", false, errors.Wrapf(err, "failed to probe for command %s", name)
	}
	if code != 0 {
		return "", false, nil
	}
	return strings.TrimSpace(string(stdout)), true, nil
}

func (r *remoteExecutor) FileExists(ctx context.Context, path string) (bool, error) {
	info, err := r.conn.Stat(ctx, path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return info.Mode().IsRegular(), nil
}

func (r *remoteExecutor) DirExists(ctx context.Context, path string) (bool, error) {
	info, err := r.conn.Stat(ctx, path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return info.IsDir(), nil
}

func (r *remoteExecutor) MkDirAll(ctx context.Context, path string, mode fs.FileMode) error {
	return r.conn.MkDirAll(ctx, path, mode)
}

func (r *remoteExecutor) WriteFile(ctx context.Context, path string, content []byte, mode fs.FileMode) error {
	return r.conn.WriteFile(ctx, path, content, mode)
}

func (r *remoteExecutor) SudoWriteFile(ctx context.Context, path string, content []byte, mode fs.FileMode) error {
	// SFTP runs as the login user, so system paths go through a staged
	// upload plus a privileged install.
	tmp := fmt.Sprintf("/tmp/hostforge-upload-%d", time.Now().UnixNano())
	if err := r.conn.WriteFile(ctx, tmp, content, 0600); err != nil {
		return errors.Wrapf(err, "failed to stage upload for %s", path)
	}
	defer func() { _ = r.conn.Remove(ctx, tmp) }()

	install := fmt.Sprintf("install -D -m %03o %s %s", mode.Perm(), tmp, path)
	_, stderr, code, err := r.SudoExecute(ctx, install)
	if err != nil {
		return err
	}
	if code != 0 {
		return errors.Errorf("privileged write to %s exited %d: %s", path, code, strings.TrimSpace(stderr))
	}
	return nil
}

func (r *remoteExecutor) ReadFile(ctx context.Context, path string) ([]byte, error) {
	return r.conn.ReadFile(ctx, path)
}

func (r *remoteExecutor) Remove(ctx context.Context, path string) error {
	return r.conn.Remove(ctx, path)
}
