// Package connector establishes SSH connections to target hosts and exposes
// command execution plus SFTP file operations over them.
package connector

import (
	"context"
	"io/fs"
	"os"
	"time"
)

// Config holds everything needed to reach a host over SSH.
type Config struct {
	Username    string
	Password    string
	Address     string
	Port        int
	PrivateKey  string
	KeyFile     string
	AgentSocket string
	Timeout     time.Duration
}

// Connection is an established session against a single host.
type Connection interface {
	// Exec runs a command through a shell on the host. A non-zero exit code
	// is reported through exitCode, not err.
	Exec(ctx context.Context, cmd string) (stdout []byte, stderr []byte, exitCode int, err error)

	// WriteFile writes content to remotePath, creating parent directories.
	WriteFile(ctx context.Context, remotePath string, content []byte, mode fs.FileMode) error

	// ReadFile reads the file at remotePath.
	ReadFile(ctx context.Context, remotePath string) ([]byte, error)

	// Stat returns file info for remotePath.
	Stat(ctx context.Context, remotePath string) (os.FileInfo, error)

	// MkDirAll creates a directory tree on the host.
	MkDirAll(ctx context.Context, remotePath string, mode fs.FileMode) error

	// Remove deletes remotePath recursively.
	Remove(ctx context.Context, remotePath string) error

	Close() error
}
