package executor

import (
	"context"
	"fmt"
	"io/fs"
	"strings"
	"sync"
)

// Fake is an in-memory Executor for tests. Commands are matched against
// registered responders by substring; unmatched commands succeed with empty
// output. Files live in an in-memory map. It is safe for concurrent use.
type Fake struct {
	mu sync.Mutex

	// Commands records every command passed to Execute or SudoExecute, in
	// order.
	Commands []string
	// SudoCommands records only the privileged ones.
	SudoCommands []string

	responders []fakeResponder
	files      map[string][]byte
	dirs       map[string]bool
	paths      map[string]string // command name -> resolved path
}

type fakeResponder struct {
	substr   string
	stdout   string
	stderr   string
	exitCode int
	err      error
}

// NewFake creates an empty fake executor.
func NewFake() *Fake {
	return &Fake{
		files: make(map[string][]byte),
		dirs:  make(map[string]bool),
		paths: make(map[string]string),
	}
}

// RespondTo makes any command containing substr return the given output and
// exit code. Responders are matched in registration order.
func (f *Fake) RespondTo(substr, stdout string, exitCode int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responders = append(f.responders, fakeResponder{substr: substr, stdout: stdout, exitCode: exitCode})
}

// FailWith makes any command containing substr return err (command could not
// be run at all).
func (f *Fake) FailWith(substr string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responders = append(f.responders, fakeResponder{substr: substr, err: err})
}

// AddCommand registers a command name as present on the fake's search path.
func (f *Fake) AddCommand(name, path string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paths[name] = path
}

// AddFile seeds a file into the fake filesystem.
func (f *Fake) AddFile(path string, content []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.files[path] = content
}

// HasFile reports whether the fake filesystem holds path.
func (f *Fake) HasFile(path string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.files[path]
	return ok
}

// FileContent returns the content of path in the fake filesystem.
func (f *Fake) FileContent(path string) []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.files[path]
}

func (f *Fake) dispatch(command string) (string, string, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.responders {
		if strings.Contains(command, r.substr) {
			return r.stdout, r.stderr, r.exitCode, r.err
		}
	}
	return "", "", 0, nil
}

func (f *Fake) Execute(ctx context.Context, command string) (string, string, int, error) {
	f.mu.Lock()
	f.Commands = append(f.Commands, command)
	f.mu.Unlock()
	return f.dispatch(command)
}

func (f *Fake) SudoExecute(ctx context.Context, command string) (string, string, int, error) {
	f.mu.Lock()
	f.Commands = append(f.Commands, command)
	f.SudoCommands = append(f.SudoCommands, command)
	f.mu.Unlock()
	return f.dispatch(command)
}

func (f *Fake) LookPath(ctx context.Context, name string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	path, ok := f.paths[name]
	return path, ok, nil
}

func (f *Fake) FileExists(ctx context.Context, path string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.files[path]
	return ok, nil
}

func (f *Fake) DirExists(ctx context.Context, path string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.dirs[path], nil
}

func (f *Fake) MkDirAll(ctx context.Context, path string, mode fs.FileMode) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dirs[path] = true
	return nil
}

func (f *Fake) WriteFile(ctx context.Context, path string, content []byte, mode fs.FileMode) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.files[path] = content
	return nil
}

func (f *Fake) SudoWriteFile(ctx context.Context, path string, content []byte, mode fs.FileMode) error {
	return f.WriteFile(ctx, path, content, mode)
}

func (f *Fake) ReadFile(ctx context.Context, path string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	content, ok := f.files[path]
	if !ok {
		return nil, fmt.Errorf("file %s not found", path)
	}
	return content, nil
}

func (f *Fake) Remove(ctx context.Context, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.files, path)
	delete(f.dirs, path)
	return nil
}

var _ Executor = (*Fake)(nil)
