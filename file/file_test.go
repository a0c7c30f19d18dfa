package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathExists(t *testing.T) {
	dir := t.TempDir()

	ok, err := PathExists(dir)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = PathExists(filepath.Join(dir, "nope"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileExistsDistinguishesDirs(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	ok, err := FileExists(path)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = FileExists(dir)
	require.NoError(t, err)
	assert.False(t, ok, "a directory is not a file")
}

func TestCreateDir(t *testing.T) {
	dir := t.TempDir()
	nested := filepath.Join(dir, "a", "b", "c")

	require.NoError(t, CreateDir(nested))
	isDir, err := IsDir(nested)
	require.NoError(t, err)
	assert.True(t, isDir)

	// Idempotent on an existing directory.
	require.NoError(t, CreateDir(nested))

	// Refuses to treat a regular file as a directory.
	f := filepath.Join(dir, "occupied")
	require.NoError(t, os.WriteFile(f, []byte("x"), 0644))
	assert.Error(t, CreateDir(f))
}
