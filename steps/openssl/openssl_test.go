package openssl

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arkadix/hostforge/config"
	"github.com/arkadix/hostforge/executor"
	"github.com/arkadix/hostforge/runtime"
)

func newRuntime(t *testing.T, fake *executor.Fake) runtime.Runtime {
	t.Helper()
	cfg := &config.Config{}
	config.SetDefaults(cfg)
	cfg.Spec.Parallelism = 2
	rt, err := runtime.New(runtime.Config{Executor: fake, Spec: &cfg.Spec})
	require.NoError(t, err)
	return rt
}

func TestPreconditionDetectsInstalledVersion(t *testing.T) {
	fake := executor.NewFake()
	fake.AddCommand("/usr/local/openssl/bin/openssl", "/usr/local/openssl/bin/openssl")
	fake.RespondTo("openssl version", "OpenSSL 1.1.1w  11 Sep 2023", 0)

	s := New()
	require.NoError(t, s.Init(newRuntime(t, fake), nil))

	satisfied, err := s.Precondition(context.Background())
	require.NoError(t, err)
	assert.True(t, satisfied)
}

func TestPreconditionFalseWhenBinaryAbsent(t *testing.T) {
	fake := executor.NewFake()
	s := New()
	require.NoError(t, s.Init(newRuntime(t, fake), nil))

	satisfied, err := s.Precondition(context.Background())
	require.NoError(t, err)
	assert.False(t, satisfied)
}

func TestExecuteRunsFullBuild(t *testing.T) {
	fake := executor.NewFake()
	// Tarball already downloaded, so the fetch is skipped.
	fake.AddFile("/tmp/hostforge/openssl-1.1.1w.tar.gz", []byte("tarball"))

	s := New()
	require.NoError(t, s.Init(newRuntime(t, fake), nil))

	require.NoError(t, s.Execute(context.Background()))

	joined := strings.Join(fake.Commands, "\n")
	assert.Contains(t, joined, "tar -xzf /tmp/hostforge/openssl-1.1.1w.tar.gz")
	assert.Contains(t, joined, "cd /tmp/hostforge/openssl-1.1.1w && ./config --prefix=/usr/local/openssl --openssldir=/usr/local/openssl shared zlib")
	assert.Contains(t, joined, "cd /tmp/hostforge/openssl-1.1.1w && make -j2")

	sudo := strings.Join(fake.SudoCommands, "\n")
	assert.Contains(t, sudo, "cd /tmp/hostforge/openssl-1.1.1w && make install")
	assert.Contains(t, sudo, "ldconfig")

	assert.Equal(t, "/usr/local/openssl/lib\n", string(fake.FileContent("/etc/ld.so.conf.d/openssl.conf")))
}
