package python

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

func newRuntime(t *testing.T, fake *executor.Fake, mutate func(*config.Spec)) runtime.Runtime {
	t.Helper()
	cfg := &config.Config{}
	config.SetDefaults(cfg)
	cfg.Spec.Parallelism = 2
	if mutate != nil {
		mutate(&cfg.Spec)
	}
	rt, err := runtime.New(runtime.Config{Executor: fake, Spec: &cfg.Spec})
	require.NoError(t, err)
	return rt
}

func TestPreconditionSkipsWhenInterpreterAtTargetVersion(t *testing.T) {
	fake := executor.NewFake()
	fake.AddCommand("python3.11", "/usr/local/bin/python3.11")
	fake.RespondTo("python3.11 --version", "Python 3.11.11", 0)

	s := New()
	require.NoError(t, s.Init(newRuntime(t, fake, nil), nil))

	satisfied, err := s.Precondition(context.Background())
	require.NoError(t, err)
	assert.True(t, satisfied)
}

func TestPreconditionIgnoresOlderInterpreter(t *testing.T) {
	fake := executor.NewFake()
	fake.AddCommand("python3.11", "/usr/local/bin/python3.11")
	fake.RespondTo("python3.11 --version", "Python 3.11.4", 0)

	s := New()
	require.NoError(t, s.Init(newRuntime(t, fake, nil), nil))

	satisfied, err := s.Precondition(context.Background())
	require.NoError(t, err)
	assert.False(t, satisfied)
}

func TestAlwaysRebuildOverridesProbe(t *testing.T) {
	fake := executor.NewFake()
	fake.AddCommand("python3.11", "/usr/local/bin/python3.11")
	fake.RespondTo("python3.11 --version", "Python 3.11.11", 0)

	s := New()
	rt := newRuntime(t, fake, func(spec *config.Spec) {
		spec.Python.AlwaysRebuild = true
	})
	require.NoError(t, s.Init(rt, nil))

	satisfied, err := s.Precondition(context.Background())
	require.NoError(t, err)
	assert.False(t, satisfied)
}

func TestExecuteRunsFullBuild(t *testing.T) {
	fake := executor.NewFake()
	fake.AddFile("/tmp/hostforge/Python-3.11.11.tgz", []byte("tarball"))

	s := New()
	require.NoError(t, s.Init(newRuntime(t, fake, nil), nil))

	require.NoError(t, s.Execute(context.Background()))

	joined := strings.Join(fake.Commands, "\n")
	assert.Contains(t, joined, "tar -xzf /tmp/hostforge/Python-3.11.11.tgz")
	assert.Contains(t, joined, "cd /tmp/hostforge/Python-3.11.11 && ./configure --prefix=/usr/local/python3 --with-openssl=/usr/local/openssl --enable-optimizations")
	assert.Contains(t, joined, "cd /tmp/hostforge/Python-3.11.11 && make -j2")

	sudo := strings.Join(fake.SudoCommands, "\n")
	assert.Contains(t, sudo, "cd /tmp/hostforge/Python-3.11.11 && make altinstall")
	assert.NotContains(t, sudo, "make install", "altinstall must be used so the system python survives")
	assert.Contains(t, sudo, "ln -sf /usr/local/python3/bin/python3.11 /usr/local/bin/python3.11")
	assert.Contains(t, sudo, "ln -sf /usr/local/python3/bin/pip3.11 /usr/local/bin/pip3.11")

	assert.Equal(t, "/usr/local/python3/lib\n", string(fake.FileContent("/etc/ld.so.conf.d/python3.conf")))
}
