package repos

import (
	"context"
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
	rt, err := runtime.New(runtime.Config{Executor: fake, Spec: &cfg.Spec})
	require.NoError(t, err)
	return rt
}

func TestPreconditionFalseOnFreshHost(t *testing.T) {
	fake := executor.NewFake()
	s := New()
	require.NoError(t, s.Init(newRuntime(t, fake), nil))

	satisfied, err := s.Precondition(context.Background())
	require.NoError(t, err)
	assert.False(t, satisfied)
}

func TestExecuteWritesRepoFilesAndRefreshesCache(t *testing.T) {
	fake := executor.NewFake()
	s := New()
	require.NoError(t, s.Init(newRuntime(t, fake), nil))

	require.NoError(t, s.Execute(context.Background()))

	base := string(fake.FileContent("/etc/yum.repos.d/base.repo"))
	assert.Contains(t, base, "[base]")
	assert.Contains(t, base, "baseurl=http://vault.centos.org/7.9.2009/os/$basearch/")
	assert.Contains(t, base, "gpgcheck=1")
	assert.True(t, fake.HasFile("/etc/yum.repos.d/epel.repo"))

	require.NotEmpty(t, fake.SudoCommands)
	assert.Equal(t, "yum makecache", fake.SudoCommands[len(fake.SudoCommands)-1])
}

func TestConditionsHoldAfterExecute(t *testing.T) {
	fake := executor.NewFake()
	s := New()
	require.NoError(t, s.Init(newRuntime(t, fake), nil))
	ctx := context.Background()

	require.NoError(t, s.Execute(ctx))

	satisfied, err := s.Precondition(ctx)
	require.NoError(t, err)
	assert.True(t, satisfied, "a second run would skip")

	verified, err := s.Postcondition(ctx)
	require.NoError(t, err)
	assert.True(t, verified)
}
