package build

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arkadix/hostforge/executor"
	"github.com/arkadix/hostforge/fault"
)

func TestExtract(t *testing.T) {
	fake := executor.NewFake()
	tc := New(fake)

	require.NoError(t, tc.Extract(context.Background(), "/tmp/hostforge/openssl-1.1.1w.tar.gz", "/tmp/hostforge/src"))
	require.NotEmpty(t, fake.Commands)
	assert.Equal(t, "tar -xzf /tmp/hostforge/openssl-1.1.1w.tar.gz -C /tmp/hostforge/src", fake.Commands[0])
}

func TestConfigureRunsInsideSourceDir(t *testing.T) {
	fake := executor.NewFake()
	tc := New(fake)

	require.NoError(t, tc.Configure(context.Background(), "/src/openssl-1.1.1w", "./config --prefix=/usr/local/openssl shared zlib"))
	assert.Equal(t, "cd /src/openssl-1.1.1w && ./config --prefix=/usr/local/openssl shared zlib", fake.Commands[0])
	assert.Empty(t, fake.SudoCommands, "configure must not escalate")
}

func TestMakeUsesParallelismHint(t *testing.T) {
	fake := executor.NewFake()
	tc := New(fake)

	require.NoError(t, tc.Make(context.Background(), "/src/Python-3.11.11", 4))
	assert.Equal(t, "cd /src/Python-3.11.11 && make -j4", fake.Commands[0])

	require.NoError(t, tc.Make(context.Background(), "/src/Python-3.11.11", 0))
	assert.Equal(t, "cd /src/Python-3.11.11 && make -j1", fake.Commands[1], "parallelism is clamped to at least 1")
}

func TestMakeTargetEscalates(t *testing.T) {
	fake := executor.NewFake()
	tc := New(fake)

	require.NoError(t, tc.MakeTarget(context.Background(), "/src/Python-3.11.11", "altinstall"))
	require.Len(t, fake.SudoCommands, 1)
	assert.Equal(t, "cd /src/Python-3.11.11 && make altinstall", fake.SudoCommands[0])
}

func TestFailedMakeIsBuildFault(t *testing.T) {
	fake := executor.NewFake()
	fake.RespondTo("make -j", "", 2)
	err := New(fake).Make(context.Background(), "/src", 2)
	require.Error(t, err)
	assert.Equal(t, fault.KindBuild, fault.KindOf(err))
}

func TestLastLinesTruncation(t *testing.T) {
	assert.Equal(t, "d\ne", lastLines("a\nb\nc\nd\ne", 2))
	assert.Equal(t, "a", lastLines("a", 5))
}

func TestRegisterLibDir(t *testing.T) {
	fake := executor.NewFake()
	tc := New(fake)
	ctx := context.Background()

	registered, err := tc.LibDirRegistered(ctx, "openssl", "/usr/local/openssl/lib")
	require.NoError(t, err)
	assert.False(t, registered)

	require.NoError(t, tc.RegisterLibDir(ctx, "openssl", "/usr/local/openssl/lib"))
	assert.Equal(t, "/usr/local/openssl/lib\n", string(fake.FileContent("/etc/ld.so.conf.d/openssl.conf")))
	require.NotEmpty(t, fake.SudoCommands)
	assert.Equal(t, "ldconfig", fake.SudoCommands[0])

	registered, err = tc.LibDirRegistered(ctx, "openssl", "/usr/local/openssl/lib")
	require.NoError(t, err)
	assert.True(t, registered)
}
