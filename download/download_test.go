package download

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arkadix/hostforge/executor"
	"github.com/arkadix/hostforge/fault"
)

const (
	tarballURL  = "https://www.openssl.org/source/openssl-1.1.1w.tar.gz"
	tarballPath = "/tmp/hostforge/openssl-1.1.1w.tar.gz"
)

func TestFetchSkipsExistingFile(t *testing.T) {
	fake := executor.NewFake()
	fake.AddFile(tarballPath, []byte("tarball"))

	skipped, err := New(fake).Fetch(context.Background(), tarballURL, tarballPath, "")
	require.NoError(t, err)
	assert.True(t, skipped)
	assert.Empty(t, fake.Commands, "no command may run when the file exists")
}

func TestFetchUsesCurlWhenAvailable(t *testing.T) {
	fake := executor.NewFake()
	fake.AddCommand("curl", "/usr/bin/curl")

	skipped, err := New(fake).Fetch(context.Background(), tarballURL, tarballPath, "")
	require.NoError(t, err)
	assert.False(t, skipped)
	require.NotEmpty(t, fake.Commands)
	assert.Contains(t, fake.Commands[0], "curl -fsSL -o "+tarballPath+".part")
	assert.Contains(t, fake.Commands[1], "mv -f "+tarballPath+".part "+tarballPath)
}

func TestFetchFallsBackToWget(t *testing.T) {
	fake := executor.NewFake()
	fake.AddCommand("wget", "/usr/bin/wget")

	_, err := New(fake).Fetch(context.Background(), tarballURL, tarballPath, "")
	require.NoError(t, err)
	assert.Contains(t, fake.Commands[0], "wget -q -O")
}

func TestFetchWithoutAnyDownloaderFails(t *testing.T) {
	fake := executor.NewFake()
	_, err := New(fake).Fetch(context.Background(), tarballURL, tarballPath, "")
	require.Error(t, err)
	assert.Equal(t, fault.KindDownload, fault.KindOf(err))
}

func TestFetchNetworkFailureIsDownloadFault(t *testing.T) {
	fake := executor.NewFake()
	fake.AddCommand("curl", "/usr/bin/curl")
	fake.RespondTo("curl", "", 6) // curl: could not resolve host

	_, err := New(fake).Fetch(context.Background(), tarballURL, tarballPath, "")
	require.Error(t, err)
	assert.Equal(t, fault.KindDownload, fault.KindOf(err))

	// The partial file is cleaned up.
	for _, cmd := range fake.Commands {
		if strings.Contains(cmd, "mv -f") {
			t.Fatalf("partial download must not be moved into place, got %q", cmd)
		}
	}
}

func TestFetchVerifiesChecksum(t *testing.T) {
	sum := "aaaabbbbccccddddaaaabbbbccccddddaaaabbbbccccddddaaaabbbbccccdddd"
	fake := executor.NewFake()
	fake.AddCommand("curl", "/usr/bin/curl")
	fake.RespondTo("sha256sum", sum+"  "+tarballPath, 0)

	skipped, err := New(fake).Fetch(context.Background(), tarballURL, tarballPath, sum)
	require.NoError(t, err)
	assert.False(t, skipped)
}

func TestFetchChecksumMismatchIsDownloadFault(t *testing.T) {
	fake := executor.NewFake()
	fake.AddCommand("curl", "/usr/bin/curl")
	fake.RespondTo("sha256sum", "0000000000000000000000000000000000000000000000000000000000000000  "+tarballPath, 0)

	_, err := New(fake).Fetch(context.Background(), tarballURL, tarballPath, "ffff")
	require.Error(t, err)
	assert.Equal(t, fault.KindDownload, fault.KindOf(err))
}

func TestFetchExistingFileWithMatchingChecksumSkips(t *testing.T) {
	sum := "aaaabbbbccccddddaaaabbbbccccddddaaaabbbbccccddddaaaabbbbccccdddd"
	fake := executor.NewFake()
	fake.AddCommand("curl", "/usr/bin/curl")
	fake.AddFile(tarballPath, []byte("tarball"))
	fake.RespondTo("sha256sum", sum+"  "+tarballPath, 0)

	skipped, err := New(fake).Fetch(context.Background(), tarballURL, tarballPath, sum)
	require.NoError(t, err)
	assert.True(t, skipped)
}

func TestFetchExistingFileWithStaleChecksumIsRefetched(t *testing.T) {
	sum := "aaaabbbbccccddddaaaabbbbccccddddaaaabbbbccccddddaaaabbbbccccdddd"
	fake := executor.NewFake()
	fake.AddCommand("curl", "/usr/bin/curl")
	fake.AddFile(tarballPath, []byte("truncated"))
	// The fake always reports the same (wrong) hash, so the refetch runs
	// and the final verification reports a mismatch.
	fake.RespondTo("sha256sum", "0000000000000000000000000000000000000000000000000000000000000000  "+tarballPath, 0)

	_, err := New(fake).Fetch(context.Background(), tarballURL, tarballPath, sum)
	require.Error(t, err)
	assert.Equal(t, fault.KindDownload, fault.KindOf(err))

	refetched := false
	for _, cmd := range fake.Commands {
		if strings.Contains(cmd, "curl -fsSL") {
			refetched = true
		}
	}
	assert.True(t, refetched, "a stale file must be downloaded again")
}
