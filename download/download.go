// Package download fetches release tarballs onto the target host. Fetches
// are idempotent: an already-present file (with a matching checksum, when one
// is configured) is never downloaded again.
package download

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/arkadix/hostforge/common"
	"github.com/arkadix/hostforge/executor"
	"github.com/arkadix/hostforge/fault"
)

// Downloader fetches URLs to files on the target host. The transfer runs on
// the target itself (curl or wget), so remote provisioning does not funnel
// tarballs through the control machine.
type Downloader struct {
	exec executor.Executor
}

// New creates a Downloader over the given executor.
func New(exec executor.Executor) *Downloader {
	return &Downloader{exec: exec}
}

// Fetch downloads url to destPath. When the file already exists (and matches
// sha256, if given) nothing is transferred and skipped is true. Partial
// downloads never land on destPath; the transfer goes to a .part file that is
// renamed only on success.
func (d *Downloader) Fetch(ctx context.Context, url, destPath, sha256 string) (skipped bool, err error) {
	exists, err := d.exec.FileExists(ctx, destPath)
	if err != nil {
		return false, fault.Wrapf(fault.KindDownload, err, "could not check for existing file %s", destPath)
	}
	if exists {
		if sha256 == "" {
			return true, nil
		}
		ok, err := d.verify(ctx, destPath, sha256)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
		// Stale or corrupt; fetch again.
		if err := d.exec.Remove(ctx, destPath); err != nil {
			return false, fault.Wrapf(fault.KindDownload, err, "could not remove stale file %s", destPath)
		}
	}

	if err := d.exec.MkDirAll(ctx, filepath.Dir(destPath), common.FileMode0755); err != nil {
		return false, fault.Wrapf(fault.KindDownload, err, "could not create download directory for %s", destPath)
	}

	fetchCmd, err := d.fetchCommand(ctx, url, destPath+".part")
	if err != nil {
		return false, err
	}
	_, stderr, code, err := d.exec.Execute(ctx, fetchCmd)
	if err != nil {
		return false, fault.Wrapf(fault.KindDownload, err, "could not run downloader for %s", url)
	}
	if code != 0 {
		_ = d.exec.Remove(ctx, destPath+".part")
		return false, fault.New(fault.KindDownload, "download of %s exited %d: %s", url, code, strings.TrimSpace(stderr))
	}

	if _, stderr, code, err = d.exec.Execute(ctx, fmt.Sprintf("mv -f %s %s", destPath+".part", destPath)); err != nil {
		return false, fault.Wrapf(fault.KindDownload, err, "could not move download into place at %s", destPath)
	} else if code != 0 {
		return false, fault.New(fault.KindDownload, "moving download into place at %s exited %d: %s", destPath, code, strings.TrimSpace(stderr))
	}

	if sha256 != "" {
		ok, err := d.verify(ctx, destPath, sha256)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, fault.New(fault.KindDownload, "checksum mismatch for %s", destPath)
		}
	}
	return false, nil
}

// fetchCommand picks curl or wget, whichever the host has.
func (d *Downloader) fetchCommand(ctx context.Context, url, dest string) (string, error) {
	if _, found, err := d.exec.LookPath(ctx, "curl"); err == nil && found {
		return fmt.Sprintf("curl -fsSL -o %s %s", dest, url), nil
	}
	if _, found, err := d.exec.LookPath(ctx, "wget"); err == nil && found {
		return fmt.Sprintf("wget -q -O %s %s", dest, url), nil
	}
	return "", fault.New(fault.KindDownload, "neither curl nor wget is available on the target")
}

func (d *Downloader) verify(ctx context.Context, path, want string) (bool, error) {
	stdout, stderr, code, err := d.exec.Execute(ctx, "sha256sum "+path)
	if err != nil {
		return false, fault.Wrapf(fault.KindDownload, err, "could not hash %s", path)
	}
	if code != 0 {
		return false, fault.New(fault.KindDownload, "hashing %s exited %d: %s", path, code, strings.TrimSpace(stderr))
	}
	fields := strings.Fields(stdout)
	if len(fields) == 0 {
		return false, fault.New(fault.KindDownload, "unexpected sha256sum output for %s", path)
	}
	return strings.EqualFold(fields[0], want), nil
}
