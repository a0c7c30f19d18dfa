package common

import (
	"io/fs"
	"path/filepath"
)

const (
	AppName    = "hostforge"
	TmpDirBase = "/tmp/"
)

// GetTmpDir returns the scratch directory used for downloads and source trees.
func GetTmpDir() string {
	return filepath.Join(TmpDirBase, AppName) + "/"
}

// Logger field names shared across packages so log output stays sortable.
const (
	LogFieldApp      = "app"
	LogFieldRunID    = "run_id"
	LogFieldSequence = "sequence"
	LogFieldStep     = "step"
	LogFieldPhase    = "phase"
	LogFieldHost     = "host"
)

const (
	// FileMode0755 represents rwxr-xr-x
	FileMode0755 fs.FileMode = 0755
	// FileMode0644 represents rw-r--r--
	FileMode0644 fs.FileMode = 0644
	// FileMode0600 represents rw-------
	FileMode0600 fs.FileMode = 0600
	// FileMode0700 represents rwx------
	FileMode0700 fs.FileMode = 0700
)

const (
	// UntarCmdTpl extracts a gzipped tarball into a destination directory.
	// Example: fmt.Sprintf(UntarCmdTpl, archive, destDir)
	UntarCmdTpl = "tar -xzf %s -C %s"
	// RemoveCmdTpl removes a path recursively.
	RemoveCmdTpl = "rm -rf %s"
	// ShellInDirCmdTpl runs an arbitrary command inside a directory.
	// Example: fmt.Sprintf(ShellInDirCmdTpl, srcDir, "./configure --prefix=/usr/local")
	ShellInDirCmdTpl = "cd %s && %s"
	// MakeCmdTpl runs make with a parallelism hint inside a source directory.
	// Example: fmt.Sprintf(MakeCmdTpl, srcDir, 4)
	MakeCmdTpl = "cd %s && make -j%d"
	// MakeTargetCmdTpl runs a specific make target inside a source directory.
	// Example: fmt.Sprintf(MakeTargetCmdTpl, srcDir, "altinstall")
	MakeTargetCmdTpl = "cd %s && make %s"
	// SymlinkCmdTpl force-creates a symbolic link.
	// Example: fmt.Sprintf(SymlinkCmdTpl, target, linkName)
	SymlinkCmdTpl = "ln -sf %s %s"
)

const (
	DefaultSSHPort = 22

	// LdSoConfDir is where per-component dynamic linker path files live.
	LdSoConfDir = "/etc/ld.so.conf.d"
	// YumRepoDir is where yum repository definition files live.
	YumRepoDir = "/etc/yum.repos.d"
)

// Arch identifies a CPU architecture as reported by uname -m or config.
type Arch string

const (
	ArchAmd64   Arch = "amd64"
	ArchArm64   Arch = "arm64"
	ArchUnknown Arch = "unknown"
)

// NormalizeArch maps uname -m output onto an Arch value.
func NormalizeArch(raw string) Arch {
	switch raw {
	case "x86_64", "amd64":
		return ArchAmd64
	case "aarch64", "arm64":
		return ArchArm64
	case "":
		return ArchUnknown
	default:
		return Arch(raw)
	}
}
