package config

import (
	"fmt"

	"github.com/arkadix/hostforge/common"
)

const (
	DefaultOpenSSLVersion = "1.1.1w"
	DefaultPythonVersion  = "3.11.11"
	DefaultAnsiblePackage = "ansible"

	DefaultOpenSSLURLTpl = "https://www.openssl.org/source/openssl-%s.tar.gz"
	DefaultPythonURLTpl  = "https://www.python.org/ftp/python/%s/Python-%s.tgz"

	DefaultOpenSSLPrefix = "/usr/local/openssl"
	DefaultPythonPrefix  = "/usr/local/python3"

	// CentOS 7 reached end of life; its packages moved to the vault.
	vaultBaseURL = "http://vault.centos.org/7.9.2009"
	epelBaseURL  = "https://archives.fedoraproject.org/pub/archive/epel/7/$basearch"
)

// DefaultPackages are the build prerequisites for OpenSSL and Python on
// CentOS 7.
var DefaultPackages = []string{
	"gcc",
	"gcc-c++",
	"make",
	"perl",
	"perl-core",
	"wget",
	"tar",
	"zlib-devel",
	"bzip2-devel",
	"libffi-devel",
	"readline-devel",
	"sqlite-devel",
	"xz-devel",
}

// DefaultRepos are the vault replacements for the retired CentOS 7 mirrors,
// plus archived EPEL.
func DefaultRepos() []RepoSpec {
	return []RepoSpec{
		{
			Name:        "base",
			Description: "CentOS-7 - Base (vault)",
			BaseURL:     vaultBaseURL + "/os/$basearch/",
			GPGCheck:    true,
			GPGKey:      "file:///etc/pki/rpm-gpg/RPM-GPG-KEY-CentOS-7",
		},
		{
			Name:        "updates",
			Description: "CentOS-7 - Updates (vault)",
			BaseURL:     vaultBaseURL + "/updates/$basearch/",
			GPGCheck:    true,
			GPGKey:      "file:///etc/pki/rpm-gpg/RPM-GPG-KEY-CentOS-7",
		},
		{
			Name:        "extras",
			Description: "CentOS-7 - Extras (vault)",
			BaseURL:     vaultBaseURL + "/extras/$basearch/",
			GPGCheck:    true,
			GPGKey:      "file:///etc/pki/rpm-gpg/RPM-GPG-KEY-CentOS-7",
		},
		{
			Name:        "epel",
			Description: "EPEL 7 (archive)",
			BaseURL:     epelBaseURL,
			GPGCheck:    false,
		},
	}
}

// SetDefaults fills every omitted field with its default value. It is called
// by Load before validation, so a minimal (or empty) config file describes a
// complete local provisioning run.
func SetDefaults(cfg *Config) {
	if cfg.APIVersion == "" {
		cfg.APIVersion = "hostforge.dev/v1"
	}
	if cfg.Kind == "" {
		cfg.Kind = "HostProvision"
	}
	if cfg.Metadata.Name == "" {
		cfg.Metadata.Name = "centos7-ansible-host"
	}

	spec := &cfg.Spec
	if spec.WorkDir == "" {
		spec.WorkDir = common.GetTmpDir()
	}
	if len(spec.Packages) == 0 {
		spec.Packages = append([]string(nil), DefaultPackages...)
	}
	if spec.ApplyUpdates == nil {
		t := true
		spec.ApplyUpdates = &t
	}
	if len(spec.Repos) == 0 {
		spec.Repos = DefaultRepos()
	}

	if spec.Host != nil {
		if spec.Host.Port == 0 {
			spec.Host.Port = common.DefaultSSHPort
		}
		if spec.Host.Name == "" {
			spec.Host.Name = spec.Host.Address
		}
	}

	if spec.OpenSSL.Version == "" {
		spec.OpenSSL.Version = DefaultOpenSSLVersion
	}
	if spec.OpenSSL.URL == "" {
		spec.OpenSSL.URL = fmt.Sprintf(DefaultOpenSSLURLTpl, spec.OpenSSL.Version)
	}
	if spec.OpenSSL.Prefix == "" {
		spec.OpenSSL.Prefix = DefaultOpenSSLPrefix
	}

	if spec.Python.Version == "" {
		spec.Python.Version = DefaultPythonVersion
	}
	if spec.Python.URL == "" {
		spec.Python.URL = fmt.Sprintf(DefaultPythonURLTpl, spec.Python.Version, spec.Python.Version)
	}
	if spec.Python.Prefix == "" {
		spec.Python.Prefix = DefaultPythonPrefix
	}

	if spec.Ansible.Package == "" {
		spec.Ansible.Package = DefaultAnsiblePackage
	}
}
