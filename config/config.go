// Package config defines the provisioning configuration file format and its
// defaults. Everything the sequence installs (versions, URLs, prefixes,
// prerequisite packages, yum repositories) is data here, not code in the
// steps.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration structure.
type Config struct {
	APIVersion string   `yaml:"apiVersion"`
	Kind       string   `yaml:"kind"`
	Metadata   Metadata `yaml:"metadata"`
	Spec       Spec     `yaml:"spec"`
}

// Metadata names the provisioning run.
type Metadata struct {
	Name string `yaml:"name"`
}

// Spec holds the provisioning details.
type Spec struct {
	// Host is the SSH target. When absent the local machine is provisioned.
	Host *HostSpec `yaml:"host,omitempty"`

	// WorkDir is where tarballs are downloaded and source trees extracted.
	WorkDir string `yaml:"workDir,omitempty"`

	// Parallelism overrides the make -j value. Zero means use the probed
	// CPU count.
	Parallelism int `yaml:"parallelism,omitempty"`

	// Packages are the build prerequisites installed up front.
	Packages []string `yaml:"packages,omitempty"`

	// ApplyUpdates runs a full yum update after installing prerequisites.
	ApplyUpdates *bool `yaml:"applyUpdates,omitempty"`

	Repos   []RepoSpec  `yaml:"repos,omitempty"`
	OpenSSL OpenSSLSpec `yaml:"openssl,omitempty"`
	Python  PythonSpec  `yaml:"python,omitempty"`
	Ansible AnsibleSpec `yaml:"ansible,omitempty"`
}

// HostSpec describes the SSH target.
type HostSpec struct {
	Name           string `yaml:"name,omitempty"`
	Address        string `yaml:"address"`
	Port           int    `yaml:"port,omitempty"`
	User           string `yaml:"user"`
	Password       string `yaml:"password,omitempty"`
	PrivateKeyPath string `yaml:"privateKeyPath,omitempty"`
}

// RepoSpec describes one yum repository definition to write.
type RepoSpec struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	BaseURL     string `yaml:"baseurl"`
	GPGCheck    bool   `yaml:"gpgcheck,omitempty"`
	GPGKey      string `yaml:"gpgkey,omitempty"`
	Enabled     *bool  `yaml:"enabled,omitempty"`
}

// IsEnabled resolves the enabled flag, defaulting to true.
func (r RepoSpec) IsEnabled() bool {
	return r.Enabled == nil || *r.Enabled
}

// OpenSSLSpec configures the source-built OpenSSL.
type OpenSSLSpec struct {
	Version string `yaml:"version,omitempty"`
	URL     string `yaml:"url,omitempty"`
	SHA256  string `yaml:"sha256,omitempty"`
	Prefix  string `yaml:"prefix,omitempty"`
}

// PythonSpec configures the source-built Python.
type PythonSpec struct {
	Version string `yaml:"version,omitempty"`
	URL     string `yaml:"url,omitempty"`
	SHA256  string `yaml:"sha256,omitempty"`
	Prefix  string `yaml:"prefix,omitempty"`

	// AlwaysRebuild forces the build even when the target version is already
	// on the path. Default false: the version probe is authoritative.
	AlwaysRebuild bool `yaml:"alwaysRebuild,omitempty"`
}

// MajorMinor returns the interpreter suffix for the configured version, e.g.
// "3.11" for "3.11.11".
func (p PythonSpec) MajorMinor() string {
	parts := strings.SplitN(p.Version, ".", 3)
	if len(parts) < 2 {
		return p.Version
	}
	return parts[0] + "." + parts[1]
}

// Interpreter returns the versioned interpreter name, e.g. "python3.11".
func (p PythonSpec) Interpreter() string {
	return "python" + p.MajorMinor()
}

// Pip returns the versioned pip name, e.g. "pip3.11".
func (p PythonSpec) Pip() string {
	return "pip" + p.MajorMinor()
}

// AnsibleSpec configures the pip-installed Ansible.
type AnsibleSpec struct {
	// Package is the pip requirement spec, e.g. "ansible" or "ansible==9.2.0".
	Package string `yaml:"package,omitempty"`
}

// Load reads the configuration file at path, applies defaults and validates
// it. An empty path yields the pure-default configuration for a local run.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
		}
		if err := yaml.Unmarshal(content, cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config YAML from %q: %w", path, err)
		}
	}

	SetDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks structural requirements beyond what defaults can repair.
func (c *Config) Validate() error {
	if c.Kind != "HostProvision" {
		return fmt.Errorf("config validation failed: kind must be \"HostProvision\", got %q", c.Kind)
	}
	if c.Metadata.Name == "" {
		return fmt.Errorf("config validation failed: metadata.name is required")
	}
	if c.Spec.Host != nil {
		if c.Spec.Host.Address == "" {
			return fmt.Errorf("config validation failed: spec.host.address is required when a host is given")
		}
		if c.Spec.Host.User == "" {
			return fmt.Errorf("config validation failed: spec.host.user is required when a host is given")
		}
	}
	if c.Spec.OpenSSL.Version == "" || c.Spec.OpenSSL.URL == "" {
		return fmt.Errorf("config validation failed: spec.openssl.version and url are required")
	}
	if c.Spec.Python.Version == "" || c.Spec.Python.URL == "" {
		return fmt.Errorf("config validation failed: spec.python.version and url are required")
	}
	if c.Spec.Ansible.Package == "" {
		return fmt.Errorf("config validation failed: spec.ansible.package is required")
	}
	return nil
}
