// Package runtime carries the execution context handed to every step: the
// executor for the target host, a prober for read-only observations, the
// resolved configuration and a scratch cache. Steps receive it explicitly
// instead of reaching for ambient global state.
package runtime

import (
	"github.com/pkg/errors"

	"github.com/arkadix/hostforge/cache"
	"github.com/arkadix/hostforge/config"
	"github.com/arkadix/hostforge/executor"
	"github.com/arkadix/hostforge/probe"
)

// Runtime is the context available to step phases.
type Runtime interface {
	// Executor is the handle to the target host's state.
	Executor() executor.Executor

	// Prober performs read-only observations against the same target.
	Prober() *probe.Prober

	// Spec is the resolved provisioning configuration.
	Spec() *config.Spec

	// WorkDir is the scratch directory for downloads and source trees.
	WorkDir() string

	// HostName names the target for logging ("localhost" for local runs).
	HostName() string

	Verbose() bool

	// Cache is a run-scoped scratch cache steps may use to pass values
	// forward (e.g. a resolved source directory).
	Cache() *cache.Cache[string, any]
}

// Config for creating a Runtime.
type Config struct {
	Executor executor.Executor
	Spec     *config.Spec
	HostName string
	Verbose  bool
}

type baseRuntime struct {
	exec     executor.Executor
	prober   *probe.Prober
	spec     *config.Spec
	hostName string
	verbose  bool
	scratch  *cache.Cache[string, any]
}

// New creates a Runtime from the given config.
func New(cfg Config) (Runtime, error) {
	if cfg.Executor == nil {
		return nil, errors.New("runtime: executor is required")
	}
	if cfg.Spec == nil {
		return nil, errors.New("runtime: spec is required")
	}
	if cfg.HostName == "" {
		cfg.HostName = "localhost"
	}
	return &baseRuntime{
		exec:     cfg.Executor,
		prober:   probe.New(cfg.Executor),
		spec:     cfg.Spec,
		hostName: cfg.HostName,
		verbose:  cfg.Verbose,
		scratch:  cache.New[string, any](),
	}, nil
}

func (r *baseRuntime) Executor() executor.Executor      { return r.exec }
func (r *baseRuntime) Prober() *probe.Prober            { return r.prober }
func (r *baseRuntime) Spec() *config.Spec               { return r.spec }
func (r *baseRuntime) WorkDir() string                  { return r.spec.WorkDir }
func (r *baseRuntime) HostName() string                 { return r.hostName }
func (r *baseRuntime) Verbose() bool                    { return r.verbose }
func (r *baseRuntime) Cache() *cache.Cache[string, any] { return r.scratch }
