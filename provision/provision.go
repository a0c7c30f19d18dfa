// Package provision assembles a configuration into a runnable sequence:
// it picks the executor (local or SSH), builds the runtime and declares the
// provisioning steps in order.
package provision

import (
	"context"
	"io"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/arkadix/hostforge/config"
	"github.com/arkadix/hostforge/connector"
	"github.com/arkadix/hostforge/executor"
	"github.com/arkadix/hostforge/runtime"
	"github.com/arkadix/hostforge/sequence"
	"github.com/arkadix/hostforge/step"
	"github.com/arkadix/hostforge/steps/ansible"
	"github.com/arkadix/hostforge/steps/openssl"
	"github.com/arkadix/hostforge/steps/packages"
	"github.com/arkadix/hostforge/steps/python"
	"github.com/arkadix/hostforge/steps/repos"
)

// Provisioner owns the assembled sequence and any connection it opened.
type Provisioner struct {
	seq    *sequence.Sequencer
	closer io.Closer
}

// Steps returns the provisioning sequence in declared order.
func Steps() []step.Step {
	return []step.Step{
		repos.New(),
		packages.New(),
		openssl.New(),
		python.New(),
		ansible.New(),
	}
}

// New assembles a Provisioner from the given configuration. When the config
// names a host the steps run over SSH; otherwise they run locally.
func New(cfg *config.Config, verbose bool) (*Provisioner, error) {
	var (
		exec     executor.Executor
		hostName string
		closer   io.Closer
	)
	if host := cfg.Spec.Host; host != nil {
		conn, err := connector.NewConnection(connector.Config{
			Username: host.User,
			Password: host.Password,
			Address:  host.Address,
			Port:     host.Port,
			KeyFile:  host.PrivateKeyPath,
		})
		if err != nil {
			return nil, errors.Wrapf(err, "failed to connect to %s", host.Address)
		}
		exec = executor.NewRemoteExecutor(conn)
		hostName = host.Name
		closer = conn
	} else {
		exec = executor.NewLocalExecutor()
		hostName = "localhost"
	}

	rt, err := runtime.New(runtime.Config{
		Executor: exec,
		Spec:     &cfg.Spec,
		HostName: hostName,
		Verbose:  verbose,
	})
	if err != nil {
		closeQuiet(closer)
		return nil, err
	}

	seq, err := sequence.New(cfg.Metadata.Name, rt, Steps()...)
	if err != nil {
		closeQuiet(closer)
		return nil, err
	}
	return &Provisioner{seq: seq, closer: closer}, nil
}

// Run executes the sequence and returns its report.
func (p *Provisioner) Run(ctx context.Context, log *logrus.Entry) (*sequence.Report, error) {
	return p.seq.Run(ctx, log)
}

// Plan evaluates every step's precondition without executing anything.
func (p *Provisioner) Plan(ctx context.Context, log *logrus.Entry) ([]sequence.PlanEntry, error) {
	return p.seq.Plan(ctx, log)
}

// Close releases the SSH connection, if any.
func (p *Provisioner) Close() error {
	if p.closer == nil {
		return nil
	}
	return p.closer.Close()
}

func closeQuiet(c io.Closer) {
	if c != nil {
		_ = c.Close()
	}
}
