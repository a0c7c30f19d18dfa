package provision

import (
	"context"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arkadix/hostforge/config"
	"github.com/arkadix/hostforge/executor"
	"github.com/arkadix/hostforge/runtime"
	"github.com/arkadix/hostforge/sequence"
)

func discardLog() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func newSequencer(t *testing.T, fake *executor.Fake) *sequence.Sequencer {
	t.Helper()
	cfg := &config.Config{}
	config.SetDefaults(cfg)
	cfg.Spec.Parallelism = 2
	rt, err := runtime.New(runtime.Config{Executor: fake, Spec: &cfg.Spec})
	require.NoError(t, err)
	seq, err := sequence.New(cfg.Metadata.Name, rt, Steps()...)
	require.NoError(t, err)
	return seq
}

func TestStepsDeclaredOrder(t *testing.T) {
	var names []string
	for _, s := range Steps() {
		names = append(names, s.Name())
	}
	assert.Equal(t, []string{
		"configure-repos",
		"install-packages",
		"build-openssl",
		"build-python",
		"install-ansible",
	}, names)
}

// seedProvisionedComponents makes the fake host look like one where the
// source builds and ansible install already happened.
func seedProvisionedComponents(fake *executor.Fake) {
	fake.AddCommand("/usr/local/openssl/bin/openssl", "/usr/local/openssl/bin/openssl")
	fake.RespondTo("openssl version", "OpenSSL 1.1.1w  11 Sep 2023", 0)
	fake.AddCommand("python3.11", "/usr/local/bin/python3.11")
	fake.RespondTo("python3.11 --version", "Python 3.11.11", 0)
	fake.AddCommand("ansible", "/usr/local/bin/ansible")
	fake.AddCommand("curl", "/usr/bin/curl")
}

func TestSkippedStepsDoNotBlockLaterOnes(t *testing.T) {
	fake := executor.NewFake()
	seedProvisionedComponents(fake)
	// All prerequisites report installed (rpm -q exits 0 by default), so the
	// package step skips while the repo step before it still runs.

	report, err := newSequencer(t, fake).Run(context.Background(), discardLog())
	require.NoError(t, err)
	require.Len(t, report.Outcomes, 5)

	assert.Equal(t, sequence.StatusSucceeded, report.Outcomes[0].Status, "repos run on a fresh host")
	assert.Equal(t, sequence.StatusSkipped, report.Outcomes[1].Status)
	assert.Equal(t, sequence.StatusSkipped, report.Outcomes[2].Status)
	assert.Equal(t, sequence.StatusSkipped, report.Outcomes[3].Status)
	assert.Equal(t, sequence.StatusSkipped, report.Outcomes[4].Status)
	assert.True(t, report.Succeeded())
}

func TestSecondRunConvergesToAllSkipped(t *testing.T) {
	fake := executor.NewFake()
	seedProvisionedComponents(fake)
	ctx := context.Background()

	first, err := newSequencer(t, fake).Run(ctx, discardLog())
	require.NoError(t, err)
	require.True(t, first.Succeeded())

	// The repo files written by the first run survive in the fake filesystem,
	// so a fresh sequencer over the same host has nothing left to do.
	second, err := newSequencer(t, fake).Run(ctx, discardLog())
	require.NoError(t, err)
	assert.True(t, second.AllSkipped())
}

func TestFailureHaltsSequence(t *testing.T) {
	fake := executor.NewFake()
	fake.RespondTo("yum makecache", "", 1)

	report, err := newSequencer(t, fake).Run(context.Background(), discardLog())
	require.NoError(t, err)

	assert.Equal(t, sequence.StatusFailed, report.Outcomes[0].Status)
	for _, o := range report.Outcomes[1:] {
		assert.Equal(t, sequence.StatusPending, o.Status)
	}
	failure := report.FirstFailure()
	require.NotNil(t, failure)
	assert.Equal(t, "configure-repos", failure.Step)
}
