// Package sequence runs an ordered list of provisioning steps with the
// fail-fast contract: each step's precondition decides skip-vs-run, a failed
// action or postcondition halts the run, and nothing after the failing step
// executes. There is no rollback and no retry.
package sequence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/arkadix/hostforge/common"
	"github.com/arkadix/hostforge/fault"
	"github.com/arkadix/hostforge/hook"
	"github.com/arkadix/hostforge/runtime"
	"github.com/arkadix/hostforge/step"
)

// Sequencer executes steps in declared order. It is constructed once and
// consumed by a single Run; it is not safe for concurrent use and a second
// Run is rejected.
type Sequencer struct {
	name  string
	rt    runtime.Runtime
	steps []step.Step
	ran   bool
}

// New creates a Sequencer over the given steps. Order matters: later steps
// may depend on the effects of earlier ones.
func New(name string, rt runtime.Runtime, steps ...step.Step) (*Sequencer, error) {
	if rt == nil {
		return nil, errors.New("sequence: runtime is required")
	}
	if len(steps) == 0 {
		return nil, errors.New("sequence: at least one step is required")
	}
	return &Sequencer{name: name, rt: rt, steps: steps}, nil
}

// Steps returns the declared steps in order.
func (s *Sequencer) Steps() []step.Step {
	out := make([]step.Step, len(s.steps))
	copy(out, s.steps)
	return out
}

// Run executes the sequence to completion or first failure and returns the
// report. The returned error covers misuse only (already consumed,
// initialization failure); step failures are reported through the Report.
func (s *Sequencer) Run(ctx context.Context, log *logrus.Entry) (*Report, error) {
	if s.ran {
		return nil, errors.Errorf("sequence %q has already been run", s.name)
	}
	s.ran = true

	runID := uuid.NewString()[:8]
	log = log.WithFields(logrus.Fields{
		common.LogFieldRunID:    runID,
		common.LogFieldSequence: s.name,
		common.LogFieldHost:     s.rt.HostName(),
	})

	report := &Report{RunID: runID, Sequence: s.name}
	report.Outcomes = make([]Outcome, len(s.steps))
	for i, st := range s.steps {
		report.Outcomes[i] = Outcome{Step: st.Name(), Status: StatusPending}
	}

	for _, st := range s.steps {
		stepLog := log.WithField(common.LogFieldStep, st.Name())
		if err := st.Init(s.rt, stepLog); err != nil {
			return nil, errors.Wrapf(err, "failed to initialize step %q", st.Name())
		}
	}

	start := time.Now()
	defer func() {
		report.Duration = time.Since(start)
	}()

	log.Infof("Starting sequence %s with %d steps", s.name, len(s.steps))

	for i, st := range s.steps {
		stepLog := log.WithField(common.LogFieldStep, st.Name())
		outcome := &report.Outcomes[i]
		stepStart := time.Now()

		satisfied, err := st.Precondition(ctx)
		if err != nil {
			outcome.Status = StatusFailed
			outcome.Err = errors.Wrap(err, "precondition check failed")
			outcome.Duration = time.Since(stepStart)
			stepLog.Errorf("Step %s precondition check failed: %v", st.Name(), err)
			return report, nil
		}
		if satisfied {
			outcome.Status = StatusSkipped
			outcome.Duration = time.Since(stepStart)
			stepLog.Infof("Step %s already satisfied, skipping", st.Name())
			continue
		}

		stepLog.Infof("Executing step %s: %s", st.Name(), st.Description())
		// Guarded so a panicking action is a step failure, not a crash.
		execErr := hook.Guard(func() error {
			return st.Execute(ctx)
		})
		if execErr != nil {
			var fe *fault.Error
			if errors.As(execErr, &fe) {
				execErr = fe.WithStep(st.Name())
			}
			outcome.Status = StatusFailed
			outcome.Err = execErr
			outcome.Duration = time.Since(stepStart)
			stepLog.Errorf("Step %s failed: %v", st.Name(), execErr)
			return report, nil
		}

		verified, err := st.Postcondition(ctx)
		if err != nil {
			outcome.Status = StatusFailed
			outcome.Err = fault.Wrap(fault.KindVerification, err, "postcondition check failed").WithStep(st.Name())
			outcome.Duration = time.Since(stepStart)
			stepLog.Errorf("Step %s postcondition check failed: %v", st.Name(), err)
			return report, nil
		}
		if !verified {
			outcome.Status = StatusFailed
			outcome.Err = fault.New(fault.KindVerification, "verification failed after action").WithStep(st.Name())
			outcome.Duration = time.Since(stepStart)
			stepLog.Errorf("Step %s verification failed after action", st.Name())
			return report, nil
		}

		outcome.Status = StatusSucceeded
		outcome.Duration = time.Since(stepStart)
		stepLog.Infof("Step %s succeeded", st.Name())
	}

	log.Infof("Sequence %s completed successfully", s.name)
	return report, nil
}

// PlanEntry describes what Run would do with one step right now.
type PlanEntry struct {
	Step        string
	Description string
	WouldSkip   bool
}

// Plan evaluates every precondition without running any action. Preconditions
// are pure observations, so this is safe on a live host.
func (s *Sequencer) Plan(ctx context.Context, log *logrus.Entry) ([]PlanEntry, error) {
	entries := make([]PlanEntry, 0, len(s.steps))
	for _, st := range s.steps {
		stepLog := log.WithField(common.LogFieldStep, st.Name())
		if err := st.Init(s.rt, stepLog); err != nil {
			return nil, errors.Wrapf(err, "failed to initialize step %q", st.Name())
		}
		satisfied, err := st.Precondition(ctx)
		if err != nil {
			return nil, errors.Wrapf(err, "precondition check failed for step %q", st.Name())
		}
		entries = append(entries, PlanEntry{
			Step:        st.Name(),
			Description: st.Description(),
			WouldSkip:   satisfied,
		})
	}
	return entries, nil
}
