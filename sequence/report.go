package sequence

import (
	"fmt"
	"strings"
	"time"

	"github.com/arkadix/hostforge/xtime"
)

// Status is the outcome classification of a single step.
type Status int

const (
	// StatusPending means the step was never reached.
	StatusPending Status = iota
	// StatusSkipped means the precondition held and the action did not run.
	StatusSkipped
	// StatusSucceeded means the action ran and the postcondition held.
	StatusSucceeded
	// StatusFailed means the action errored or the postcondition did not hold.
	StatusFailed
)

// String returns the display name of the status.
func (s Status) String() string {
	switch s {
	case StatusPending:
		return "PENDING"
	case StatusSkipped:
		return "SKIPPED"
	case StatusSucceeded:
		return "SUCCESS"
	case StatusFailed:
		return "FAILED"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", int(s))
	}
}

// Outcome records how one step ended.
type Outcome struct {
	Step     string
	Status   Status
	Err      error
	Duration time.Duration
}

// Reason renders the failure reason, empty for non-failures.
func (o Outcome) Reason() string {
	if o.Status != StatusFailed || o.Err == nil {
		return ""
	}
	return o.Err.Error()
}

// Report lists every step's outcome in declared order. Steps after a failure
// stay at StatusPending.
type Report struct {
	RunID    string
	Sequence string
	Outcomes []Outcome
	Duration time.Duration
}

// Succeeded reports whether every step either succeeded or was skipped.
func (r *Report) Succeeded() bool {
	for _, o := range r.Outcomes {
		if o.Status == StatusFailed || o.Status == StatusPending {
			return false
		}
	}
	return len(r.Outcomes) > 0
}

// AllSkipped reports whether no step performed any work, i.e. the host was
// already fully provisioned.
func (r *Report) AllSkipped() bool {
	for _, o := range r.Outcomes {
		if o.Status != StatusSkipped {
			return false
		}
	}
	return len(r.Outcomes) > 0
}

// FirstFailure returns the failed outcome, or nil when the run succeeded.
func (r *Report) FirstFailure() *Outcome {
	for i := range r.Outcomes {
		if r.Outcomes[i].Status == StatusFailed {
			return &r.Outcomes[i]
		}
	}
	return nil
}

// String renders a one-line-per-step summary.
func (r *Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "sequence %s (run %s) finished in %s\n", r.Sequence, r.RunID, xtime.ShortDur(xtime.RoundForReport(r.Duration)))
	for _, o := range r.Outcomes {
		fmt.Fprintf(&b, "  %-24s %-8s %s", o.Step, o.Status, xtime.ShortDur(xtime.RoundForReport(o.Duration)))
		if reason := o.Reason(); reason != "" {
			fmt.Fprintf(&b, "  (%s)", reason)
		}
		b.WriteByte('\n')
	}
	return b.String()
}
