package runner

import (
	"time"

	"github.com/hairizuanbinnoorazman/synthetic-monitor/credential"
)

// StepResult is the outcome of one executed step.
type StepResult struct {
	Name     string
	Index    int
	Duration time.Duration
	Err      error
}

// Verdict is the terminal result of one monitoring run.
type Verdict struct {
	RunID      string
	Kind       credential.Kind
	TargetURL  string
	Recipients []string

	Success   bool
	StartedAt time.Time
	Elapsed   time.Duration

	// Err is a *flow.StepError naming the failed step, nil on success. A
	// session that never started fails SetupStep.
	Err        error
	FailedStep string

	Version string
	Steps   []StepResult
}

// OK reports whether every step passed.
func (v Verdict) OK() bool {
	return v.Success && v.Err == nil
}

// StepNames lists the executed steps in order.
func (v Verdict) StepNames() []string {
	names := make([]string, 0, len(v.Steps))
	for _, s := range v.Steps {
		names = append(names, s.Name)
	}
	return names
}
