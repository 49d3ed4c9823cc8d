// Package flow holds the verification steps of a monitoring run and the
// run-scoped state they share.
package flow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hairizuanbinnoorazman/synthetic-monitor/browser"
	"github.com/hairizuanbinnoorazman/synthetic-monitor/credential"
	"github.com/hairizuanbinnoorazman/synthetic-monitor/interact"
	"github.com/hairizuanbinnoorazman/synthetic-monitor/logger"
)

// ErrFederationDisabled is returned when the federated step runs against a
// profile without a federated portal.
var ErrFederationDisabled = errors.New("federated login is not configured")

// RunContext is the mutable state of one monitoring run. It is owned by a
// single runner for the run's duration and never shared across runs.
type RunContext struct {
	RunID      string
	Profile    *credential.Profile
	Page       browser.Page
	Interactor *interact.Interactor
	Logger     logger.Logger

	StartedAt time.Time
	Elapsed   time.Duration
	StepIndex int

	// Version is set by the version capture step.
	Version string
}

// NextStepIndex advances and returns the step index.
func (rc *RunContext) NextStepIndex() int {
	rc.StepIndex++
	return rc.StepIndex
}

// Step is one named, atomic verification unit.
type Step interface {
	Name() string
	Run(ctx context.Context, rc *RunContext) error
}

// StepError attaches the failing step's name to its cause.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %q failed: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// Settings are the timing knobs shared by all steps.
type Settings struct {
	// Implicit bounds presence assertions on freshly loaded pages.
	Implicit time.Duration
	// Dashboard bounds waits for dashboard elements and the version label.
	Dashboard time.Duration
	// Reveal bounds the check whether a target is reachable without
	// extra navigation.
	Reveal time.Duration
	// LogoutSettle is slept after triggering sign-out, before polling.
	LogoutSettle time.Duration
	// Logout bounds the wait for the logout confirmation.
	Logout time.Duration

	Click interact.RetryPolicy
}

// DefaultSettings returns the timings the monitor runs with.
func DefaultSettings() Settings {
	return Settings{
		Implicit:  30 * time.Second,
		Dashboard: 60 * time.Second,
		Reveal:    10 * time.Second,
		Logout:    45 * time.Second,
		Click:     interact.DefaultRetryPolicy(),
	}
}
