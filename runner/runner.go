// Package runner executes the monitoring steps in order and reduces the run
// to a single verdict.
package runner

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/google/uuid"

	"github.com/hairizuanbinnoorazman/synthetic-monitor/browser"
	"github.com/hairizuanbinnoorazman/synthetic-monitor/credential"
	"github.com/hairizuanbinnoorazman/synthetic-monitor/flow"
	"github.com/hairizuanbinnoorazman/synthetic-monitor/interact"
	"github.com/hairizuanbinnoorazman/synthetic-monitor/logger"
)

// ErrStepPanicked wraps a panic recovered from a step.
var ErrStepPanicked = errors.New("step panicked")

// DefaultAppName is the launcher tile opened by the federated step.
const DefaultAppName = "Birst"

// Steps returns the verification steps for profile: the federated login when
// the profile has a portal, then the application login and the version capture.
func Steps(profile *credential.Profile, settings flow.Settings, app string) []flow.Step {
	var steps []flow.Step
	if profile.IsFederated() {
		steps = append(steps, flow.NewFederatedLogin(app, settings))
	}
	return append(steps,
		flow.NewLogin(settings),
		flow.NewVersionCapture(settings),
	)
}

// Runner owns one browser page for the duration of a run.
type Runner struct {
	profile    *credential.Profile
	page       browser.Page
	interactor *interact.Interactor
	logger     logger.Logger
	steps      []flow.Step
	reporters  []Reporter
	newID      func() string
}

// Option customises a Runner.
type Option func(*Runner)

// WithSteps replaces the steps derived from the profile.
func WithSteps(steps ...flow.Step) Option {
	return func(r *Runner) {
		r.steps = steps
	}
}

// WithReporters adds reporters that receive the verdict.
func WithReporters(reporters ...Reporter) Option {
	return func(r *Runner) {
		r.reporters = append(r.reporters, reporters...)
	}
}

// New creates a runner for profile on page.
func New(profile *credential.Profile, page browser.Page, interactor *interact.Interactor, settings flow.Settings, log logger.Logger, opts ...Option) *Runner {
	r := &Runner{
		profile:    profile,
		page:       page,
		interactor: interactor,
		logger:     log,
		steps:      Steps(profile, settings, DefaultAppName),
		newID:      func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes every step in order and stops at the first failure. Run
// never returns an error and never panics: every failure is logged and
// becomes a false verdict.
func (r *Runner) Run(ctx context.Context) Verdict {
	runID := r.newID()
	log := r.logger.WithField("run_id", runID)

	v := Verdict{
		RunID:      runID,
		Kind:       r.profile.Kind,
		TargetURL:  r.profile.Target.URL,
		Recipients: r.profile.Recipients,
		StartedAt:  time.Now(),
	}
	rc := &flow.RunContext{
		RunID:      runID,
		Profile:    r.profile,
		Page:       r.page,
		Interactor: r.interactor,
		Logger:     log,
		StartedAt:  v.StartedAt,
	}

	log.Info(ctx, "starting synthetic monitor run", r.profile.LogFields())
	r.start(ctx, log, v)

	for _, step := range r.steps {
		index := rc.NextStepIndex()
		stepLog := log.WithFields(map[string]interface{}{
			"step":       step.Name(),
			"step_index": index,
		})
		stepLog.Info(ctx, "step started", nil)

		begin := time.Now()
		err := runStep(ctx, step, rc)
		res := StepResult{
			Name:     step.Name(),
			Index:    index,
			Duration: time.Since(begin),
			Err:      err,
		}
		v.Steps = append(v.Steps, res)

		if err != nil {
			v.Err = &flow.StepError{Step: step.Name(), Err: err}
			v.FailedStep = step.Name()
			fields := map[string]interface{}{
				"error":    err.Error(),
				"duration": res.Duration.String(),
			}
			var pe *panicError
			if errors.As(err, &pe) {
				fields["stack"] = string(pe.stack)
			}
			stepLog.Error(ctx, "step failed", fields)
			break
		}
		stepLog.Info(ctx, "step passed", map[string]interface{}{
			"duration": res.Duration.String(),
		})
	}

	v.Elapsed = time.Since(v.StartedAt)
	rc.Elapsed = v.Elapsed
	v.Version = rc.Version
	v.Success = v.Err == nil

	if v.Success {
		log.Info(ctx, "synthetic monitor run passed", map[string]interface{}{
			"elapsed": v.Elapsed.String(),
			"version": v.Version,
		})
	} else {
		log.Error(ctx, "synthetic monitor run failed", map[string]interface{}{
			"elapsed":     v.Elapsed.String(),
			"failed_step": v.FailedStep,
			"error":       v.Err.Error(),
		})
	}

	r.report(ctx, log, v)
	return v
}

// SetupStep names the failed step of a run whose browser session could not
// be started.
const SetupStep = "browser"

// ReportSetupFailure hands reporters a failed verdict for a run that never
// reached its first step, so history and metrics still see it. err is
// recorded as the failure of SetupStep.
func ReportSetupFailure(ctx context.Context, profile *credential.Profile, startedAt time.Time, err error, log logger.Logger, reporters ...Reporter) Verdict {
	r := &Runner{
		profile:   profile,
		logger:    log,
		reporters: reporters,
		newID:     func() string { return uuid.New().String() },
	}
	return r.setupFailure(ctx, startedAt, err)
}

func (r *Runner) setupFailure(ctx context.Context, startedAt time.Time, err error) Verdict {
	runID := r.newID()
	log := r.logger.WithField("run_id", runID)

	v := Verdict{
		RunID:      runID,
		Kind:       r.profile.Kind,
		TargetURL:  r.profile.Target.URL,
		Recipients: r.profile.Recipients,
		StartedAt:  startedAt,
	}
	r.start(ctx, log, v)

	v.Elapsed = time.Since(startedAt)
	v.Err = &flow.StepError{Step: SetupStep, Err: err}
	v.FailedStep = SetupStep

	log.Error(ctx, "synthetic monitor run failed", map[string]interface{}{
		"elapsed":     v.Elapsed.String(),
		"failed_step": v.FailedStep,
		"error":       v.Err.Error(),
	})
	r.report(ctx, log, v)
	return v
}

// panicError carries a recovered panic and the stack it was raised on.
type panicError struct {
	value interface{}
	stack []byte
}

func (e *panicError) Error() string {
	return fmt.Sprintf("%v: %v", ErrStepPanicked, e.value)
}

func (e *panicError) Unwrap() error { return ErrStepPanicked }

func runStep(ctx context.Context, step flow.Step, rc *flow.RunContext) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = &panicError{value: p, stack: debug.Stack()}
		}
	}()
	return step.Run(ctx, rc)
}

func (r *Runner) start(ctx context.Context, log logger.Logger, v Verdict) {
	for _, rep := range r.reporters {
		sr, ok := rep.(StartReporter)
		if !ok {
			continue
		}
		if err := callReporter(func() error { return sr.Start(ctx, v) }); err != nil {
			log.Warn(ctx, "reporter failed to record run start", map[string]interface{}{
				"reporter": fmt.Sprintf("%T", rep),
				"error":    err.Error(),
			})
		}
	}
}

func (r *Runner) report(ctx context.Context, log logger.Logger, v Verdict) {
	for _, rep := range r.reporters {
		if err := callReporter(func() error { return rep.Report(ctx, v) }); err != nil {
			log.Warn(ctx, "reporter failed", map[string]interface{}{
				"reporter": fmt.Sprintf("%T", rep),
				"error":    err.Error(),
			})
		}
	}
}

func callReporter(fn func() error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("reporter panicked: %v", p)
		}
	}()
	return fn()
}
