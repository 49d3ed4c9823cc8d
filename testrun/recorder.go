package testrun

import (
	"context"
	"errors"
	"fmt"

	"github.com/hairizuanbinnoorazman/synthetic-monitor/logger"
	"github.com/hairizuanbinnoorazman/synthetic-monitor/runner"
)

// Recorder writes run history. It records a running row when a run starts
// and completes it with the verdict and per-step results when the run ends.
type Recorder struct {
	runs   Store
	steps  StepStore
	logger logger.Logger
}

var _ runner.StartReporter = (*Recorder)(nil)

// NewRecorder creates a Recorder over the given stores.
func NewRecorder(runs Store, steps StepStore, log logger.Logger) *Recorder {
	return &Recorder{
		runs:   runs,
		steps:  steps,
		logger: log,
	}
}

// Start implements runner.StartReporter.
func (r *Recorder) Start(ctx context.Context, v runner.Verdict) error {
	_, err := r.start(ctx, v)
	return err
}

func (r *Recorder) start(ctx context.Context, v runner.Verdict) (*TestRun, error) {
	tr := &TestRun{
		RunID:     v.RunID,
		Kind:      string(v.Kind),
		TargetURL: v.TargetURL,
	}
	if err := tr.Start(v.StartedAt); err != nil {
		return nil, err
	}
	if err := r.runs.Create(ctx, tr); err != nil {
		return nil, fmt.Errorf("record run start: %w", err)
	}
	return tr, nil
}

// Report implements runner.Reporter. A run whose start was never recorded
// is created before it is completed.
func (r *Recorder) Report(ctx context.Context, v runner.Verdict) error {
	tr, err := r.runs.GetByRunID(ctx, v.RunID)
	if errors.Is(err, ErrTestRunNotFound) {
		tr, err = r.start(ctx, v)
	}
	if err != nil {
		return err
	}

	err = r.runs.Update(ctx, tr.ID,
		SetVersion(v.Version),
		SetElapsed(v.Elapsed),
		SetFailedStep(v.FailedStep),
	)
	if err != nil {
		return fmt.Errorf("record run result: %w", err)
	}

	var failure string
	if v.Err != nil {
		failure = v.Err.Error()
	}
	if err := r.runs.Complete(ctx, tr.ID, StatusFor(v.OK()), failure); err != nil {
		return fmt.Errorf("complete run: %w", err)
	}

	for _, s := range v.Steps {
		rec := &StepRecord{
			TestRunID:  tr.ID,
			StepIndex:  s.Index,
			Name:       s.Name,
			Passed:     s.Err == nil,
			DurationMs: s.Duration.Milliseconds(),
		}
		if s.Err != nil {
			rec.Error = s.Err.Error()
		}
		if err := r.steps.Upsert(ctx, rec); err != nil {
			return fmt.Errorf("record step %q: %w", s.Name, err)
		}
	}

	r.logger.Debug(ctx, "run history recorded", map[string]interface{}{
		"run_id":      v.RunID,
		"test_run_id": tr.ID.String(),
		"steps":       len(v.Steps),
	})
	return nil
}
