package testrun

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hairizuanbinnoorazman/synthetic-monitor/credential"
	"github.com/hairizuanbinnoorazman/synthetic-monitor/flow"
	"github.com/hairizuanbinnoorazman/synthetic-monitor/logger"
	"github.com/hairizuanbinnoorazman/synthetic-monitor/runner"
)

func failedVerdict() runner.Verdict {
	cause := errors.New("timed out waiting for welcome banner")
	return runner.Verdict{
		RunID:      uuid.NewString(),
		Kind:       credential.KindFederatedLogin,
		TargetURL:  "https://app.example.com/login",
		StartedAt:  time.Now(),
		Elapsed:    3 * time.Second,
		Err:        &flow.StepError{Step: "login", Err: cause},
		FailedStep: "login",
		Steps: []runner.StepResult{
			{Name: "login to federated portal", Index: 1, Duration: time.Second},
			{Name: "login", Index: 2, Duration: 2 * time.Second, Err: cause},
		},
	}
}

func TestRecorder_StartThenReport(t *testing.T) {
	_, store, steps, _ := setupTestStore(t)
	rec := NewRecorder(store, steps, logger.NewTestLogger())
	ctx := context.Background()
	v := failedVerdict()

	require.NoError(t, rec.Start(ctx, v))
	started, err := store.GetByRunID(ctx, v.RunID)
	require.NoError(t, err)
	assert.Equal(t, StatusRunning, started.Status)
	assert.Equal(t, "federated-login", started.Kind)

	require.NoError(t, rec.Report(ctx, v))

	got, err := store.GetByRunID(ctx, v.RunID)
	require.NoError(t, err)
	assert.Equal(t, started.ID, got.ID)
	assert.Equal(t, StatusFailed, got.Status)
	assert.Equal(t, "login", got.FailedStep)
	assert.Equal(t, v.Err.Error(), got.Failure)
	assert.Equal(t, int64(3000), got.ElapsedMs)
	assert.NotNil(t, got.CompletedAt)

	list, err := steps.ListByTestRun(ctx, got.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.True(t, list[0].Passed)
	assert.False(t, list[1].Passed)
	assert.Equal(t, "timed out waiting for welcome banner", list[1].Error)
}

func TestRecorder_ReportWithoutStart(t *testing.T) {
	_, store, steps, _ := setupTestStore(t)
	rec := NewRecorder(store, steps, logger.NewTestLogger())
	ctx := context.Background()

	v := runner.Verdict{
		RunID:     uuid.NewString(),
		Kind:      credential.KindSingleLogin,
		Success:   true,
		StartedAt: time.Now(),
		Version:   "7.4.2",
		Steps: []runner.StepResult{
			{Name: "login", Index: 1},
			{Name: "capture version", Index: 2},
		},
	}
	require.NoError(t, rec.Report(ctx, v))

	got, err := store.GetByRunID(ctx, v.RunID)
	require.NoError(t, err)
	assert.Equal(t, StatusPassed, got.Status)
	assert.Equal(t, "7.4.2", got.Version)
	assert.Empty(t, got.Failure)
}

func TestRecorder_StartTwice(t *testing.T) {
	_, store, steps, _ := setupTestStore(t)
	rec := NewRecorder(store, steps, logger.NewTestLogger())
	v := failedVerdict()

	require.NoError(t, rec.Start(context.Background(), v))
	assert.Error(t, rec.Start(context.Background(), v))
}
