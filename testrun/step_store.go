package testrun

import (
	"context"

	"github.com/google/uuid"
)

// StepStore defines the interface for step record persistence operations.
type StepStore interface {
	// Upsert creates or updates the record for a given (test_run_id, step_index).
	Upsert(ctx context.Context, step *StepRecord) error

	// ListByTestRun retrieves all step records for a specific test run, ordered by step_index.
	ListByTestRun(ctx context.Context, testRunID uuid.UUID) ([]*StepRecord, error)

	// GetByRunAndStep retrieves the record for a specific run and step index.
	GetByRunAndStep(ctx context.Context, testRunID uuid.UUID, stepIndex int) (*StepRecord, error)
}
