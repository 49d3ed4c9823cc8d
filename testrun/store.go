package testrun

import (
	"context"

	"github.com/google/uuid"
)

// Store defines the interface for test run persistence operations.
type Store interface {
	// Create creates a new test run in the store.
	Create(ctx context.Context, testRun *TestRun) error

	// GetByID retrieves a test run by its ID.
	GetByID(ctx context.Context, id uuid.UUID) (*TestRun, error)

	// GetByRunID retrieves a test run by the monitor's run identifier.
	GetByRunID(ctx context.Context, runID string) (*TestRun, error)

	// Update updates a test run with the given setters.
	Update(ctx context.Context, id uuid.UUID, setters ...UpdateSetter) error

	// ListRecent retrieves the most recently created test runs, newest first.
	ListRecent(ctx context.Context, limit, offset int) ([]*TestRun, error)

	// Complete marks a test run as completed (sets completed_at, final status, failure detail).
	Complete(ctx context.Context, id uuid.UUID, status Status, failure string) error
}

// UpdateSetter is a function that updates a test run field.
type UpdateSetter func(*TestRun) error
