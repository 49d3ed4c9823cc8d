package testrun

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hairizuanbinnoorazman/synthetic-monitor/logger"
)

// MySQLStore implements the Store interface using GORM and MySQL.
type MySQLStore struct {
	db     *gorm.DB
	logger logger.Logger
}

// NewMySQLStore creates a new MySQL-backed test run store.
func NewMySQLStore(db *gorm.DB, log logger.Logger) *MySQLStore {
	return &MySQLStore{
		db:     db,
		logger: log,
	}
}

// Create creates a new test run in the database.
func (s *MySQLStore) Create(ctx context.Context, testRun *TestRun) error {
	// Ensure default status is set before validation
	if testRun.Status == "" {
		testRun.Status = StatusPending
	}

	if err := testRun.Validate(); err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Create(testRun).Error; err != nil {
		s.logger.Error(ctx, "failed to create test run", map[string]interface{}{
			"error":  err.Error(),
			"run_id": testRun.RunID,
		})
		return err
	}

	s.logger.Debug(ctx, "test run created", map[string]interface{}{
		"test_run_id": testRun.ID.String(),
		"run_id":      testRun.RunID,
	})

	return nil
}

// GetByID retrieves a test run by its ID.
func (s *MySQLStore) GetByID(ctx context.Context, id uuid.UUID) (*TestRun, error) {
	return s.first(ctx, "id = ?", id)
}

// GetByRunID retrieves a test run by the monitor's run identifier.
func (s *MySQLStore) GetByRunID(ctx context.Context, runID string) (*TestRun, error) {
	return s.first(ctx, "run_id = ?", runID)
}

func (s *MySQLStore) first(ctx context.Context, query string, arg interface{}) (*TestRun, error) {
	var testRun TestRun
	err := s.db.WithContext(ctx).
		Where(query, arg).
		First(&testRun).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTestRunNotFound
		}
		s.logger.Error(ctx, "failed to get test run", map[string]interface{}{
			"error": err.Error(),
			"query": query,
		})
		return nil, err
	}

	return &testRun, nil
}

// Update updates a test run with the given setters.
func (s *MySQLStore) Update(ctx context.Context, id uuid.UUID, setters ...UpdateSetter) error {
	testRun, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	for _, setter := range setters {
		if err := setter(testRun); err != nil {
			return err
		}
	}

	if err := s.db.WithContext(ctx).Save(testRun).Error; err != nil {
		s.logger.Error(ctx, "failed to update test run", map[string]interface{}{
			"error":       err.Error(),
			"test_run_id": id.String(),
		})
		return err
	}

	return nil
}

// ListRecent retrieves the most recently created test runs, newest first.
func (s *MySQLStore) ListRecent(ctx context.Context, limit, offset int) ([]*TestRun, error) {
	var testRuns []*TestRun
	err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&testRuns).Error

	if err != nil {
		s.logger.Error(ctx, "failed to list recent test runs", map[string]interface{}{
			"error":  err.Error(),
			"limit":  limit,
			"offset": offset,
		})
		return nil, err
	}

	return testRuns, nil
}

// Complete marks a test run as completed (sets completed_at, final status, failure detail).
func (s *MySQLStore) Complete(ctx context.Context, id uuid.UUID, status Status, failure string) error {
	testRun, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := testRun.Complete(status, failure); err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Save(testRun).Error; err != nil {
		s.logger.Error(ctx, "failed to complete test run", map[string]interface{}{
			"error":       err.Error(),
			"test_run_id": id.String(),
		})
		return err
	}

	s.logger.Info(ctx, "test run completed", map[string]interface{}{
		"test_run_id": id.String(),
		"run_id":      testRun.RunID,
		"status":      status,
	})

	return nil
}
