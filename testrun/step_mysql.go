package testrun

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hairizuanbinnoorazman/synthetic-monitor/logger"
)

// MySQLStepStore implements StepStore using GORM and MySQL.
type MySQLStepStore struct {
	db     *gorm.DB
	logger logger.Logger
}

// NewMySQLStepStore creates a new MySQL-backed step record store.
func NewMySQLStepStore(db *gorm.DB, log logger.Logger) *MySQLStepStore {
	return &MySQLStepStore{
		db:     db,
		logger: log,
	}
}

// Upsert creates or updates the record for a given (test_run_id, step_index).
func (s *MySQLStepStore) Upsert(ctx context.Context, step *StepRecord) error {
	existing, err := s.GetByRunAndStep(ctx, step.TestRunID, step.StepIndex)
	if err != nil && !errors.Is(err, ErrStepNotFound) {
		return err
	}

	if existing != nil {
		existing.Name = step.Name
		existing.Passed = step.Passed
		existing.Error = step.Error
		existing.DurationMs = step.DurationMs
		if err := s.db.WithContext(ctx).Save(existing).Error; err != nil {
			s.logger.Error(ctx, "failed to update step record", map[string]interface{}{
				"error":       err.Error(),
				"test_run_id": step.TestRunID.String(),
				"step_index":  step.StepIndex,
			})
			return err
		}
		*step = *existing
		return nil
	}

	if err := s.db.WithContext(ctx).Create(step).Error; err != nil {
		s.logger.Error(ctx, "failed to create step record", map[string]interface{}{
			"error":       err.Error(),
			"test_run_id": step.TestRunID.String(),
			"step_index":  step.StepIndex,
		})
		return err
	}

	return nil
}

// ListByTestRun retrieves all step records for a specific test run, ordered by step_index.
func (s *MySQLStepStore) ListByTestRun(ctx context.Context, testRunID uuid.UUID) ([]*StepRecord, error) {
	var steps []*StepRecord
	err := s.db.WithContext(ctx).
		Where("test_run_id = ?", testRunID).
		Order("step_index ASC").
		Find(&steps).Error

	if err != nil {
		s.logger.Error(ctx, "failed to list step records by test run", map[string]interface{}{
			"error":       err.Error(),
			"test_run_id": testRunID.String(),
		})
		return nil, err
	}

	return steps, nil
}

// GetByRunAndStep retrieves the record for a specific run and step index.
func (s *MySQLStepStore) GetByRunAndStep(ctx context.Context, testRunID uuid.UUID, stepIndex int) (*StepRecord, error) {
	var step StepRecord
	err := s.db.WithContext(ctx).
		Where("test_run_id = ? AND step_index = ?", testRunID, stepIndex).
		First(&step).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStepNotFound
		}
		s.logger.Error(ctx, "failed to get step record", map[string]interface{}{
			"error":       err.Error(),
			"test_run_id": testRunID.String(),
			"step_index":  stepIndex,
		})
		return nil, err
	}

	return &step, nil
}
