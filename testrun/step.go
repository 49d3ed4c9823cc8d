package testrun

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	// ErrStepNotFound is returned when a step record is not found.
	ErrStepNotFound = errors.New("step record not found")
)

// StepRecord is the outcome of one step within a test run.
type StepRecord struct {
	ID         uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	TestRunID  uuid.UUID `json:"test_run_id" gorm:"type:char(36);not null;index:idx_step_test_run_id"`
	StepIndex  int       `json:"step_index" gorm:"not null"`
	Name       string    `json:"name" gorm:"type:varchar(128);not null"`
	Passed     bool      `json:"passed"`
	Error      string    `json:"error,omitempty" gorm:"type:text"`
	DurationMs int64     `json:"duration_ms"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// BeforeCreate hook to generate UUID before creating a new step record.
func (sr *StepRecord) BeforeCreate(tx *gorm.DB) error {
	if sr.ID == uuid.Nil {
		sr.ID = uuid.New()
	}
	return nil
}

// TableName specifies the table name for GORM.
func (sr *StepRecord) TableName() string {
	return "test_run_steps"
}
