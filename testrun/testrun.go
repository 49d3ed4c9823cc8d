package testrun

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	// ErrTestRunNotFound is returned when a test run is not found.
	ErrTestRunNotFound = errors.New("test run not found")

	// ErrInvalidRunID is returned when run_id is not set.
	ErrInvalidRunID = errors.New("run_id is required")

	// ErrInvalidKind is returned when the profile kind is not set.
	ErrInvalidKind = errors.New("kind is required")

	// ErrInvalidStatus is returned when status is invalid.
	ErrInvalidStatus = errors.New("invalid status")

	// ErrTestRunNotRunning is returned when trying to complete a test run that's not running.
	ErrTestRunNotRunning = errors.New("test run is not running")

	// ErrTestRunAlreadyStarted is returned when trying to start an already started test run.
	ErrTestRunAlreadyStarted = errors.New("test run already started")
)

// Status represents the status of a test run.
type Status string

const (
	StatusPending Status = "pending"
	StatusRunning Status = "running"
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
)

// IsValid checks if the status is valid.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusRunning, StatusPassed, StatusFailed:
		return true
	default:
		return false
	}
}

// IsFinal checks if the status is a final status (can't be changed).
func (s Status) IsFinal() bool {
	return s == StatusPassed || s == StatusFailed
}

// StatusFor maps a verdict to its final status.
func StatusFor(success bool) Status {
	if success {
		return StatusPassed
	}
	return StatusFailed
}

// TestRun is the recorded history of one monitoring run.
type TestRun struct {
	ID          uuid.UUID  `json:"id" gorm:"type:char(36);primaryKey"`
	RunID       string     `json:"run_id" gorm:"type:char(36);not null;uniqueIndex:idx_run_id"`
	Kind        string     `json:"kind" gorm:"type:varchar(32);not null"`
	TargetURL   string     `json:"target_url" gorm:"type:varchar(512)"`
	Status      Status     `json:"status" gorm:"type:varchar(20);not null;default:'pending';index:idx_status"`
	FailedStep  string     `json:"failed_step,omitempty" gorm:"type:varchar(128)"`
	Failure     string     `json:"failure,omitempty" gorm:"type:text"`
	Version     string     `json:"version,omitempty" gorm:"type:varchar(128)"`
	ElapsedMs   int64      `json:"elapsed_ms"`
	StartedAt   *time.Time `json:"started_at,omitempty" gorm:"index:idx_started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// BeforeCreate hook to generate UUID before creating a new test run
func (tr *TestRun) BeforeCreate(tx *gorm.DB) error {
	if tr.ID == uuid.Nil {
		tr.ID = uuid.New()
	}
	return nil
}

// Validate checks if the test run has valid required fields.
func (tr *TestRun) Validate() error {
	if tr.RunID == "" {
		return ErrInvalidRunID
	}
	if tr.Kind == "" {
		return ErrInvalidKind
	}
	if !tr.Status.IsValid() {
		return ErrInvalidStatus
	}
	return nil
}

// Start sets the started_at timestamp and changes status to running.
// Returns an error if the test run has already been started.
func (tr *TestRun) Start(at time.Time) error {
	if tr.StartedAt != nil {
		return ErrTestRunAlreadyStarted
	}
	tr.StartedAt = &at
	tr.Status = StatusRunning
	return nil
}

// Complete sets the completed_at timestamp, the final status and the
// failure detail. Returns an error if the test run is not currently running.
func (tr *TestRun) Complete(status Status, failure string) error {
	if tr.Status != StatusRunning {
		return ErrTestRunNotRunning
	}
	if !status.IsFinal() {
		return ErrInvalidStatus
	}
	now := time.Now()
	tr.CompletedAt = &now
	tr.Status = status
	if failure != "" {
		tr.Failure = failure
	}
	return nil
}

// Elapsed returns the recorded run duration.
func (tr *TestRun) Elapsed() time.Duration {
	return time.Duration(tr.ElapsedMs) * time.Millisecond
}
