package testrun

import (
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/hairizuanbinnoorazman/synthetic-monitor/logger"
	"github.com/hairizuanbinnoorazman/synthetic-monitor/testutil"
)

// setupTestStore creates a test database and the run history stores.
func setupTestStore(t *testing.T) (*gorm.DB, Store, StepStore, AssetStore) {
	db := testutil.SetupTestDB(t)
	testutil.AutoMigrate(t, db, Models()...)

	log := logger.NewTestLogger()
	return db, NewMySQLStore(db, log), NewMySQLStepStore(db, log), NewMySQLAssetStore(db, log)
}

// createTestRun creates a test run with default values.
func createTestRun(runID string, status Status) *TestRun {
	tr := &TestRun{
		RunID:     runID,
		Kind:      "single-login",
		TargetURL: "https://app.example.com/login",
		Status:    status,
	}
	if status == StatusRunning {
		now := time.Now()
		tr.StartedAt = &now
	}
	return tr
}
