package main

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/hairizuanbinnoorazman/synthetic-monitor/credential"
	"github.com/hairizuanbinnoorazman/synthetic-monitor/database"
	"github.com/hairizuanbinnoorazman/synthetic-monitor/logger"
	"github.com/hairizuanbinnoorazman/synthetic-monitor/metrics"
	"github.com/hairizuanbinnoorazman/synthetic-monitor/report"
	"github.com/hairizuanbinnoorazman/synthetic-monitor/runner"
	"github.com/hairizuanbinnoorazman/synthetic-monitor/storage"
	"github.com/hairizuanbinnoorazman/synthetic-monitor/testrun"
)

const disabled = "none"

func newProvider(ctx context.Context, cfg CredentialConfig, log logger.Logger) (credential.Provider, string, error) {
	switch strings.ToLower(cfg.Source) {
	case "secretsmanager":
		p, err := credential.NewSecretsManagerProvider(ctx, cfg.Region, log)
		if err != nil {
			return nil, "", err
		}
		return p, cfg.SecretName, nil
	case "file":
		if cfg.File == "" {
			return nil, "", fmt.Errorf("credential.file is required for the file source")
		}
		return credential.NewFileProvider(nil, log), cfg.File, nil
	default:
		return nil, "", fmt.Errorf("unsupported credential source: %s", cfg.Source)
	}
}

// openHistory connects to the run history database. SQLite schemas are
// created on the fly; MySQL schemas are owned by the migrate command.
// A nil db means history is disabled.
func openHistory(cfg database.Config) (*gorm.DB, func(), error) {
	if cfg.Driver == "" || strings.EqualFold(cfg.Driver, disabled) {
		return nil, func() {}, nil
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to history database: %w", err)
	}
	closeDB := func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}

	if cfg.Driver == database.DriverSQLite {
		if err := db.AutoMigrate(testrun.Models()...); err != nil {
			closeDB()
			return nil, nil, fmt.Errorf("failed to migrate history database: %w", err)
		}
	}
	return db, closeDB, nil
}

// newReporters builds every configured reporter. The returned func releases
// their resources.
func newReporters(ctx context.Context, cfg *Config, log logger.Logger) ([]runner.Reporter, func(), error) {
	var reporters []runner.Reporter

	db, closeDB, err := openHistory(cfg.History)
	if err != nil {
		return nil, nil, err
	}

	var assets testrun.AssetStore
	if db != nil {
		reporters = append(reporters, testrun.NewRecorder(
			testrun.NewMySQLStore(db, log),
			testrun.NewMySQLStepStore(db, log),
			log,
		))
		assets = testrun.NewMySQLAssetStore(db, log)
	}

	if cfg.Report.Type != "" && !strings.EqualFold(cfg.Report.Type, disabled) {
		blobs, err := storage.NewBlobStorage(ctx, cfg.StorageConfig())
		if err != nil {
			closeDB()
			return nil, nil, fmt.Errorf("failed to initialize report storage: %w", err)
		}
		reporters = append(reporters, report.NewPublisher(blobs, assets, cfg.Report.Prefix, log))
	}

	if cfg.Metrics.PushgatewayURL != "" {
		reporters = append(reporters, metrics.NewPusher(cfg.Metrics.PushgatewayURL, cfg.Metrics.Job, log))
	}

	return reporters, closeDB, nil
}
