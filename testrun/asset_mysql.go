package testrun

import (
	"context"

	"gorm.io/gorm"

	"github.com/hairizuanbinnoorazman/synthetic-monitor/logger"
)

// MySQLAssetStore keeps run assets in the test_run_assets table.
type MySQLAssetStore struct {
	db     *gorm.DB
	logger logger.Logger
}

// NewMySQLAssetStore creates an AssetStore over db.
func NewMySQLAssetStore(db *gorm.DB, log logger.Logger) *MySQLAssetStore {
	return &MySQLAssetStore{
		db:     db,
		logger: log,
	}
}

// Create validates and inserts asset.
func (s *MySQLAssetStore) Create(ctx context.Context, asset *TestRunAsset) error {
	if err := asset.Validate(); err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Create(asset).Error; err != nil {
		s.logger.Error(ctx, "failed to create asset", map[string]interface{}{
			"error":     err.Error(),
			"run_id":    asset.RunID,
			"file_name": asset.FileName,
		})
		return err
	}

	s.logger.Debug(ctx, "asset created", map[string]interface{}{
		"asset_id":  asset.ID.String(),
		"run_id":    asset.RunID,
		"file_name": asset.FileName,
	})

	return nil
}

// ListByRunID implements AssetStore.
func (s *MySQLAssetStore) ListByRunID(ctx context.Context, runID string) ([]*TestRunAsset, error) {
	var assets []*TestRunAsset
	err := s.db.WithContext(ctx).
		Where("run_id = ?", runID).
		Order("uploaded_at ASC").
		Find(&assets).Error

	if err != nil {
		s.logger.Error(ctx, "failed to list assets by run", map[string]interface{}{
			"error":  err.Error(),
			"run_id": runID,
		})
		return nil, err
	}

	return assets, nil
}

// ReportURLs implements AssetStore.
func (s *MySQLAssetStore) ReportURLs(ctx context.Context, runIDs []string) (map[string]string, error) {
	urls := make(map[string]string, len(runIDs))
	if len(runIDs) == 0 {
		return urls, nil
	}

	var reports []*TestRunAsset
	err := s.db.WithContext(ctx).
		Select("run_id", "url", "uploaded_at").
		Where("run_id IN ? AND asset_type = ?", runIDs, AssetTypeReport).
		Order("uploaded_at ASC").
		Find(&reports).Error
	if err != nil {
		s.logger.Error(ctx, "failed to look up run reports", map[string]interface{}{
			"error": err.Error(),
			"runs":  len(runIDs),
		})
		return nil, err
	}

	for _, r := range reports {
		if r.URL != "" {
			urls[r.RunID] = r.URL
		}
	}
	return urls, nil
}
