package testrun

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	// ErrInvalidAssetType is returned when asset type is invalid.
	ErrInvalidAssetType = errors.New("invalid asset type")

	// ErrInvalidAssetPath is returned when asset_path is empty.
	ErrInvalidAssetPath = errors.New("asset_path is required")

	// ErrInvalidFileName is returned when file_name is empty.
	ErrInvalidFileName = errors.New("file_name is required")
)

// AssetType represents the type of asset.
type AssetType string

const (
	// AssetTypeReport is the JSON verdict report of a run.
	AssetTypeReport AssetType = "report"
	// AssetTypeDocument is any other document attached to a run.
	AssetTypeDocument AssetType = "document"
)

// IsValid checks if the asset type is valid.
func (at AssetType) IsValid() bool {
	switch at {
	case AssetTypeReport, AssetTypeDocument:
		return true
	default:
		return false
	}
}

// TestRunAsset is a stored artifact of a monitoring run. It is keyed by the
// run identifier so publishers need not look the history row up first.
type TestRunAsset struct {
	ID         uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	RunID      string    `json:"run_id" gorm:"type:char(36);not null;index:idx_asset_run_id"`
	AssetType  AssetType `json:"asset_type" gorm:"type:varchar(20);not null"`
	AssetPath  string    `json:"asset_path" gorm:"type:varchar(512);not null"`
	URL        string    `json:"url,omitempty" gorm:"type:varchar(1024)"`
	FileName   string    `json:"file_name" gorm:"type:varchar(255);not null"`
	FileSize   int64     `json:"file_size" gorm:"not null"`
	MimeType   string    `json:"mime_type,omitempty" gorm:"type:varchar(128)"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// BeforeCreate hook to generate UUID before creating a new test run asset
func (a *TestRunAsset) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.UploadedAt.IsZero() {
		a.UploadedAt = time.Now()
	}
	return nil
}

// Validate checks if the asset has valid required fields.
func (a *TestRunAsset) Validate() error {
	if a.RunID == "" {
		return ErrInvalidRunID
	}
	if !a.AssetType.IsValid() {
		return ErrInvalidAssetType
	}
	if a.AssetPath == "" {
		return ErrInvalidAssetPath
	}
	if a.FileName == "" {
		return ErrInvalidFileName
	}
	return nil
}
