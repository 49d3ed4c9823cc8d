package testrun

import "context"

// AssetStore persists the artifacts published for monitoring runs.
type AssetStore interface {
	Create(ctx context.Context, asset *TestRunAsset) error

	// ListByRunID returns the assets of one run, oldest first.
	ListByRunID(ctx context.Context, runID string) ([]*TestRunAsset, error)

	// ReportURLs maps each given run identifier to the URL of its most
	// recently uploaded report. Runs without a report are absent.
	ReportURLs(ctx context.Context, runIDs []string) (map[string]string, error)
}
