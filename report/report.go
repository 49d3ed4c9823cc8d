// Package report publishes a JSON document of every run verdict to blob
// storage, for alert routing and later inspection.
package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"time"

	"github.com/hairizuanbinnoorazman/synthetic-monitor/logger"
	"github.com/hairizuanbinnoorazman/synthetic-monitor/runner"
	"github.com/hairizuanbinnoorazman/synthetic-monitor/storage"
	"github.com/hairizuanbinnoorazman/synthetic-monitor/testrun"
)

// ContentType of published reports.
const ContentType = "application/json"

// Step is one step of a published report.
type Step struct {
	Name       string `json:"name"`
	Index      int    `json:"index"`
	Passed     bool   `json:"passed"`
	DurationMs int64  `json:"duration_ms"`
	Error      string `json:"error,omitempty"`
}

// Document is the published form of a verdict.
type Document struct {
	RunID      string    `json:"run_id"`
	Kind       string    `json:"kind"`
	TargetURL  string    `json:"target_url"`
	Recipients []string  `json:"email_list"`
	Success    bool      `json:"success"`
	StartedAt  time.Time `json:"started_at"`
	ElapsedMs  int64     `json:"elapsed_ms"`
	FailedStep string    `json:"failed_step,omitempty"`
	Error      string    `json:"error,omitempty"`
	Version    string    `json:"version,omitempty"`
	Steps      []Step    `json:"steps"`
}

// NewDocument converts a verdict.
func NewDocument(v runner.Verdict) Document {
	doc := Document{
		RunID:      v.RunID,
		Kind:       string(v.Kind),
		TargetURL:  v.TargetURL,
		Recipients: v.Recipients,
		Success:    v.OK(),
		StartedAt:  v.StartedAt.UTC(),
		ElapsedMs:  v.Elapsed.Milliseconds(),
		FailedStep: v.FailedStep,
		Version:    v.Version,
		Steps:      make([]Step, 0, len(v.Steps)),
	}
	if doc.Recipients == nil {
		doc.Recipients = []string{}
	}
	if v.Err != nil {
		doc.Error = v.Err.Error()
	}
	for _, s := range v.Steps {
		step := Step{
			Name:       s.Name,
			Index:      s.Index,
			Passed:     s.Err == nil,
			DurationMs: s.Duration.Milliseconds(),
		}
		if s.Err != nil {
			step.Error = s.Err.Error()
		}
		doc.Steps = append(doc.Steps, step)
	}
	return doc
}

// Path returns the storage path of a run's report: <prefix>/YYYY/MM/DD/<run id>.json.
func Path(prefix string, v runner.Verdict) string {
	return path.Join(prefix, v.StartedAt.UTC().Format("2006/01/02"), v.RunID+".json")
}

// Publisher uploads reports and, when given an asset store, records where
// each report went.
type Publisher struct {
	blobs  storage.BlobStorage
	assets testrun.AssetStore
	prefix string
	logger logger.Logger
}

var _ runner.Reporter = (*Publisher)(nil)

// NewPublisher creates a Publisher. assets may be nil.
func NewPublisher(blobs storage.BlobStorage, assets testrun.AssetStore, prefix string, log logger.Logger) *Publisher {
	if log == nil {
		log = logger.Nop()
	}
	return &Publisher{
		blobs:  blobs,
		assets: assets,
		prefix: prefix,
		logger: log,
	}
}

// Report implements runner.Reporter.
func (p *Publisher) Report(ctx context.Context, v runner.Verdict) error {
	data, err := json.MarshalIndent(NewDocument(v), "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	key := Path(p.prefix, v)
	if err := p.blobs.Upload(ctx, key, bytes.NewReader(data), ContentType); err != nil {
		return fmt.Errorf("upload report: %w", err)
	}

	url, err := p.blobs.GetURL(ctx, key)
	if err != nil {
		p.logger.Warn(ctx, "report uploaded but its url is unavailable", map[string]interface{}{
			"path":  key,
			"error": err.Error(),
		})
	}

	if p.assets != nil {
		asset := &testrun.TestRunAsset{
			RunID:     v.RunID,
			AssetType: testrun.AssetTypeReport,
			AssetPath: key,
			URL:       url,
			FileName:  path.Base(key),
			FileSize:  int64(len(data)),
			MimeType:  ContentType,
		}
		if err := p.assets.Create(ctx, asset); err != nil {
			return fmt.Errorf("record report asset: %w", err)
		}
	}

	p.logger.Info(ctx, "run report published", map[string]interface{}{
		"run_id": v.RunID,
		"path":   key,
		"url":    url,
	})
	return nil
}
