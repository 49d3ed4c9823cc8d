package flow_test

import (
	"time"

	"github.com/hairizuanbinnoorazman/synthetic-monitor/credential"
	"github.com/hairizuanbinnoorazman/synthetic-monitor/flow"
	"github.com/hairizuanbinnoorazman/synthetic-monitor/flow/flowtest"
	"github.com/hairizuanbinnoorazman/synthetic-monitor/logger"
)

func setupRunContext(site *flowtest.Site, profile *credential.Profile) (*flow.RunContext, *logger.TestLogger) {
	log := logger.NewTestLogger()
	rc := &flow.RunContext{
		RunID:      "run-1",
		Profile:    profile,
		Page:       site.Page,
		Interactor: flowtest.NewInteractor(site.Page, log),
		Logger:     log,
		StartedAt:  time.Now(),
	}
	return rc, log
}
