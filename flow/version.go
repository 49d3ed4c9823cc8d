package flow

import (
	"context"

	"github.com/hairizuanbinnoorazman/synthetic-monitor/browser"
)

// VersionMarkers locate the dashboard and the version label.
type VersionMarkers struct {
	Welcome      browser.Locator
	CreateSpace  browser.Locator
	GlobalNav    browser.Locator
	VersionLabel browser.Locator
}

// DefaultVersionMarkers returns the locators of the application dashboard.
func DefaultVersionMarkers() VersionMarkers {
	return VersionMarkers{
		Welcome:      browser.ByText("Welcome,"),
		CreateSpace:  browser.ByXPath(`//home-app-launcher-button[@id="create-space-btn"]`),
		GlobalNav:    browser.ByXPath(`//button[@id="global-nav-button"]`),
		VersionLabel: browser.ByClassName("version"),
	}
}

// VersionCapture reads the application version from the global navigation.
// It assumes Login already reached the dashboard.
type VersionCapture struct {
	Markers  VersionMarkers
	Settings Settings
}

// NewVersionCapture creates the version step with default markers.
func NewVersionCapture(settings Settings) *VersionCapture {
	return &VersionCapture{
		Markers:  DefaultVersionMarkers(),
		Settings: settings,
	}
}

// Name implements Step.
func (s *VersionCapture) Name() string { return "capture version" }

// Run implements Step.
func (s *VersionCapture) Run(ctx context.Context, rc *RunContext) error {
	waiter := rc.Interactor.Waiter()
	rc.Logger.Info(ctx, "capturing site version", nil)

	// Both markers visible means the dashboard finished loading.
	if _, err := waiter.WaitUntilVisible(ctx, s.Markers.Welcome, s.Settings.Dashboard); err != nil {
		return err
	}
	if _, err := waiter.WaitUntilVisible(ctx, s.Markers.CreateSpace, s.Settings.Dashboard); err != nil {
		return err
	}
	if _, err := rc.Interactor.Click(ctx, s.Markers.GlobalNav, s.Settings.Click); err != nil {
		return err
	}

	version, err := rc.Interactor.ReadText(ctx, s.Markers.VersionLabel, s.Settings.Dashboard)
	if err != nil {
		return err
	}
	rc.Version = version

	rc.Logger.Info(ctx, "site version captured", map[string]interface{}{
		"version": version,
	})
	return nil
}
