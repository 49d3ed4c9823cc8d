package flow

import (
	"context"

	"github.com/hairizuanbinnoorazman/synthetic-monitor/browser"
)

// LoginMarkers locate the application's login form and landing page.
type LoginMarkers struct {
	Form     browser.Locator
	Username browser.Locator
	Password browser.Locator
	Submit   browser.Locator
	Welcome  browser.Locator
}

// DefaultLoginMarkers returns the locators of the hosted application.
func DefaultLoginMarkers() LoginMarkers {
	return LoginMarkers{
		Form:     browser.ByText("LOGIN"),
		Username: browser.ByName("username"),
		Password: browser.ByName("password"),
		Submit:   browser.ByXPath(`//button[@class="btn submit"]`),
		Welcome:  browser.ByText("Welcome,"),
	}
}

// Login signs into the target application with the primary credentials.
type Login struct {
	Markers  LoginMarkers
	Settings Settings
}

// NewLogin creates the login step with default markers.
func NewLogin(settings Settings) *Login {
	return &Login{
		Markers:  DefaultLoginMarkers(),
		Settings: settings,
	}
}

// Name implements Step.
func (s *Login) Name() string { return "login" }

// Run implements Step.
func (s *Login) Run(ctx context.Context, rc *RunContext) error {
	target := rc.Profile.Target
	waiter := rc.Interactor.Waiter()

	rc.Logger.Info(ctx, "loading url", map[string]interface{}{
		"url": target.URL,
	})
	if err := rc.Page.Navigate(ctx, target.URL); err != nil {
		return err
	}

	rc.Logger.Info(ctx, "logging in", map[string]interface{}{
		"username": target.Username,
	})
	if _, err := waiter.WaitUntilPresent(ctx, s.Markers.Form, s.Settings.Implicit); err != nil {
		return err
	}
	// Both fields start empty.
	if _, err := rc.Interactor.SetText(ctx, s.Markers.Username, target.Username, false); err != nil {
		return err
	}
	if _, err := rc.Interactor.SetText(ctx, s.Markers.Password, target.Password, false); err != nil {
		return err
	}
	if _, err := rc.Interactor.Click(ctx, s.Markers.Submit, s.Settings.Click); err != nil {
		return err
	}
	if _, err := waiter.WaitUntilPresent(ctx, s.Markers.Welcome, s.Settings.Implicit); err != nil {
		return err
	}

	rc.Logger.Info(ctx, "login succeeded", nil)
	return nil
}
