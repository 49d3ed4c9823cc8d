package flow

import (
	"context"
	"fmt"

	"github.com/hairizuanbinnoorazman/synthetic-monitor/browser"
	"github.com/hairizuanbinnoorazman/synthetic-monitor/interact"
)

// FederatedMarkers locate the federated portal's sign-in form, its
// application launcher and the embedded application.
type FederatedMarkers struct {
	SignIn   browser.Locator
	Username browser.Locator
	Password browser.Locator
	Launcher browser.Locator
	AppTile  browser.Locator

	// Reveal are clicked in order, and only while AppTile is not yet
	// actionable, to bring the tile on screen.
	Reveal []browser.Locator

	AppFrame     browser.Locator
	Welcome      browser.Locator
	ProfileMenu  browser.Locator
	SignOut      browser.Locator
	LogoutBanner browser.Locator
}

// DefaultFederatedMarkers returns the portal locators with the launcher
// tile of the named application.
func DefaultFederatedMarkers(app string) FederatedMarkers {
	return FederatedMarkers{
		SignIn:   browser.ByText("Sign In"),
		Username: browser.ByName("username"),
		Password: browser.ByName("pass"),
		Launcher: browser.ByID("osp-nav-launcher"),
		AppTile: browser.ByXPath(fmt.Sprintf(
			`//ids-layout-flex[@data-osp-id="osp-al-app-item" and .//*[contains(text(), %s)]]`,
			browser.QuoteXPath(app))),
		Reveal:       []browser.Locator{browser.ByID("osp-al-app-see-more-btn")},
		AppFrame:     browser.ByTagName("iframe"),
		Welcome:      browser.ByText("Welcome,"),
		ProfileMenu:  browser.ByID("osp-nav-user-profile"),
		SignOut:      browser.ByID("osp-nav-menu-signout"),
		LogoutBanner: browser.ByXPath(`//div[normalize-space(text())="Logout Successful"]`),
	}
}

// FederatedLogin signs in through the federated portal, opens the
// application from the launcher, checks it inside its frame and signs out.
type FederatedLogin struct {
	Markers  FederatedMarkers
	Settings Settings
}

// NewFederatedLogin creates the federated step for the named application.
func NewFederatedLogin(app string, settings Settings) *FederatedLogin {
	return &FederatedLogin{
		Markers:  DefaultFederatedMarkers(app),
		Settings: settings,
	}
}

// Name implements Step.
func (s *FederatedLogin) Name() string { return "login to federated portal" }

// Run implements Step.
func (s *FederatedLogin) Run(ctx context.Context, rc *RunContext) error {
	if !rc.Profile.IsFederated() {
		return ErrFederationDisabled
	}
	portal := rc.Profile.Federated
	in := rc.Interactor
	waiter := in.Waiter()

	rc.Logger.Info(ctx, "loading federated portal", map[string]interface{}{
		"url": portal.URL,
	})
	if err := rc.Page.Navigate(ctx, portal.URL); err != nil {
		return err
	}

	rc.Logger.Info(ctx, "signing in to federated portal", map[string]interface{}{
		"username": portal.Username,
	})
	if _, err := waiter.WaitUntilPresent(ctx, s.Markers.SignIn, s.Settings.Implicit); err != nil {
		return err
	}
	if _, err := in.SetText(ctx, s.Markers.Username, portal.Username, false); err != nil {
		return err
	}
	if _, err := in.SetText(ctx, s.Markers.Password, portal.Password, false); err != nil {
		return err
	}
	if err := in.Submit(ctx, s.Markers.Username, s.Settings.Implicit); err != nil {
		return err
	}

	if _, err := in.Click(ctx, s.Markers.Launcher, s.Settings.Click); err != nil {
		return err
	}
	if err := s.reveal(ctx, rc); err != nil {
		return err
	}
	if _, err := in.Click(ctx, s.Markers.AppTile, s.Settings.Click); err != nil {
		return err
	}

	// The portal inserts the application frame after the tile click.
	if _, err := waiter.WaitUntilPresent(ctx, s.Markers.AppFrame, s.Settings.Implicit); err != nil {
		return err
	}
	err := WithinFrame(ctx, rc.Page, s.Markers.AppFrame, func() error {
		_, err := waiter.WaitUntilPresent(ctx, s.Markers.Welcome, s.Settings.Implicit)
		return err
	})
	if err != nil {
		return err
	}

	if _, err := in.Click(ctx, s.Markers.ProfileMenu, s.Settings.Click); err != nil {
		return err
	}
	if _, err := in.Click(ctx, s.Markers.SignOut, s.Settings.Click); err != nil {
		return err
	}
	if err := interact.Sleep(ctx, s.Settings.LogoutSettle); err != nil {
		return err
	}
	if _, err := waiter.WaitUntilVisible(ctx, s.Markers.LogoutBanner, s.Settings.Logout); err != nil {
		return err
	}

	rc.Logger.Info(ctx, "federated login succeeded", nil)
	return nil
}

// reveal brings the application tile within reach. Each reveal control is
// used only while the tile is still not actionable.
func (s *FederatedLogin) reveal(ctx context.Context, rc *RunContext) error {
	for _, loc := range s.Markers.Reveal {
		if rc.Interactor.IsActionable(ctx, s.Markers.AppTile, s.Settings.Reveal) {
			return nil
		}
		rc.Logger.Debug(ctx, "application tile not reachable, revealing", map[string]interface{}{
			"reveal": loc.String(),
		})
		if _, err := rc.Interactor.Click(ctx, loc, s.Settings.Click); err != nil {
			return err
		}
	}
	return nil
}
