// Package flowtest scripts the monitored site on a browsertest.Page so the
// flow steps and the runner can be exercised without a browser.
package flowtest

import (
	"time"

	"github.com/hairizuanbinnoorazman/synthetic-monitor/browser"
	"github.com/hairizuanbinnoorazman/synthetic-monitor/browser/browsertest"
	"github.com/hairizuanbinnoorazman/synthetic-monitor/credential"
	"github.com/hairizuanbinnoorazman/synthetic-monitor/flow"
	"github.com/hairizuanbinnoorazman/synthetic-monitor/interact"
	"github.com/hairizuanbinnoorazman/synthetic-monitor/logger"
)

// AppName is the launcher tile the scripted portal offers.
const AppName = "Birst"

// SiteVersion is the text of the scripted version label.
const SiteVersion = "7.4.2-build.1183"

// Site is the scripted target application and federated portal.
type Site struct {
	Page      *browsertest.Page
	Login     flow.LoginMarkers
	Version   flow.VersionMarkers
	Federated flow.FederatedMarkers

	// FrameAppearAfter delays the application frame by that many lookups
	// after the tile click.
	FrameAppearAfter int
}

// NewSite returns a site on a fresh page with the default markers. Nothing
// is installed yet.
func NewSite() *Site {
	return &Site{
		Page:      browsertest.NewPage(),
		Login:     flow.DefaultLoginMarkers(),
		Version:   flow.DefaultVersionMarkers(),
		Federated: flow.DefaultFederatedMarkers(AppName),
	}
}

func visible() browser.ElementState {
	return browser.ElementState{Visible: true, Enabled: true}
}

// InstallLogin adds the login form. Submitting it shows the welcome banner.
func (s *Site) InstallLogin() {
	p := s.Page
	p.Add(s.Login.Form, &browsertest.Element{State: visible(), Text: "LOGIN"})
	p.AddActionable(s.Login.Username)
	p.AddActionable(s.Login.Password)
	p.AddActionable(s.Login.Submit).OnClick = func(p *browsertest.Page) {
		p.Add(s.Login.Welcome, &browsertest.Element{State: visible(), Text: "Welcome, monitor"})
	}
}

// InstallDashboard adds the dashboard. Opening the global navigation shows
// the version label.
func (s *Site) InstallDashboard() {
	p := s.Page
	p.AddActionable(s.Version.CreateSpace)
	p.AddActionable(s.Version.GlobalNav).OnClick = func(p *browsertest.Page) {
		p.Add(s.Version.VersionLabel, &browsertest.Element{State: visible(), Text: SiteVersion})
	}
}

// InstallFederated adds the portal. When hidden is set the application tile
// stays covered until the reveal control is clicked.
func (s *Site) InstallFederated(hidden bool) {
	p := s.Page
	m := s.Federated

	p.Add(m.SignIn, &browsertest.Element{State: visible(), Text: "Sign In"})
	p.AddActionable(m.Username)
	p.AddActionable(m.Password)
	p.AddActionable(m.Launcher).OnClick = func(p *browsertest.Page) {
		tile := p.AddActionable(m.AppTile)
		tile.State.Obscured = hidden
		tile.OnClick = func(p *browsertest.Page) {
			p.AddActionable(m.AppFrame).AppearAfter = s.FrameAppearAfter
			p.Add(m.Welcome, &browsertest.Element{State: visible(), Frame: m.AppFrame, Text: "Welcome, monitor"})
		}
		for _, loc := range m.Reveal {
			p.AddActionable(loc).OnClick = func(p *browsertest.Page) {
				p.Element(m.AppTile).State.Obscured = false
			}
		}
	}
	p.AddActionable(m.ProfileMenu)
	p.AddActionable(m.SignOut).OnClick = func(p *browsertest.Page) {
		p.Add(m.LogoutBanner, &browsertest.Element{State: visible(), Text: "Logout Successful"})
	}
}

// InstallAll installs the portal, the login form and the dashboard.
func (s *Site) InstallAll() {
	s.InstallFederated(false)
	s.InstallLogin()
	s.InstallDashboard()
}

// FastSettings keeps every wait short enough for unit tests.
func FastSettings() flow.Settings {
	return flow.Settings{
		Implicit:  50 * time.Millisecond,
		Dashboard: 50 * time.Millisecond,
		Reveal:    20 * time.Millisecond,
		Logout:    50 * time.Millisecond,
		Click: interact.RetryPolicy{
			MaxAttempts:    2,
			AttemptTimeout: 30 * time.Millisecond,
		},
	}
}

// NewInteractor returns an interactor on page with no settle delay and a
// short text timeout.
func NewInteractor(page browser.Page, log logger.Logger) *interact.Interactor {
	waiter := interact.NewWaiter(page, 2*time.Millisecond, log)
	return interact.NewInteractor(page, waiter, interact.Options{TextTimeout: 50 * time.Millisecond}, log)
}

// SingleLoginProfile checks the application login only.
func SingleLoginProfile() *credential.Profile {
	return &credential.Profile{
		Kind: credential.KindSingleLogin,
		Target: credential.Account{
			URL:      "https://app.example.com/login",
			Username: "monitor@example.com",
			Password: "app-secret",
		},
		Recipients: credential.Recipients{"oncall@example.com"},
	}
}

// FederatedProfile additionally signs in through the portal.
func FederatedProfile() *credential.Profile {
	p := SingleLoginProfile()
	p.Kind = credential.KindFederatedLogin
	p.Federated = &credential.Account{
		URL:      "https://portal.example.com",
		Username: "monitor",
		Password: "portal-secret",
	}
	return p
}
