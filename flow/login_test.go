package flow_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hairizuanbinnoorazman/synthetic-monitor/browser"
	"github.com/hairizuanbinnoorazman/synthetic-monitor/flow"
	"github.com/hairizuanbinnoorazman/synthetic-monitor/flow/flowtest"
	"github.com/hairizuanbinnoorazman/synthetic-monitor/interact"
)

func TestLogin_Succeeds(t *testing.T) {
	site := flowtest.NewSite()
	site.InstallLogin()
	profile := flowtest.SingleLoginProfile()
	rc, log := setupRunContext(site, profile)

	step := flow.NewLogin(flowtest.FastSettings())
	require.NoError(t, step.Run(context.Background(), rc))

	assert.Equal(t, "login", step.Name())
	assert.Equal(t, profile.Target.URL, site.Page.URL)
	assert.Equal(t, []string{profile.Target.Username}, site.Page.Element(site.Login.Username).Typed)
	assert.Equal(t, []string{profile.Target.Password}, site.Page.Element(site.Login.Password).Typed)
	assert.Zero(t, site.Page.Element(site.Login.Username).Cleared)
	assert.Equal(t, 1, site.Page.Element(site.Login.Submit).Clicks)
	assert.True(t, log.HasMessage("login succeeded"))

	for _, e := range log.Entries() {
		for _, v := range e.Fields {
			assert.NotEqual(t, profile.Target.Password, v, "password logged in %q", e.Message)
		}
	}
}

func TestLogin_Failures(t *testing.T) {
	navErr := errors.New("net::ERR_NAME_NOT_RESOLVED")
	clickErr := &browser.ActionError{Op: "click", Err: errors.New("element click intercepted")}

	tests := []struct {
		name   string
		setup  func(site *flowtest.Site)
		wantIs error
		wantAs interface{}
	}{
		{
			name: "navigation fails",
			setup: func(site *flowtest.Site) {
				site.Page.NavigateErr[flowtest.SingleLoginProfile().Target.URL] = navErr
			},
			wantIs: navErr,
		},
		{
			name: "login form never loads",
			setup: func(site *flowtest.Site) {
				site.Page.Remove(site.Login.Form)
			},
			wantAs: new(*interact.TimeoutError),
		},
		{
			name: "password field missing",
			setup: func(site *flowtest.Site) {
				site.Page.Remove(site.Login.Password)
			},
			wantIs: browser.ErrNoSuchElement,
		},
		{
			name: "submit keeps failing",
			setup: func(site *flowtest.Site) {
				site.Page.Element(site.Login.Submit).ClickErrs = []error{clickErr, clickErr}
			},
			wantIs: clickErr,
		},
		{
			name: "wrong credentials keep the welcome banner away",
			setup: func(site *flowtest.Site) {
				site.Page.Element(site.Login.Submit).OnClick = nil
			},
			wantAs: new(*interact.TimeoutError),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			site := flowtest.NewSite()
			site.InstallLogin()
			tt.setup(site)
			rc, _ := setupRunContext(site, flowtest.SingleLoginProfile())

			err := flow.NewLogin(flowtest.FastSettings()).Run(context.Background(), rc)
			require.Error(t, err)
			if tt.wantIs != nil {
				assert.ErrorIs(t, err, tt.wantIs)
			}
			if tt.wantAs != nil {
				assert.ErrorAs(t, err, tt.wantAs)
			}
		})
	}
}
