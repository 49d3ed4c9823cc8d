package flow_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hairizuanbinnoorazman/synthetic-monitor/flow"
	"github.com/hairizuanbinnoorazman/synthetic-monitor/flow/flowtest"
	"github.com/hairizuanbinnoorazman/synthetic-monitor/interact"
)

func loggedInSite() *flowtest.Site {
	site := flowtest.NewSite()
	site.InstallLogin()
	site.InstallDashboard()
	// the login step already reached the dashboard
	site.Page.AddActionable(site.Login.Welcome)
	return site
}

func TestVersionCapture_ReadsLabel(t *testing.T) {
	site := loggedInSite()
	rc, log := setupRunContext(site, flowtest.SingleLoginProfile())

	step := flow.NewVersionCapture(flowtest.FastSettings())
	require.NoError(t, step.Run(context.Background(), rc))

	assert.Equal(t, "capture version", step.Name())
	assert.Equal(t, flowtest.SiteVersion, rc.Version)
	assert.Equal(t, 1, site.Page.Element(site.Version.GlobalNav).Clicks)

	infos := log.EntriesAt("info")
	require.NotEmpty(t, infos)
	last := infos[len(infos)-1]
	assert.Equal(t, flowtest.SiteVersion, last.Fields["version"])
}

func TestVersionCapture_Failures(t *testing.T) {
	tests := []struct {
		name  string
		setup func(site *flowtest.Site)
	}{
		{"dashboard never loads", func(site *flowtest.Site) {
			site.Page.Remove(site.Version.CreateSpace)
		}},
		{"welcome banner hidden", func(site *flowtest.Site) {
			site.Page.Element(site.Login.Welcome).State.Visible = false
		}},
		{"navigation button missing", func(site *flowtest.Site) {
			site.Page.Remove(site.Version.GlobalNav)
		}},
		{"version label never shows", func(site *flowtest.Site) {
			site.Page.Element(site.Version.GlobalNav).OnClick = nil
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			site := loggedInSite()
			tt.setup(site)
			rc, _ := setupRunContext(site, flowtest.SingleLoginProfile())

			err := flow.NewVersionCapture(flowtest.FastSettings()).Run(context.Background(), rc)
			var timeoutErr *interact.TimeoutError
			assert.ErrorAs(t, err, &timeoutErr)
			assert.Empty(t, rc.Version)
		})
	}
}
