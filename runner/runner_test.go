package runner

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hairizuanbinnoorazman/synthetic-monitor/browser"
	"github.com/hairizuanbinnoorazman/synthetic-monitor/credential"
	"github.com/hairizuanbinnoorazman/synthetic-monitor/flow"
	"github.com/hairizuanbinnoorazman/synthetic-monitor/flow/flowtest"
	"github.com/hairizuanbinnoorazman/synthetic-monitor/interact"
	"github.com/hairizuanbinnoorazman/synthetic-monitor/logger"
)

func setupRunner(site *flowtest.Site, profile *credential.Profile, opts ...Option) (*Runner, *logger.TestLogger) {
	log := logger.NewTestLogger()
	in := flowtest.NewInteractor(site.Page, log)
	return New(profile, site.Page, in, flowtest.FastSettings(), log, opts...), log
}

func TestSteps(t *testing.T) {
	settings := flowtest.FastSettings()

	single := Steps(flowtest.SingleLoginProfile(), settings, DefaultAppName)
	require.Len(t, single, 2)
	assert.Equal(t, "login", single[0].Name())
	assert.Equal(t, "capture version", single[1].Name())

	federated := Steps(flowtest.FederatedProfile(), settings, DefaultAppName)
	require.Len(t, federated, 3)
	assert.Equal(t, "login to federated portal", federated[0].Name())
	assert.Equal(t, "login", federated[1].Name())
	assert.Equal(t, "capture version", federated[2].Name())
}

func TestRun_SingleLoginPasses(t *testing.T) {
	site := flowtest.NewSite()
	site.InstallAll()
	r, log := setupRunner(site, flowtest.SingleLoginProfile())

	v := r.Run(context.Background())

	require.True(t, v.OK(), "run failed: %v", v.Err)
	assert.Equal(t, []string{"login", "capture version"}, v.StepNames())
	assert.Equal(t, flowtest.SiteVersion, v.Version)
	assert.Equal(t, credential.KindSingleLogin, v.Kind)
	assert.Equal(t, []int{1, 2}, []int{v.Steps[0].Index, v.Steps[1].Index})
	assert.Positive(t, v.Elapsed)
	_, err := uuid.Parse(v.RunID)
	assert.NoError(t, err)

	// never touched the portal
	assert.Zero(t, site.Page.Element(site.Federated.SignIn).Probes)
	assert.True(t, log.HasMessage("synthetic monitor run passed"))
	assert.Empty(t, log.EntriesAt("error"))
}

func TestRun_FederatedPasses(t *testing.T) {
	site := flowtest.NewSite()
	site.InstallAll()
	r, _ := setupRunner(site, flowtest.FederatedProfile())

	v := r.Run(context.Background())

	require.True(t, v.OK(), "run failed: %v", v.Err)
	assert.Equal(t, []string{"login to federated portal", "login", "capture version"}, v.StepNames())
	assert.Equal(t, flowtest.SiteVersion, v.Version)
}

func TestRun_FederatedSubmitFails(t *testing.T) {
	site := flowtest.NewSite()
	site.InstallAll()
	submitErr := errors.New("portal form submission failed")
	site.Page.Element(site.Federated.Username).SubmitErr = submitErr
	r, log := setupRunner(site, flowtest.FederatedProfile())

	v := r.Run(context.Background())

	assert.False(t, v.OK())
	assert.Equal(t, []string{"login to federated portal"}, v.StepNames())
	assert.Equal(t, "login to federated portal", v.FailedStep)
	assert.ErrorIs(t, v.Err, submitErr)
	assert.Zero(t, site.Page.Element(site.Version.GlobalNav).Clicks)
	assert.True(t, log.HasMessage("synthetic monitor run failed"))
}

func TestRun_VersionLabelNeverVisible(t *testing.T) {
	site := flowtest.NewSite()
	site.InstallAll()
	site.Page.Element(site.Version.GlobalNav).OnClick = nil
	r, _ := setupRunner(site, flowtest.SingleLoginProfile())

	v := r.Run(context.Background())

	assert.False(t, v.OK())
	assert.Equal(t, "capture version", v.FailedStep)
	var stepErr *flow.StepError
	require.ErrorAs(t, v.Err, &stepErr)
	assert.Equal(t, "capture version", stepErr.Step)
	var timeoutErr *interact.TimeoutError
	require.ErrorAs(t, v.Err, &timeoutErr)
	assert.Equal(t, site.Version.VersionLabel, timeoutErr.Locator)
	assert.Empty(t, v.Version)
}

// stubStep stands in for a real step under the same name.
type stubStep struct {
	name string
	run  func() error
	runs int
}

func (s *stubStep) Name() string { return s.name }

func (s *stubStep) Run(ctx context.Context, rc *flow.RunContext) error {
	s.runs++
	return s.run()
}

func TestRun_EveryFailureAtEveryStep(t *testing.T) {
	injected := []struct {
		name string
		run  func() error
	}{
		{"timeout", func() error {
			return &interact.TimeoutError{Locator: browser.ByText("Welcome,"), Condition: interact.ConditionVisible, Err: browser.ErrNoSuchElement}
		}},
		{"interaction", func() error {
			return &browser.ActionError{Op: "click", Locator: browser.ByID("osp-nav-launcher"), Err: errors.New("element click intercepted")}
		}},
		{"environment", func() error {
			return &browser.EnvironmentError{Kind: "browser binary", Path: "/opt/chrome", Err: errors.New("no such file")}
		}},
		{"stale handle", func() error { return browser.ErrStaleElement }},
		{"unknown", func() error { return errors.New("unexpected") }},
		{"panic", func() error { panic("nil map write") }},
	}
	names := []string{"login to federated portal", "login", "capture version"}

	for _, inj := range injected {
		for pos := range names {
			t.Run(fmt.Sprintf("%s at %s", inj.name, names[pos]), func(t *testing.T) {
				steps := make([]*stubStep, len(names))
				flowSteps := make([]flow.Step, len(names))
				for i, name := range names {
					steps[i] = &stubStep{name: name, run: func() error { return nil }}
					if i == pos {
						steps[i].run = inj.run
					}
					flowSteps[i] = steps[i]
				}

				site := flowtest.NewSite()
				r, log := setupRunner(site, flowtest.FederatedProfile(), WithSteps(flowSteps...))

				var v Verdict
				require.NotPanics(t, func() { v = r.Run(context.Background()) })

				assert.False(t, v.OK())
				assert.Equal(t, names[pos], v.FailedStep)
				assert.Len(t, v.Steps, pos+1)
				for i, s := range steps {
					if i <= pos {
						assert.Equal(t, 1, s.runs, names[i])
					} else {
						assert.Zero(t, s.runs, names[i])
					}
				}
				if inj.name == "panic" {
					assert.ErrorIs(t, v.Err, ErrStepPanicked)
				}
				assert.NotEmpty(t, log.EntriesAt("error"))
			})
		}
	}
}

func TestRun_Reporters(t *testing.T) {
	site := flowtest.NewSite()
	site.InstallAll()

	var got []Verdict
	recording := ReporterFunc(func(ctx context.Context, v Verdict) error {
		got = append(got, v)
		return nil
	})
	failing := ReporterFunc(func(ctx context.Context, v Verdict) error {
		return errors.New("pushgateway unavailable")
	})
	panicking := ReporterFunc(func(ctx context.Context, v Verdict) error {
		panic("bad reporter")
	})
	starter := &startRecorder{}

	r, log := setupRunner(site, flowtest.SingleLoginProfile(),
		WithReporters(failing, panicking, starter, recording))
	v := r.Run(context.Background())

	assert.True(t, v.OK())
	require.Len(t, got, 1)
	assert.Equal(t, v.RunID, got[0].RunID)
	assert.Equal(t, []string{v.RunID}, starter.started)
	assert.Equal(t, []string{v.RunID}, starter.reported)
	assert.Len(t, log.EntriesAt("warn"), 2)
}

type startRecorder struct {
	started  []string
	reported []string
}

func (s *startRecorder) Start(ctx context.Context, v Verdict) error {
	s.started = append(s.started, v.RunID)
	return nil
}

func (s *startRecorder) Report(ctx context.Context, v Verdict) error {
	s.reported = append(s.reported, v.RunID)
	return nil
}

func TestRun_CancelledContext(t *testing.T) {
	site := flowtest.NewSite()
	site.InstallAll()
	r, _ := setupRunner(site, flowtest.SingleLoginProfile())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	v := r.Run(ctx)

	assert.False(t, v.OK())
	assert.ErrorIs(t, v.Err, context.Canceled)
	assert.Equal(t, "login", v.FailedStep)
}

func TestReportSetupFailure(t *testing.T) {
	envErr := &browser.EnvironmentError{Kind: "chrome", Path: "/opt/monitor/chrome-linux/chrome", Err: errors.New("no such file or directory")}

	tests := []struct {
		name      string
		profile   *credential.Profile
		reporters func(starter *startRecorder, got *[]Verdict) []Reporter
		wantWarns int
	}{
		{
			name:    "single login",
			profile: flowtest.SingleLoginProfile(),
			reporters: func(starter *startRecorder, got *[]Verdict) []Reporter {
				return []Reporter{starter, ReporterFunc(func(ctx context.Context, v Verdict) error {
					*got = append(*got, v)
					return nil
				})}
			},
		},
		{
			name:    "federated with a failing reporter",
			profile: flowtest.FederatedProfile(),
			reporters: func(starter *startRecorder, got *[]Verdict) []Reporter {
				return []Reporter{
					ReporterFunc(func(ctx context.Context, v Verdict) error {
						return errors.New("history database locked")
					}),
					starter,
					ReporterFunc(func(ctx context.Context, v Verdict) error {
						*got = append(*got, v)
						return nil
					}),
				}
			},
			wantWarns: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := logger.NewTestLogger()
			starter := &startRecorder{}
			var got []Verdict
			startedAt := time.Now().Add(-time.Second)

			v := ReportSetupFailure(context.Background(), tt.profile, startedAt, envErr, log, tt.reporters(starter, &got)...)

			assert.False(t, v.OK())
			assert.Equal(t, SetupStep, v.FailedStep)
			assert.Equal(t, tt.profile.Kind, v.Kind)
			assert.Equal(t, tt.profile.Target.URL, v.TargetURL)
			assert.Equal(t, startedAt, v.StartedAt)
			assert.GreaterOrEqual(t, v.Elapsed, time.Second)
			assert.Empty(t, v.Steps)

			var stepErr *flow.StepError
			require.ErrorAs(t, v.Err, &stepErr)
			assert.Equal(t, SetupStep, stepErr.Step)
			var gotEnv *browser.EnvironmentError
			assert.ErrorAs(t, v.Err, &gotEnv)

			_, err := uuid.Parse(v.RunID)
			assert.NoError(t, err)
			require.Len(t, got, 1)
			assert.Equal(t, v.RunID, got[0].RunID)
			assert.Equal(t, []string{v.RunID}, starter.started)
			assert.Equal(t, []string{v.RunID}, starter.reported)
			assert.True(t, log.HasMessage("synthetic monitor run failed"))
			assert.Len(t, log.EntriesAt("warn"), tt.wantWarns)
		})
	}
}
