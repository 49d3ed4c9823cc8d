package interact

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hairizuanbinnoorazman/synthetic-monitor/browser"
	"github.com/hairizuanbinnoorazman/synthetic-monitor/browser/browsertest"
)

func attemptErrors(n int) []error {
	errs := make([]error, n)
	for i := range errs {
		errs[i] = fmt.Errorf("click intercepted on attempt %d", i+1)
	}
	return errs
}

func TestInteractor_ClickAttemptsAndFinalError(t *testing.T) {
	const maxAttempts = 3
	submit := browser.ByXPath(`//button[@class="btn submit"]`)

	for k := 0; k <= maxAttempts; k++ {
		t.Run(fmt.Sprintf("fails %d times", k), func(t *testing.T) {
			page, in, _, _ := setupInteractor()
			errs := attemptErrors(k)
			el := page.AddActionable(submit)
			el.ClickErrs = errs

			o := in.ClickOutcome(context.Background(), submit, fastPolicy(maxAttempts))

			if k < maxAttempts {
				require.NoError(t, o.Err)
				assert.True(t, o.OK())
				assert.Equal(t, k+1, o.Attempts)
				require.NotNil(t, o.Element)
				assert.Equal(t, submit, o.Element.Locator)
			} else {
				assert.False(t, o.OK())
				assert.Equal(t, maxAttempts, o.Attempts)
				// the last attempt's error, unwrapped
				assert.Same(t, errs[maxAttempts-1], o.Err)
				assert.Nil(t, o.Element)
			}
			assert.Equal(t, o.Attempts, el.Clicks)
			assert.Zero(t, page.Reloads)
		})
	}
}

func TestInteractor_ClickResolutionFailures(t *testing.T) {
	const maxAttempts = 3
	launcher := browser.ByID("osp-nav-launcher")

	for k := 0; k <= maxAttempts; k++ {
		t.Run(fmt.Sprintf("unresolvable for %d attempts", k), func(t *testing.T) {
			page, in, _, _ := setupInteractor()
			el := page.AddActionable(launcher)
			probeErrs := make([]error, k)
			for i := range probeErrs {
				probeErrs[i] = fmt.Errorf("%w: attempt %d", browser.ErrInvalidLocator, i+1)
			}
			el.ProbeErrs = probeErrs

			o := in.ClickOutcome(context.Background(), launcher, fastPolicy(maxAttempts))

			if k < maxAttempts {
				require.NoError(t, o.Err)
				assert.Equal(t, k+1, o.Attempts)
				assert.Equal(t, 1, el.Clicks)
			} else {
				assert.Equal(t, maxAttempts, o.Attempts)
				assert.Same(t, probeErrs[maxAttempts-1], o.Err)
				assert.Zero(t, el.Clicks)
			}
		})
	}
}

func TestInteractor_ClickTimesOutWhenElementNeverAppears(t *testing.T) {
	page, in, _, _ := setupInteractor()
	loc := browser.ByID("global-nav-button")

	o := in.ClickOutcome(context.Background(), loc, fastPolicy(2))

	var timeoutErr *TimeoutError
	require.ErrorAs(t, o.Err, &timeoutErr)
	assert.Equal(t, loc, timeoutErr.Locator)
	assert.Equal(t, 2, o.Attempts)
	assert.Empty(t, page.Ops())
}

func TestInteractor_RefreshOnRetry(t *testing.T) {
	tests := []struct {
		name          string
		failures      int
		maxAttempts   int
		wantRefreshes int
	}{
		{"first attempt success", 0, 3, 0},
		{"second attempt success", 1, 3, 1},
		{"third attempt success", 2, 3, 2},
		{"all attempts fail", 3, 3, 2},
		{"single attempt fails", 1, 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, in, _, _ := setupInteractor()
			loc := browser.ByID("osp-nav-user-profile")
			el := page.AddActionable(loc)
			el.ClickErrs = attemptErrors(tt.failures)

			o := in.ClickOutcome(context.Background(), loc, fastPolicy(tt.maxAttempts).WithRefresh())

			assert.Equal(t, tt.wantRefreshes, page.Reloads)
			assert.Equal(t, tt.wantRefreshes, o.Refreshes)
			assert.Equal(t, o.Attempts-1, page.Reloads)
		})
	}
}

func TestInteractor_NoRefreshWithoutPolicy(t *testing.T) {
	page, in, _, _ := setupInteractor()
	loc := browser.ByID("osp-nav-menu-signout")
	page.AddActionable(loc).ClickErrs = attemptErrors(2)

	_, err := in.Click(context.Background(), loc, fastPolicy(3))
	require.NoError(t, err)
	assert.Zero(t, page.Reloads)
}

func TestInteractor_ClickSleeps(t *testing.T) {
	page, in, rec, log := setupInteractor()
	loc := browser.ByID("create")
	page.AddActionable(loc).ClickErrs = attemptErrors(1)

	_, err := in.Click(context.Background(), loc, fastPolicy(3))
	require.NoError(t, err)

	// settle, retry delay, settle
	assert.Equal(t, []time.Duration{500 * time.Millisecond, time.Second, 500 * time.Millisecond}, rec.durations())
	warns := log.EntriesAt("warn")
	require.Len(t, warns, 1)
	assert.Equal(t, 1, warns[0].Fields["attempt"])
}

func TestInteractor_ClickOrderAndMode(t *testing.T) {
	page, in, _, _ := setupInteractor()
	loc := browser.ByName("tile")
	page.AddActionable(loc)

	_, err := in.Click(context.Background(), loc, fastPolicy(1), WithPointer())
	require.NoError(t, err)
	_, err = in.Click(context.Background(), loc, fastPolicy(1))
	require.NoError(t, err)

	assert.Equal(t, []string{
		`scroll name="tile"`,
		`click pointer name="tile"`,
		`scroll name="tile"`,
		`click programmatic name="tile"`,
	}, page.Ops())
}

func TestInteractor_InvalidPolicy(t *testing.T) {
	page, in, _, _ := setupInteractor()
	loc := browser.ByName("tile")
	page.AddActionable(loc)

	o := in.ClickOutcome(context.Background(), loc, RetryPolicy{})
	assert.ErrorIs(t, o.Err, ErrInvalidPolicy)
	assert.Zero(t, o.Attempts)
	assert.Empty(t, page.Ops())
}

func TestInteractor_ClickElementReusesLiveHandle(t *testing.T) {
	page, in, _, _ := setupInteractor()
	loc := browser.ByID("see-more")
	el := page.AddActionable(loc)

	handle, err := page.Probe(context.Background(), loc)
	require.NoError(t, err)
	probes := el.Probes

	_, err = in.ClickElement(context.Background(), handle, fastPolicy(3))
	require.NoError(t, err)
	assert.Equal(t, probes, el.Probes)
	assert.Equal(t, 1, el.Clicks)
}

func TestInteractor_ClickElementReresolvesAfterRefresh(t *testing.T) {
	page, in, _, _ := setupInteractor()
	loc := browser.ByID("see-more")
	el := page.AddActionable(loc)
	el.ClickErrs = attemptErrors(1)

	handle, err := page.Probe(context.Background(), loc)
	require.NoError(t, err)

	got, err := in.ClickElement(context.Background(), handle, fastPolicy(3).WithRefresh())
	require.NoError(t, err)
	assert.Equal(t, 1, page.Reloads)
	assert.NotEqual(t, handle.Generation, got.Generation)
	assert.Equal(t, page.Generation(), got.Generation)
	assert.Equal(t, 2, el.Probes)
}

func TestInteractor_ClickStopsOnCancellation(t *testing.T) {
	page, in, _, _ := setupInteractor()
	loc := browser.ByName("x")
	page.AddActionable(loc).ClickErrs = attemptErrors(3)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	o := in.ClickOutcome(ctx, loc, fastPolicy(3))
	assert.Error(t, o.Err)
	assert.Equal(t, 1, o.Attempts)
}

func TestInteractor_SetText(t *testing.T) {
	tests := []struct {
		name       string
		clearFirst bool
		wantOps    []string
	}{
		{"without clearing", false, []string{`scroll name="username"`, `type name="username"`}},
		{"clearing first", true, []string{`scroll name="username"`, `clear name="username"`, `type name="username"`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, in, _, _ := setupInteractor()
			loc := browser.ByName("username")
			el := page.AddActionable(loc)

			got, err := in.SetText(context.Background(), loc, "monitor@example.com", tt.clearFirst)
			require.NoError(t, err)
			assert.Equal(t, loc, got.Locator)
			assert.Equal(t, []string{"monitor@example.com"}, el.Typed)
			assert.Equal(t, tt.wantOps, page.Ops())
		})
	}
}

func TestInteractor_SetTextFailsFast(t *testing.T) {
	page, in, _, _ := setupInteractor()
	loc := browser.ByName("password")
	typeErr := &browser.ActionError{Op: "type", Locator: loc, Err: errors.New("element not focusable")}
	el := page.AddActionable(loc)
	el.TypeErr = typeErr

	_, err := in.SetText(context.Background(), loc, "secret", false)
	assert.Same(t, typeErr, err)
	assert.Equal(t, 1, el.Probes)
	assert.Zero(t, page.Reloads)
}

func TestInteractor_SetTextMissingField(t *testing.T) {
	_, in, _, _ := setupInteractor()

	_, err := in.SetText(context.Background(), browser.ByName("pass"), "secret", false)
	var timeoutErr *TimeoutError
	assert.ErrorAs(t, err, &timeoutErr)
}

func TestInteractor_Submit(t *testing.T) {
	page, in, _, _ := setupInteractor()
	loc := browser.ByName("username")
	page.Add(loc, &browsertest.Element{State: browser.ElementState{Enabled: true}})

	require.NoError(t, in.Submit(context.Background(), loc, 20*time.Millisecond))
	assert.Equal(t, []string{`submit name="username"`}, page.Ops())

	submitErr := errors.New("form submission blocked")
	page.Element(loc).SubmitErr = submitErr
	assert.Same(t, submitErr, in.Submit(context.Background(), loc, 20*time.Millisecond))
}

func TestInteractor_ReadText(t *testing.T) {
	page, in, _, _ := setupInteractor()
	loc := browser.ByClassName("version")
	page.Add(loc, &browsertest.Element{State: browser.ElementState{Visible: true}, Text: "v2024.11.0"})

	text, err := in.ReadText(context.Background(), loc, 20*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, "v2024.11.0", text)
}

func TestInteractor_IsActionable(t *testing.T) {
	page, in, _, _ := setupInteractor()
	tile := browser.ByXPath(`//ids-layout-flex[@data-osp-id="osp-al-app-item"]`)

	assert.False(t, in.IsActionable(context.Background(), tile, 20*time.Millisecond))

	page.Add(tile, &browsertest.Element{State: browser.ElementState{Visible: true, Enabled: true, Obscured: true}})
	assert.False(t, in.IsActionable(context.Background(), tile, 20*time.Millisecond))

	page.AddActionable(tile)
	assert.True(t, in.IsActionable(context.Background(), tile, 20*time.Millisecond))
}
