package interact

import (
	"context"
	"time"

	"github.com/hairizuanbinnoorazman/synthetic-monitor/browser"
	"github.com/hairizuanbinnoorazman/synthetic-monitor/logger"
)

// Options tunes an Interactor.
type Options struct {
	// SettleDelay is slept after resolving an element and before acting on
	// it, so in-flight layout or animation can finish.
	SettleDelay time.Duration

	// TextTimeout bounds how long SetText waits for its field.
	TextTimeout time.Duration
}

// DefaultOptions returns a 500ms settle delay and a 60s text timeout.
func DefaultOptions() Options {
	return Options{
		SettleDelay: 500 * time.Millisecond,
		TextTimeout: 60 * time.Second,
	}
}

// Outcome is the result of one retried interaction.
type Outcome struct {
	Element   *browser.Element
	Attempts  int
	Refreshes int
	Err       error
}

// OK reports whether the interaction succeeded.
func (o Outcome) OK() bool {
	return o.Err == nil
}

type clickConfig struct {
	mode browser.ClickMode
}

// ClickOption customises a single click.
type ClickOption func(*clickConfig)

// WithPointer clicks by moving the simulated cursor onto the element
// instead of calling its click() method. The built-in steps click through
// click(); WithPointer is for custom steps whose targets only react to
// pointer events.
func WithPointer() ClickOption {
	return func(c *clickConfig) {
		c.mode = browser.ClickPointer
	}
}

// Interactor performs DOM actions with waits and bounded retries.
type Interactor struct {
	page   browser.Page
	waiter *Waiter
	opts   Options
	logger logger.Logger
	sleep  func(ctx context.Context, d time.Duration) error
}

// NewInteractor creates an Interactor acting on page.
func NewInteractor(page browser.Page, waiter *Waiter, opts Options, log logger.Logger) *Interactor {
	defaults := DefaultOptions()
	if opts.SettleDelay < 0 {
		opts.SettleDelay = 0
	}
	if opts.TextTimeout <= 0 {
		opts.TextTimeout = defaults.TextTimeout
	}
	return &Interactor{
		page:   page,
		waiter: waiter,
		opts:   opts,
		logger: log,
		sleep:  Sleep,
	}
}

// Waiter returns the waiter used to resolve elements.
func (i *Interactor) Waiter() *Waiter {
	return i.waiter
}

// Click resolves loc and clicks it, retrying according to policy. On final
// failure the error of the last attempt is returned as is.
func (i *Interactor) Click(ctx context.Context, loc browser.Locator, policy RetryPolicy, opts ...ClickOption) (*browser.Element, error) {
	o := i.ClickOutcome(ctx, loc, policy, opts...)
	return o.Element, o.Err
}

// ClickElement clicks an already resolved element. The handle is used for
// the first attempt only while it is still current; every other attempt
// resolves el.Locator again. The built-in steps click by locator; this is
// for custom steps that already hold a handle from a wait.
func (i *Interactor) ClickElement(ctx context.Context, el *browser.Element, policy RetryPolicy, opts ...ClickOption) (*browser.Element, error) {
	o := i.click(ctx, el.Locator, el, policy, opts)
	return o.Element, o.Err
}

// ClickOutcome is Click with the attempt bookkeeping exposed.
func (i *Interactor) ClickOutcome(ctx context.Context, loc browser.Locator, policy RetryPolicy, opts ...ClickOption) Outcome {
	return i.click(ctx, loc, nil, policy, opts)
}

func (i *Interactor) click(ctx context.Context, loc browser.Locator, handle *browser.Element, policy RetryPolicy, opts []ClickOption) Outcome {
	var o Outcome
	if err := policy.Validate(); err != nil {
		o.Err = err
		return o
	}

	cfg := clickConfig{mode: browser.ClickProgrammatic}
	for _, opt := range opts {
		opt(&cfg)
	}

	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		o.Attempts = attempt

		el, err := i.clickOnce(ctx, loc, handle, policy.AttemptTimeout, cfg.mode)
		if err == nil {
			o.Element = el
			o.Err = nil
			return o
		}
		o.Err = err

		if attempt == policy.MaxAttempts || ctx.Err() != nil {
			break
		}

		i.logger.Warn(ctx, "click failed, retrying", map[string]interface{}{
			"locator":      loc.String(),
			"attempt":      attempt,
			"max_attempts": policy.MaxAttempts,
			"refresh":      policy.RefreshOnRetry,
			"error":        err.Error(),
		})

		if policy.RefreshOnRetry {
			o.Refreshes++
			if rerr := i.page.Reload(ctx); rerr != nil {
				i.logger.Warn(ctx, "page reload before retry failed", map[string]interface{}{
					"error": rerr.Error(),
				})
			}
		}
		if serr := i.sleep(ctx, policy.RetryDelay); serr != nil {
			break
		}
	}

	return o
}

func (i *Interactor) clickOnce(ctx context.Context, loc browser.Locator, handle *browser.Element, timeout time.Duration, mode browser.ClickMode) (*browser.Element, error) {
	el := handle
	if el == nil || el.Generation != i.page.Generation() {
		var err error
		el, err = i.waiter.WaitUntilActionable(ctx, loc, timeout)
		if err != nil {
			return nil, err
		}
	}

	if err := i.sleep(ctx, i.opts.SettleDelay); err != nil {
		return nil, err
	}
	if err := i.page.ScrollIntoView(ctx, el); err != nil {
		return nil, err
	}
	if err := i.page.Click(ctx, el, mode); err != nil {
		return nil, err
	}
	return el, nil
}

// SetText waits for loc to become actionable, optionally clears it and types
// text as a single move, click and type gesture. It does not retry.
func (i *Interactor) SetText(ctx context.Context, loc browser.Locator, text string, clearFirst bool) (*browser.Element, error) {
	el, err := i.waiter.WaitUntilActionable(ctx, loc, i.opts.TextTimeout)
	if err != nil {
		return nil, err
	}
	if err := i.page.ScrollIntoView(ctx, el); err != nil {
		return nil, err
	}
	if clearFirst {
		if err := i.page.Clear(ctx, el); err != nil {
			return nil, err
		}
	}
	if err := i.page.TypeText(ctx, el, text); err != nil {
		return nil, err
	}
	return el, nil
}

// Submit submits the form owning loc through native form submission,
// bypassing the click path.
func (i *Interactor) Submit(ctx context.Context, loc browser.Locator, timeout time.Duration) error {
	el, err := i.waiter.WaitUntilPresent(ctx, loc, timeout)
	if err != nil {
		return err
	}
	return i.page.Submit(ctx, el)
}

// ReadText waits for loc to become visible and returns its text.
func (i *Interactor) ReadText(ctx context.Context, loc browser.Locator, timeout time.Duration) (string, error) {
	el, err := i.waiter.WaitUntilVisible(ctx, loc, timeout)
	if err != nil {
		return "", err
	}
	return i.page.Text(ctx, el)
}

// IsActionable reports whether loc becomes actionable within timeout.
func (i *Interactor) IsActionable(ctx context.Context, loc browser.Locator, timeout time.Duration) bool {
	_, err := i.waiter.WaitUntilActionable(ctx, loc, timeout)
	return err == nil
}
