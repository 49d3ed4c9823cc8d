package interact

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hairizuanbinnoorazman/synthetic-monitor/browser"
	"github.com/hairizuanbinnoorazman/synthetic-monitor/logger"
)

// DefaultPollInterval matches the polling cadence of WebDriver waits.
const DefaultPollInterval = 500 * time.Millisecond

// Waiter polls the page until an element reaches a wanted state.
type Waiter struct {
	page   browser.Page
	poll   time.Duration
	logger logger.Logger
}

// NewWaiter creates a Waiter. A non-positive poll uses DefaultPollInterval.
func NewWaiter(page browser.Page, poll time.Duration, log logger.Logger) *Waiter {
	if poll <= 0 {
		poll = DefaultPollInterval
	}
	return &Waiter{
		page:   page,
		poll:   poll,
		logger: log,
	}
}

// PollInterval returns the interval between probes.
func (w *Waiter) PollInterval() time.Duration {
	return w.poll
}

// WaitUntilActionable waits until loc is present, visible, enabled and not
// covered by another element.
func (w *Waiter) WaitUntilActionable(ctx context.Context, loc browser.Locator, timeout time.Duration) (*browser.Element, error) {
	return w.wait(ctx, loc, timeout, ConditionActionable, browser.ElementState.Actionable)
}

// WaitUntilVisible waits until loc is present and visible. It is meant for
// passive assertions where the element is never acted on.
func (w *Waiter) WaitUntilVisible(ctx context.Context, loc browser.Locator, timeout time.Duration) (*browser.Element, error) {
	return w.wait(ctx, loc, timeout, ConditionVisible, func(s browser.ElementState) bool {
		return s.Visible
	})
}

// WaitUntilPresent waits until loc matches a node, whatever its state.
func (w *Waiter) WaitUntilPresent(ctx context.Context, loc browser.Locator, timeout time.Duration) (*browser.Element, error) {
	return w.wait(ctx, loc, timeout, ConditionPresent, func(browser.ElementState) bool {
		return true
	})
}

func (w *Waiter) wait(ctx context.Context, loc browser.Locator, timeout time.Duration, cond Condition, accept func(browser.ElementState) bool) (*browser.Element, error) {
	start := time.Now()
	deadline := start.Add(timeout)

	var lastErr error
	for {
		probeCtx, cancel := context.WithDeadline(ctx, deadline)
		el, err := w.page.Probe(probeCtx, loc)
		cutShort := probeCtx.Err() != nil
		cancel()

		switch {
		case err == nil && accept(el.State):
			return el, nil
		case err == nil:
			lastErr = fmt.Errorf("element state %+v", el.State)
		case errors.Is(err, browser.ErrInvalidLocator):
			return nil, err
		case cutShort && lastErr != nil:
			// keep the last real probe result rather than the deadline
		default:
			lastErr = err
		}

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			terr := &TimeoutError{
				Locator:   loc,
				Condition: cond,
				Timeout:   timeout,
				Elapsed:   time.Since(start),
				Err:       lastErr,
			}
			w.logger.Debug(ctx, "wait timed out", map[string]interface{}{
				"locator":   loc.String(),
				"condition": string(cond),
				"timeout":   timeout.String(),
				"error":     terr.Error(),
			})
			return nil, terr
		}

		if err := Sleep(ctx, min(w.poll, remaining)); err != nil {
			return nil, err
		}
	}
}

// Sleep waits for d or until ctx is done. A non-positive d only reports
// whether ctx is already done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
