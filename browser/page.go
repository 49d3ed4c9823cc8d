package browser

import "context"

// Page is the set of DOM operations the monitor performs against a live
// browser. Session implements it with chromedp; tests substitute fakes.
type Page interface {
	// Navigate loads url in the current tab, bounded by the page-load timeout.
	Navigate(ctx context.Context, url string) error

	// Reload reloads the current document. All handles become stale.
	Reload(ctx context.Context) error

	// Generation identifies the current document. It changes on every
	// Navigate and Reload.
	Generation() uint64

	// Probe resolves loc once, without waiting, in the current frame scope.
	// It returns ErrNoSuchElement when nothing matches.
	Probe(ctx context.Context, loc Locator) (*Element, error)

	// ScrollIntoView scrolls el to the top of its scrolling ancestors.
	ScrollIntoView(ctx context.Context, el *Element) error

	// Click dispatches a click on el.
	Click(ctx context.Context, el *Element, mode ClickMode) error

	// Clear empties the value of an input-like element.
	Clear(ctx context.Context, el *Element) error

	// TypeText moves to el, clicks it and sends text as key events, as one gesture.
	TypeText(ctx context.Context, el *Element, text string) error

	// Submit submits the form that owns el.
	Submit(ctx context.Context, el *Element) error

	// Text returns the rendered text of el.
	Text(ctx context.Context, el *Element) (string, error)

	// EnterFrame makes the frame element matched by loc the scope of later lookups.
	EnterFrame(ctx context.Context, loc Locator) error

	// ExitFrame returns the lookup scope to the top-level document.
	ExitFrame(ctx context.Context) error
}
