package flow

import (
	"context"
	"errors"

	"github.com/hairizuanbinnoorazman/synthetic-monitor/browser"
)

// WithinFrame runs fn with lookups scoped to the frame matched by loc. The
// session is returned to the top-level document on every path, including
// when fn fails or panics.
func WithinFrame(ctx context.Context, page browser.Page, loc browser.Locator, fn func() error) (err error) {
	if err := page.EnterFrame(ctx, loc); err != nil {
		return err
	}
	defer func() {
		if exitErr := page.ExitFrame(ctx); exitErr != nil {
			err = errors.Join(err, exitErr)
		}
	}()

	return fn()
}
