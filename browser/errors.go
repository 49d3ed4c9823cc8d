package browser

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidLocator is returned when a locator cannot be translated into a query.
	ErrInvalidLocator = errors.New("invalid locator")

	// ErrNoSuchElement is returned when no node matches a locator.
	ErrNoSuchElement = errors.New("no such element")

	// ErrStaleElement is returned when a handle was resolved before the last
	// navigation or reload of the page.
	ErrStaleElement = errors.New("element handle is stale")

	// ErrSessionClosed is returned for any operation after Release.
	ErrSessionClosed = errors.New("browser session closed")
)

// EnvironmentError reports a required executable that is missing.
// The run cannot start when one is returned.
type EnvironmentError struct {
	Kind string
	Path string
	Err  error
}

func (e *EnvironmentError) Error() string {
	return fmt.Sprintf("%s not found at %s: %v", e.Kind, e.Path, e.Err)
}

func (e *EnvironmentError) Unwrap() error { return e.Err }

// ActionError reports a DOM action (click, type, submit, ...) that the
// browser rejected.
type ActionError struct {
	Op      string
	Locator Locator
	Err     error
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Locator, e.Err)
}

func (e *ActionError) Unwrap() error { return e.Err }
