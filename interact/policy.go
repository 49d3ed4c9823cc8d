package interact

import (
	"errors"
	"time"
)

// ErrInvalidPolicy is returned by RetryPolicy.Validate.
var ErrInvalidPolicy = errors.New("invalid retry policy")

// RetryPolicy bounds how a click is retried.
//
// When RefreshOnRetry is set the page is reloaded before every attempt after
// a failure. A reload invalidates every element handle resolved so far, so
// each retry resolves its target again instead of reusing the old handle.
type RetryPolicy struct {
	MaxAttempts    int
	AttemptTimeout time.Duration
	RetryDelay     time.Duration
	RefreshOnRetry bool
}

// DefaultRetryPolicy returns three attempts of 15s each with a 1s pause.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:    3,
		AttemptTimeout: 15 * time.Second,
		RetryDelay:     time.Second,
	}
}

// Validate checks the policy invariants.
func (p RetryPolicy) Validate() error {
	if p.MaxAttempts < 1 {
		return errors.Join(ErrInvalidPolicy, errors.New("max attempts must be at least 1"))
	}
	if p.AttemptTimeout <= 0 {
		return errors.Join(ErrInvalidPolicy, errors.New("attempt timeout must be positive"))
	}
	if p.RetryDelay < 0 {
		return errors.Join(ErrInvalidPolicy, errors.New("retry delay must not be negative"))
	}
	return nil
}

// WithRefresh returns a copy of p that reloads the page between attempts.
func (p RetryPolicy) WithRefresh() RetryPolicy {
	p.RefreshOnRetry = true
	return p
}
