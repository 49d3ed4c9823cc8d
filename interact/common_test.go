package interact

import (
	"context"
	"sync"
	"time"

	"github.com/hairizuanbinnoorazman/synthetic-monitor/browser/browsertest"
	"github.com/hairizuanbinnoorazman/synthetic-monitor/logger"
)

// sleepRecorder replaces real sleeps so retry tests run instantly.
type sleepRecorder struct {
	mu    sync.Mutex
	slept []time.Duration
}

func (r *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.slept = append(r.slept, d)
	return ctx.Err()
}

func (r *sleepRecorder) durations() []time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]time.Duration, len(r.slept))
	copy(out, r.slept)
	return out
}

// setupInteractor wires an Interactor to a fake page with a fast poll.
func setupInteractor() (*browsertest.Page, *Interactor, *sleepRecorder, *logger.TestLogger) {
	page := browsertest.NewPage()
	log := logger.NewTestLogger()
	waiter := NewWaiter(page, 5*time.Millisecond, log)
	in := NewInteractor(page, waiter, Options{SettleDelay: 500 * time.Millisecond, TextTimeout: 50 * time.Millisecond}, log)
	rec := &sleepRecorder{}
	in.sleep = rec.sleep
	return page, in, rec, log
}

// fastPolicy keeps per-attempt waits short for elements that never appear.
func fastPolicy(attempts int) RetryPolicy {
	return RetryPolicy{
		MaxAttempts:    attempts,
		AttemptTimeout: 30 * time.Millisecond,
		RetryDelay:     time.Second,
	}
}
