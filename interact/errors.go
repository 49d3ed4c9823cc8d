package interact

import (
	"fmt"
	"time"

	"github.com/hairizuanbinnoorazman/synthetic-monitor/browser"
)

// Condition names what a wait was waiting for.
type Condition string

const (
	ConditionPresent    Condition = "present"
	ConditionVisible    Condition = "visible"
	ConditionActionable Condition = "actionable"
)

// TimeoutError reports a UI state that never materialised within its budget.
// Err holds the last probe failure, if any.
type TimeoutError struct {
	Locator   browser.Locator
	Condition Condition
	Timeout   time.Duration
	Elapsed   time.Duration
	Err       error
}

func (e *TimeoutError) Error() string {
	msg := fmt.Sprintf("timed out after %s waiting for %s to be %s",
		e.Elapsed.Round(time.Millisecond), e.Locator, e.Condition)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *TimeoutError) Unwrap() error { return e.Err }
