package runner

import "context"

// Reporter receives the verdict of every run. Reporter errors are logged by
// the runner and never change the verdict.
type Reporter interface {
	Report(ctx context.Context, v Verdict) error
}

// StartReporter is implemented by reporters that also want to know when a
// run begins. The verdict passed to Start has only the run identity set.
type StartReporter interface {
	Reporter
	Start(ctx context.Context, v Verdict) error
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(ctx context.Context, v Verdict) error

// Report calls f.
func (f ReporterFunc) Report(ctx context.Context, v Verdict) error {
	return f(ctx, v)
}
