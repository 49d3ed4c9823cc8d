package testrun

import "time"

// SetVersion returns an UpdateSetter that records the captured site version.
func SetVersion(version string) UpdateSetter {
	return func(tr *TestRun) error {
		tr.Version = version
		return nil
	}
}

// SetElapsed returns an UpdateSetter that records the run duration.
func SetElapsed(d time.Duration) UpdateSetter {
	return func(tr *TestRun) error {
		tr.ElapsedMs = d.Milliseconds()
		return nil
	}
}

// SetFailedStep returns an UpdateSetter that names the step the run stopped at.
func SetFailedStep(step string) UpdateSetter {
	return func(tr *TestRun) error {
		tr.FailedStep = step
		return nil
	}
}
