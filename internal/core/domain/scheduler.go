package domain

import "time"

// ScheduledTask represents a recurring background sync for one target.
type ScheduledTask struct {
	// ID is the unique identifier for the task.
	ID string

	// TargetID is the sync target this task triggers.
	TargetID string

	// Name is a human-readable name for the task.
	Name string

	// Interval defines how often the task should run.
	Interval time.Duration

	// LastRun is when the task last ran.
	LastRun time.Time

	// NextRun is when the task should run next.
	NextRun time.Time

	// LastError contains the last error message, if any.
	LastError string

	// LastSuccess is when the task last completed successfully.
	LastSuccess time.Time

	// Enabled indicates whether the task is active.
	Enabled bool
}

// Due returns true if the task should run at the given instant.
func (t *ScheduledTask) Due(now time.Time) bool {
	return t.Enabled && !now.Before(t.NextRun)
}
