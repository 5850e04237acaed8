package driving

import (
	"context"
	"time"
)

// SyncRunner coordinates calendar synchronisation for registered targets.
// RunSync must not be called concurrently for the same target; serialising
// triggers is the caller's responsibility.
type SyncRunner interface {
	// RunSync executes one sync run for a target.
	RunSync(ctx context.Context, targetID string) error

	// Cancel requests graceful cancellation of an in-flight run.
	// Returns false if no run is active for the target.
	Cancel(targetID string) bool

	// Status returns the live status of a target's sync.
	Status(ctx context.Context, targetID string) (*RunStatus, error)
}

// RunStatus represents the current state of a sync run.
type RunStatus struct {
	// TargetID identifies the sync target.
	TargetID string

	// Running indicates if a run is currently in progress.
	Running bool

	// Processed is the count of events upserted so far.
	Processed int

	// Failed is the number of per-event upsert failures.
	Failed int

	// LastSyncedAt is when a run last completed successfully.
	LastSyncedAt *time.Time
}
