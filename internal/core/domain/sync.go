package domain

import "time"

// SyncStatus describes the outcome of the most recent sync run for a target.
type SyncStatus string

const (
	// SyncStatusIdle means the target has never been synced.
	SyncStatusIdle SyncStatus = "idle"
	// SyncStatusSyncing means a run is currently in flight (or crashed
	// mid-run, leaving the durable marker behind).
	SyncStatusSyncing SyncStatus = "syncing"
	// SyncStatusNoChange means an incremental run completed.
	SyncStatusNoChange SyncStatus = "no_change"
	// SyncStatusAdded means a full run completed and events were loaded.
	SyncStatusAdded SyncStatus = "added"
	// SyncStatusFailed means the last run ended with a hard failure.
	SyncStatusFailed SyncStatus = "failed"
	// SyncStatusInactive means the target is disabled pending re-authentication.
	SyncStatusInactive SyncStatus = "inactive"
)

// SyncState is the persisted synchronisation state for one sync target
// (a credential + calendar pairing). Mutated only by the orchestrator
// through the SyncStateStore; never deleted by the sync engine.
type SyncState struct {
	// TargetID identifies the sync target.
	TargetID string `json:"target_id"`

	// CredentialID links the target to the credential used for API access.
	CredentialID string `json:"credential_id"`

	// CalendarID is the remote calendar being mirrored.
	CalendarID string `json:"calendar_id"`

	// Cursor is the opaque incremental-sync token from the remote API.
	// Empty means there is no incremental baseline and the next run must
	// perform a full sync.
	Cursor string `json:"cursor,omitempty"`

	// FullSyncCheckpoint is the resume point for an interrupted full sync:
	// the earliest event start time successfully processed so far.
	// Nil when no full sync is in progress. Cleared only when a full sync
	// completes; it only ever moves toward older timestamps while a run
	// makes progress.
	FullSyncCheckpoint *time.Time `json:"full_sync_checkpoint,omitempty"`

	// InProgress is true while a run is executing. A cancelled run leaves
	// it true so the next run resumes from the checkpoint.
	InProgress bool `json:"in_progress"`

	// Status is the outcome of the most recent run.
	Status SyncStatus `json:"status"`

	// LastSyncedAt is when a run last completed successfully.
	LastSyncedAt *time.Time `json:"last_synced_at,omitempty"`
}

// HasCursor returns true if an incremental baseline exists.
func (s *SyncState) HasCursor() bool {
	return s.Cursor != ""
}

// IsActive returns false once the target has been disabled.
func (s *SyncState) IsActive() bool {
	return s.Status != SyncStatusInactive
}

// SyncStateUpdate carries a partial update to a SyncState. Nil fields are
// left untouched by the store, which lets the orchestrator persist cursor
// and checkpoint progress independently.
type SyncStateUpdate struct {
	Cursor             *string
	FullSyncCheckpoint *time.Time
	ClearCheckpoint    bool
	InProgress         *bool
	Status             *SyncStatus
	LastSyncedAt       *time.Time
}
