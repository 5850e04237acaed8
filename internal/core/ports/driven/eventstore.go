package driven

import (
	"context"
	"time"

	"github.com/arcadia-labs/daysync/internal/core/domain"
)

// EventStore persists calendar events mirrored from the remote API.
type EventStore interface {
	// Upsert creates or updates an event keyed by (TargetID, ExternalID).
	// Upserting the same event twice must leave exactly one stored row.
	Upsert(ctx context.Context, event domain.Event) error

	// DeleteByExternalID removes an event the remote has cancelled.
	// Deleting an event that does not exist is not an error.
	DeleteByExternalID(ctx context.Context, targetID, externalID string) error

	// List returns all events stored for a target.
	List(ctx context.Context, targetID string) ([]domain.Event, error)

	// OldestStart returns the earliest event start time committed for a
	// target, or nil if no events are stored. The orchestrator uses it to
	// recover a checkpoint when a run fails before persisting one.
	OldestStart(ctx context.Context, targetID string) (*time.Time, error)
}
