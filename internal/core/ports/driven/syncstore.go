package driven

import (
	"context"

	"github.com/arcadia-labs/daysync/internal/core/domain"
)

// SyncStateStore persists sync progress per target.
type SyncStateStore interface {
	// Save stores or replaces the full sync state for a target.
	Save(ctx context.Context, state domain.SyncState) error

	// Get retrieves sync state for a target.
	// Returns domain.ErrNotFound if the target is not registered.
	Get(ctx context.Context, targetID string) (*domain.SyncState, error)

	// Update applies a partial update to a target's state. Nil fields in
	// the update are left unchanged, which lets the orchestrator persist
	// checkpoint progress without clobbering concurrent status fields.
	Update(ctx context.Context, targetID string, update domain.SyncStateUpdate) error

	// List returns the state of every registered target.
	List(ctx context.Context) ([]domain.SyncState, error)
}
