package driven

import (
	"context"

	"github.com/arcadia-labs/daysync/internal/core/domain"
)

// CollectionClientFactory builds an authorised CollectionClient for a sync
// target. Creation acquires a valid access token for the target's
// credential; it fails with domain.ErrCredentialInactive when the
// credential is disabled and domain.ErrCredentialRevoked when the provider
// has permanently rejected the refresh token.
type CollectionClientFactory interface {
	Create(ctx context.Context, state domain.SyncState) (CollectionClient, error)
}
