package driven

import (
	"context"

	"github.com/arcadia-labs/daysync/internal/core/domain"
)

// CredentialsStore persists OAuth credentials for connected accounts.
type CredentialsStore interface {
	// Save stores credentials. Creates if new, updates if exists.
	Save(ctx context.Context, creds domain.Credentials) error

	// Get retrieves credentials by ID.
	// Returns domain.ErrNotFound if no credentials exist with the ID.
	Get(ctx context.Context, id string) (*domain.Credentials, error)

	// SetActive flips the active flag for a credential.
	// Used to disable a credential when the provider revokes its refresh token.
	SetActive(ctx context.Context, id string, active bool) error

	// Delete removes credentials by ID.
	Delete(ctx context.Context, id string) error
}
