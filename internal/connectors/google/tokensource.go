package google

import (
	"context"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/arcadia-labs/daysync/internal/core/domain"
	"github.com/arcadia-labs/daysync/internal/core/ports/driven"
	"github.com/arcadia-labs/daysync/internal/logger"
)

// PersistingTokenSource wraps an oauth2.TokenSource so that rotated tokens
// are written back to the credentials store. Every outbound API call pulls
// a token from here; when the underlying source refreshed the access token,
// the new value is persisted before the call proceeds.
//
// Persistence failures are logged and swallowed: the refreshed token is
// still valid in memory, so the in-flight request must not fail because
// the store write did.
type PersistingTokenSource struct {
	base         oauth2.TokenSource
	store        driven.CredentialsStore
	credentialID string
	ctx          context.Context

	mu         sync.Mutex
	lastAccess string
}

// NewPersistingTokenSource wraps base so token rotations are saved to store.
// lastAccess is the access token currently on record; the first rotation
// is detected against it.
func NewPersistingTokenSource(
	ctx context.Context,
	base oauth2.TokenSource,
	store driven.CredentialsStore,
	credentialID string,
	lastAccess string,
) *PersistingTokenSource {
	return &PersistingTokenSource{
		base:         base,
		store:        store,
		credentialID: credentialID,
		ctx:          ctx,
		lastAccess:   lastAccess,
	}
}

// Token implements oauth2.TokenSource.
// A refresh failure caused by a revoked refresh token flips the credential
// inactive and surfaces domain.ErrCredentialRevoked so the run ends rather
// than retries.
func (p *PersistingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := p.base.Token()
	if err != nil {
		if IsInvalidGrant(err) {
			if derr := p.store.SetActive(p.ctx, p.credentialID, false); derr != nil {
				logger.Warn("disable credential %s: %v", p.credentialID, derr)
			}
			return nil, domain.ErrCredentialRevoked
		}
		return nil, err
	}

	p.mu.Lock()
	rotated := tok.AccessToken != p.lastAccess
	if rotated {
		p.lastAccess = tok.AccessToken
	}
	p.mu.Unlock()

	if rotated {
		p.persist(tok)
	}
	return tok, nil
}

// persist writes the rotated token to the credentials store.
func (p *PersistingTokenSource) persist(tok *oauth2.Token) {
	creds, err := p.store.Get(p.ctx, p.credentialID)
	if err != nil {
		logger.Warn("load credential %s for token persist: %v", p.credentialID, err)
		return
	}

	creds.AccessToken = tok.AccessToken
	creds.TokenType = tok.TokenType
	// The provider only issues a new refresh token occasionally; keep the
	// stored one unless a replacement arrived.
	if tok.RefreshToken != "" {
		creds.RefreshToken = tok.RefreshToken
	}
	if !tok.Expiry.IsZero() {
		creds.Expiry = tok.Expiry
	}
	creds.UpdatedAt = time.Now()

	if err := p.store.Save(p.ctx, *creds); err != nil {
		logger.Warn("persist rotated token for credential %s: %v", p.credentialID, err)
		return
	}
	logger.Debug("persisted rotated access token for credential %s", p.credentialID)
}
