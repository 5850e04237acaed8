package google

import (
	"context"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/arcadia-labs/daysync/internal/core/domain"
	"github.com/arcadia-labs/daysync/internal/core/ports/driven"
)

// googleTokenURL is Google's OAuth2 token endpoint.
const googleTokenURL = "https://oauth2.googleapis.com/token"

// OAuthAppConfig identifies the OAuth application used to refresh tokens.
type OAuthAppConfig struct {
	ClientID     string
	ClientSecret string
	// TokenURL overrides the token endpoint. Defaults to Google's.
	// Tests point this at a local server.
	TokenURL string
}

// CredentialRefresher owns OAuth credential lifecycle for API access.
// It hands out token sources that transparently refresh expired access
// tokens, persist rotations, and detect permanent revocation.
type CredentialRefresher struct {
	store driven.CredentialsStore
	app   OAuthAppConfig
}

// NewCredentialRefresher creates a refresher backed by the given store.
func NewCredentialRefresher(store driven.CredentialsStore, app OAuthAppConfig) *CredentialRefresher {
	if app.TokenURL == "" {
		app.TokenURL = googleTokenURL
	}
	return &CredentialRefresher{store: store, app: app}
}

// TokenSource returns a self-refreshing, self-persisting token source for
// a credential. Fails with domain.ErrCredentialInactive if the credential
// has been disabled.
func (r *CredentialRefresher) TokenSource(ctx context.Context, credentialID string) (oauth2.TokenSource, error) {
	creds, err := r.store.Get(ctx, credentialID)
	if err != nil {
		return nil, fmt.Errorf("get credentials: %w", err)
	}
	if !creds.Active {
		return nil, domain.ErrCredentialInactive
	}

	cfg := &oauth2.Config{
		ClientID:     r.app.ClientID,
		ClientSecret: r.app.ClientSecret,
		Endpoint:     oauth2.Endpoint{TokenURL: r.app.TokenURL},
	}
	tok := &oauth2.Token{
		AccessToken:  creds.AccessToken,
		RefreshToken: creds.RefreshToken,
		TokenType:    creds.TokenType,
		Expiry:       creds.Expiry,
	}

	base := cfg.TokenSource(ctx, tok)
	return NewPersistingTokenSource(ctx, base, r.store, creds.ID, creds.AccessToken), nil
}

// Client returns an authorised HTTP client for a credential. The first
// token fetch happens eagerly so a revoked or inactive credential fails
// here instead of on the first API call.
func (r *CredentialRefresher) Client(ctx context.Context, credentialID string) (*http.Client, error) {
	ts, err := r.TokenSource(ctx, credentialID)
	if err != nil {
		return nil, err
	}
	if _, err := ts.Token(); err != nil {
		return nil, err
	}
	return oauth2.NewClient(ctx, ts), nil
}
