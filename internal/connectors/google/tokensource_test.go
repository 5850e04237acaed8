package google

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/arcadia-labs/daysync/internal/adapters/driven/storage/memory"
	"github.com/arcadia-labs/daysync/internal/core/domain"
)

// fakeTokenSource implements oauth2.TokenSource with a fixed response.
type fakeTokenSource struct {
	tok *oauth2.Token
	err error
}

func (f *fakeTokenSource) Token() (*oauth2.Token, error) {
	return f.tok, f.err
}

// countingCredsStore counts Save calls on top of a memory store.
type countingCredsStore struct {
	*memory.CredentialsStore
	mu    sync.Mutex
	saves int
}

func (s *countingCredsStore) Save(ctx context.Context, creds domain.Credentials) error {
	s.mu.Lock()
	s.saves++
	s.mu.Unlock()
	return s.CredentialsStore.Save(ctx, creds)
}

func (s *countingCredsStore) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

func seedCredentials(t *testing.T, store *memory.CredentialsStore) domain.Credentials {
	t.Helper()
	creds := domain.Credentials{
		ID:           "cred-1",
		AccessToken:  "access-old",
		RefreshToken: "refresh-1",
		TokenType:    "Bearer",
		Active:       true,
	}
	require.NoError(t, store.Save(context.Background(), creds))
	return creds
}

func TestPersistingTokenSource_PersistsRotation(t *testing.T) {
	store := memory.NewCredentialsStore()
	seedCredentials(t, store)

	expiry := time.Now().Add(time.Hour)
	base := &fakeTokenSource{tok: &oauth2.Token{
		AccessToken: "access-new",
		TokenType:   "Bearer",
		Expiry:      expiry,
	}}
	ts := NewPersistingTokenSource(context.Background(), base, store, "cred-1", "access-old")

	tok, err := ts.Token()
	require.NoError(t, err)
	assert.Equal(t, "access-new", tok.AccessToken)

	creds, err := store.Get(context.Background(), "cred-1")
	require.NoError(t, err)
	assert.Equal(t, "access-new", creds.AccessToken)
	// No replacement refresh token was issued; the stored one survives.
	assert.Equal(t, "refresh-1", creds.RefreshToken)
	assert.True(t, creds.Expiry.Equal(expiry))
}

func TestPersistingTokenSource_PersistsNewRefreshToken(t *testing.T) {
	store := memory.NewCredentialsStore()
	seedCredentials(t, store)

	base := &fakeTokenSource{tok: &oauth2.Token{
		AccessToken:  "access-new",
		RefreshToken: "refresh-2",
		TokenType:    "Bearer",
	}}
	ts := NewPersistingTokenSource(context.Background(), base, store, "cred-1", "access-old")

	_, err := ts.Token()
	require.NoError(t, err)

	creds, err := store.Get(context.Background(), "cred-1")
	require.NoError(t, err)
	assert.Equal(t, "refresh-2", creds.RefreshToken)
}

func TestPersistingTokenSource_PersistsEachRotationOnce(t *testing.T) {
	store := &countingCredsStore{CredentialsStore: memory.NewCredentialsStore()}
	seedCredentials(t, store.CredentialsStore)

	base := &fakeTokenSource{tok: &oauth2.Token{AccessToken: "access-new", TokenType: "Bearer"}}
	ts := NewPersistingTokenSource(context.Background(), base, store, "cred-1", "access-old")

	for i := 0; i < 3; i++ {
		_, err := ts.Token()
		require.NoError(t, err)
	}

	// The token did not change after the first call, so one save.
	assert.Equal(t, 1, store.Saves())
}

func TestPersistingTokenSource_UnchangedTokenNotPersisted(t *testing.T) {
	store := &countingCredsStore{CredentialsStore: memory.NewCredentialsStore()}
	seedCredentials(t, store.CredentialsStore)

	base := &fakeTokenSource{tok: &oauth2.Token{AccessToken: "access-old", TokenType: "Bearer"}}
	ts := NewPersistingTokenSource(context.Background(), base, store, "cred-1", "access-old")

	_, err := ts.Token()
	require.NoError(t, err)
	assert.Equal(t, 0, store.Saves())
}

func TestPersistingTokenSource_InvalidGrantDisablesCredential(t *testing.T) {
	store := memory.NewCredentialsStore()
	seedCredentials(t, store)

	base := &fakeTokenSource{err: &oauth2.RetrieveError{ErrorCode: "invalid_grant"}}
	ts := NewPersistingTokenSource(context.Background(), base, store, "cred-1", "access-old")

	_, err := ts.Token()
	assert.ErrorIs(t, err, domain.ErrCredentialRevoked)

	creds, getErr := store.Get(context.Background(), "cred-1")
	require.NoError(t, getErr)
	assert.False(t, creds.Active)
}

func TestPersistingTokenSource_TransientRefreshErrorPassesThrough(t *testing.T) {
	store := memory.NewCredentialsStore()
	seedCredentials(t, store)

	refreshErr := errors.New("connection refused")
	base := &fakeTokenSource{err: refreshErr}
	ts := NewPersistingTokenSource(context.Background(), base, store, "cred-1", "access-old")

	_, err := ts.Token()
	assert.ErrorIs(t, err, refreshErr)

	// Transient failures must not disable the credential.
	creds, getErr := store.Get(context.Background(), "cred-1")
	require.NoError(t, getErr)
	assert.True(t, creds.Active)
}
