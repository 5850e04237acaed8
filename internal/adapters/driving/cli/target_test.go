package cli

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcadia-labs/daysync/internal/adapters/driven/storage/memory"
	"github.com/arcadia-labs/daysync/internal/core/domain"
)

func withTestStores(t *testing.T) (*memory.SyncStateStore, *memory.CredentialsStore) {
	t.Helper()
	originalSync, originalCreds := syncStore, credsStore
	states := memory.NewSyncStateStore()
	creds := memory.NewCredentialsStore()
	syncStore, credsStore = states, creds
	t.Cleanup(func() { syncStore, credsStore = originalSync, originalCreds })
	return states, creds
}

func TestTargetAddCmd_RegistersTarget(t *testing.T) {
	states, creds := withTestStores(t)
	ctx := context.Background()
	require.NoError(t, creds.Save(ctx, domain.Credentials{
		ID:           "cred-1",
		AccountEmail: "user@example.com",
		Active:       true,
	}))

	out, err := execCommand(t, "target", "add", "--credential", "cred-1", "--calendar", "work")
	require.NoError(t, err)
	assert.Contains(t, out, "Target registered:")

	list, err := states.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "cred-1", list[0].CredentialID)
	assert.Equal(t, "work", list[0].CalendarID)
	assert.Equal(t, domain.SyncStatusIdle, list[0].Status)
	assert.NotEmpty(t, list[0].TargetID)
}

func TestTargetAddCmd_RejectsUnknownCredential(t *testing.T) {
	withTestStores(t)

	_, err := execCommand(t, "target", "add", "--credential", "nonexistent")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTargetAddCmd_RejectsInactiveCredential(t *testing.T) {
	_, creds := withTestStores(t)
	require.NoError(t, creds.Save(context.Background(), domain.Credentials{
		ID:     "cred-1",
		Active: false,
	}))

	_, err := execCommand(t, "target", "add", "--credential", "cred-1")
	assert.ErrorIs(t, err, domain.ErrCredentialInactive)
}

func TestAuthImportCmd_SavesCredentials(t *testing.T) {
	_, creds := withTestStores(t)

	path := filepath.Join(t.TempDir(), "tokens.json")
	payload, err := json.Marshal(map[string]string{
		"access_token":  "access-1",
		"refresh_token": "refresh-1",
		"account_email": "user@example.com",
	})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, payload, 0600))

	out, err := execCommand(t, "auth", "import", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Credentials imported:")

	// The ID is generated; fish it out of the output.
	id := strings.TrimSpace(strings.TrimPrefix(out, "Credentials imported:"))

	saved, err := creds.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "access-1", saved.AccessToken)
	assert.Equal(t, "refresh-1", saved.RefreshToken)
	assert.Equal(t, "Bearer", saved.TokenType)
	assert.True(t, saved.Active)
}

func TestAuthImportCmd_RejectsIncompleteTokens(t *testing.T) {
	withTestStores(t)

	path := filepath.Join(t.TempDir(), "tokens.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"access_token":"only"}`), 0600))

	_, err := execCommand(t, "auth", "import", path)
	assert.Error(t, err)
}
