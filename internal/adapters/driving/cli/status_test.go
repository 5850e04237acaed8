package cli

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcadia-labs/daysync/internal/adapters/driven/storage/memory"
	"github.com/arcadia-labs/daysync/internal/core/domain"
)

func execCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}

func TestStatusCmd_NoStoreConfigured(t *testing.T) {
	original := syncStore
	syncStore = nil
	defer func() { syncStore = original }()

	_, err := execCommand(t, "status")
	assert.Error(t, err)
}

func TestStatusCmd_NoTargets(t *testing.T) {
	original := syncStore
	syncStore = memory.NewSyncStateStore()
	defer func() { syncStore = original }()

	out, err := execCommand(t, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "No targets registered.")
}

func TestStatusCmd_ShowsTargetState(t *testing.T) {
	original := syncStore
	store := memory.NewSyncStateStore()
	syncStore = store
	defer func() { syncStore = original }()

	checkpoint := time.Now().Add(-time.Hour)
	lastSynced := time.Now().Add(-10 * time.Minute)
	require.NoError(t, store.Save(context.Background(), domain.SyncState{
		TargetID:           "tgt-1",
		CalendarID:         "primary",
		Cursor:             "cursor-1",
		FullSyncCheckpoint: &checkpoint,
		Status:             domain.SyncStatusAdded,
		LastSyncedAt:       &lastSynced,
	}))

	out, err := execCommand(t, "status", "tgt-1")
	require.NoError(t, err)
	assert.Contains(t, out, "tgt-1")
	assert.Contains(t, out, "status: added")
	assert.Contains(t, out, "mode: incremental")
	assert.Contains(t, out, "resume checkpoint:")

	out, err = execCommand(t, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "tgt-1")
}

func TestStatusCmd_UnknownTarget(t *testing.T) {
	original := syncStore
	syncStore = memory.NewSyncStateStore()
	defer func() { syncStore = original }()

	_, err := execCommand(t, "status", "nonexistent")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
