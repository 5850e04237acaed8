package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcadia-labs/daysync/internal/core/domain"
)

func storedEvent(targetID, externalID string, start time.Time) domain.Event {
	return domain.Event{
		TargetID:   targetID,
		ExternalID: externalID,
		Summary:    "Event " + externalID,
		StartTime:  start,
	}
}

func TestEventStore_UpsertIsIdempotent(t *testing.T) {
	store := NewEventStore()
	ctx := context.Background()

	event := storedEvent("tgt-1", "ev-1", time.Now())
	require.NoError(t, store.Upsert(ctx, event))
	event.Summary = "Renamed"
	require.NoError(t, store.Upsert(ctx, event))

	events, err := store.List(ctx, "tgt-1")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Renamed", events[0].Summary)
}

func TestEventStore_UpsertValidatesKeys(t *testing.T) {
	store := NewEventStore()
	assert.ErrorIs(t, store.Upsert(context.Background(), domain.Event{TargetID: "tgt-1"}), domain.ErrInvalidInput)
	assert.ErrorIs(t, store.Upsert(context.Background(), domain.Event{ExternalID: "ev-1"}), domain.ErrInvalidInput)
}

func TestEventStore_ListIsScopedAndOrdered(t *testing.T) {
	store := NewEventStore()
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, store.Upsert(ctx, storedEvent("tgt-1", "ev-late", now.Add(time.Hour))))
	require.NoError(t, store.Upsert(ctx, storedEvent("tgt-1", "ev-early", now)))
	require.NoError(t, store.Upsert(ctx, storedEvent("tgt-2", "ev-other", now)))

	events, err := store.List(ctx, "tgt-1")
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "ev-early", events[0].ExternalID)
	assert.Equal(t, "ev-late", events[1].ExternalID)
}

func TestEventStore_DeleteByExternalID(t *testing.T) {
	store := NewEventStore()
	ctx := context.Background()
	require.NoError(t, store.Upsert(ctx, storedEvent("tgt-1", "ev-1", time.Now())))

	require.NoError(t, store.DeleteByExternalID(ctx, "tgt-1", "ev-1"))
	events, err := store.List(ctx, "tgt-1")
	require.NoError(t, err)
	assert.Empty(t, events)

	// Absent events delete without error.
	assert.NoError(t, store.DeleteByExternalID(ctx, "tgt-1", "ev-1"))
}

func TestEventStore_OldestStart(t *testing.T) {
	store := NewEventStore()
	ctx := context.Background()

	oldest, err := store.OldestStart(ctx, "tgt-1")
	require.NoError(t, err)
	assert.Nil(t, oldest)

	now := time.Now()
	earliest := now.Add(-48 * time.Hour)
	require.NoError(t, store.Upsert(ctx, storedEvent("tgt-1", "ev-1", now)))
	require.NoError(t, store.Upsert(ctx, storedEvent("tgt-1", "ev-2", earliest)))
	// Zero start times are excluded from checkpoint recovery.
	require.NoError(t, store.Upsert(ctx, domain.Event{TargetID: "tgt-1", ExternalID: "ev-3"}))

	oldest, err = store.OldestStart(ctx, "tgt-1")
	require.NoError(t, err)
	require.NotNil(t, oldest)
	assert.True(t, oldest.Equal(earliest))
}
