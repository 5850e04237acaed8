package services

import (
	"context"
	"errors"
	stdsync "sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcadia-labs/daysync/internal/adapters/driven/storage/memory"
	"github.com/arcadia-labs/daysync/internal/core/domain"
	"github.com/arcadia-labs/daysync/internal/core/ports/driving"
)

// schedulerMockRunner implements driving.SyncRunner for scheduler tests.
type schedulerMockRunner struct {
	mu     stdsync.Mutex
	runs   []string
	errors map[string]error
}

func newSchedulerMockRunner() *schedulerMockRunner {
	return &schedulerMockRunner{errors: make(map[string]error)}
}

func (r *schedulerMockRunner) RunSync(_ context.Context, targetID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs = append(r.runs, targetID)
	return r.errors[targetID]
}

func (r *schedulerMockRunner) Cancel(_ string) bool { return false }

func (r *schedulerMockRunner) Status(_ context.Context, targetID string) (*driving.RunStatus, error) {
	return &driving.RunStatus{TargetID: targetID}, nil
}

func (r *schedulerMockRunner) RunCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.runs)
}

type schedulerFixture struct {
	store     *memory.SchedulerStore
	syncStore *memory.SyncStateStore
	runner    *schedulerMockRunner
	scheduler *Scheduler
}

func newSchedulerFixture(t *testing.T, cfg SchedulerConfig) *schedulerFixture {
	t.Helper()
	f := &schedulerFixture{
		store:     memory.NewSchedulerStore(),
		syncStore: memory.NewSyncStateStore(),
		runner:    newSchedulerMockRunner(),
	}
	f.scheduler = NewScheduler(cfg, f.store, f.syncStore, f.runner)
	return f
}

func TestScheduler_StartCreatesTasksAndRunsDueOnes(t *testing.T) {
	f := newSchedulerFixture(t, SchedulerConfig{
		SyncInterval: time.Hour,
		TickInterval: 10 * time.Millisecond,
	})

	ctx := context.Background()
	require.NoError(t, f.syncStore.Save(ctx, domain.SyncState{TargetID: "tgt-1"}))
	require.NoError(t, f.syncStore.Save(ctx, domain.SyncState{TargetID: "tgt-2"}))

	done := make(chan error, 1)
	go func() {
		done <- f.scheduler.Start(ctx)
	}()

	// Both targets are due immediately on startup.
	require.Eventually(t, func() bool {
		return f.runner.RunCount() >= 2
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, f.scheduler.Stop())
	assert.NoError(t, <-done)

	tasks, err := f.store.ListTasks(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	for _, task := range tasks {
		assert.True(t, task.Enabled)
		assert.Equal(t, time.Hour, task.Interval)
		assert.False(t, task.LastRun.IsZero())
		assert.True(t, task.NextRun.After(time.Now()))
	}
}

func TestScheduler_SuccessfulRunUpdatesTask(t *testing.T) {
	f := newSchedulerFixture(t, SchedulerConfig{SyncInterval: time.Hour})

	ctx := context.Background()
	task := &domain.ScheduledTask{
		ID:       "sync:tgt-1",
		TargetID: "tgt-1",
		Interval: time.Hour,
		Enabled:  true,
		NextRun:  time.Now().Add(-time.Minute),
	}
	require.NoError(t, f.store.SaveTask(ctx, task))

	f.scheduler.checkAndRunDueTasks(ctx)

	assert.Equal(t, 1, f.runner.RunCount())

	saved, err := f.store.GetTask(ctx, "sync:tgt-1")
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Empty(t, saved.LastError)
	assert.False(t, saved.LastSuccess.IsZero())
	assert.True(t, saved.NextRun.After(time.Now()))
}

func TestScheduler_SkipsTasksNotYetDue(t *testing.T) {
	f := newSchedulerFixture(t, SchedulerConfig{})

	ctx := context.Background()
	require.NoError(t, f.store.SaveTask(ctx, &domain.ScheduledTask{
		ID:       "sync:tgt-1",
		TargetID: "tgt-1",
		Interval: time.Hour,
		Enabled:  true,
		NextRun:  time.Now().Add(time.Hour),
	}))

	f.scheduler.checkAndRunDueTasks(ctx)

	assert.Equal(t, 0, f.runner.RunCount())
}

func TestScheduler_DisablesTaskOnRevokedCredential(t *testing.T) {
	f := newSchedulerFixture(t, SchedulerConfig{})
	f.runner.errors["tgt-1"] = domain.ErrCredentialRevoked

	ctx := context.Background()
	require.NoError(t, f.store.SaveTask(ctx, &domain.ScheduledTask{
		ID:       "sync:tgt-1",
		TargetID: "tgt-1",
		Interval: time.Hour,
		Enabled:  true,
		NextRun:  time.Now().Add(-time.Minute),
	}))

	f.scheduler.checkAndRunDueTasks(ctx)

	saved, err := f.store.GetTask(ctx, "sync:tgt-1")
	require.NoError(t, err)
	require.NotNil(t, saved)
	// Retrying a revoked credential is pointless until re-authentication.
	assert.False(t, saved.Enabled)
	assert.NotEmpty(t, saved.LastError)
}

func TestScheduler_TransientFailureKeepsTaskEnabled(t *testing.T) {
	f := newSchedulerFixture(t, SchedulerConfig{})
	f.runner.errors["tgt-1"] = errors.New("connection reset")

	ctx := context.Background()
	require.NoError(t, f.store.SaveTask(ctx, &domain.ScheduledTask{
		ID:       "sync:tgt-1",
		TargetID: "tgt-1",
		Interval: time.Hour,
		Enabled:  true,
		NextRun:  time.Now().Add(-time.Minute),
	}))

	f.scheduler.checkAndRunDueTasks(ctx)

	saved, err := f.store.GetTask(ctx, "sync:tgt-1")
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.True(t, saved.Enabled)
	assert.NotEmpty(t, saved.LastError)
	// The next attempt waits for the interval, never immediate retry.
	assert.True(t, saved.NextRun.After(time.Now().Add(50*time.Minute)))
}

func TestScheduler_CancelledRunIsNotAFailure(t *testing.T) {
	f := newSchedulerFixture(t, SchedulerConfig{})
	f.runner.errors["tgt-1"] = context.Canceled

	ctx := context.Background()
	require.NoError(t, f.store.SaveTask(ctx, &domain.ScheduledTask{
		ID:       "sync:tgt-1",
		TargetID: "tgt-1",
		Interval: time.Hour,
		Enabled:  true,
		NextRun:  time.Now().Add(-time.Minute),
	}))

	f.scheduler.checkAndRunDueTasks(ctx)

	saved, err := f.store.GetTask(ctx, "sync:tgt-1")
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.True(t, saved.Enabled)
	assert.Empty(t, saved.LastError)
}

func TestScheduler_StopWithoutStart(t *testing.T) {
	f := newSchedulerFixture(t, SchedulerConfig{})
	assert.NoError(t, f.scheduler.Stop())
}
