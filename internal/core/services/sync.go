package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/arcadia-labs/daysync/internal/core/domain"
	"github.com/arcadia-labs/daysync/internal/core/ports/driven"
	"github.com/arcadia-labs/daysync/internal/core/ports/driving"
	"github.com/arcadia-labs/daysync/internal/logger"
)

// Defaults for one sync run.
const (
	defaultWorkerCount     = 5
	defaultQueueCapacity   = 100
	defaultCheckpointEvery = 50
	defaultRunTimeout      = 10 * time.Minute

	// Full-sync window: six months back, six months forward.
	defaultPastWindow   = 6 * 30 * 24 * time.Hour
	defaultFutureWindow = 6 * 30 * 24 * time.Hour
)

// Ensure SyncOrchestrator implements the interface.
var _ driving.SyncRunner = (*SyncOrchestrator)(nil)

// SyncConfig tunes the orchestrator. Zero values pick the defaults above.
type SyncConfig struct {
	PastWindow      time.Duration
	FutureWindow    time.Duration
	RunTimeout      time.Duration
	Workers         int
	QueueCapacity   int
	CheckpointEvery int
}

// withDefaults fills unset fields.
func (c SyncConfig) withDefaults() SyncConfig {
	if c.PastWindow <= 0 {
		c.PastWindow = defaultPastWindow
	}
	if c.FutureWindow <= 0 {
		c.FutureWindow = defaultFutureWindow
	}
	if c.RunTimeout <= 0 {
		c.RunTimeout = defaultRunTimeout
	}
	if c.Workers <= 0 {
		c.Workers = defaultWorkerCount
	}
	if c.QueueCapacity <= 0 {
		c.QueueCapacity = defaultQueueCapacity
	}
	if c.CheckpointEvery <= 0 {
		c.CheckpointEvery = defaultCheckpointEvery
	}
	return c
}

// SyncOrchestrator coordinates calendar synchronisation runs.
// One run at a time per target; the caller serialises triggers and the
// run registry guards against accidental overlap.
type SyncOrchestrator struct {
	syncStore  driven.SyncStateStore
	eventStore driven.EventStore
	factory    driven.CollectionClientFactory
	cfg        SyncConfig
	registry   *RunRegistry

	// now is stubbed in tests.
	now func() time.Time

	// Live progress per in-flight run.
	mu     sync.RWMutex
	active map[string]*workerPool
}

// NewSyncOrchestrator creates an orchestrator. The registry is owned by
// the caller so cancellation handles stay visible outside the service;
// pass nil to let the orchestrator own a private one.
func NewSyncOrchestrator(
	syncStore driven.SyncStateStore,
	eventStore driven.EventStore,
	factory driven.CollectionClientFactory,
	cfg SyncConfig,
	registry *RunRegistry,
) *SyncOrchestrator {
	if registry == nil {
		registry = NewRunRegistry()
	}
	return &SyncOrchestrator{
		syncStore:  syncStore,
		eventStore: eventStore,
		factory:    factory,
		cfg:        cfg.withDefaults(),
		registry:   registry,
		now:        time.Now,
		active:     make(map[string]*workerPool),
	}
}

// syncMode selects how a run lists the remote collection.
type syncMode int

const (
	modeIncremental syncMode = iota
	modeFull
)

// RunSync executes one sync run for a target.
//
//nolint:gocyclo // Orchestration function with necessary sequential steps
func (o *SyncOrchestrator) RunSync(ctx context.Context, targetID string) error {
	state, err := o.syncStore.Get(ctx, targetID)
	if err != nil {
		return fmt.Errorf("get sync state: %w", err)
	}
	if !state.IsActive() {
		return fmt.Errorf("target %s: %w", targetID, domain.ErrSyncInactive)
	}

	ctx, cancel := context.WithTimeout(ctx, o.cfg.RunTimeout)
	defer cancel()

	if !o.registry.Add(targetID, cancel) {
		return fmt.Errorf("target %s: %w", targetID, domain.ErrSyncInProgress)
	}
	defer o.registry.Remove(targetID)

	// Durable "syncing" marker before any network call: a crash mid-run
	// leaves state an external reconciler can detect.
	if err := o.markSyncing(ctx, targetID); err != nil {
		return err
	}

	logger.Info("starting sync for target %s", targetID)

	client, err := o.factory.Create(ctx, *state)
	if err != nil {
		return o.finishRun(targetID, state, nil, "", err)
	}

	mode := modeFull
	if state.HasCursor() {
		mode = modeIncremental
	}

	var (
		pool      *workerPool
		newCursor string
	)
	// An invalidated cursor transitions the run from incremental to full
	// within the same invocation: Syncing(incremental) -> Syncing(full).
	for {
		pool, newCursor, err = o.executeRun(ctx, state, client, mode)
		if mode == modeIncremental && classifyRunError(err) == actionCursorInvalid {
			logger.Info("target %s: cursor invalidated, restarting as full sync", targetID)
			if uerr := o.clearCursor(ctx, targetID); uerr != nil {
				err = fmt.Errorf("clear invalidated cursor: %w", uerr)
				break
			}
			state.Cursor = ""
			state.FullSyncCheckpoint = nil
			mode = modeFull
			continue
		}
		break
	}

	return o.finishRun(targetID, state, pool, newCursor, err)
}

// Cancel requests graceful cancellation of an in-flight run.
func (o *SyncOrchestrator) Cancel(targetID string) bool {
	return o.registry.Cancel(targetID)
}

// Status returns the live status of a target's sync.
func (o *SyncOrchestrator) Status(ctx context.Context, targetID string) (*driving.RunStatus, error) {
	status := &driving.RunStatus{TargetID: targetID}

	o.mu.RLock()
	pool, running := o.active[targetID]
	o.mu.RUnlock()
	if running {
		status.Running = true
		status.Processed = pool.Processed()
		status.Failed = pool.Failed()
	}

	state, err := o.syncStore.Get(ctx, targetID)
	if err != nil {
		return nil, fmt.Errorf("get sync state: %w", err)
	}
	status.LastSyncedAt = state.LastSyncedAt
	return status, nil
}

// executeRun paginates the remote collection and streams events into a
// worker pool. Returns the pool (for final counters and checkpoint), the
// fresh cursor from the final page, and the first fatal error.
func (o *SyncOrchestrator) executeRun(
	ctx context.Context,
	state *domain.SyncState,
	client driven.CollectionClient,
	mode syncMode,
) (*workerPool, string, error) {
	poolCfg := workerPoolConfig{
		Workers:         o.cfg.Workers,
		QueueCapacity:   o.cfg.QueueCapacity,
		CheckpointEvery: o.cfg.CheckpointEvery,
		FullMode:        mode == modeFull,
	}

	req := driven.PageRequest{}
	if mode == modeIncremental {
		req.Cursor = state.Cursor
	} else {
		now := o.now()
		req.TimeMin = now.Add(-o.cfg.PastWindow)
		req.TimeMax = now.Add(o.cfg.FutureWindow)
		if cp := state.FullSyncCheckpoint; cp != nil {
			// Resume: events at or after the checkpoint were committed
			// by the interrupted run, so only replay the older remainder.
			req.TimeMax = *cp
			t := *cp
			poolCfg.ResumeCheckpoint = &t
		}
		poolCfg.OnCheckpoint = func(oldest time.Time) {
			o.persistCheckpoint(ctx, state.TargetID, oldest)
		}
	}

	pool := startWorkerPool(ctx, o.eventStore, poolCfg)
	o.setActive(state.TargetID, pool)
	defer o.clearActive(state.TargetID)

	newCursor, err := o.paginate(ctx, client, req, pool)
	pool.CloseAndWait()

	if err != nil {
		return pool, "", err
	}
	logger.Info("target %s: %d processed, %d failed, %d skipped",
		state.TargetID, pool.Processed(), pool.Failed(), pool.Skipped())
	return pool, newCursor, nil
}

// paginate requests pages sequentially; each continuation token depends on
// the previous page. Enqueueing blocks when the pool queue is full, which
// naturally throttles fetch-ahead.
func (o *SyncOrchestrator) paginate(
	ctx context.Context,
	client driven.CollectionClient,
	req driven.PageRequest,
	pool *workerPool,
) (string, error) {
	var newCursor string
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		page, err := client.ListPage(ctx, req)
		if err != nil {
			return "", err
		}

		for _, event := range page.Events {
			if err := pool.Enqueue(ctx, event); err != nil {
				return "", err
			}
		}

		// The final page carries the fresh cursor even when it has no
		// items; it must still be persisted.
		if page.NextCursor != "" {
			newCursor = page.NextCursor
		}
		if page.NextPageToken == "" {
			return newCursor, nil
		}
		req.PageToken = page.NextPageToken
	}
}

// finishRun classifies the run outcome and writes final state.
//
//nolint:gocyclo // One branch per recovery action
func (o *SyncOrchestrator) finishRun(
	targetID string,
	state *domain.SyncState,
	pool *workerPool,
	newCursor string,
	runErr error,
) error {
	// Final state writes use a fresh context: the run context may already
	// be cancelled, and losing the terminal status would strand the target
	// in "syncing".
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	fullMode := !state.HasCursor()

	switch classifyRunError(runErr) {
	case actionComplete:
		return o.completeRun(ctx, targetID, fullMode, newCursor, pool)

	case actionCredentialRevoked:
		logger.Warn("target %s: credential invalid, disabling", targetID)
		if err := o.updateState(ctx, targetID, domain.SyncStateUpdate{
			Status:     statusPtr(domain.SyncStatusInactive),
			InProgress: boolPtr(false),
		}); err != nil {
			return errors.Join(runErr, err)
		}
		return runErr

	case actionCancelled:
		// Leave InProgress set so the next run resumes from the
		// checkpoint rather than restarting cold.
		update := domain.SyncStateUpdate{}
		if fullMode {
			update.FullSyncCheckpoint = o.bestCheckpoint(ctx, targetID, state, pool)
		}
		if err := o.updateState(ctx, targetID, update); err != nil {
			return errors.Join(runErr, err)
		}
		logger.Info("target %s: run cancelled, checkpoint preserved", targetID)
		return runErr

	case actionRateLimited, actionCursorInvalid, actionFailed:
		update := domain.SyncStateUpdate{
			Status:     statusPtr(domain.SyncStatusFailed),
			InProgress: boolPtr(false),
		}
		if fullMode {
			update.FullSyncCheckpoint = o.bestCheckpoint(ctx, targetID, state, pool)
		}
		if err := o.updateState(ctx, targetID, update); err != nil {
			return errors.Join(runErr, err)
		}
		return runErr
	}
	return runErr
}

// completeRun writes the terminal state for a successful run.
func (o *SyncOrchestrator) completeRun(
	ctx context.Context,
	targetID string,
	fullMode bool,
	newCursor string,
	pool *workerPool,
) error {
	now := o.now()
	update := domain.SyncStateUpdate{
		InProgress:   boolPtr(false),
		LastSyncedAt: &now,
	}
	if newCursor != "" {
		update.Cursor = &newCursor
	}
	if fullMode {
		update.Status = statusPtr(domain.SyncStatusAdded)
		update.ClearCheckpoint = true
	} else {
		update.Status = statusPtr(domain.SyncStatusNoChange)
	}

	if err := o.updateState(ctx, targetID, update); err != nil {
		return fmt.Errorf("save final sync state: %w", err)
	}
	if pool != nil {
		logger.Info("sync complete for target %s: %d events, %d errors",
			targetID, pool.Processed(), pool.Failed())
	}
	return nil
}

// bestCheckpoint picks the checkpoint to persist after an interrupted full
// sync: the pool's oldest processed start time when one is in hand, the
// previous checkpoint otherwise. If neither exists but some events were
// committed before the failure, recover one from the event store so a
// short failed run does not lose all progress markers.
func (o *SyncOrchestrator) bestCheckpoint(
	ctx context.Context,
	targetID string,
	state *domain.SyncState,
	pool *workerPool,
) *time.Time {
	if pool != nil {
		if oldest := pool.OldestProcessed(); oldest != nil {
			return oldest
		}
	}
	if state.FullSyncCheckpoint != nil {
		return state.FullSyncCheckpoint
	}
	oldest, err := o.eventStore.OldestStart(ctx, targetID)
	if err != nil {
		logger.Warn("recover checkpoint for target %s: %v", targetID, err)
		return nil
	}
	return oldest
}

// markSyncing persists the in-progress marker.
func (o *SyncOrchestrator) markSyncing(ctx context.Context, targetID string) error {
	err := o.updateState(ctx, targetID, domain.SyncStateUpdate{
		Status:     statusPtr(domain.SyncStatusSyncing),
		InProgress: boolPtr(true),
	})
	if err != nil {
		return fmt.Errorf("mark syncing: %w", err)
	}
	return nil
}

// clearCursor drops the cursor and checkpoint after invalidation.
func (o *SyncOrchestrator) clearCursor(ctx context.Context, targetID string) error {
	empty := ""
	return o.updateState(ctx, targetID, domain.SyncStateUpdate{
		Cursor:          &empty,
		ClearCheckpoint: true,
	})
}

// persistCheckpoint writes full-sync progress. Failures are logged, not
// fatal: the checkpoint bounds replay distance, it does not gate progress.
func (o *SyncOrchestrator) persistCheckpoint(ctx context.Context, targetID string, oldest time.Time) {
	err := o.updateState(ctx, targetID, domain.SyncStateUpdate{
		FullSyncCheckpoint: &oldest,
	})
	if err != nil {
		logger.Warn("persist checkpoint for target %s: %v", targetID, err)
		return
	}
	logger.Debug("target %s: checkpoint %s", targetID, oldest.Format(time.RFC3339))
}

func (o *SyncOrchestrator) updateState(ctx context.Context, targetID string, update domain.SyncStateUpdate) error {
	return o.syncStore.Update(ctx, targetID, update)
}

func (o *SyncOrchestrator) setActive(targetID string, pool *workerPool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.active[targetID] = pool
}

func (o *SyncOrchestrator) clearActive(targetID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.active, targetID)
}

func statusPtr(s domain.SyncStatus) *domain.SyncStatus { return &s }

func boolPtr(b bool) *bool { return &b }
