package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/arcadia-labs/daysync/internal/core/domain"
	"github.com/arcadia-labs/daysync/internal/core/ports/driven"
	"github.com/arcadia-labs/daysync/internal/core/ports/driving"
	"github.com/arcadia-labs/daysync/internal/logger"
)

// Ensure Scheduler implements the interface.
var _ driving.Scheduler = (*Scheduler)(nil)

// SchedulerConfig tunes the background sync scheduler.
type SchedulerConfig struct {
	// SyncInterval is how often each target is synced. Defaults to 15m.
	SyncInterval time.Duration
	// TickInterval is the due-task polling cadence. Defaults to 1m.
	TickInterval time.Duration
}

// Scheduler triggers sync runs for registered targets on an interval.
// Due tasks run sequentially, which satisfies the run trigger contract:
// never two concurrent runs for the same target.
type Scheduler struct {
	config SchedulerConfig
	store  driven.SchedulerStore
	sync   driven.SyncStateStore
	runner driving.SyncRunner

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewScheduler creates a scheduler with configuration.
func NewScheduler(
	config SchedulerConfig,
	store driven.SchedulerStore,
	syncStore driven.SyncStateStore,
	runner driving.SyncRunner,
) *Scheduler {
	if config.SyncInterval <= 0 {
		config.SyncInterval = 15 * time.Minute
	}
	if config.TickInterval <= 0 {
		config.TickInterval = time.Minute
	}
	return &Scheduler{
		config: config,
		store:  store,
		sync:   syncStore,
		runner: runner,
	}
}

// Start begins the scheduler loop. This method blocks until Stop is called
// or the context is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil // Already running
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.mu.Unlock()

	if err := s.initialiseTasks(ctx); err != nil {
		logger.Warn("scheduler: initialise tasks: %v", err)
	}

	return s.run(ctx)
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	// Wait for running tasks to complete
	s.wg.Wait()
	return nil
}

// initialiseTasks ensures every registered sync target has a task.
func (s *Scheduler) initialiseTasks(ctx context.Context) error {
	states, err := s.sync.List(ctx)
	if err != nil {
		return err
	}
	for _, state := range states {
		if err := s.ensureTask(ctx, state.TargetID); err != nil {
			return err
		}
	}
	return nil
}

// ensureTask creates or updates the sync task for a target.
func (s *Scheduler) ensureTask(ctx context.Context, targetID string) error {
	taskID := "sync:" + targetID
	task, err := s.store.GetTask(ctx, taskID)
	if err != nil {
		return err
	}

	if task == nil {
		task = &domain.ScheduledTask{
			ID:       taskID,
			TargetID: targetID,
			Name:     "Calendar Sync",
			Interval: s.config.SyncInterval,
			Enabled:  true,
			NextRun:  time.Now(),
		}
	} else if task.Interval != s.config.SyncInterval {
		task.Interval = s.config.SyncInterval
		task.NextRun = time.Now().Add(s.config.SyncInterval)
	}

	return s.store.SaveTask(ctx, task)
}

// run is the main scheduler loop.
func (s *Scheduler) run(ctx context.Context) error {
	// Check for due tasks immediately on startup
	s.checkAndRunDueTasks(ctx)

	ticker := time.NewTicker(s.config.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.stopCh:
			return nil
		case <-ticker.C:
			s.checkAndRunDueTasks(ctx)
		}
	}
}

// checkAndRunDueTasks finds and executes tasks that are due.
// Tasks run one after another: the sync engine requires serialised
// triggers per target, and sequential execution keeps Google API usage
// within one rate-limit budget.
func (s *Scheduler) checkAndRunDueTasks(ctx context.Context) {
	tasks, err := s.store.ListTasks(ctx)
	if err != nil {
		logger.Warn("scheduler: list tasks: %v", err)
		return
	}

	now := time.Now()
	for i := range tasks {
		task := &tasks[i]
		if task.Due(now) {
			s.runTask(ctx, task)
		}
	}
}

// runTask executes a single sync task.
func (s *Scheduler) runTask(ctx context.Context, task *domain.ScheduledTask) {
	s.wg.Add(1)
	defer s.wg.Done()

	started := time.Now()
	err := s.runner.RunSync(ctx, task.TargetID)
	ended := time.Now()

	switch {
	case err == nil:
		task.LastError = ""
		task.LastSuccess = ended
	case errors.Is(err, context.Canceled):
		// Expected shutdown path, not a failure. The run left a
		// checkpoint behind; the next trigger resumes from it.
		task.LastError = ""
	case errors.Is(err, domain.ErrSyncInactive), errors.Is(err, domain.ErrCredentialRevoked):
		// Re-authentication required; stop triggering until then.
		task.Enabled = false
		task.LastError = err.Error()
		logger.Warn("scheduler: target %s disabled: %v", task.TargetID, err)
	default:
		task.LastError = err.Error()
		logger.Warn("scheduler: sync %s: %v", task.TargetID, err)
	}

	task.LastRun = started
	task.NextRun = ended.Add(task.Interval)

	if saveErr := s.store.SaveTask(ctx, task); saveErr != nil {
		logger.Warn("scheduler: save task %s: %v", task.ID, saveErr)
	}
}
