package services

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/arcadia-labs/daysync/internal/core/domain"
	"github.com/arcadia-labs/daysync/internal/core/ports/driven"
	"github.com/arcadia-labs/daysync/internal/logger"
)

// workerPool is a fixed set of concurrent event processors consuming from
// one buffered queue. The pagination loop enqueues; the bounded queue
// provides back-pressure that throttles fetch-ahead.
//
// Processing order across workers is unordered: upserts are idempotent and
// commutative per external ID. Per-event failures are non-fatal; they are
// collected into a synchronised accumulator so the orchestrator sees exact
// failure counts when it finalises the run.
type workerPool struct {
	queue chan domain.Event
	store driven.EventStore

	fullMode bool
	// resumeCheckpoint gates processing during a full-sync resume: events
	// whose start is not strictly older than it were committed by the
	// interrupted run and are skipped.
	resumeCheckpoint *time.Time

	// onCheckpoint is invoked with the oldest processed start time after
	// every checkpointEvery successful upserts in full mode.
	onCheckpoint    func(oldest time.Time)
	checkpointEvery int

	wg        sync.WaitGroup
	processed atomic.Int64
	failed    atomic.Int64
	skipped   atomic.Int64

	mu              sync.Mutex
	oldest          *time.Time
	sinceCheckpoint int
	failures        []error

	// persistMu serialises checkpoint persistence separately from the
	// hot counter path so a slow store write never blocks processing.
	persistMu     sync.Mutex
	lastPersisted *time.Time
}

// workerPoolConfig configures one run's pool.
type workerPoolConfig struct {
	Workers          int
	QueueCapacity    int
	FullMode         bool
	ResumeCheckpoint *time.Time
	CheckpointEvery  int
	OnCheckpoint     func(oldest time.Time)
}

// startWorkerPool creates the pool and launches its workers under ctx.
func startWorkerPool(ctx context.Context, store driven.EventStore, cfg workerPoolConfig) *workerPool {
	if cfg.Workers <= 0 {
		cfg.Workers = defaultWorkerCount
	}
	if cfg.QueueCapacity <= 0 {
		cfg.QueueCapacity = defaultQueueCapacity
	}
	if cfg.CheckpointEvery <= 0 {
		cfg.CheckpointEvery = defaultCheckpointEvery
	}
	p := &workerPool{
		queue:            make(chan domain.Event, cfg.QueueCapacity),
		store:            store,
		fullMode:         cfg.FullMode,
		resumeCheckpoint: cfg.ResumeCheckpoint,
		onCheckpoint:     cfg.OnCheckpoint,
		checkpointEvery:  cfg.CheckpointEvery,
	}
	for i := 0; i < cfg.Workers; i++ {
		p.wg.Add(1)
		go p.worker(ctx)
	}
	return p
}

// Enqueue hands one event to the pool. Blocks when the queue is full;
// returns the context error if the run is cancelled while waiting.
func (p *workerPool) Enqueue(ctx context.Context, event domain.Event) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case p.queue <- event:
		return nil
	}
}

// CloseAndWait closes the queue and blocks until the workers have drained it.
func (p *workerPool) CloseAndWait() {
	close(p.queue)
	p.wg.Wait()
}

// Processed returns the count of successfully processed events.
func (p *workerPool) Processed() int {
	return int(p.processed.Load())
}

// Failed returns the count of per-event failures.
func (p *workerPool) Failed() int {
	return int(p.failed.Load())
}

// Skipped returns the count of events skipped during a resume.
func (p *workerPool) Skipped() int {
	return int(p.skipped.Load())
}

// OldestProcessed returns the minimum event start time processed so far,
// or nil if nothing has been processed. Only tracked in full mode.
func (p *workerPool) OldestProcessed() *time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.oldest == nil {
		return nil
	}
	t := *p.oldest
	return &t
}

// Failures returns a copy of the accumulated per-event errors.
func (p *workerPool) Failures() []error {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]error, len(p.failures))
	copy(out, p.failures)
	return out
}

// worker pulls events until the queue closes or the run is cancelled.
func (p *workerPool) worker(ctx context.Context) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-p.queue:
			if !ok {
				return
			}
			p.process(ctx, event)
		}
	}
}

// process handles one event.
func (p *workerPool) process(ctx context.Context, event domain.Event) {
	if p.fullMode && p.resumeCheckpoint != nil && !event.StartTime.Before(*p.resumeCheckpoint) {
		// Committed by the interrupted run before the checkpoint was
		// persisted; re-upserting would be harmless but wasteful.
		p.skipped.Add(1)
		return
	}

	var err error
	if event.IsCancelled() && !p.fullMode {
		err = p.store.DeleteByExternalID(ctx, event.TargetID, event.ExternalID)
	} else {
		err = p.store.Upsert(ctx, event)
	}

	if err != nil {
		p.failed.Add(1)
		p.mu.Lock()
		p.failures = append(p.failures, fmt.Errorf("event %s: %w", event.ExternalID, err))
		p.mu.Unlock()
		logger.Warn("process event %s: %v", event.ExternalID, err)
		return
	}

	p.processed.Add(1)
	if !p.fullMode {
		return
	}

	// Multiple workers race to lower the oldest-processed tracker.
	p.mu.Lock()
	if !event.StartTime.IsZero() && (p.oldest == nil || event.StartTime.Before(*p.oldest)) {
		t := event.StartTime
		p.oldest = &t
	}
	p.sinceCheckpoint++
	var checkpoint *time.Time
	if p.sinceCheckpoint >= p.checkpointEvery && p.oldest != nil {
		p.sinceCheckpoint = 0
		t := *p.oldest
		checkpoint = &t
	}
	p.mu.Unlock()

	if checkpoint != nil && p.onCheckpoint != nil {
		p.persistCheckpoint(*checkpoint)
	}
}

// persistCheckpoint invokes the checkpoint callback under its own lock.
// The persisted value only ever moves backwards: a worker that captured
// its checkpoint first but lost the race to persist must not overwrite
// an older value already written.
func (p *workerPool) persistCheckpoint(checkpoint time.Time) {
	p.persistMu.Lock()
	defer p.persistMu.Unlock()
	if p.lastPersisted != nil && !checkpoint.Before(*p.lastPersisted) {
		return
	}
	t := checkpoint
	p.lastPersisted = &t
	p.onCheckpoint(checkpoint)
}
