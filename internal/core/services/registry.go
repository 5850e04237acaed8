package services

import (
	"context"
	"sync"
)

// RunRegistry tracks cancellation handles for in-flight sync runs.
// It is an explicit object owned by the orchestrator's caller rather than
// process-wide state; entries are added and removed under one mutex.
type RunRegistry struct {
	mu   sync.Mutex
	runs map[string]context.CancelFunc
}

// NewRunRegistry creates an empty registry.
func NewRunRegistry() *RunRegistry {
	return &RunRegistry{
		runs: make(map[string]context.CancelFunc),
	}
}

// Add registers a run's cancel function.
// Returns false if a run is already registered for the target.
func (r *RunRegistry) Add(targetID string, cancel context.CancelFunc) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.runs[targetID]; ok {
		return false
	}
	r.runs[targetID] = cancel
	return true
}

// Remove drops a completed run's entry.
func (r *RunRegistry) Remove(targetID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.runs, targetID)
}

// Cancel invokes the cancel function for an in-flight run.
// Returns false if no run is registered for the target.
func (r *RunRegistry) Cancel(targetID string) bool {
	r.mu.Lock()
	cancel, ok := r.runs[targetID]
	r.mu.Unlock()
	if !ok {
		return false
	}
	cancel()
	return true
}

// Active returns true if a run is registered for the target.
func (r *RunRegistry) Active(targetID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.runs[targetID]
	return ok
}
