package memory

import (
	"context"
	"sync"

	"github.com/arcadia-labs/daysync/internal/core/domain"
	"github.com/arcadia-labs/daysync/internal/core/ports/driven"
)

// Ensure SyncStateStore implements the interface.
var _ driven.SyncStateStore = (*SyncStateStore)(nil)

// SyncStateStore is an in-memory implementation of driven.SyncStateStore.
type SyncStateStore struct {
	mu     sync.RWMutex
	states map[string]domain.SyncState
}

// NewSyncStateStore creates a new in-memory sync state store.
func NewSyncStateStore() *SyncStateStore {
	return &SyncStateStore{
		states: make(map[string]domain.SyncState),
	}
}

// Save stores or replaces the full sync state for a target.
func (s *SyncStateStore) Save(_ context.Context, state domain.SyncState) error {
	if state.TargetID == "" {
		return domain.ErrInvalidInput
	}
	if state.Status == "" {
		state.Status = domain.SyncStatusIdle
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[state.TargetID] = state
	return nil
}

// Get retrieves sync state for a target.
func (s *SyncStateStore) Get(_ context.Context, targetID string) (*domain.SyncState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.states[targetID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	// Return a copy; pointer fields are value-copied on assignment below.
	out := state
	return &out, nil
}

// Update applies a partial update to a target's state.
func (s *SyncStateStore) Update(_ context.Context, targetID string, update domain.SyncStateUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.states[targetID]
	if !ok {
		return domain.ErrNotFound
	}

	if update.Cursor != nil {
		state.Cursor = *update.Cursor
	}
	if update.ClearCheckpoint {
		state.FullSyncCheckpoint = nil
	} else if update.FullSyncCheckpoint != nil {
		t := *update.FullSyncCheckpoint
		state.FullSyncCheckpoint = &t
	}
	if update.InProgress != nil {
		state.InProgress = *update.InProgress
	}
	if update.Status != nil {
		state.Status = *update.Status
	}
	if update.LastSyncedAt != nil {
		t := *update.LastSyncedAt
		state.LastSyncedAt = &t
	}

	s.states[targetID] = state
	return nil
}

// List returns the state of every registered target.
func (s *SyncStateStore) List(_ context.Context) ([]domain.SyncState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	states := make([]domain.SyncState, 0, len(s.states))
	for _, state := range s.states {
		states = append(states, state)
	}
	return states, nil
}
