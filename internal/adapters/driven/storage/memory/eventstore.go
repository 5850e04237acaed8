package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/arcadia-labs/daysync/internal/core/domain"
	"github.com/arcadia-labs/daysync/internal/core/ports/driven"
)

// Ensure EventStore implements the interface.
var _ driven.EventStore = (*EventStore)(nil)

// eventKey identifies one stored event.
type eventKey struct {
	targetID   string
	externalID string
}

// EventStore is an in-memory implementation of driven.EventStore.
type EventStore struct {
	mu     sync.RWMutex
	events map[eventKey]domain.Event
}

// NewEventStore creates a new in-memory event store.
func NewEventStore() *EventStore {
	return &EventStore{
		events: make(map[eventKey]domain.Event),
	}
}

// Upsert creates or updates an event keyed by (TargetID, ExternalID).
func (s *EventStore) Upsert(_ context.Context, event domain.Event) error {
	if event.TargetID == "" || event.ExternalID == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[eventKey{event.TargetID, event.ExternalID}] = event
	return nil
}

// DeleteByExternalID removes an event the remote has cancelled.
func (s *EventStore) DeleteByExternalID(_ context.Context, targetID, externalID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.events, eventKey{targetID, externalID})
	return nil
}

// List returns all events stored for a target, ordered by start time.
func (s *EventStore) List(_ context.Context, targetID string) ([]domain.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var events []domain.Event
	for key, event := range s.events {
		if key.targetID == targetID {
			events = append(events, event)
		}
	}
	sort.Slice(events, func(i, j int) bool {
		return events[i].StartTime.Before(events[j].StartTime)
	})
	return events, nil
}

// OldestStart returns the earliest event start time committed for a target.
func (s *EventStore) OldestStart(_ context.Context, targetID string) (*time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var oldest *time.Time
	for key, event := range s.events {
		if key.targetID != targetID || event.StartTime.IsZero() {
			continue
		}
		if oldest == nil || event.StartTime.Before(*oldest) {
			t := event.StartTime
			oldest = &t
		}
	}
	return oldest, nil
}
