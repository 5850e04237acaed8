package memory

import (
	"context"
	"sync"
	"time"

	"github.com/arcadia-labs/daysync/internal/core/domain"
	"github.com/arcadia-labs/daysync/internal/core/ports/driven"
)

// Ensure CredentialsStore implements the interface.
var _ driven.CredentialsStore = (*CredentialsStore)(nil)

// CredentialsStore is an in-memory implementation of driven.CredentialsStore.
type CredentialsStore struct {
	mu    sync.RWMutex
	creds map[string]domain.Credentials
}

// NewCredentialsStore creates a new in-memory credentials store.
func NewCredentialsStore() *CredentialsStore {
	return &CredentialsStore{
		creds: make(map[string]domain.Credentials),
	}
}

// Save stores credentials. Creates if new, updates if exists.
func (s *CredentialsStore) Save(_ context.Context, creds domain.Credentials) error {
	if creds.ID == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds[creds.ID] = creds
	return nil
}

// Get retrieves credentials by ID.
func (s *CredentialsStore) Get(_ context.Context, id string) (*domain.Credentials, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	creds, ok := s.creds[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &creds, nil
}

// SetActive flips the active flag for a credential.
func (s *CredentialsStore) SetActive(_ context.Context, id string, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	creds, ok := s.creds[id]
	if !ok {
		return domain.ErrNotFound
	}
	creds.Active = active
	creds.UpdatedAt = time.Now()
	s.creds[id] = creds
	return nil
}

// Delete removes credentials by ID.
func (s *CredentialsStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.creds, id)
	return nil
}
