package memory

import (
	"context"
	"sync"

	"github.com/syncevo-core/syncevo-core/internal/core/domain"
	"github.com/syncevo-core/syncevo-core/internal/core/ports/driven"
)

// Ensure CredentialsStore implements the interface.
var _ driven.CredentialsStore = (*CredentialsStore)(nil)

// CredentialsStore is an in-memory implementation of driven.CredentialsStore.
type CredentialsStore struct {
	mu       sync.RWMutex
	byID     map[string]domain.Credentials
	bySource map[string]string // sourceID -> credentials ID
}

// NewCredentialsStore creates a new in-memory credentials store.
func NewCredentialsStore() *CredentialsStore {
	return &CredentialsStore{
		byID:     make(map[string]domain.Credentials),
		bySource: make(map[string]string),
	}
}

// Save stores credentials. Creates if new, updates if exists.
func (s *CredentialsStore) Save(_ context.Context, creds domain.Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[creds.ID] = creds
	if creds.SourceID != "" {
		s.bySource[creds.SourceID] = creds.ID
	}
	return nil
}

// Get retrieves credentials by ID.
func (s *CredentialsStore) Get(_ context.Context, id string) (*domain.Credentials, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	creds, ok := s.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &creds, nil
}

// GetBySourceID retrieves credentials for a specific source. Returns nil
// if no credentials exist for the source.
func (s *CredentialsStore) GetBySourceID(_ context.Context, sourceID string) (*domain.Credentials, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.bySource[sourceID]
	if !ok {
		return nil, nil
	}
	creds := s.byID[id]
	return &creds, nil
}

// Delete removes credentials by ID.
func (s *CredentialsStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if creds, ok := s.byID[id]; ok && creds.SourceID != "" {
		delete(s.bySource, creds.SourceID)
	}
	delete(s.byID, id)
	return nil
}
