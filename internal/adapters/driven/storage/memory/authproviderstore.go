package memory

import (
	"context"
	"sync"

	"github.com/syncevo-core/syncevo-core/internal/core/domain"
	"github.com/syncevo-core/syncevo-core/internal/core/ports/driven"
)

// Ensure AuthProviderStore implements the interface.
var _ driven.AuthProviderStore = (*AuthProviderStore)(nil)

// AuthProviderStore is an in-memory implementation of driven.AuthProviderStore.
type AuthProviderStore struct {
	mu        sync.RWMutex
	providers map[string]domain.AuthProvider
}

// NewAuthProviderStore creates a new in-memory auth provider store.
func NewAuthProviderStore() *AuthProviderStore {
	return &AuthProviderStore{
		providers: make(map[string]domain.AuthProvider),
	}
}

// Save stores an auth provider. Creates if new, updates if exists.
func (s *AuthProviderStore) Save(_ context.Context, provider domain.AuthProvider) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.providers[provider.ID] = provider
	return nil
}

// Get retrieves an auth provider by ID.
func (s *AuthProviderStore) Get(_ context.Context, id string) (*domain.AuthProvider, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	provider, ok := s.providers[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &provider, nil
}

// List returns all auth providers.
func (s *AuthProviderStore) List(_ context.Context) ([]domain.AuthProvider, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.AuthProvider, 0, len(s.providers))
	for _, p := range s.providers {
		result = append(result, p)
	}
	return result, nil
}

// ListByProvider returns all auth providers for a specific provider type.
func (s *AuthProviderStore) ListByProvider(_ context.Context, providerType domain.ProviderType) ([]domain.AuthProvider, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []domain.AuthProvider
	for _, p := range s.providers {
		if p.ProviderType == providerType {
			result = append(result, p)
		}
	}
	return result, nil
}

// Delete removes an auth provider by ID. Callers are responsible for
// checking whether the provider is still referenced by a source (the
// AuthProviderService does this before calling Delete).
func (s *AuthProviderStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.providers, id)
	return nil
}
