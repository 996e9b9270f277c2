package memory

import (
	"context"
	"sync"

	"github.com/syncevo-core/syncevo-core/internal/core/domain"
	"github.com/syncevo-core/syncevo-core/internal/core/ports/driven"
)

// Ensure ReportStore implements the interface.
var _ driven.ReportStore = (*ReportStore)(nil)

// ReportStore is an in-memory implementation of driven.ReportStore.
type ReportStore struct {
	mu      sync.RWMutex
	byID    map[string]domain.SyncReport
	order   map[string][]string // configID -> session IDs, oldest first
	configs map[string]string   // sessionID -> configID
}

// NewReportStore creates a new in-memory report store.
func NewReportStore() *ReportStore {
	return &ReportStore{
		byID:    make(map[string]domain.SyncReport),
		order:   make(map[string][]string),
		configs: make(map[string]string),
	}
}

// Save persists a finished session's report.
func (s *ReportStore) Save(_ context.Context, configID string, report domain.SyncReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.configs[report.SessionID]; !exists {
		s.order[configID] = append(s.order[configID], report.SessionID)
	}
	s.byID[report.SessionID] = report
	s.configs[report.SessionID] = configID
	return nil
}

// List returns the most recent reports for a configuration, newest first,
// capped at limit (0 meaning no cap).
func (s *ReportStore) List(_ context.Context, configID string, limit int) ([]domain.SyncReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.order[configID]
	result := make([]domain.SyncReport, 0, len(ids))
	for i := len(ids) - 1; i >= 0; i-- {
		result = append(result, s.byID[ids[i]])
	}

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// Get retrieves one report by session ID.
func (s *ReportStore) Get(_ context.Context, sessionID string) (*domain.SyncReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	report, ok := s.byID[sessionID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &report, nil
}
