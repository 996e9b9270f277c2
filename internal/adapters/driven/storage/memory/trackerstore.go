package memory

import (
	"context"
	"maps"
	"sync"

	"github.com/syncevo-core/syncevo-core/internal/core/domain"
	"github.com/syncevo-core/syncevo-core/internal/core/ports/driven"
)

// Ensure TrackerStore implements the interface.
var _ driven.TrackerStore = (*TrackerStore)(nil)

// TrackerStore is an in-memory implementation of driven.TrackerStore.
type TrackerStore struct {
	mu        sync.RWMutex
	anchors   map[string]domain.SyncAnchor
	revisions map[string]map[domain.LUID]domain.Revision
}

// NewTrackerStore creates a new in-memory tracker store.
func NewTrackerStore() *TrackerStore {
	return &TrackerStore{
		anchors:   make(map[string]domain.SyncAnchor),
		revisions: make(map[string]map[domain.LUID]domain.Revision),
	}
}

// LoadAnchor returns the stored sync anchor for sourceID, or the zero
// value (requesting a slow sync) if none has been saved yet.
func (s *TrackerStore) LoadAnchor(_ context.Context, sourceID string) (domain.SyncAnchor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	anchor, ok := s.anchors[sourceID]
	if !ok {
		return domain.SyncAnchor{SourceID: sourceID}, nil
	}
	return anchor, nil
}

// SaveAnchor persists the sync anchor for sourceID.
func (s *TrackerStore) SaveAnchor(_ context.Context, sourceID string, anchor domain.SyncAnchor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.anchors[sourceID] = anchor
	return nil
}

// LoadRevisions returns the full LUID→revision map tracked for sourceID.
func (s *TrackerStore) LoadRevisions(_ context.Context, sourceID string) (map[domain.LUID]domain.Revision, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make(map[domain.LUID]domain.Revision, len(s.revisions[sourceID]))
	maps.Copy(result, s.revisions[sourceID])
	return result, nil
}

// SaveRevisions replaces the LUID→revision map tracked for sourceID.
func (s *TrackerStore) SaveRevisions(_ context.Context, sourceID string, revisions map[domain.LUID]domain.Revision) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := make(map[domain.LUID]domain.Revision, len(revisions))
	maps.Copy(clone, revisions)
	s.revisions[sourceID] = clone
	return nil
}

// DeleteSource removes all tracked state for sourceID.
func (s *TrackerStore) DeleteSource(_ context.Context, sourceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.anchors, sourceID)
	delete(s.revisions, sourceID)
	return nil
}
