package services

import (
	"context"
	"fmt"

	"github.com/syncevo-core/syncevo-core/internal/core/domain"
	"github.com/syncevo-core/syncevo-core/internal/core/ports/driven"
	"github.com/syncevo-core/syncevo-core/internal/core/ports/driving"
)

// Ensure SourceService implements the interface.
var _ driving.SourceService = (*SourceService)(nil)

// knownSourceTypes describes every source type SourceService.ValidateConfig
// can check against, independent of which types a given SyncSourceFactory
// actually has adapters for.
var knownSourceTypes = map[string]domain.SourceType{
	"vcard": {
		ID: "vcard", Name: "Contacts (vCard)", ProviderType: domain.ProviderLocal,
		ConfigKeys: []domain.ConfigKey{{Key: "path", Required: true}},
	},
	"caldav": {
		ID: "caldav", Name: "CalDAV", ProviderType: domain.ProviderCalDAV,
		ConfigKeys: []domain.ConfigKey{{Key: "url", Required: true}},
	},
	"google-calendar": {
		ID: "google-calendar", Name: "Google Calendar", ProviderType: domain.ProviderGoogle,
		ConfigKeys: []domain.ConfigKey{{Key: "calendar_id", Required: false}},
	},
	"github-tasks": {
		ID: "github-tasks", Name: "GitHub Issues", ProviderType: domain.ProviderGitHub,
		ConfigKeys: []domain.ConfigKey{{Key: "repository", Required: true}},
	},
}

// SourceService manages source configurations (spec §3 "Sync Source").
type SourceService struct {
	sourceStore  driven.SourceStore
	trackerStore driven.TrackerStore
}

// NewSourceService creates a new source service.
func NewSourceService(sourceStore driven.SourceStore, trackerStore driven.TrackerStore) *SourceService {
	return &SourceService{sourceStore: sourceStore, trackerStore: trackerStore}
}

// Add creates a new source configuration.
func (s *SourceService) Add(ctx context.Context, source domain.Source) error {
	if s.sourceStore == nil {
		return domain.ErrNotImplemented
	}
	if source.ID == "" {
		return domain.ErrInvalidInput
	}
	existing, err := s.sourceStore.Get(ctx, source.ID)
	if err == nil && existing != nil {
		return domain.ErrAlreadyExists
	}
	return s.sourceStore.Save(ctx, source)
}

// Get retrieves a source by ID.
func (s *SourceService) Get(ctx context.Context, id string) (*domain.Source, error) {
	if s.sourceStore == nil {
		return nil, domain.ErrNotImplemented
	}
	return s.sourceStore.Get(ctx, id)
}

// List returns all configured sources.
func (s *SourceService) List(ctx context.Context) ([]domain.Source, error) {
	if s.sourceStore == nil {
		return nil, domain.ErrNotImplemented
	}
	return s.sourceStore.List(ctx)
}

// Update modifies an existing source configuration.
func (s *SourceService) Update(ctx context.Context, source domain.Source) error {
	if s.sourceStore == nil {
		return domain.ErrNotImplemented
	}
	if source.ID == "" {
		return domain.ErrInvalidInput
	}
	_, err := s.sourceStore.Get(ctx, source.ID)
	if err != nil {
		return domain.ErrNotFound
	}
	return s.sourceStore.Save(ctx, source)
}

// Remove deletes a source and the tracked LUID/revision state and anchor
// kept for it (spec §4.1); a removed source starts from a slow sync if
// it is ever re-added under the same ID.
func (s *SourceService) Remove(ctx context.Context, id string) error {
	if s.sourceStore == nil {
		return domain.ErrNotImplemented
	}
	if s.trackerStore != nil {
		//nolint:errcheck // Intentionally ignore errors to continue cleanup
		_ = s.trackerStore.DeleteSource(ctx, id)
	}
	return s.sourceStore.Delete(ctx, id)
}

// ValidateConfig validates source configuration for a source type.
func (s *SourceService) ValidateConfig(_ context.Context, connectorType string, config map[string]string) error {
	st, ok := knownSourceTypes[connectorType]
	if !ok {
		return fmt.Errorf("unknown connector type %q: %w", connectorType, domain.ErrNotFound)
	}

	var missingKeys []string
	for _, key := range st.ConfigKeys {
		if key.Required {
			value, exists := config[key.Key]
			if !exists || value == "" {
				missingKeys = append(missingKeys, key.Key)
			}
		}
	}

	if len(missingKeys) > 0 {
		return fmt.Errorf("missing required config keys: %v", missingKeys)
	}

	return nil
}
