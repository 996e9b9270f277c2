// Package sourcefactory builds driven.SyncSource instances for this
// module's built-in source types. It is the concrete implementation
// registered behind driven.SyncSourceFactory; core/services only ever
// sees the port, never this package (mirrors how the teacher's
// driven.ConnectorFactory implementation is wired in from the adapters
// layer rather than imported by core/services).
package sourcefactory

import (
	"context"
	"fmt"

	"github.com/syncevo-core/syncevo-core/internal/adapters/driven/auth"
	"github.com/syncevo-core/syncevo-core/internal/connectors/caldav"
	"github.com/syncevo-core/syncevo-core/internal/connectors/filesystem"
	"github.com/syncevo-core/syncevo-core/internal/connectors/github"
	"github.com/syncevo-core/syncevo-core/internal/connectors/google/calendar"
	"github.com/syncevo-core/syncevo-core/internal/core/domain"
	"github.com/syncevo-core/syncevo-core/internal/core/ports/driven"
)

// Ensure Factory implements the interface.
var _ driven.SyncSourceFactory = (*Factory)(nil)

// Factory builds a SyncSource for each of this module's built-in
// source types, resolving the token provider a source's auth method needs
// from its stored Credentials/AuthProvider (spec §4.2, §4.5 "Credential
// resolution") through auth.CredentialsFactory.
type Factory struct {
	tokenProviders *auth.CredentialsFactory
}

// New creates a Factory.
func New(credentialsStore driven.CredentialsStore, authProviderStore driven.AuthProviderStore) *Factory {
	return &Factory{
		tokenProviders: auth.NewCredentialsFactory(credentialsStore, authProviderStore),
	}
}

// SupportedTypes lists the source type names this factory can build.
func (f *Factory) SupportedTypes() []string {
	return []string{"vcard", "caldav", "google-calendar", "github-tasks"}
}

// Build constructs a SyncSource for src, dispatching on src.Type.
func (f *Factory) Build(ctx context.Context, src domain.Source) (driven.SyncSource, error) {
	switch src.Type {
	case "vcard":
		cfg, err := filesystem.ParseConfig(src)
		if err != nil {
			return nil, err
		}
		return filesystem.New(src.ID, cfg), nil

	case "caldav":
		cfg, err := caldav.ParseConfig(src)
		if err != nil {
			return nil, err
		}
		tokenProvider, err := f.tokenProviders.CreateTokenProviderForSource(ctx, src)
		if err != nil {
			return nil, fmt.Errorf("resolve token provider for source %s: %w", src.ID, err)
		}
		return caldav.New(src.ID, cfg, tokenProvider), nil

	case "google-calendar":
		cfg, err := calendar.ParseConfig(src)
		if err != nil {
			return nil, err
		}
		tokenProvider, err := f.tokenProviders.CreateTokenProviderForSource(ctx, src)
		if err != nil {
			return nil, fmt.Errorf("resolve token provider for source %s: %w", src.ID, err)
		}
		return calendar.New(src.ID, cfg, tokenProvider), nil

	case "github-tasks":
		cfg, err := github.ParseConfig(src)
		if err != nil {
			return nil, err
		}
		tokenProvider, err := f.tokenProviders.CreateTokenProviderForSource(ctx, src)
		if err != nil {
			return nil, fmt.Errorf("resolve token provider for source %s: %w", src.ID, err)
		}
		return github.New(src.ID, cfg, tokenProvider), nil

	default:
		return nil, fmt.Errorf("unknown source type: %s", src.Type)
	}
}
