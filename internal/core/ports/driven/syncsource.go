package driven

import (
	"context"

	"github.com/syncevo-core/syncevo-core/internal/core/domain"
)

// SessionCapability brackets one sync session against a source, giving
// the adapter a chance to open/close an underlying connection or
// transaction (spec §4.2).
type SessionCapability interface {
	// BeginSync opens the source for the named session with the given
	// engine direction/force-slow parameters.
	BeginSync(ctx context.Context, sessionID string, params domain.EngineParams) error

	// EndSync closes the source, committing any pending state.
	EndSync(ctx context.Context) error
}

// ChangesCapability reports the set of items changed since the last sync
// anchor (spec §4.1). An empty anchor requests a full enumeration (a slow
// sync, spec §3).
type ChangesCapability interface {
	// Changes returns every change since anchor, or a full census of
	// current items tagged Unchanged, plus the new anchor to persist once
	// the session completes successfully.
	Changes(ctx context.Context, anchor domain.SyncAnchor) ([]domain.ItemChange, domain.SyncAnchor, error)
}

// SerializeCapability reads and writes item content by LUID (spec §4.2).
type SerializeCapability interface {
	// ReadItem fetches the current content for a LUID.
	ReadItem(ctx context.Context, luid domain.LUID) (*domain.Item, error)

	// InsertItem stores item content, creating a new local item when
	// item.LUID is empty and updating the existing one otherwise.
	InsertItem(ctx context.Context, item domain.Item) (domain.InsertResult, error)
}

// DeleteCapability removes an item by LUID.
type DeleteCapability interface {
	DeleteItem(ctx context.Context, luid domain.LUID) error
}

// BackupRestoreCapability snapshots and restores a source's entire content,
// backing the `--restore` CLI verb (spec §6 supplemented feature).
type BackupRestoreCapability interface {
	// Backup returns every current item, for snapshotting before a
	// destructive sync (refresh-from-server/refresh-from-client).
	Backup(ctx context.Context) ([]domain.Item, error)

	// Restore replaces the source's content with a prior backup.
	Restore(ctx context.Context, items []domain.Item) error
}

// LoggingCapability lets a source attach structured context (e.g. a
// per-datastore sub-logger) for the duration of a session.
type LoggingCapability interface {
	SetSessionID(sessionID string)
}

// SyncSource is the composed capability set the Change Tracker and
// Protocol Engine drive for one configured source (spec §4.2). Every
// source adapter (vcard, caldav, google-calendar, github-tasks) must
// implement the full set; adapters with nothing useful to do for
// BackupRestoreCapability may implement it as a no-op.
type SyncSource interface {
	SessionCapability
	ChangesCapability
	SerializeCapability
	DeleteCapability
	BackupRestoreCapability
	LoggingCapability

	// ID returns the source's configured identifier.
	ID() string

	// SupportedContentTypes lists the content types this source can read
	// and write, for capability negotiation (spec §4.4).
	SupportedContentTypes() []domain.ContentType
}

// SyncSourceFactory builds a SyncSource from a configured domain.Source,
// resolving credentials and auth providers as needed.
type SyncSourceFactory interface {
	// Build constructs a SyncSource for src. src.Type must match one of
	// the factory's registered source types.
	Build(ctx context.Context, src domain.Source) (SyncSource, error)

	// SupportedTypes lists the source type names this factory can build.
	SupportedTypes() []string
}
