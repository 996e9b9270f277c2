package driven

import (
	"context"

	"github.com/syncevo-core/syncevo-core/internal/core/domain"
)

// TrackerStore persists the Change Tracker's LUID→revision map and each
// source's sync anchor (spec §4.1). Implementations must be safe to call
// from exactly one session at a time; the Session Manager's modify-lock
// invariant (spec §3) keeps concurrent sessions on the same source from
// ever calling it concurrently.
type TrackerStore interface {
	// LoadAnchor returns the stored sync anchor for sourceID. Returns the
	// zero-value SyncAnchor (RequestsSlowSync() == true) if none exists.
	LoadAnchor(ctx context.Context, sourceID string) (domain.SyncAnchor, error)

	// SaveAnchor persists the sync anchor for sourceID.
	SaveAnchor(ctx context.Context, sourceID string, anchor domain.SyncAnchor) error

	// LoadRevisions returns the full LUID→revision map tracked for
	// sourceID.
	LoadRevisions(ctx context.Context, sourceID string) (map[domain.LUID]domain.Revision, error)

	// SaveRevisions replaces the LUID→revision map tracked for sourceID.
	SaveRevisions(ctx context.Context, sourceID string, revisions map[domain.LUID]domain.Revision) error

	// DeleteSource removes all tracked state for sourceID, used when a
	// source is removed from configuration entirely.
	DeleteSource(ctx context.Context, sourceID string) error
}
