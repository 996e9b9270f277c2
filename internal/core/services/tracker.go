package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/syncevo-core/syncevo-core/internal/core/domain"
	"github.com/syncevo-core/syncevo-core/internal/core/ports/driven"
)

// Tracker implements the Change Tracker (C1, spec §4.1): it reconciles a
// raw LUID→revision census from a SyncSource against the previously
// persisted revision map, the sole source of truth for NEW/UPDATED/
// DELETED classification — mirroring
// original_source/src/syncevo/SyncSource.cpp's SyncSourceRevisions::
// detectChanges, which classifies strictly against its own tracking node
// and ignores whatever the backend itself might think changed.
type Tracker struct {
	store       driven.TrackerStore
	granularity time.Duration

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewTracker builds a Tracker backed by store. granularity is the
// revision-accuracy window (original_source's m_revisionAccuracySeconds):
// Classify blocks until at least granularity has elapsed since the last
// UpdateRevision/DeleteRevision call for sourceID, so a revision
// fingerprint coarser than the window (e.g. a file mtime) can't be
// mistaken for an unrelated write landing in the same instant. Pass 0 to
// disable the wait.
func NewTracker(store driven.TrackerStore, granularity time.Duration) *Tracker {
	return &Tracker{store: store, granularity: granularity, limiters: make(map[string]*rate.Limiter)}
}

// Classify loads the source's stored sync anchor, asks src for its full
// current census, and reconciles it against the stored LUID→revision map
// into a ChangeSet. It does not persist the new anchor or revision map;
// callers commit those only after a session completes successfully (spec
// §4.1: "tracker state updates only commit once the owning session
// reaches a terminal success state").
//
// Connectors are not trusted to self-classify: the ChangeState each
// returned domain.ItemChange carries is advisory only. Classify derives
// NEW/UPDATED/UNCHANGED itself from each item's Revision against the
// persisted map, and infers DELETED by set difference whenever src's
// report is a full census (it included at least one Unchanged entry);
// a source that only ever reports real deltas (no Unchanged entries,
// e.g. a remote sync-token feed) must signal deletions explicitly via
// ChangeState Deleted instead, since Classify has no way to tell omission
// from deletion in that case.
func (t *Tracker) Classify(ctx context.Context, src driven.SyncSource) (domain.ChangeSet, domain.SyncAnchor, map[domain.LUID]domain.Revision, error) {
	sourceID := src.ID()
	if err := t.waitForGranularity(ctx, sourceID); err != nil {
		return domain.ChangeSet{}, domain.SyncAnchor{}, nil, err
	}

	anchor, err := t.store.LoadAnchor(ctx, sourceID)
	if err != nil {
		return domain.ChangeSet{}, domain.SyncAnchor{}, nil, err
	}

	raw, newAnchor, err := src.Changes(ctx, anchor)
	if err != nil {
		return domain.ChangeSet{}, domain.SyncAnchor{}, nil, err
	}

	previous, err := t.store.LoadRevisions(ctx, sourceID)
	if err != nil {
		return domain.ChangeSet{}, domain.SyncAnchor{}, nil, err
	}
	if previous == nil {
		previous = make(map[domain.LUID]domain.Revision)
	}

	next := make(map[domain.LUID]domain.Revision, len(previous)+len(raw))
	for luid, rev := range previous {
		next[luid] = rev
	}

	var set domain.ChangeSet
	seen := make(map[domain.LUID]bool, len(raw))
	fullCensus := false

	for _, c := range raw {
		if c.State == domain.Deleted {
			seen[c.LUID] = true
			delete(next, c.LUID)
			set.Deleted = append(set.Deleted, c.LUID)
			continue
		}
		if c.Item == nil {
			continue
		}
		if c.State == domain.Unchanged {
			fullCensus = true
		}

		seen[c.LUID] = true
		prevRev, existed := previous[c.LUID]
		switch {
		case !existed:
			set.New = append(set.New, c.LUID)
			next[c.LUID] = c.Item.Revision
		case prevRev != c.Item.Revision:
			set.Updated = append(set.Updated, c.LUID)
			next[c.LUID] = c.Item.Revision
		default:
			set.Unchanged = append(set.Unchanged, c.LUID)
		}
	}

	if fullCensus {
		for luid := range previous {
			if !seen[luid] {
				delete(next, luid)
				set.Deleted = append(set.Deleted, luid)
			}
		}
	}

	return set, newAnchor, next, nil
}

// Commit persists the new sync anchor and revision map for sourceID,
// called once the owning session reaches a terminal success state.
func (t *Tracker) Commit(ctx context.Context, sourceID string, anchor domain.SyncAnchor, revisions map[domain.LUID]domain.Revision) error {
	if err := t.store.SaveRevisions(ctx, sourceID, revisions); err != nil {
		return err
	}
	return t.store.SaveAnchor(ctx, sourceID, anchor)
}

// UpdateRevision records luid's new revision immediately, the way
// SyncSourceRevisions::updateRevision does right after the engine applies
// an incoming item mid-session: a later DeleteRevision/Flush call or the
// next session's Classify then sees a consistent picture without waiting
// for this session's Commit. If the item's identity changed (a
// server-assigned LUID replacing a client-proposed one) oldLUID's entry
// is dropped in the same write.
func (t *Tracker) UpdateRevision(ctx context.Context, sourceID string, oldLUID, newLUID domain.LUID, revision domain.Revision) error {
	if newLUID.IsEmpty() || revision.IsEmpty() {
		return fmt.Errorf("tracker: update revision for %s: need non-empty LUID and revision", sourceID)
	}
	revisions, err := t.store.LoadRevisions(ctx, sourceID)
	if err != nil {
		return err
	}
	if revisions == nil {
		revisions = make(map[domain.LUID]domain.Revision)
	}
	if oldLUID != newLUID {
		delete(revisions, oldLUID)
	}
	revisions[newLUID] = revision
	t.markModified(sourceID)
	return t.store.SaveRevisions(ctx, sourceID, revisions)
}

// DeleteRevision drops luid's tracked revision immediately, the way
// SyncSourceRevisions::deleteRevision does right after the engine applies
// a locally-originated delete mid-session.
func (t *Tracker) DeleteRevision(ctx context.Context, sourceID string, luid domain.LUID) error {
	revisions, err := t.store.LoadRevisions(ctx, sourceID)
	if err != nil {
		return err
	}
	delete(revisions, luid)
	t.markModified(sourceID)
	return t.store.SaveRevisions(ctx, sourceID, revisions)
}

// Flush closes out sourceID's current debounce window early, the way
// ConfigNode::flush forces a pending write to disk rather than waiting:
// callers that just made an out-of-band change (a Backup/Restore, say)
// use it so the next Classify isn't needlessly held back by the
// granularity wait.
func (t *Tracker) Flush(_ context.Context, sourceID string) error {
	t.mu.Lock()
	delete(t.limiters, sourceID)
	t.mu.Unlock()
	return nil
}

// markModified consumes sourceID's limiter token at the moment of
// modification, so the next Classify's waitForGranularity call actually
// blocks for the remaining granularity window instead of the limiter's
// bucket having sat full (and therefore non-blocking) the whole time.
func (t *Tracker) markModified(sourceID string) {
	if t.granularity <= 0 {
		return
	}
	t.mu.Lock()
	limiter, ok := t.limiters[sourceID]
	if !ok {
		limiter = rate.NewLimiter(rate.Every(t.granularity), 1)
		t.limiters[sourceID] = limiter
	}
	t.mu.Unlock()
	limiter.Allow()
}

// waitForGranularity blocks until granularity has elapsed since the last
// recorded modification to sourceID, if any. A source with no recent
// modification (including one that has never been modified) has no
// limiter yet and returns immediately: the debounce exists to protect a
// coarse revision fingerprint from a write landing within the same tick
// as a rescan, not to throttle Classify calls in general.
func (t *Tracker) waitForGranularity(ctx context.Context, sourceID string) error {
	if t.granularity <= 0 {
		return nil
	}
	t.mu.Lock()
	limiter, ok := t.limiters[sourceID]
	t.mu.Unlock()
	if !ok {
		return nil
	}
	return limiter.Wait(ctx)
}
