package domain

// ContentType names the three SyncML payload content types the original
// SyncEvolution backends exchange (original_source/src/syncevo/TransportAgent.cpp):
// contacts, calendar/task records, and plain text notes.
type ContentType string

// Recognised content types.
const (
	ContentTypeVCard     ContentType = "text/vcard"
	ContentTypeICalendar ContentType = "text/calendar"
	ContentTypeText      ContentType = "text/plain"
)

// Item is one opaque record a Sync Source exchanges with the Change
// Tracker and Protocol Engine: a single vCard, iCalendar VEVENT/VTODO, or
// plain-text note, addressed by LUID (spec §4.1, §4.2).
type Item struct {
	// SourceID links to the Source this item belongs to.
	SourceID string

	// LUID addresses the item within its source.
	LUID LUID

	// ContentType names the payload's MIME content type.
	ContentType ContentType

	// Content holds the raw record bytes (vCard/iCalendar/plain text).
	Content []byte

	// Revision is the item's current revision tag, opaque to the engine
	// (spec §4.1).
	Revision Revision
}

// ItemChange is one change event surfaced by a Sync Source's change
// detection (spec §4.1, §4.2): the classified state plus the item's LUID
// and, for New/Updated items, its content.
type ItemChange struct {
	// State is the classified change kind.
	State ChangeState

	// LUID addresses the changed item.
	LUID LUID

	// Item carries the current content for New/Updated changes. Nil for
	// Deleted changes. Census-style sources (filesystem, caldav) also attach
	// it to the Unchanged entries they report.
	Item *Item
}

// InsertState classifies how a Sync Source handled an incoming item
// (original_source/src/syncevo/SyncSource.h's ItemState: ITEM_OKAY,
// ITEM_REPLACED aka merged-as-duplicate, ITEM_NEEDS_MERGE).
type InsertState int

// Recognised insert states.
const (
	// InsertOkay means the item was stored as given, no merge needed.
	InsertOkay InsertState = iota
	// InsertMerged means the store recognised this as a duplicate of an
	// existing local item and merged into it rather than creating a new
	// one (spec §8 scenario 3's composite-LUID merge).
	InsertMerged
	// InsertNeedsMerge means the store found a conflicting local item it
	// could not merge automatically; the caller must resolve it (spec §3
	// conflict resolution) before the item is considered settled.
	InsertNeedsMerge
)

// String renders the insert state for report/log lines.
func (s InsertState) String() string {
	switch s {
	case InsertMerged:
		return "merged"
	case InsertNeedsMerge:
		return "needs-merge"
	default:
		return "okay"
	}
}

// InsertResult is what a Sync Source reports back after storing an
// incoming item (original_source/src/syncevo/SyncSource.cpp's
// InsertItemResult): the LUID assigned (which may differ from any LUID
// proposed by the peer), the new revision, and how the store reconciled
// it against anything already stored under that identity.
type InsertResult struct {
	LUID     LUID
	Revision Revision
	State    InsertState

	// MergedDupe is the InsertMerged case surfaced as a bool, kept
	// alongside State for callers that only care about the common case.
	MergedDupe bool
}
