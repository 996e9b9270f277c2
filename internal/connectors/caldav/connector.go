package caldav

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/syncevo-core/syncevo-core/internal/core/domain"
	"github.com/syncevo-core/syncevo-core/internal/core/ports/driven"
)

// Ensure Connector implements the SyncSource capability set.
var _ driven.SyncSource = (*Connector)(nil)

// Connector is the caldav Sync Source (spec.md §4.2 "WebDAV/CalDAV"): a
// remote calendar collection whose events are represented as
// iCalendar-shaped items. A recurring series is represented as one item per
// occurrence, addressed by a composite LUID ("seriesUID/recurrenceID"), per
// the same "easid/subid" convention the Session Controller's merged-item
// handling already assumes (domain.CompositeLUID).
type Connector struct {
	sourceID string
	config   *Config
	client   *Client

	mu        sync.Mutex
	sessionID string
	closed    bool
}

// New creates a caldav connector for sourceID against the configured
// collection, authenticating with HTTP Basic credentials sourced from
// tokenProvider (AuthorizationID as username, GetToken as password).
func New(sourceID string, cfg *Config, tokenProvider driven.TokenProvider) *Connector {
	return &Connector{
		sourceID: sourceID,
		config:   cfg,
		client:   NewClient(cfg.URL, tokenProvider),
	}
}

// ID returns the source's configured identifier.
func (c *Connector) ID() string {
	return c.sourceID
}

// SupportedContentTypes reports that caldav exchanges iCalendar payloads.
func (c *Connector) SupportedContentTypes() []domain.ContentType {
	return []domain.ContentType{domain.ContentTypeICalendar}
}

// SetSessionID attaches the active session's identifier for logging.
func (c *Connector) SetSessionID(sessionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessionID = sessionID
}

// BeginSync validates the collection is reachable before the session
// proceeds.
func (c *Connector) BeginSync(ctx context.Context, sessionID string, _ domain.EngineParams) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return domain.ErrConnectorClosed
	}
	c.sessionID = sessionID
	c.mu.Unlock()

	if err := c.client.ensureClient(ctx); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrAuthRequired, err)
	}
	return nil
}

// EndSync releases the session; the CalDAV client has no connection state
// to flush.
func (c *Connector) EndSync(_ context.Context) error {
	return nil
}

// Changes performs a full listing of the collection and reports every
// occurrence found, tagged Unchanged. CalDAV exposes no portable
// incremental primitive as reliable as a full listing (the original
// TrackingSyncSource base class this connector's design descends from
// always re-lists), but — unlike that base class — this connector no
// longer diffs the listing against its own anchor-encoded manifest to
// decide New/Updated/Deleted itself: that judgment belongs to the Change
// Tracker's persisted revision map (spec §4.1), which treats an
// Unchanged-tagged entry as "here is this occurrence, you decide" and
// infers deletion from whatever LUID it previously tracked but this
// listing omits.
func (c *Connector) Changes(ctx context.Context, _ domain.SyncAnchor) ([]domain.ItemChange, domain.SyncAnchor, error) {
	objects, err := c.client.listObjects(ctx)
	if err != nil {
		return nil, domain.SyncAnchor{}, fmt.Errorf("list objects: %w", err)
	}

	var changes []domain.ItemChange
	for _, obj := range objects {
		text := encodeCalendar(obj.Data)
		for _, ev := range splitVEvents(text) {
			luid := compositeLUID(ev)
			item := &domain.Item{
				SourceID:    c.sourceID,
				LUID:        luid,
				ContentType: domain.ContentTypeICalendar,
				Content:     []byte(wrapVEvent(ev)),
				Revision:    domain.Revision(obj.ETag),
			}
			changes = append(changes, domain.ItemChange{State: domain.Unchanged, LUID: luid, Item: item})
		}
	}

	return changes, domain.SyncAnchor{SourceID: c.sourceID, LastToken: "listed"}, nil
}

// ReadItem fetches the current content of a single occurrence.
func (c *Connector) ReadItem(ctx context.Context, luid domain.LUID) (*domain.Item, error) {
	composite := luid.Split()
	obj, err := c.client.getObject(ctx, objectPath(composite.EasID))
	if err != nil {
		return nil, err
	}

	text := encodeCalendar(obj.Data)
	for _, ev := range splitVEvents(text) {
		if compositeLUID(ev) == luid {
			return &domain.Item{
				SourceID:    c.sourceID,
				LUID:        luid,
				ContentType: domain.ContentTypeICalendar,
				Content:     []byte(wrapVEvent(ev)),
				Revision:    domain.Revision(obj.ETag),
			}, nil
		}
	}
	return nil, domain.ErrNotFound
}

// InsertItem creates or updates one occurrence. When item.LUID names a
// sub-component whose content is missing its RECURRENCE-ID property (an
// incomplete override, per spec §4.2), InsertItem reconstructs it from the
// known SubID and the series master's DTSTART time zone before writing.
//
// When item.LUID is empty (the peer proposes a brand-new item with no
// identity of its own), the series it belongs to is resolved from the
// incoming VEVENT's own UID rather than from item.LUID.Split() — an empty
// LUID splits to an empty EasID, which would otherwise address a bogus
// "<empty>.ics" object instead of the series the event actually names.
func (c *Connector) InsertItem(ctx context.Context, item domain.Item) (domain.InsertResult, error) {
	events := splitVEvents(string(item.Content))
	if len(events) == 0 {
		return domain.InsertResult{}, domain.ErrInvalidInput
	}
	incoming := events[0]

	composite, err := resolveInsertIdentity(item.LUID, incoming)
	if err != nil {
		return domain.InsertResult{}, err
	}
	path := objectPath(composite.EasID)

	if composite.SubID != "" && incoming.recurrenceID == "" {
		var master *vevent
		if existing, err := c.client.getObject(ctx, path); err == nil {
			for _, ev := range splitVEvents(encodeCalendar(existing.Data)) {
				if ev.recurrenceID == "" {
					m := ev
					master = &m
					break
				}
			}
		}
		rid := reconstructRecurrenceID(composite.SubID, master, incoming)
		incoming.raw = strings.Replace(incoming.raw, "BEGIN:VEVENT\n", "BEGIN:VEVENT\n"+rid+"\n", 1)
	}

	merged, dupe, err := c.mergeInstance(ctx, path, incoming)
	if err != nil {
		return domain.InsertResult{}, err
	}

	obj, err := c.client.putObject(ctx, path, merged)
	if err != nil {
		return domain.InsertResult{}, err
	}

	luid := item.LUID
	if luid.IsEmpty() {
		luid = domain.CompositeLUID{EasID: composite.EasID, SubID: composite.SubID}.Join()
	}
	state := domain.InsertOkay
	if dupe {
		state = domain.InsertMerged
	}
	return domain.InsertResult{LUID: luid, Revision: domain.Revision(obj.ETag), State: state, MergedDupe: dupe}, nil
}

// mergeInstance combines a single VEVENT into the series' existing VCALENDAR
// text, replacing any prior instance carrying the same RECURRENCE-ID (or the
// master when incoming has none). The returned bool reports whether this
// write replaced an instance whose content was already byte-identical to
// incoming — a duplicate insert (spec §8 scenario 3's merged-dupe case)
// rather than a genuine content change.
func (c *Connector) mergeInstance(ctx context.Context, path string, incoming vevent) (string, bool, error) {
	var existingText string
	if existing, err := c.client.getObject(ctx, path); err == nil {
		existingText = encodeCalendar(existing.Data)
	}

	dupe := false
	var kept []string
	for _, ev := range splitVEvents(existingText) {
		if ev.recurrenceID == incoming.recurrenceID {
			if ev.raw == incoming.raw {
				dupe = true
			}
			continue
		}
		kept = append(kept, ev.raw)
	}
	kept = append(kept, incoming.raw)

	var b strings.Builder
	b.WriteString("BEGIN:VCALENDAR\nVERSION:2.0\n")
	for _, raw := range kept {
		b.WriteString(raw)
		b.WriteByte('\n')
	}
	b.WriteString("END:VCALENDAR")
	return b.String(), dupe, nil
}

// DeleteItem removes one occurrence, or the whole series when luid names no
// sub-component.
func (c *Connector) DeleteItem(ctx context.Context, luid domain.LUID) error {
	composite := luid.Split()
	path := objectPath(composite.EasID)

	if composite.SubID == "" {
		return c.client.deleteObject(ctx, path)
	}

	existing, err := c.client.getObject(ctx, path)
	if err != nil {
		return err
	}
	var kept []string
	for _, ev := range splitVEvents(encodeCalendar(existing.Data)) {
		if ev.recurrenceID == composite.SubID {
			continue
		}
		kept = append(kept, ev.raw)
	}
	if len(kept) == 0 {
		return c.client.deleteObject(ctx, path)
	}

	var b strings.Builder
	b.WriteString("BEGIN:VCALENDAR\nVERSION:2.0\n")
	for _, raw := range kept {
		b.WriteString(raw)
		b.WriteByte('\n')
	}
	b.WriteString("END:VCALENDAR")
	_, err = c.client.putObject(ctx, path, b.String())
	return err
}

// Backup returns every occurrence across the collection.
func (c *Connector) Backup(ctx context.Context) ([]domain.Item, error) {
	objects, err := c.client.listObjects(ctx)
	if err != nil {
		return nil, err
	}
	var items []domain.Item
	for _, obj := range objects {
		text := encodeCalendar(obj.Data)
		for _, ev := range splitVEvents(text) {
			items = append(items, domain.Item{
				SourceID:    c.sourceID,
				LUID:        compositeLUID(ev),
				ContentType: domain.ContentTypeICalendar,
				Content:     []byte(wrapVEvent(ev)),
				Revision:    domain.Revision(obj.ETag),
			})
		}
	}
	return items, nil
}

// Restore recreates every backed-up occurrence as a new object, one series
// per distinct UID.
func (c *Connector) Restore(ctx context.Context, items []domain.Item) error {
	for _, item := range items {
		if _, err := c.InsertItem(ctx, item); err != nil {
			return err
		}
	}
	return nil
}

// Close marks the connector as no longer usable for new sessions.
func (c *Connector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

// compositeLUID builds the composite LUID identifying one occurrence.
func compositeLUID(ev vevent) domain.LUID {
	return domain.CompositeLUID{EasID: ev.uid, SubID: ev.recurrenceID}.Join()
}

// resolveInsertIdentity picks the series/occurrence identity InsertItem
// writes to. A non-empty luid is trusted as given (proposedLUID.Split()).
// An empty luid — the peer proposing a brand-new item — is resolved from
// the incoming VEVENT's own UID/RECURRENCE-ID instead: luid.Split() on an
// empty LUID yields an empty EasID, which would otherwise address a bogus
// "<empty>.ics" object rather than the series the event actually names.
func resolveInsertIdentity(luid domain.LUID, incoming vevent) (domain.CompositeLUID, error) {
	if !luid.IsEmpty() {
		return luid.Split(), nil
	}
	if incoming.uid == "" {
		return domain.CompositeLUID{}, fmt.Errorf("caldav: insert item: %w: no LUID and incoming event has no UID", domain.ErrInvalidInput)
	}
	return domain.CompositeLUID{EasID: incoming.uid, SubID: incoming.recurrenceID}, nil
}

// objectPath derives the collection-relative object path from a series UID.
func objectPath(uid string) string {
	return uid + ".ics"
}

// wrapVEvent renders a single VEVENT as a standalone iCalendar item.
func wrapVEvent(ev vevent) string {
	return "BEGIN:VCALENDAR\nVERSION:2.0\n" + ev.raw + "\nEND:VCALENDAR"
}
