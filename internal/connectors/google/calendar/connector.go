package calendar

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/syncevo-core/syncevo-core/internal/core/domain"
	"github.com/syncevo-core/syncevo-core/internal/core/ports/driven"
)

// maxResults is the page size used for every listing call.
const maxResults = 250

// Ensure Connector implements the SyncSource capability set.
var _ driven.SyncSource = (*Connector)(nil)

// Connector is the google-calendar Sync Source (spec §4.2): it represents
// one calendar's events as iCalendar-shaped items, addressed by event ID.
type Connector struct {
	sourceID string
	config   *Config
	client   *Client

	mu        sync.Mutex
	sessionID string
	closed    bool
}

// New creates a google-calendar connector for sourceID against a single
// calendar, authenticating through tokenProvider.
func New(sourceID string, cfg *Config, tokenProvider driven.TokenProvider) *Connector {
	return &Connector{sourceID: sourceID, config: cfg, client: NewClient(tokenProvider)}
}

// ID returns the source's configured identifier.
func (c *Connector) ID() string {
	return c.sourceID
}

// SupportedContentTypes reports that google-calendar exchanges iCalendar
// payloads.
func (c *Connector) SupportedContentTypes() []domain.ContentType {
	return []domain.ContentType{domain.ContentTypeICalendar}
}

// SetSessionID attaches the active session's identifier for logging.
func (c *Connector) SetSessionID(sessionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessionID = sessionID
}

// BeginSync validates Google credentials before the session proceeds by
// fetching the target calendar's metadata.
func (c *Connector) BeginSync(ctx context.Context, sessionID string, _ domain.EngineParams) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return domain.ErrConnectorClosed
	}
	c.sessionID = sessionID
	c.mu.Unlock()

	if err := c.client.ensureService(ctx); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrAuthRequired, err)
	}
	if _, err := c.client.svc.Calendars.Get(c.config.CalendarID).Context(ctx).Do(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrAuthRequired, err)
	}
	return nil
}

// EndSync releases the session; the Calendar REST client has no
// connection state to flush.
func (c *Connector) EndSync(_ context.Context) error {
	return nil
}

// Changes lists events changed since anchor.LastToken, a Calendar API
// sync token. A cancelled event is reported Deleted. An empty anchor (slow
// sync) lists every event as New. If the stored sync token has expired
// server-side, Changes silently falls back to a slow sync, matching the
// "source decides whether it can honor the token" contract.
//
// Google's incremental listing has a known quirk: it can hand back a fresh
// nextSyncToken on an empty page even though a change was already in
// flight when the token was minted, so the change only becomes visible a
// moment later. A single empty incremental reply is therefore not trusted
// as "caught up" — Changes re-issues the listing once more with the new
// token before concluding there is nothing to report.
func (c *Connector) Changes(ctx context.Context, anchor domain.SyncAnchor) ([]domain.ItemChange, domain.SyncAnchor, error) {
	events, nextToken, err := c.client.listAllEvents(ctx, c.config.CalendarID, anchor.LastToken, maxResults)
	slowSync := anchor.RequestsSlowSync()
	if errors.Is(err, domain.ErrSyncTokenExpired) {
		events, nextToken, err = c.client.listAllEvents(ctx, c.config.CalendarID, "", maxResults)
		slowSync = true
	}
	if err != nil {
		return nil, domain.SyncAnchor{}, err
	}

	if shouldRetryEmptyIncrementalReply(slowSync, len(events), nextToken, anchor.LastToken) {
		retried, retryToken, retryErr := c.client.listAllEvents(ctx, c.config.CalendarID, nextToken, maxResults)
		if errors.Is(retryErr, domain.ErrSyncTokenExpired) {
			retried, retryToken, retryErr = c.client.listAllEvents(ctx, c.config.CalendarID, "", maxResults)
			slowSync = true
		}
		if retryErr != nil {
			return nil, domain.SyncAnchor{}, retryErr
		}
		events, nextToken = retried, retryToken
	}

	changes := make([]domain.ItemChange, 0, len(events))
	for _, event := range events {
		if isCancelled(event) {
			if slowSync {
				continue
			}
			changes = append(changes, domain.ItemChange{State: domain.Deleted, LUID: domain.LUID(event.Id)})
			continue
		}

		item := itemFromEvent(c.sourceID, event)
		state := domain.Updated
		if slowSync {
			state = domain.New
		}
		changes = append(changes, domain.ItemChange{State: state, LUID: item.LUID, Item: item})
	}

	newAnchor := domain.SyncAnchor{SourceID: c.sourceID, LastToken: nextToken}
	return changes, newAnchor, nil
}

// shouldRetryEmptyIncrementalReply decides whether an incremental Changes
// reply is trustworthy as "caught up" or needs one more round-trip. Only an
// incremental call (not slow sync) that came back with zero events and
// actually advanced the sync token qualifies — a token that didn't move is
// a genuinely empty page, not the race this quirk works around.
func shouldRetryEmptyIncrementalReply(slowSync bool, eventCount int, nextToken, priorToken string) bool {
	return !slowSync && eventCount == 0 && nextToken != "" && nextToken != priorToken
}

// ReadItem fetches the current content of one event.
func (c *Connector) ReadItem(ctx context.Context, luid domain.LUID) (*domain.Item, error) {
	event, err := c.client.getEvent(ctx, c.config.CalendarID, luid.String())
	if err != nil {
		return nil, err
	}
	return itemFromEvent(c.sourceID, event), nil
}

// InsertItem creates a new event when item.LUID is empty, or edits the
// existing one otherwise.
func (c *Connector) InsertItem(ctx context.Context, item domain.Item) (domain.InsertResult, error) {
	event := decodeEvent(item.Content)

	if item.LUID.IsEmpty() {
		created, err := c.client.insertEvent(ctx, c.config.CalendarID, event)
		if err != nil {
			return domain.InsertResult{}, err
		}
		return domain.InsertResult{LUID: domain.LUID(created.Id), Revision: domain.Revision(created.Updated)}, nil
	}

	updated, err := c.client.updateEvent(ctx, c.config.CalendarID, item.LUID.String(), event)
	if err != nil {
		return domain.InsertResult{}, err
	}
	return domain.InsertResult{LUID: item.LUID, Revision: domain.Revision(updated.Updated)}, nil
}

// DeleteItem removes an event outright.
func (c *Connector) DeleteItem(ctx context.Context, luid domain.LUID) error {
	return c.client.deleteEvent(ctx, c.config.CalendarID, luid.String())
}

// Backup returns every non-cancelled event on the calendar.
func (c *Connector) Backup(ctx context.Context) ([]domain.Item, error) {
	events, _, err := c.client.listAllEvents(ctx, c.config.CalendarID, "", maxResults)
	if err != nil {
		return nil, err
	}
	items := make([]domain.Item, 0, len(events))
	for _, event := range events {
		if isCancelled(event) {
			continue
		}
		items = append(items, *itemFromEvent(c.sourceID, event))
	}
	return items, nil
}

// Restore recreates each backed-up item as a new event. Like the
// github-tasks connector's Restore, it does not match items against
// events already on the calendar: restoring into a non-empty calendar
// duplicates events.
func (c *Connector) Restore(ctx context.Context, items []domain.Item) error {
	for _, item := range items {
		if _, err := c.client.insertEvent(ctx, c.config.CalendarID, decodeEvent(item.Content)); err != nil {
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
