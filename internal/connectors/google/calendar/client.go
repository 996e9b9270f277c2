package calendar

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/api/calendar/v3"

	"github.com/syncevo-core/syncevo-core/internal/connectors/google"
	"github.com/syncevo-core/syncevo-core/internal/core/domain"
	"github.com/syncevo-core/syncevo-core/internal/core/ports/driven"
)

// Client wraps the Calendar v3 service with lazy, token-provider-backed
// authentication, in the same shape as the github connector's Client, but
// built on the shared google package's token source, service factory and
// rate limiter rather than reimplementing them.
type Client struct {
	svc           *calendar.Service
	tokenProvider driven.TokenProvider
	rateLimiter   *google.RateLimiter
}

// NewClient creates a Calendar API client backed by tokenProvider.
func NewClient(tokenProvider driven.TokenProvider) *Client {
	return &Client{
		tokenProvider: tokenProvider,
		rateLimiter:   google.NewRateLimiter(google.ServiceCalendar),
	}
}

// ensureService initialises the Calendar service on first use.
func (c *Client) ensureService(ctx context.Context) error {
	if c.svc != nil {
		return nil
	}

	ts := google.NewTokenSource(ctx, c.tokenProvider)
	svc, err := google.NewCalendarService(ctx, ts)
	if err != nil {
		return fmt.Errorf("create calendar service: %w", err)
	}
	c.svc = svc
	return nil
}

// Service returns the underlying Calendar service, or nil before the first
// API call.
func (c *Client) Service() *calendar.Service {
	return c.svc
}

// TokenProvider returns the token provider backing this client.
func (c *Client) TokenProvider() driven.TokenProvider {
	return c.tokenProvider
}

// eventPage is one page of a calendar listing.
type eventPage struct {
	items         []*calendar.Event
	nextPageToken string
	nextSyncToken string
}

// listEventsPage fetches a single page of events, either a slow-sync
// listing (syncToken empty) or an incremental one.
func (c *Client) listEventsPage(ctx context.Context, calendarID, syncToken, pageToken string, maxResults int64) (*eventPage, error) {
	if err := c.ensureService(ctx); err != nil {
		return nil, err
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	call := c.svc.Events.List(calendarID).
		Context(ctx).
		ShowDeleted(true).
		SingleEvents(true).
		MaxResults(maxResults)
	if syncToken != "" {
		call = call.SyncToken(syncToken)
	} else {
		call = call.OrderBy("updated")
	}
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}

	events, err := call.Do()
	if err != nil {
		if google.IsRateLimited(err) {
			c.rateLimiter.RecordRateLimitError(0)
		}
		wrapped := wrapError(err)
		if errors.Is(wrapped, domain.ErrSyncTokenExpired) {
			return nil, wrapped
		}
		return nil, fmt.Errorf("list events: %w", wrapped)
	}

	return &eventPage{
		items:         events.Items,
		nextPageToken: events.NextPageToken,
		nextSyncToken: events.NextSyncToken,
	}, nil
}

// listAllEvents drains every page of a listing, returning the accumulated
// events and the sync token for the next incremental call.
func (c *Client) listAllEvents(ctx context.Context, calendarID, syncToken string, maxResults int64) ([]*calendar.Event, string, error) {
	var all []*calendar.Event
	pageToken := ""
	for {
		page, err := c.listEventsPage(ctx, calendarID, syncToken, pageToken, maxResults)
		if err != nil {
			return nil, "", err
		}
		all = append(all, page.items...)
		if page.nextSyncToken != "" {
			return all, page.nextSyncToken, nil
		}
		if page.nextPageToken == "" {
			return all, "", nil
		}
		pageToken = page.nextPageToken
	}
}

// getEvent fetches a single event by ID.
func (c *Client) getEvent(ctx context.Context, calendarID, eventID string) (*calendar.Event, error) {
	if err := c.ensureService(ctx); err != nil {
		return nil, err
	}
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, err
	}
	event, err := c.svc.Events.Get(calendarID, eventID).Context(ctx).Do()
	if err != nil {
		wrapped := wrapError(err)
		if errors.Is(wrapped, domain.ErrNotFound) {
			return nil, wrapped
		}
		return nil, fmt.Errorf("get event: %w", wrapped)
	}
	return event, nil
}

// insertEvent creates a new event.
func (c *Client) insertEvent(ctx context.Context, calendarID string, event *calendar.Event) (*calendar.Event, error) {
	if err := c.ensureService(ctx); err != nil {
		return nil, err
	}
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, err
	}
	created, err := c.svc.Events.Insert(calendarID, event).Context(ctx).Do()
	if err != nil {
		if google.IsRateLimited(err) {
			c.rateLimiter.RecordRateLimitError(0)
		}
		return nil, fmt.Errorf("insert event: %w", wrapError(err))
	}
	return created, nil
}

// updateEvent edits an existing event.
func (c *Client) updateEvent(ctx context.Context, calendarID, eventID string, event *calendar.Event) (*calendar.Event, error) {
	if err := c.ensureService(ctx); err != nil {
		return nil, err
	}
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, err
	}
	updated, err := c.svc.Events.Update(calendarID, eventID, event).Context(ctx).Do()
	if err != nil {
		wrapped := wrapError(err)
		if errors.Is(wrapped, domain.ErrNotFound) {
			return nil, wrapped
		}
		return nil, fmt.Errorf("update event: %w", wrapped)
	}
	return updated, nil
}

// deleteEvent removes an event outright (Calendar, unlike GitHub issues,
// supports a real delete).
func (c *Client) deleteEvent(ctx context.Context, calendarID, eventID string) error {
	if err := c.ensureService(ctx); err != nil {
		return err
	}
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return err
	}
	if err := c.svc.Events.Delete(calendarID, eventID).Context(ctx).Do(); err != nil {
		wrapped := wrapError(err)
		if errors.Is(wrapped, domain.ErrNotFound) {
			return wrapped
		}
		return fmt.Errorf("delete event: %w", wrapped)
	}
	return nil
}
