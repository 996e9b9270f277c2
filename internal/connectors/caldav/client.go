package caldav

import (
	"context"
	"fmt"
	"net/http"

	"github.com/emersion/go-webdav"
	gocaldav "github.com/emersion/go-webdav/caldav"

	"github.com/syncevo-core/syncevo-core/internal/core/ports/driven"
)

// Client wraps the go-webdav CalDAV client, resolving the configured
// collection URL once and exposing the narrow set of operations the
// connector needs.
type Client struct {
	baseURL       string
	tokenProvider driven.TokenProvider

	caldav *gocaldav.Client
}

// NewClient creates a CalDAV client against baseURL, authenticating with
// HTTP Basic credentials drawn from tokenProvider (AuthorizationID as
// username, GetToken as password) on first use.
func NewClient(baseURL string, tokenProvider driven.TokenProvider) *Client {
	return &Client{baseURL: baseURL, tokenProvider: tokenProvider}
}

// ensureClient builds the underlying caldav.Client on first use.
func (c *Client) ensureClient(ctx context.Context) error {
	if c.caldav != nil {
		return nil
	}

	var username, password string
	if c.tokenProvider != nil {
		username = c.tokenProvider.AuthorizationID()
		token, err := c.tokenProvider.GetToken(ctx)
		if err != nil {
			return fmt.Errorf("get token: %w", err)
		}
		password = token
	}

	hc := webdav.HTTPClientWithBasicAuth(http.DefaultClient, username, password)
	client, err := gocaldav.NewClient(hc, c.baseURL)
	if err != nil {
		return fmt.Errorf("create caldav client: %w", err)
	}
	c.caldav = client

	if _, err := client.FindCurrentUserPrincipal(ctx); err != nil {
		return fmt.Errorf("caldav: verify credentials: %w", err)
	}
	return nil
}

// listObjects fetches every calendar object in the configured collection.
func (c *Client) listObjects(ctx context.Context) ([]gocaldav.CalendarObject, error) {
	if err := c.ensureClient(ctx); err != nil {
		return nil, err
	}

	query := &gocaldav.CalendarQuery{
		CompRequest: gocaldav.CalendarCompRequest{
			Name:     "VCALENDAR",
			AllProps: true,
			AllComps: true,
		},
		CompFilter: gocaldav.CompFilter{
			Name: "VCALENDAR",
			Comps: []gocaldav.CompFilter{
				{Name: "VEVENT"},
			},
		},
	}
	return c.caldav.QueryCalendar(ctx, c.baseURL, query)
}

// getObject fetches a single calendar object by its path.
func (c *Client) getObject(ctx context.Context, path string) (*gocaldav.CalendarObject, error) {
	if err := c.ensureClient(ctx); err != nil {
		return nil, err
	}
	return c.caldav.GetCalendarObject(ctx, path)
}

// putObject creates or replaces the calendar object at path with the given
// raw iCalendar text.
func (c *Client) putObject(ctx context.Context, path string, data string) (*gocaldav.CalendarObject, error) {
	if err := c.ensureClient(ctx); err != nil {
		return nil, err
	}
	return c.caldav.PutCalendarObject(ctx, path, parseCalendar(data))
}

// deleteObject removes the calendar object at path.
func (c *Client) deleteObject(ctx context.Context, path string) error {
	if err := c.ensureClient(ctx); err != nil {
		return err
	}
	return c.caldav.RemoveAll(ctx, path)
}
