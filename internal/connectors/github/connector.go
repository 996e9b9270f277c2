package github

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/syncevo-core/syncevo-core/internal/core/domain"
	"github.com/syncevo-core/syncevo-core/internal/core/ports/driven"
)

// Ensure Connector implements the SyncSource capability set.
var _ driven.SyncSource = (*Connector)(nil)

// Connector is the github-tasks Sync Source (spec §4.2): it represents one
// repository's issues as plain-text items, addressed by issue number.
type Connector struct {
	sourceID string
	config   *Config
	client   *Client

	mu        sync.Mutex
	sessionID string
	closed    bool
}

// New creates a github-tasks connector for sourceID against a single
// repository, authenticating through tokenProvider.
func New(sourceID string, cfg *Config, tokenProvider driven.TokenProvider) *Connector {
	return &Connector{
		sourceID: sourceID,
		config:   cfg,
		client:   NewClient(tokenProvider),
	}
}

// ID returns the source's configured identifier.
func (c *Connector) ID() string {
	return c.sourceID
}

// SupportedContentTypes reports that github-tasks exchanges plain text.
func (c *Connector) SupportedContentTypes() []domain.ContentType {
	return []domain.ContentType{domain.ContentTypeText}
}

// SetSessionID attaches the active session's identifier for logging.
func (c *Connector) SetSessionID(sessionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessionID = sessionID
}

// BeginSync validates GitHub credentials before the session proceeds.
func (c *Connector) BeginSync(ctx context.Context, sessionID string, _ domain.EngineParams) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return domain.ErrConnectorClosed
	}
	c.sessionID = sessionID
	c.mu.Unlock()

	if err := c.client.ValidateCredentials(ctx); err != nil {
		if IsUnauthorized(err) {
			return domain.ErrAuthInvalid
		}
		return fmt.Errorf("%w: %w", domain.ErrAuthRequired, err)
	}
	return nil
}

// EndSync releases the session; the GitHub REST client has no connection
// state to flush.
func (c *Connector) EndSync(_ context.Context) error {
	return nil
}

// Changes lists issues updated since anchor.LastToken (an RFC3339Nano
// timestamp) and classifies each as New (created at or after the anchor)
// or Updated (older creation, newer edit). An empty anchor requests a slow
// sync: every open and closed issue is reported as New.
func (c *Connector) Changes(ctx context.Context, anchor domain.SyncAnchor) ([]domain.ItemChange, domain.SyncAnchor, error) {
	var since time.Time
	if !anchor.RequestsSlowSync() {
		var err error
		since, err = time.Parse(time.RFC3339Nano, anchor.LastToken)
		if err != nil {
			return nil, domain.SyncAnchor{}, fmt.Errorf("github: invalid anchor token: %w", err)
		}
	}

	issues, err := listIssuesSince(ctx, c.client, c.config.Owner, c.config.Repo, since)
	if err != nil {
		return nil, domain.SyncAnchor{}, err
	}

	changes := make([]domain.ItemChange, 0, len(issues))
	latest := since
	for _, issue := range issues {
		item := itemFromIssue(c.sourceID, issue)
		state := domain.Updated
		if !issue.GetCreatedAt().Time.Before(since) {
			state = domain.New
		}
		changes = append(changes, domain.ItemChange{State: state, LUID: item.LUID, Item: item})

		if updated := issue.GetUpdatedAt().Time; updated.After(latest) {
			latest = updated
		}
	}

	newAnchor := domain.SyncAnchor{
		SourceID:  c.sourceID,
		LastToken: latest.Format(time.RFC3339Nano),
		UpdatedAt: latest,
	}
	return changes, newAnchor, nil
}

// ReadItem fetches the current content of one issue.
func (c *Connector) ReadItem(ctx context.Context, luid domain.LUID) (*domain.Item, error) {
	number, err := issueNumber(luid)
	if err != nil {
		return nil, err
	}
	issue, err := getIssue(ctx, c.client, c.config.Owner, c.config.Repo, number)
	if err != nil {
		if IsNotFound(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return itemFromIssue(c.sourceID, issue), nil
}

// InsertItem creates a new issue when item.LUID is empty, or edits the
// existing one otherwise.
func (c *Connector) InsertItem(ctx context.Context, item domain.Item) (domain.InsertResult, error) {
	if item.LUID.IsEmpty() {
		issue, err := createIssue(ctx, c.client, c.config.Owner, c.config.Repo, item)
		if err != nil {
			return domain.InsertResult{}, err
		}
		return domain.InsertResult{
			LUID:     luidForIssue(issue.GetNumber()),
			Revision: domain.Revision(issue.GetUpdatedAt().Format(time.RFC3339Nano)),
		}, nil
	}

	number, err := issueNumber(item.LUID)
	if err != nil {
		return domain.InsertResult{}, err
	}
	issue, err := updateIssue(ctx, c.client, c.config.Owner, c.config.Repo, number, item)
	if err != nil {
		return domain.InsertResult{}, err
	}
	return domain.InsertResult{
		LUID:     item.LUID,
		Revision: domain.Revision(issue.GetUpdatedAt().Format(time.RFC3339Nano)),
	}, nil
}

// DeleteItem closes the issue; see closeIssue for why closing stands in
// for deletion against the GitHub API.
func (c *Connector) DeleteItem(ctx context.Context, luid domain.LUID) error {
	number, err := issueNumber(luid)
	if err != nil {
		return err
	}
	return closeIssue(ctx, c.client, c.config.Owner, c.config.Repo, number)
}

// Backup returns every issue (open and closed) in the repository.
func (c *Connector) Backup(ctx context.Context) ([]domain.Item, error) {
	issues, err := listIssuesSince(ctx, c.client, c.config.Owner, c.config.Repo, time.Time{})
	if err != nil {
		return nil, err
	}
	items := make([]domain.Item, 0, len(issues))
	for _, issue := range issues {
		items = append(items, *itemFromIssue(c.sourceID, issue))
	}
	return items, nil
}

// Restore recreates each backed-up item as a new issue. It does not
// attempt to match items against issues already present in the
// repository: restoring into a non-empty repository will duplicate
// issues, matching the destructive-refresh semantics restore is meant to
// undo from (spec §6 "--restore" discards current content first).
func (c *Connector) Restore(ctx context.Context, items []domain.Item) error {
	for _, item := range items {
		if _, err := createIssue(ctx, c.client, c.config.Owner, c.config.Repo, item); err != nil {
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
