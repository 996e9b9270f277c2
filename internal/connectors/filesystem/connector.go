package filesystem

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/syncevo-core/syncevo-core/internal/core/domain"
	"github.com/syncevo-core/syncevo-core/internal/core/ports/driven"
)

// Ensure Connector implements the SyncSource capability set.
var _ driven.SyncSource = (*Connector)(nil)

// Connector is the vcard Sync Source (spec §4.2): a directory holding one
// .vcf file per contact, addressed by LUID = filename stem. It never
// parses vCard fields (spec.md's vCard-parsing Non-goal); content is
// opaque bytes and revisions are content hashes.
type Connector struct {
	sourceID string
	config   *Config

	mu        sync.Mutex
	sessionID string
	closed    bool
}

// New creates a vcard connector for sourceID rooted at cfg.Path.
func New(sourceID string, cfg *Config) *Connector {
	return &Connector{sourceID: sourceID, config: cfg}
}

// ID returns the source's configured identifier.
func (c *Connector) ID() string {
	return c.sourceID
}

// SupportedContentTypes reports that vcard exchanges vCard payloads.
func (c *Connector) SupportedContentTypes() []domain.ContentType {
	return []domain.ContentType{domain.ContentTypeVCard}
}

// SetSessionID attaches the active session's identifier for logging.
func (c *Connector) SetSessionID(sessionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessionID = sessionID
}

// BeginSync ensures the backing directory exists and is usable before the
// session proceeds.
func (c *Connector) BeginSync(_ context.Context, sessionID string, _ domain.EngineParams) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return domain.ErrConnectorClosed
	}
	c.sessionID = sessionID
	c.mu.Unlock()

	if err := os.MkdirAll(c.config.Path, 0o755); err != nil {
		return fmt.Errorf("filesystem: prepare %s: %w", c.config.Path, err)
	}
	return nil
}

// EndSync releases the session; the filesystem has no connection state to
// flush.
func (c *Connector) EndSync(_ context.Context) error {
	return nil
}

// Changes scans the directory and reports a full census: every file
// currently on disk, with its content and revision hash, tagged
// Unchanged. It does not classify New/Updated/Deleted itself — the
// filesystem has no record of what the last sync saw, so that judgment
// belongs to the Change Tracker's persisted revision map (spec §4.1),
// which treats an Unchanged-tagged entry as "here is this item, you
// decide" and infers deletion from whatever LUID it previously tracked
// but this census omits. anchor.LastToken is unused; a plain directory
// scan is cheap enough not to need one.
func (c *Connector) Changes(_ context.Context, _ domain.SyncAnchor) ([]domain.ItemChange, domain.SyncAnchor, error) {
	current, err := scanManifest(c.config.Path)
	if err != nil {
		return nil, domain.SyncAnchor{}, err
	}

	changes := make([]domain.ItemChange, 0, len(current))
	for luid, revision := range current {
		item, err := c.readItem(luid, revision)
		if err != nil {
			return nil, domain.SyncAnchor{}, err
		}
		changes = append(changes, domain.ItemChange{State: domain.Unchanged, LUID: luid, Item: item})
	}

	newAnchor := domain.SyncAnchor{
		SourceID:  c.sourceID,
		LastToken: "scanned",
		UpdatedAt: time.Now(),
	}
	return changes, newAnchor, nil
}

// readItem loads one file's content given its already-known revision, so
// Changes doesn't hash it twice.
func (c *Connector) readItem(luid domain.LUID, revision domain.Revision) (*domain.Item, error) {
	path, err := luidToPath(c.config.Path, luid)
	if err != nil {
		return nil, err
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("filesystem: read %s: %w", path, err)
	}
	return &domain.Item{
		SourceID:    c.sourceID,
		LUID:        luid,
		ContentType: domain.ContentTypeVCard,
		Content:     content,
		Revision:    revision,
	}, nil
}

// ReadItem fetches the current content of one contact file.
func (c *Connector) ReadItem(_ context.Context, luid domain.LUID) (*domain.Item, error) {
	path, err := luidToPath(c.config.Path, luid)
	if err != nil {
		return nil, err
	}
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("filesystem: read %s: %w", path, err)
	}
	return &domain.Item{
		SourceID:    c.sourceID,
		LUID:        luid,
		ContentType: domain.ContentTypeVCard,
		Content:     content,
		Revision:    hashContent(content),
	}, nil
}

// InsertItem writes item's content to its LUID's file, assigning a new
// LUID when the item doesn't have one yet.
func (c *Connector) InsertItem(_ context.Context, item domain.Item) (domain.InsertResult, error) {
	luid := item.LUID
	if luid.IsEmpty() {
		luid = domain.LUID(uuid.NewString())
	}

	path, err := luidToPath(c.config.Path, luid)
	if err != nil {
		return domain.InsertResult{}, err
	}
	if err := os.WriteFile(path, item.Content, 0o644); err != nil {
		return domain.InsertResult{}, fmt.Errorf("filesystem: write %s: %w", path, err)
	}

	return domain.InsertResult{LUID: luid, Revision: hashContent(item.Content)}, nil
}

// DeleteItem removes a contact's file.
func (c *Connector) DeleteItem(_ context.Context, luid domain.LUID) error {
	path, err := luidToPath(c.config.Path, luid)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("filesystem: remove %s: %w", path, err)
	}
	return nil
}

// Backup returns every contact currently on disk.
func (c *Connector) Backup(_ context.Context) ([]domain.Item, error) {
	manifest, err := scanManifest(c.config.Path)
	if err != nil {
		return nil, err
	}
	items := make([]domain.Item, 0, len(manifest))
	for luid, revision := range manifest {
		item, err := c.readItem(luid, revision)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, nil
}

// Restore writes each backed-up item to its original LUID's file,
// overwriting whatever is there. It does not remove files absent from
// items; a full discard-then-restore is the Session Controller's job.
func (c *Connector) Restore(_ context.Context, items []domain.Item) error {
	for _, item := range items {
		path, err := luidToPath(c.config.Path, item.LUID)
		if err != nil {
			return err
		}
		if err := os.WriteFile(path, item.Content, 0o644); err != nil {
			return fmt.Errorf("filesystem: restore %s: %w", path, err)
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
