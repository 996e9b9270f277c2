package services

import (
	"container/heap"
	"context"
	"fmt"
	"sync"

	"github.com/syncevo-core/syncevo-core/internal/core/domain"
	"github.com/syncevo-core/syncevo-core/internal/core/ports/driven"
	"github.com/syncevo-core/syncevo-core/internal/core/ports/driving"
)

// queuedSession is one entry in the Manager's priority queue: a built
// Controller waiting for its configuration's slot to free up, in FIFO
// order among entries for the same configuration (spec §4.6).
type queuedSession struct {
	controller *Controller
	seq        int
	index      int
}

// sessionHeap orders queuedSessions by arrival order (seq ascending);
// container/heap is used because no SyncML/session-queue library appears
// anywhere in the example corpus, so this is a standard-library-only part
// of the domain stack.
type sessionHeap []*queuedSession

func (h sessionHeap) Len() int            { return len(h) }
func (h sessionHeap) Less(i, j int) bool  { return h[i].seq < h[j].seq }
func (h sessionHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i]; h[i].index = i; h[j].index = j }
func (h *sessionHeap) Push(x any)         { item := x.(*queuedSession); item.index = len(*h); *h = append(*h, item) }
func (h *sessionHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}

// Manager implements the Session Manager (C6, spec §3, §4.6): it owns the
// per-configuration priority queue and enforces the modify-lock invariant
// that at most one session may be active for a given configuration at
// once.
type Manager struct {
	factory     driven.SyncSourceFactory
	sourceStore driven.SourceStore
	configStore driven.ConfigStore
	trackerStor driven.TrackerStore
	reportStore driven.ReportStore
	transport   driven.Transport
	sink        driven.LogSink
	tracker     *Tracker

	mu       sync.Mutex
	active   map[string]*Controller  // configID -> running controller
	queues   map[string]*sessionHeap // configID -> pending queue
	sessions map[string]*Controller  // sessionID -> controller, for Connect
	seq      int
}

// NewManager builds a Manager. trackerStore backs both the Tracker used
// to classify changes and the TrackerStore port new Controllers are
// constructed with.
func NewManager(factory driven.SyncSourceFactory, sourceStore driven.SourceStore, configStore driven.ConfigStore, trackerStore driven.TrackerStore, reportStore driven.ReportStore, transport driven.Transport, sink driven.LogSink) *Manager {
	return &Manager{
		factory:     factory,
		sourceStore: sourceStore,
		configStore: configStore,
		trackerStor: trackerStore,
		reportStore: reportStore,
		transport:   transport,
		sink:        sink,
		tracker:     NewTracker(trackerStore, 0),
		active:      make(map[string]*Controller),
		queues:      make(map[string]*sessionHeap),
		sessions:    make(map[string]*Controller),
	}
}

// StartSession implements driving.SessionManager.
func (m *Manager) StartSession(ctx context.Context, configID string, modes map[string]domain.SyncMode, filter domain.Filter) (string, error) {
	srcs, err := m.sourceStore.List(ctx)
	if err != nil {
		return "", err
	}

	built := make(map[string]driven.SyncSource, len(srcs))
	effectiveModes := make(map[string]domain.SyncMode, len(srcs))
	for _, src := range srcs {
		mode, overridden := modes[src.ID]
		if !overridden {
			mode = domain.ModeTwoWay
		}
		if mode == domain.ModeDisabled {
			continue
		}
		s, err := m.factory.Build(ctx, src)
		if err != nil {
			return "", fmt.Errorf("build source %s: %w", src.ID, err)
		}
		built[src.ID] = s
		effectiveModes[src.ID] = mode
	}

	engine := NewEngine(m.transport, m.sink)
	controller := NewController(configID, built, effectiveModes, filter, m.tracker, engine, m.trackerStor, m.reportStore, m.sink)

	m.mu.Lock()
	m.sessions[controller.ID()] = controller
	m.enqueueLocked(configID, controller)
	m.mu.Unlock()

	m.advance(ctx, configID)
	return controller.ID(), nil
}

func (m *Manager) enqueueLocked(configID string, c *Controller) {
	q, ok := m.queues[configID]
	if !ok {
		h := make(sessionHeap, 0, 1)
		q = &h
		heap.Init(q)
		m.queues[configID] = q
	}
	m.seq++
	heap.Push(q, &queuedSession{controller: c, seq: m.seq})
}

// advance starts the next queued session for configID if no session is
// currently active against it (spec §3's modify-lock invariant).
func (m *Manager) advance(ctx context.Context, configID string) {
	m.mu.Lock()
	if _, busy := m.active[configID]; busy {
		m.mu.Unlock()
		return
	}
	q, ok := m.queues[configID]
	if !ok || q.Len() == 0 {
		m.mu.Unlock()
		return
	}
	next := heap.Pop(q).(*queuedSession).controller
	m.active[configID] = next
	m.mu.Unlock()

	next.Start(ctx)
	go m.awaitCompletion(ctx, configID, next)
}

func (m *Manager) awaitCompletion(ctx context.Context, configID string, c *Controller) {
	_, _ = c.Sync(context.Background())

	m.mu.Lock()
	delete(m.active, configID)
	m.mu.Unlock()

	m.advance(ctx, configID)
}

// Connect implements driving.SessionManager.
func (m *Manager) Connect(ctx context.Context, sessionID string) (driving.SessionControl, error) {
	m.mu.Lock()
	c, ok := m.sessions[sessionID]
	m.mu.Unlock()
	if !ok {
		return nil, domain.ErrNotFound
	}
	return c, nil
}

// GetConfig implements driving.SessionManager.
func (m *Manager) GetConfig(ctx context.Context, configID string) (map[string]string, error) {
	if m.configStore == nil {
		return nil, domain.ErrNotImplemented
	}
	out := make(map[string]string)
	for _, key := range m.configStore.GetStringSlice(configID + ".keys") {
		out[key] = m.configStore.GetString(configID + "." + key)
	}
	return out, nil
}

// SetConfig implements driving.SessionManager.
func (m *Manager) SetConfig(ctx context.Context, configID string, props map[string]string) error {
	if m.configStore == nil {
		return domain.ErrNotImplemented
	}
	for k, v := range props {
		if err := m.configStore.Set(configID+"."+k, v); err != nil {
			return err
		}
	}
	return m.configStore.Save()
}

// GetReports implements driving.SessionManager.
func (m *Manager) GetReports(ctx context.Context, configID string, limit int) ([]domain.SyncReport, error) {
	if m.reportStore == nil {
		return nil, nil
	}
	return m.reportStore.List(ctx, configID, limit)
}

// GetDatabases implements driving.SessionManager.
func (m *Manager) GetDatabases(ctx context.Context, configID string) ([]domain.Source, error) {
	return m.sourceStore.List(ctx)
}

// CheckSource implements driving.SessionManager.
func (m *Manager) CheckSource(ctx context.Context, configID, sourceID string) error {
	src, err := m.sourceStore.Get(ctx, sourceID)
	if err != nil {
		return err
	}
	_, err = m.factory.Build(ctx, *src)
	return err
}

// CheckPresence implements driving.SessionManager. A real implementation
// would issue a lightweight transport probe; since Transport has no
// dedicated ping verb (spec §4.3 only defines send/wait-for-reply), this
// treats a non-nil configured transport as present.
func (m *Manager) CheckPresence(ctx context.Context, configID string) (bool, error) {
	return m.transport != nil, nil
}

// Backup implements driving.SessionManager by building sourceID outside
// of any session and reading its full content back through
// BackupRestoreCapability.
func (m *Manager) Backup(ctx context.Context, configID, sourceID string) ([]domain.Item, error) {
	src, err := m.sourceStore.Get(ctx, sourceID)
	if err != nil {
		return nil, err
	}
	s, err := m.factory.Build(ctx, *src)
	if err != nil {
		return nil, fmt.Errorf("build source %s: %w", sourceID, err)
	}
	return s.Backup(ctx)
}

// Restore implements driving.SessionManager by building sourceID outside
// of any session and replacing its content with items.
func (m *Manager) Restore(ctx context.Context, configID, sourceID string, items []domain.Item) error {
	src, err := m.sourceStore.Get(ctx, sourceID)
	if err != nil {
		return err
	}
	s, err := m.factory.Build(ctx, *src)
	if err != nil {
		return fmt.Errorf("build source %s: %w", sourceID, err)
	}
	return s.Restore(ctx, items)
}

var _ driving.SessionManager = (*Manager)(nil)
