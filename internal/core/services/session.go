package services

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/syncevo-core/syncevo-core/internal/core/domain"
	"github.com/syncevo-core/syncevo-core/internal/core/ports/driven"
	"github.com/syncevo-core/syncevo-core/internal/core/ports/driving"
)

// Controller implements the Session Controller (C5, spec §3, §4.6): it
// owns exactly one session's lifecycle, running each of its sources
// through the Engine in turn and aggregating their reports.
//
// The lifecycle-lock/cancel-func/done-channel shape is the same pattern
// mutagen's session controller uses to bracket a single synchronization
// loop: lifecycleLock guards cancel and done so Abort/Suspend can safely
// interrupt a loop that may or may not be running, without racing the
// loop's own cleanup.
type Controller struct {
	id       string
	configID string

	sources map[string]driven.SyncSource
	modes   map[string]domain.SyncMode
	filter  domain.Filter

	tracker     *Tracker
	engine      *Engine
	trackerStor driven.TrackerStore
	reportStore driven.ReportStore
	sink        driven.LogSink

	lifecycleLock sync.Mutex
	cancel        context.CancelFunc
	done          chan struct{}
	suspended     atomic.Bool

	stateLock sync.RWMutex
	state     domain.SessionState
	status    map[string]domain.SourceStatus
	progress  map[string]domain.SourceProgress
	report    domain.SyncReport
	runErr    error
}

// NewController creates a queued session for configID against the given
// sources, one SyncMode per source ID, with an optional property filter
// overlay.
func NewController(configID string, sources map[string]driven.SyncSource, modes map[string]domain.SyncMode, filter domain.Filter, tracker *Tracker, engine *Engine, trackerStore driven.TrackerStore, reportStore driven.ReportStore, sink driven.LogSink) *Controller {
	id := uuid.NewString()
	status := make(map[string]domain.SourceStatus, len(sources))
	progress := make(map[string]domain.SourceProgress, len(sources))
	for name, mode := range modes {
		status[name] = domain.SourceStatus{SourceID: name, Mode: mode, State: domain.SourceIdle}
	}
	return &Controller{
		id:          id,
		configID:    configID,
		sources:     sources,
		modes:       modes,
		filter:      filter,
		tracker:     tracker,
		engine:      engine,
		trackerStor: trackerStore,
		reportStore: reportStore,
		sink:        sink,
		state:       domain.SessionQueued,
		status:      status,
		progress:    progress,
		report:      *domain.NewSyncReport(id),
	}
}

// ID returns the session's identifier.
func (c *Controller) ID() string { return c.id }

// ConfigID returns the configuration this session runs against, used by
// the Session Manager to enforce the modify-lock invariant.
func (c *Controller) ConfigID() string { return c.configID }

// Start launches the session's driver loop in the background. It is
// called by the Session Manager once the configuration's slot is free.
func (c *Controller) Start(ctx context.Context) {
	c.lifecycleLock.Lock()
	if c.cancel != nil {
		c.lifecycleLock.Unlock()
		return
	}
	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.done = make(chan struct{})
	c.lifecycleLock.Unlock()

	c.setState(domain.SessionActive)
	go c.run(runCtx)
}

func (c *Controller) run(ctx context.Context) {
	defer close(c.done)

	c.setState(domain.SessionPreparing)
	for name, src := range c.sources {
		if c.suspended.Load() {
			c.fail(name, domain.ErrSessionSuspended)
			return
		}

		mode, ok := c.modes[name]
		if !ok || mode == domain.ModeDisabled {
			continue
		}
		params, ok := mode.EngineParams()
		if !ok {
			continue
		}

		c.setSourceState(name, domain.SourceRunning)
		c.setState(domain.SessionSyncing)

		set, anchor, revisions, err := c.tracker.Classify(ctx, src)
		if err != nil {
			c.fail(name, domain.NewSyncError(domain.KindLocal, 510, name, err))
			return
		}

		report, err := c.engine.Run(ctx, c.id, src, params, mode, set, anchor.ResumeToken != "", c.suspended.Load)
		if err != nil {
			c.stateLock.Lock()
			c.report.Sources[name] = report
			c.stateLock.Unlock()

			if err == domain.ErrSessionSuspended {
				c.setSourceState(name, domain.SourceSuspended)
				c.fail(name, err)
				return
			}

			c.setSourceState(name, domain.SourceAborted)
			if ctx.Err() != nil {
				c.fail(name, domain.ErrSessionAborted)
			} else {
				c.fail(name, err)
			}
			return
		}

		if err := c.tracker.Commit(ctx, name, anchor, revisions); err != nil {
			c.fail(name, domain.NewSyncError(domain.KindLocal, 510, name, err))
			return
		}

		c.stateLock.Lock()
		c.report.Sources[name] = report
		c.stateLock.Unlock()
		c.setSourceState(name, domain.SourceDone)
	}

	c.report.Finalize(200)
	if c.reportStore != nil {
		_ = c.reportStore.Save(ctx, c.configID, c.report)
	}
	if rotator, ok := c.sink.(interface{ Rotate() error }); ok && c.report.Status == 200 {
		_ = rotator.Rotate()
	}
	c.setState(domain.SessionDone)
}

func (c *Controller) fail(sourceID string, err error) {
	c.stateLock.Lock()
	c.runErr = err
	c.stateLock.Unlock()

	switch err {
	case domain.ErrSessionAborted:
		c.setState(domain.SessionAborted)
	case domain.ErrSessionSuspended:
		c.setState(domain.SessionSuspended)
	default:
		c.setState(domain.SessionFailed)
	}
}

func (c *Controller) setState(s domain.SessionState) {
	c.stateLock.Lock()
	c.state = s
	c.stateLock.Unlock()
}

func (c *Controller) setSourceState(sourceID string, s domain.SourceRunState) {
	c.stateLock.Lock()
	st := c.status[sourceID]
	st.State = s
	c.status[sourceID] = st
	c.stateLock.Unlock()
}

// Detach implements driving.SessionControl. The Controller has no
// per-caller subscription state to tear down; detaching never stops the
// underlying session.
func (c *Controller) Detach() error { return nil }

// Sync implements driving.SessionControl: block until the session
// reaches a terminal state and return its report.
func (c *Controller) Sync(ctx context.Context) (domain.SyncReport, error) {
	c.lifecycleLock.Lock()
	done := c.done
	c.lifecycleLock.Unlock()
	if done == nil {
		return domain.SyncReport{}, domain.ErrNotImplemented
	}

	select {
	case <-done:
	case <-ctx.Done():
		return domain.SyncReport{}, ctx.Err()
	}

	c.stateLock.RLock()
	defer c.stateLock.RUnlock()
	if c.runErr != nil {
		return c.report, c.runErr
	}
	return c.report, nil
}

// Abort implements driving.SessionControl: cancel the running loop.
func (c *Controller) Abort(ctx context.Context) error {
	c.lifecycleLock.Lock()
	cancel := c.cancel
	c.lifecycleLock.Unlock()
	if cancel == nil {
		return nil
	}
	cancel()
	return nil
}

// Suspend implements driving.SessionControl. Unlike Abort, Suspend does
// not cancel the run context: it sets a flag the driver loop and the
// Engine's step() poll at the next safe boundary (between sources, or
// between step commands mid-exchange), so the in-flight source's Engine
// stops at that boundary and ends the source instead of having its
// connection torn out from under it. No message is sent to the peer and
// no ResumeToken is written: the source caught mid-exchange ends in
// SourceSuspended with its anchor and revisions left as last committed;
// sources already committed keep their SourceDone state (spec §6
// "suspend").
func (c *Controller) Suspend(ctx context.Context) error {
	c.lifecycleLock.Lock()
	started := c.cancel != nil
	c.lifecycleLock.Unlock()
	if !started {
		return nil
	}
	c.suspended.Store(true)
	return nil
}

// GetStatus implements driving.SessionControl.
func (c *Controller) GetStatus() (domain.SessionState, []domain.SourceStatus) {
	c.stateLock.RLock()
	defer c.stateLock.RUnlock()
	out := make([]domain.SourceStatus, 0, len(c.status))
	for _, s := range c.status {
		out = append(out, s)
	}
	return c.state, out
}

// GetProgress implements driving.SessionControl.
func (c *Controller) GetProgress() []domain.SourceProgress {
	c.stateLock.RLock()
	defer c.stateLock.RUnlock()
	out := make([]domain.SourceProgress, 0, len(c.progress))
	for _, p := range c.progress {
		out = append(out, p)
	}
	return out
}

var _ driving.SessionControl = (*Controller)(nil)
