package driving

import (
	"context"

	"github.com/syncevo-core/syncevo-core/internal/core/domain"
)

// SessionManager is the Session Manager's external control surface (C6,
// spec §6): the single entry point the CLI, TUI, and any future D-Bus-like
// front end drive to queue sessions, inspect status, and manage
// configuration. It enforces the modify-lock invariant: at most one
// active session per configuration (spec §3).
type SessionManager interface {
	// StartSession queues a new sync session for configID with the given
	// per-source modes and filter overrides, returning the assigned
	// session ID. The call returns immediately; the session itself may
	// run later if another session already holds the configuration's
	// slot (spec §4.6 priority queue).
	StartSession(ctx context.Context, configID string, modes map[string]domain.SyncMode, filter domain.Filter) (string, error)

	// Connect attaches the caller to the live progress/status stream for
	// an already-running or queued session.
	Connect(ctx context.Context, sessionID string) (SessionControl, error)

	// GetConfig returns the effective property tree for configID.
	GetConfig(ctx context.Context, configID string) (map[string]string, error)

	// SetConfig persists property overrides for configID.
	SetConfig(ctx context.Context, configID string, props map[string]string) error

	// GetReports returns the most recent sync reports for configID.
	GetReports(ctx context.Context, configID string, limit int) ([]domain.SyncReport, error)

	// GetDatabases lists the sources configured under configID.
	GetDatabases(ctx context.Context, configID string) ([]domain.Source, error)

	// CheckSource validates a source's configuration and credentials
	// without starting a session.
	CheckSource(ctx context.Context, configID, sourceID string) error

	// CheckPresence reports whether the remote peer for configID is
	// currently reachable.
	CheckPresence(ctx context.Context, configID string) (bool, error)

	// Backup snapshots sourceID's entire current content, for restoring
	// later with Restore (spec §6 supplemented feature, `--restore`).
	Backup(ctx context.Context, configID, sourceID string) ([]domain.Item, error)

	// Restore replaces sourceID's content with a prior Backup snapshot.
	Restore(ctx context.Context, configID, sourceID string, items []domain.Item) error
}

// SessionControl is the per-session external control surface (spec §6):
// detach, drive, or inspect one specific queued/active session.
type SessionControl interface {
	// Detach stops streaming progress to this caller without affecting
	// the session itself.
	Detach() error

	// Sync blocks until the session reaches a terminal state, returning
	// its final report.
	Sync(ctx context.Context) (domain.SyncReport, error)

	// Abort cancels the session immediately; any partially-applied
	// changes are not rolled back (spec §6 "abort").
	Abort(ctx context.Context) error

	// Suspend requests the session pause at the next safe point,
	// preserving its sync anchor for resumption (spec §6 "suspend").
	Suspend(ctx context.Context) error

	// GetStatus returns the session's overall state and per-source
	// statuses.
	GetStatus() (domain.SessionState, []domain.SourceStatus)

	// GetProgress returns the session's per-source progress counters.
	GetProgress() []domain.SourceProgress
}
