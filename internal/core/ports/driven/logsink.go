package driven

import "github.com/syncevo-core/syncevo-core/internal/core/domain"

// LogSink is the abstract destination for session log lines and progress
// events (spec §4.4, §6). Adapters fan a LogSink out to rotating files,
// a TUI progress model, or both.
type LogSink interface {
	// Logf writes a formatted log line for sessionID.
	Logf(sessionID, format string, args ...any)

	// Progress forwards a protocol-engine progress event.
	Progress(sessionID string, event domain.ProgressEvent)

	// Close flushes and releases any held resources (e.g. a per-session
	// log file).
	Close() error
}
