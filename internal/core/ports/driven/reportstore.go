package driven

import (
	"context"

	"github.com/syncevo-core/syncevo-core/internal/core/domain"
)

// ReportStore persists finished SyncReports, backing the `get_reports`
// external control signal (spec §6) and the `--print-config`/history
// views the CLI exposes.
type ReportStore interface {
	// Save persists a finished session's report.
	Save(ctx context.Context, configID string, report domain.SyncReport) error

	// List returns the most recent reports for a configuration, newest
	// first, capped at limit (0 meaning no cap).
	List(ctx context.Context, configID string, limit int) ([]domain.SyncReport, error)

	// Get retrieves one report by session ID.
	Get(ctx context.Context, sessionID string) (*domain.SyncReport, error)
}
