package calendar

import (
	"github.com/syncevo-core/syncevo-core/internal/connectors/google"
	"github.com/syncevo-core/syncevo-core/internal/core/domain"
)

// wrapError maps a Calendar API error onto the domain's sentinel errors,
// classifying it through the shared google package rather than
// re-parsing googleapi.Error here.
func wrapError(err error) error {
	switch {
	case err == nil:
		return nil
	case google.IsUnauthorized(err):
		return domain.ErrAuthInvalid
	case google.IsNotFound(err):
		return domain.ErrNotFound
	case google.IsRateLimited(err):
		return domain.ErrRateLimited
	case google.IsSyncTokenExpired(err):
		return domain.ErrSyncTokenExpired
	default:
		return err
	}
}
