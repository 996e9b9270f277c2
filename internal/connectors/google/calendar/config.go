package calendar

import (
	"github.com/syncevo-core/syncevo-core/internal/core/domain"
)

// DefaultCalendarID is used when a source config omits "calendar_id".
const DefaultCalendarID = "primary"

// Config holds the parsed configuration for a google-calendar source: the
// single calendar whose events are synchronised as items.
type Config struct {
	// CalendarID names the calendar to sync, e.g. "primary" or an email
	// address identifying a secondary calendar.
	CalendarID string
}

// ParseConfig extracts configuration from a Source. The "calendar_id" key
// is optional and defaults to the user's primary calendar.
func ParseConfig(source domain.Source) (*Config, error) {
	calendarID := source.Config["calendar_id"]
	if calendarID == "" {
		calendarID = DefaultCalendarID
	}
	return &Config{CalendarID: calendarID}, nil
}
