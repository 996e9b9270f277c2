package domain

import (
	"fmt"
	"strings"
	"time"
)

// Source represents a configured data source: an address book, calendar,
// task list, or notes collection that a Sync Source adapter exposes for
// synchronisation (spec §4.2).
type Source struct {
	// ID is the unique identifier for the source.
	ID string

	// Type identifies the source type (e.g., "vcard", "caldav", "google-calendar").
	Type string

	// Name is the human-readable name for this source.
	Name string

	// Config contains source-specific configuration.
	Config map[string]string

	// AuthProviderID references the AuthProvider (OAuth app or PAT provider config).
	// Empty string for no-auth sources (filesystem-backed vCard/iCalendar).
	AuthProviderID string

	// CredentialsID references this source's Credentials (tokens + account info).
	// Empty string for no-auth sources.
	CredentialsID string

	// CreatedAt is when the source was created.
	CreatedAt time.Time

	// UpdatedAt is when the source was last updated.
	UpdatedAt time.Time
}

// DisplayName returns the source name with account identifier if provided.
// Used for display in CLI/TUI where the account context helps identify the source.
// If the account identifier is already present in the name, it is not appended again.
func (s *Source) DisplayName(accountIdentifier string) string {
	if accountIdentifier != "" && !strings.Contains(s.Name, accountIdentifier) {
		return fmt.Sprintf("%s - %s", s.Name, accountIdentifier)
	}
	return s.Name
}
