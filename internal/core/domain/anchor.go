package domain

import "time"

// SyncAnchor carries the opaque token a Sync Source hands back at the end
// of a successful sync and receives again at the start of the next one
// (spec §3 "Sync anchor / token"). An empty LastToken requests a slow
// sync; the source decides whether ResumeToken (left over from a
// suspended session) can be honoured.
type SyncAnchor struct {
	// SourceID links the anchor to its Source.
	SourceID string

	// LastToken is the anchor from the most recent successful sync.
	// Empty forces a slow sync.
	LastToken string

	// ResumeToken is set when the previous session was suspended rather
	// than completed; present only until the next session consumes it.
	ResumeToken string

	// UpdatedAt records when LastToken was last written.
	UpdatedAt time.Time
}

// RequestsSlowSync reports whether this anchor forces a full resend.
func (a SyncAnchor) RequestsSlowSync() bool {
	return a.LastToken == ""
}
