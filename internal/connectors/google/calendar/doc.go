// Package calendar implements the google-calendar Sync Source: a single
// Google Calendar's events, represented as iCalendar-shaped items
// addressed by event ID.
//
// # Architecture
//
// The connector follows the driven port pattern defined in
// [driven.SyncSource]. It comprises:
//
//   - Connector: implements the SyncSource capability set over one calendar
//   - Client: handles Calendar API communication and sync-token listings
//   - Config: parses the optional "calendar_id" source config key
//     (defaults to the user's primary calendar)
//
// # Item encoding
//
// Each event becomes one [domain.Item] of content type iCalendar, encoded
// as simple "KEY: value" lines (summary, description, location, start/end
// time, attendees) rather than a full VEVENT block — spec.md's
// iCalendar-parsing Non-goal covers this encoding too, so no RFC 5545
// parser is needed to round-trip it. The LUID is the event's own ID;
// SingleEvents expansion means each recurring occurrence already has a
// unique ID from the API, so no composite LUID reconstruction is needed
// here (contrast the caldav connector, which builds a composite
// "seriesUID/recurrenceID" LUID per occurrence and can reconstruct a
// missing RECURRENCE-ID from the series master's DTSTART time zone).
//
// # Change detection
//
// Changes lists events via the Calendar API's sync-token listing
// (ShowDeleted, SingleEvents). A cancelled event is reported Deleted. If
// the stored sync token has expired server-side (HTTP 410), the connector
// silently falls back to a full listing and reports every live event as
// New, mirroring the "source decides whether it can honor the token"
// contract.
//
// # Limitations
//
//   - Restore recreates backed-up items as new events; it does not match
//     them against events already on the calendar, so restoring into a
//     non-empty calendar creates duplicates.
package calendar
