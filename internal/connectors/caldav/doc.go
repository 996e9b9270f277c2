// Package caldav implements the caldav Sync Source: a remote WebDAV
// calendar collection accessed over the CalDAV protocol
// (github.com/emersion/go-webdav), with each recurring series' occurrences
// represented as individually addressable items.
//
// # Architecture
//
//   - Connector: implements the SyncSource capability set
//   - Client: wraps the go-webdav CalDAV client, discovering the collection
//     and exchanging calendar objects
//   - ics.go: narrow iCalendar field extraction (UID, RECURRENCE-ID,
//     DTSTART, TZID) — not a general parser, per spec.md's iCalendar-parsing
//     Non-goal
//
// # Item encoding and composite LUIDs
//
// A CalDAV calendar object is a VCALENDAR that can bundle a whole recurring
// series: one VEVENT without a RECURRENCE-ID (the master) plus one VEVENT
// per overridden occurrence (each carrying its own RECURRENCE-ID). Each
// occurrence becomes one [domain.Item], addressed by a composite LUID
// ("seriesUID/recurrenceID", domain.CompositeLUID) rather than the object's
// own ETag-keyed path, so the Protocol Engine can track and merge changes to
// individual occurrences the way it does for other merged-item sources.
//
// When an occurrence arrives for InsertItem missing its RECURRENCE-ID
// property — an incomplete override — the connector reconstructs it from
// the already-known SubID and the series master's DTSTART time zone,
// falling back to the instance's own DTSTART time zone if no master exists
// yet. This mirrors the ActiveSync backend's rule for repairing the same
// situation.
//
// # Change detection
//
// Changes re-lists the whole collection and reports every occurrence,
// with the object's ETag as its revision, tagged Unchanged — the same
// design the filesystem connector uses, since CalDAV (unlike the Google
// Calendar API) offers no portable, universally-supported incremental
// listing primitive to rely on instead. The incoming anchor is ignored;
// classifying New/Updated/Deleted is left to the Change Tracker.
//
// # Limitations
//
//   - Restore recreates every backed-up occurrence via InsertItem; existing
//     objects on the destination collection are not matched beforehand.
package caldav
