// Package domain defines the core business entities of the sync engine.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Source: a configured data source (address book, calendar, task list, notes)
//   - Item: an opaque vCard/iCalendar/plain-text record, addressed by LUID
//   - LUID, Revision, ChangeSet: change-tracking primitives (§4.1)
//   - SyncAnchor, SyncMode: per-source sync state and mode (§3, §4.5)
//   - ProgressEvent, SourceStatus, SourceReport, SyncReport: session observability (§3, §4.4)
//   - Profile, Filter: SyncML session configuration (§4.4, §4.6)
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
