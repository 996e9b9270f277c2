// Package sqlite provides a unified SQLite-based implementation of driven port interfaces.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. It implements multiple store interfaces
// through a single database connection:
//
//   - SourceStore: source configuration persistence
//   - TrackerStore: LUID/revision map and sync anchor persistence (§4.1)
//   - ReportStore: finished SyncReport history (§3, §6)
//   - AuthProviderStore, CredentialsStore: OAuth/PAT credential persistence
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a numbered .up.sql file; migrations
// are applied forward only (there are no down migrations).
//
// # Data Location
//
// By default, the database is stored at ~/.syncevo-core/data/metadata.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite
