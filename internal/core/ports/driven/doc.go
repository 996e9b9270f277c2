// Package driven defines the interfaces the sync core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services (internal/core/services) depend on these interfaces;
// infrastructure adapters (internal/adapters/driven/*) implement them.
//
// # Required Interfaces
//
//   - SyncSource: composed capability set for one data source (§4.2)
//   - SyncSourceFactory: builds a SyncSource from a domain.Source
//   - TrackerStore: persists the LUID→revision map and sync anchors (§4.1)
//   - Transport: request/reply channel to the SyncML peer (§4.3)
//   - SourceStore: source configuration persistence
//   - ConfigStore: profile/filter property trees
//   - ReportStore: per-session sync report history
//   - LogSink: abstract logging/progress sink
//   - CredentialsStore, AuthProviderStore, TokenProvider: credential resolution
//
// # Import Rules
//
//   - Can import: domain package only
//   - Cannot import: any adapter or source package
package driven
