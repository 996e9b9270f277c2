// Package filesystem implements the vcard Sync Source: a local directory
// holding one .vcf file per contact.
//
// # Architecture
//
// The connector follows the driven port pattern defined in
// [driven.SyncSource]. Connector implements the capability set directly
// over the filesystem; [Config] parses the single required "path" source
// config key.
//
// # Item encoding
//
// An item's LUID is its file's name without the .vcf extension; its
// revision is a sha256 hash of the file's raw bytes. Content is never
// parsed as vCard fields (spec.md's vCard-parsing Non-goal) — it passes
// through as opaque bytes from read to write.
//
// # Change detection
//
// The source has no server-side incremental API. Changes rescans the
// directory on every call and reports every file, with its content and
// revision hash, tagged Unchanged; the incoming anchor is ignored. Which
// files are new, updated or deleted is decided by the Change Tracker from
// its persisted revision map, not by this connector.
package filesystem
