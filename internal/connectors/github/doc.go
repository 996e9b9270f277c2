// Package github implements the github-tasks Sync Source: a single GitHub
// repository's issues, represented as plain-text items addressed by issue
// number.
//
// # Architecture
//
// The connector follows the driven port pattern defined in
// [driven.SyncSource]. It comprises:
//
//   - Connector: implements the SyncSource capability set over one repository
//   - Client: handles GitHub API communication with rate limiting
//   - Config: parses the "repository" (owner/repo) source config key
//
// # Authentication
//
// Two authentication methods are supported via [driven.TokenProvider]:
//
//   - Personal Access Tokens (PAT): classic or fine-grained tokens created at
//     github.com/settings/tokens. Requires 'repo' scope for private repositories.
//
//   - OAuth App: tokens obtained via the OAuth 2.0 authorisation code flow,
//     handled by [OAuthHandler]. The application must be registered at
//     github.com/settings/developers.
//
// Both methods provide 5,000 API requests per hour for authenticated users.
//
// # Configuration
//
// Source configuration accepts a single required key:
//
//   - repository: "owner/repo" naming the single repository to sync.
//
// # Rate Limiting
//
// The connector implements a dual-strategy rate limiting approach:
//
//  1. Proactive throttling: a token bucket limits requests to approximately
//     1.2 requests per second, staying under the 5,000/hour limit.
//
//  2. Reactive handling: the connector monitors X-RateLimit-Remaining and
//     X-RateLimit-Reset headers and waits out exhausted limits.
//
// # Item encoding and change detection
//
// Each issue becomes one [domain.Item] of content type text: the issue
// title as the first line, a blank line, then the body (omitted entirely
// for a bodyless issue). The item's LUID is the issue number; its revision
// is the issue's UpdatedAt timestamp.
//
// Changes lists issues via the List Repository Issues API sorted by update
// time, using the sync anchor's stored timestamp as the "since" filter. An
// issue created at or after the anchor is reported New; an older issue with
// a newer edit is reported Updated. An empty anchor (slow sync) enumerates
// every open and closed issue as New.
//
// # Deletion
//
// GitHub's REST API has no hard-delete for issues. DeleteItem closes the
// issue instead; this is the closest available analogue and is applied
// symmetrically when github-tasks items are classified Deleted.
//
// # Limitations
//
//   - Restore recreates backed-up items as new issues; it does not match
//     them against issues already present, so restoring into a non-empty
//     repository creates duplicates.
//   - Pull requests are excluded from the issue listing.
package github
