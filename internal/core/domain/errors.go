package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures, distinct from
// infrastructure errors raised by adapters.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotImplemented indicates functionality is not yet available.
	ErrNotImplemented = errors.New("not implemented")

	// ErrUnsupportedType indicates an unknown source or auth provider type.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrSyncInProgress indicates a session is already active for this
	// configuration (spec §3's modify-lock invariant: "at most one active
	// session per configuration").
	ErrSyncInProgress = errors.New("sync in progress")

	// Authentication errors.

	// ErrAuthRequired indicates the source requires authentication but none is configured.
	ErrAuthRequired = errors.New("authentication required")

	// ErrAuthExpired indicates the authentication has expired and refresh failed.
	ErrAuthExpired = errors.New("authentication expired")

	// ErrAuthInvalid indicates the authentication credentials are invalid.
	ErrAuthInvalid = errors.New("authentication invalid")

	// ErrTokenRefreshFailed indicates token refresh operation failed.
	ErrTokenRefreshFailed = errors.New("token refresh failed")

	// Source errors.

	// ErrConnectorValidation indicates source validation failed: the
	// source is misconfigured or credentials are invalid.
	ErrConnectorValidation = errors.New("connector validation failed")

	// ErrConnectorClosed indicates the source's connection has been closed.
	ErrConnectorClosed = errors.New("connector closed")

	// ErrRateLimited indicates the remote peer's rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// ErrAuthProviderInUse indicates an auth provider cannot be deleted because sources depend on it.
	ErrAuthProviderInUse = errors.New("auth provider is in use by one or more sources")

	// ErrSessionAborted indicates the session was cancelled by an external
	// abort signal (spec §6 "abort").
	ErrSessionAborted = errors.New("session aborted")

	// ErrSessionSuspended indicates the session was paused by an external
	// suspend signal; the sync anchor is preserved for resumption (spec §6
	// "suspend").
	ErrSessionSuspended = errors.New("session suspended")

	// ErrTransportFailed indicates the transport agent could not deliver or
	// receive a message (spec §4.3).
	ErrTransportFailed = errors.New("transport failed")

	// ErrSyncTokenExpired indicates the remote peer rejected the stored sync
	// anchor; callers should retry as a slow sync.
	ErrSyncTokenExpired = errors.New("sync token expired")
)

// Kind classifies a SyncError the way the SyncML status-code families do
// (spec §7 "Propagation"): a session-level failure belongs to exactly one
// of these buckets, which in turn determines whether the Session Manager
// retries or gives up the slot permanently.
type Kind int

// Recognised error kinds.
const (
	// KindConfig covers malformed or missing configuration.
	KindConfig Kind = iota
	// KindCredentials covers authentication/authorization failures.
	KindCredentials
	// KindTransport covers network/transport-layer failures.
	KindTransport
	// KindProtocol covers malformed or unexpected SyncML exchanges.
	KindProtocol
	// KindDatastore covers local/remote datastore failures (store, fetch, insert).
	KindDatastore
	// KindLocal covers local-only failures (disk, tracker store, filesystem).
	KindLocal
	// KindAborted covers a user- or peer-initiated abort.
	KindAborted
	// KindSuspended covers a user-initiated suspend.
	KindSuspended
	// KindFatal covers unrecoverable engine failures.
	KindFatal
)

// String renders the error kind for logs and reports.
func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindCredentials:
		return "credentials"
	case KindTransport:
		return "transport"
	case KindProtocol:
		return "protocol"
	case KindDatastore:
		return "datastore"
	case KindLocal:
		return "local"
	case KindAborted:
		return "aborted"
	case KindSuspended:
		return "suspended"
	case KindFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// SyncError wraps a lower-level error with the Kind and SyncML status
// code the Session Controller needs to fill in a SourceReport (spec §3,
// §7). Source is empty for session-wide failures.
type SyncError struct {
	Kind       Kind
	StatusCode int
	Source     string
	Err        error
}

// Error implements the error interface.
func (e *SyncError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("%s: %s (status %d): %v", e.Source, e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s (status %d): %v", e.Kind, e.StatusCode, e.Err)
}

// Unwrap exposes the wrapped error to errors.Is/errors.As.
func (e *SyncError) Unwrap() error {
	return e.Err
}

// NewSyncError builds a SyncError for the named source.
func NewSyncError(kind Kind, statusCode int, source string, err error) *SyncError {
	return &SyncError{Kind: kind, StatusCode: statusCode, Source: source, Err: err}
}
