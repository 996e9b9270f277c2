package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/syncevo-core/syncevo-core/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/syncevo-core/syncevo-core/internal/core/domain"
	"github.com/syncevo-core/syncevo-core/internal/core/ports/driven"
)

// jsonNull is the JSON representation of null.
const jsonNull = "null"

// Store is a unified SQLite-based storage that provides access to
// all metadata store interfaces through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.syncevo-core/data/metadata.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".syncevo-core", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "metadata.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// SourceStore returns a SourceStore interface backed by this store.
func (s *Store) SourceStore() driven.SourceStore {
	return &sourceStore{store: s}
}

// TrackerStore returns a TrackerStore interface backed by this store.
func (s *Store) TrackerStore() driven.TrackerStore {
	return &trackerStore{store: s}
}

// ReportStore returns a ReportStore interface backed by this store.
func (s *Store) ReportStore() driven.ReportStore {
	return &reportStore{store: s}
}

// AuthProviderStore returns an AuthProviderStore interface backed by this store.
func (s *Store) AuthProviderStore() driven.AuthProviderStore {
	return &authProviderStore{store: s}
}

// CredentialsStore returns a CredentialsStore interface backed by this store.
func (s *Store) CredentialsStore() driven.CredentialsStore {
	return &credentialsStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort and run migrations
	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		// Read and execute migration
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Source Store ====================

// sourceStore implements driven.SourceStore.
type sourceStore struct {
	store *Store
}

var _ driven.SourceStore = (*sourceStore)(nil)

// Save stores or updates a source.
func (s *sourceStore) Save(ctx context.Context, source domain.Source) error {
	configJSON, err := json.Marshal(source.Config)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}

	now := time.Now().UTC()
	if source.CreatedAt.IsZero() {
		source.CreatedAt = now
	}
	source.UpdatedAt = now

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO sources (id, type, name, config, auth_provider_id, credentials_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			type = excluded.type,
			name = excluded.name,
			config = excluded.config,
			auth_provider_id = excluded.auth_provider_id,
			credentials_id = excluded.credentials_id,
			updated_at = excluded.updated_at
	`, source.ID, source.Type, source.Name, string(configJSON),
		nullString(source.AuthProviderID), nullString(source.CredentialsID),
		source.CreatedAt, source.UpdatedAt)

	if err != nil {
		return fmt.Errorf("saving source: %w", err)
	}
	return nil
}

// Get retrieves a source by ID.
func (s *sourceStore) Get(ctx context.Context, id string) (*domain.Source, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, type, name, config, auth_provider_id, credentials_id, created_at, updated_at
		FROM sources WHERE id = ?
	`, id)

	var source domain.Source
	var configJSON string
	var authProviderID, credentialsID sql.NullString
	var createdAt, updatedAt sql.NullTime
	if err := row.Scan(&source.ID, &source.Type, &source.Name, &configJSON,
		&authProviderID, &credentialsID, &createdAt, &updatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning source: %w", err)
	}

	if err := json.Unmarshal([]byte(configJSON), &source.Config); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	source.AuthProviderID = authProviderID.String
	source.CredentialsID = credentialsID.String
	if createdAt.Valid {
		source.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		source.UpdatedAt = updatedAt.Time
	}

	return &source, nil
}

// Delete removes a source.
func (s *sourceStore) Delete(ctx context.Context, id string) error {
	_, err := s.store.db.ExecContext(ctx, "DELETE FROM sources WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting source: %w", err)
	}
	return nil
}

// List returns all configured sources.
func (s *sourceStore) List(ctx context.Context) ([]domain.Source, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, type, name, config, auth_provider_id, credentials_id, created_at, updated_at
		FROM sources
	`)
	if err != nil {
		return nil, fmt.Errorf("querying sources: %w", err)
	}
	defer rows.Close()

	var sources []domain.Source //nolint:prealloc // size unknown from query
	for rows.Next() {
		var source domain.Source
		var configJSON string
		var authProviderID, credentialsID sql.NullString
		var createdAt, updatedAt sql.NullTime
		if err := rows.Scan(&source.ID, &source.Type, &source.Name, &configJSON,
			&authProviderID, &credentialsID, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scanning source: %w", err)
		}

		if err := json.Unmarshal([]byte(configJSON), &source.Config); err != nil {
			return nil, fmt.Errorf("unmarshaling config: %w", err)
		}

		source.AuthProviderID = authProviderID.String
		source.CredentialsID = credentialsID.String
		if createdAt.Valid {
			source.CreatedAt = createdAt.Time
		}
		if updatedAt.Valid {
			source.UpdatedAt = updatedAt.Time
		}
		sources = append(sources, source)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sources: %w", err)
	}

	return sources, nil
}

// ==================== Tracker Store ====================

// trackerStore implements driven.TrackerStore: the Change Tracker's
// LUID->revision map and per-source sync anchor (spec §4.1).
type trackerStore struct {
	store *Store
}

var _ driven.TrackerStore = (*trackerStore)(nil)

// LoadAnchor returns the stored sync anchor for sourceID.
func (s *trackerStore) LoadAnchor(ctx context.Context, sourceID string) (domain.SyncAnchor, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT last_token, resume_token, updated_at FROM tracker_anchors WHERE source_id = ?
	`, sourceID)

	var anchor domain.SyncAnchor
	var updatedAt sql.NullTime
	if err := row.Scan(&anchor.LastToken, &anchor.ResumeToken, &updatedAt); err != nil {
		if err == sql.ErrNoRows {
			return domain.SyncAnchor{SourceID: sourceID}, nil
		}
		return domain.SyncAnchor{}, fmt.Errorf("scanning tracker anchor: %w", err)
	}
	anchor.SourceID = sourceID
	if updatedAt.Valid {
		anchor.UpdatedAt = updatedAt.Time
	}
	return anchor, nil
}

// SaveAnchor persists the sync anchor for sourceID.
func (s *trackerStore) SaveAnchor(ctx context.Context, sourceID string, anchor domain.SyncAnchor) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO tracker_anchors (source_id, last_token, resume_token, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(source_id) DO UPDATE SET
			last_token = excluded.last_token,
			resume_token = excluded.resume_token,
			updated_at = excluded.updated_at
	`, sourceID, anchor.LastToken, anchor.ResumeToken, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("saving tracker anchor: %w", err)
	}
	return nil
}

// LoadRevisions returns the full LUID->revision map tracked for sourceID.
func (s *trackerStore) LoadRevisions(ctx context.Context, sourceID string) (map[domain.LUID]domain.Revision, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT luid, revision FROM tracker_revisions WHERE source_id = ?
	`, sourceID)
	if err != nil {
		return nil, fmt.Errorf("querying tracker revisions: %w", err)
	}
	defer rows.Close()

	out := make(map[domain.LUID]domain.Revision)
	for rows.Next() {
		var luid, rev string
		if err := rows.Scan(&luid, &rev); err != nil {
			return nil, fmt.Errorf("scanning tracker revision: %w", err)
		}
		out[domain.LUID(luid)] = domain.Revision(rev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tracker revisions: %w", err)
	}
	return out, nil
}

// SaveRevisions replaces the LUID->revision map tracked for sourceID.
func (s *trackerStore) SaveRevisions(ctx context.Context, sourceID string, revisions map[domain.LUID]domain.Revision) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "DELETE FROM tracker_revisions WHERE source_id = ?", sourceID); err != nil {
		return fmt.Errorf("clearing tracker revisions: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO tracker_revisions (source_id, luid, revision) VALUES (?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for luid, rev := range revisions {
		if _, err := stmt.ExecContext(ctx, sourceID, string(luid), string(rev)); err != nil {
			return fmt.Errorf("saving tracker revision: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// DeleteSource removes all tracked state for sourceID.
func (s *trackerStore) DeleteSource(ctx context.Context, sourceID string) error {
	if _, err := s.store.db.ExecContext(ctx, "DELETE FROM tracker_anchors WHERE source_id = ?", sourceID); err != nil {
		return fmt.Errorf("deleting tracker anchor: %w", err)
	}
	if _, err := s.store.db.ExecContext(ctx, "DELETE FROM tracker_revisions WHERE source_id = ?", sourceID); err != nil {
		return fmt.Errorf("deleting tracker revisions: %w", err)
	}
	return nil
}

// ==================== Report Store ====================

// reportStoreRow is the JSON shape persisted in reports.data: SyncReport's
// counters map keyed by ReportCell isn't directly JSON-marshalable (map
// keys must be strings), so each SourceReport's cells are flattened to a
// list before encoding.
type reportStoreRow struct {
	SessionID string                    `json:"session_id"`
	Status    int                       `json:"status"`
	Sources   map[string]sourceReportDTO `json:"sources"`
}

type sourceReportDTO struct {
	SourceID string        `json:"source_id"`
	Status   int           `json:"status"`
	Cells    []cellCountDTO `json:"cells"`
}

type cellCountDTO struct {
	Location int `json:"location"`
	Kind     int `json:"kind"`
	Stat     int `json:"stat"`
	Count    int `json:"count"`
}

// reportStore implements driven.ReportStore.
type reportStore struct {
	store *Store
}

var _ driven.ReportStore = (*reportStore)(nil)

// Save persists a finished session's report.
func (s *reportStore) Save(ctx context.Context, configID string, report domain.SyncReport) error {
	row := toReportRow(report)
	data, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("marshalling report: %w", err)
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO reports (session_id, config_id, status, created_at, data)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET
			status = excluded.status,
			data = excluded.data
	`, report.SessionID, configID, report.Status, time.Now().UTC(), string(data))
	if err != nil {
		return fmt.Errorf("saving report: %w", err)
	}
	return nil
}

// List returns the most recent reports for a configuration, newest first.
func (s *reportStore) List(ctx context.Context, configID string, limit int) ([]domain.SyncReport, error) {
	query := `SELECT data FROM reports WHERE config_id = ? ORDER BY created_at DESC`
	args := []any{configID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying reports: %w", err)
	}
	defer rows.Close()

	var out []domain.SyncReport //nolint:prealloc // size unknown from query
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scanning report: %w", err)
		}
		report, err := fromReportRowJSON(data)
		if err != nil {
			return nil, err
		}
		out = append(out, *report)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating reports: %w", err)
	}
	return out, nil
}

// Get retrieves one report by session ID.
func (s *reportStore) Get(ctx context.Context, sessionID string) (*domain.SyncReport, error) {
	row := s.store.db.QueryRowContext(ctx, `SELECT data FROM reports WHERE session_id = ?`, sessionID)

	var data string
	if err := row.Scan(&data); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning report: %w", err)
	}
	return fromReportRowJSON(data)
}

func toReportRow(report domain.SyncReport) reportStoreRow {
	row := reportStoreRow{SessionID: report.SessionID, Status: report.Status, Sources: make(map[string]sourceReportDTO, len(report.Sources))}
	for name, sr := range report.Sources {
		dto := sourceReportDTO{SourceID: sr.SourceID, Status: sr.Status}
		for _, cell := range sr.Keys() {
			dto.Cells = append(dto.Cells, cellCountDTO{
				Location: int(cell.Location),
				Kind:     int(cell.Kind),
				Stat:     int(cell.Stat),
				Count:    sr.Get(cell.Location, cell.Kind, cell.Stat),
			})
		}
		row.Sources[name] = dto
	}
	return row
}

func fromReportRowJSON(data string) (*domain.SyncReport, error) {
	var row reportStoreRow
	if err := json.Unmarshal([]byte(data), &row); err != nil {
		return nil, fmt.Errorf("unmarshalling report: %w", err)
	}

	report := domain.NewSyncReport(row.SessionID)
	report.Status = row.Status
	for name, dto := range row.Sources {
		sr := domain.NewSourceReport(dto.SourceID)
		sr.Status = dto.Status
		for _, c := range dto.Cells {
			sr.Add(domain.Location(c.Location), domain.ChangeKind(c.Kind), domain.Stat(c.Stat), c.Count)
		}
		report.Sources[name] = sr
	}
	return report, nil
}

// =============================================================================
// AuthProviderStore Implementation
// =============================================================================

type authProviderStore struct {
	store *Store
}

var _ driven.AuthProviderStore = (*authProviderStore)(nil)

// Save stores or updates an auth provider.
func (s *authProviderStore) Save(ctx context.Context, provider domain.AuthProvider) error {
	if provider.ID == "" {
		return domain.ErrInvalidInput
	}

	oauthJSON, err := json.Marshal(provider.OAuth)
	if err != nil {
		return fmt.Errorf("marshalling oauth config: %w", err)
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO auth_providers
			(id, name, provider_type, auth_method, oauth, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			provider_type = excluded.provider_type,
			auth_method = excluded.auth_method,
			oauth = excluded.oauth,
			updated_at = excluded.updated_at
	`, provider.ID, provider.Name, string(provider.ProviderType), string(provider.AuthMethod),
		string(oauthJSON), provider.CreatedAt, provider.UpdatedAt)

	if err != nil {
		return fmt.Errorf("saving auth provider: %w", err)
	}
	return nil
}

// Get retrieves an auth provider by ID.
func (s *authProviderStore) Get(ctx context.Context, id string) (*domain.AuthProvider, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, name, provider_type, auth_method, oauth, created_at, updated_at
		FROM auth_providers WHERE id = ?
	`, id)

	return scanAuthProvider(row)
}

// List returns all auth providers.
func (s *authProviderStore) List(ctx context.Context) ([]domain.AuthProvider, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, name, provider_type, auth_method, oauth, created_at, updated_at
		FROM auth_providers
	`)
	if err != nil {
		return nil, fmt.Errorf("querying auth providers: %w", err)
	}
	defer rows.Close()

	return scanAuthProviderRows(rows)
}

// ListByProvider returns all auth providers for a specific provider type.
func (s *authProviderStore) ListByProvider(
	ctx context.Context,
	providerType domain.ProviderType,
) ([]domain.AuthProvider, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, name, provider_type, auth_method, oauth, created_at, updated_at
		FROM auth_providers WHERE provider_type = ?
	`, string(providerType))
	if err != nil {
		return nil, fmt.Errorf("querying auth providers by provider: %w", err)
	}
	defer rows.Close()

	return scanAuthProviderRows(rows)
}

// Delete removes an auth provider by ID.
func (s *authProviderStore) Delete(ctx context.Context, id string) error {
	// Check if any sources are using this provider
	var count int
	err := s.store.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sources WHERE auth_provider_id = ?", id).Scan(&count)
	if err != nil {
		return fmt.Errorf("checking provider usage: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("cannot delete auth provider: still in use by %d source(s)", count)
	}

	_, err = s.store.db.ExecContext(ctx, "DELETE FROM auth_providers WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting auth provider: %w", err)
	}
	return nil
}

// scanAuthProvider scans a single auth provider row.
func scanAuthProvider(row *sql.Row) (*domain.AuthProvider, error) {
	var provider domain.AuthProvider
	var providerType, authMethod string
	var oauthJSON sql.NullString

	if err := row.Scan(&provider.ID, &provider.Name, &providerType, &authMethod,
		&oauthJSON, &provider.CreatedAt, &provider.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning auth provider: %w", err)
	}

	provider.ProviderType = domain.ProviderType(providerType)
	provider.AuthMethod = domain.AuthMethod(authMethod)

	if oauthJSON.Valid && oauthJSON.String != jsonNull {
		var oauth domain.OAuthProviderConfig
		if err := json.Unmarshal([]byte(oauthJSON.String), &oauth); err != nil {
			return nil, fmt.Errorf("unmarshalling oauth config: %w", err)
		}
		provider.OAuth = &oauth
	}

	return &provider, nil
}

// scanAuthProviderRows scans multiple auth provider rows.
func scanAuthProviderRows(rows *sql.Rows) ([]domain.AuthProvider, error) {
	var providers []domain.AuthProvider //nolint:prealloc // size unknown from query
	for rows.Next() {
		var provider domain.AuthProvider
		var providerType, authMethod string
		var oauthJSON sql.NullString

		if err := rows.Scan(&provider.ID, &provider.Name, &providerType, &authMethod,
			&oauthJSON, &provider.CreatedAt, &provider.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning auth provider: %w", err)
		}

		provider.ProviderType = domain.ProviderType(providerType)
		provider.AuthMethod = domain.AuthMethod(authMethod)

		if oauthJSON.Valid && oauthJSON.String != jsonNull {
			var oauth domain.OAuthProviderConfig
			if err := json.Unmarshal([]byte(oauthJSON.String), &oauth); err != nil {
				return nil, fmt.Errorf("unmarshalling oauth config: %w", err)
			}
			provider.OAuth = &oauth
		}

		providers = append(providers, provider)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating auth providers: %w", err)
	}

	return providers, nil
}

// =============================================================================
// CredentialsStore Implementation
// =============================================================================

type credentialsStore struct {
	store *Store
}

var _ driven.CredentialsStore = (*credentialsStore)(nil)

// Save stores or updates credentials.
func (s *credentialsStore) Save(ctx context.Context, creds domain.Credentials) error {
	if creds.ID == "" || creds.SourceID == "" {
		return domain.ErrInvalidInput
	}

	oauthJSON, err := json.Marshal(creds.OAuth)
	if err != nil {
		return fmt.Errorf("marshalling oauth credentials: %w", err)
	}

	patJSON, err := json.Marshal(creds.PAT)
	if err != nil {
		return fmt.Errorf("marshalling pat credentials: %w", err)
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO credentials
			(id, source_id, account_identifier, oauth, pat, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			source_id = excluded.source_id,
			account_identifier = excluded.account_identifier,
			oauth = excluded.oauth,
			pat = excluded.pat,
			updated_at = excluded.updated_at
	`, creds.ID, creds.SourceID, creds.AccountIdentifier,
		string(oauthJSON), string(patJSON), creds.CreatedAt, creds.UpdatedAt)

	if err != nil {
		return fmt.Errorf("saving credentials: %w", err)
	}
	return nil
}

// Get retrieves credentials by ID.
func (s *credentialsStore) Get(ctx context.Context, id string) (*domain.Credentials, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, source_id, account_identifier, oauth, pat, created_at, updated_at
		FROM credentials WHERE id = ?
	`, id)

	return scanCredentials(row)
}

// GetBySourceID retrieves credentials for a specific source.
func (s *credentialsStore) GetBySourceID(ctx context.Context, sourceID string) (*domain.Credentials, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, source_id, account_identifier, oauth, pat, created_at, updated_at
		FROM credentials WHERE source_id = ?
	`, sourceID)

	creds, err := scanCredentials(row)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil // No credentials for this source is valid
	}
	return creds, err
}

// Delete removes credentials by ID.
func (s *credentialsStore) Delete(ctx context.Context, id string) error {
	_, err := s.store.db.ExecContext(ctx, "DELETE FROM credentials WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting credentials: %w", err)
	}
	return nil
}

// scanCredentials scans a single credentials row.
func scanCredentials(row *sql.Row) (*domain.Credentials, error) {
	var creds domain.Credentials
	var oauthJSON, patJSON sql.NullString

	if err := row.Scan(&creds.ID, &creds.SourceID, &creds.AccountIdentifier,
		&oauthJSON, &patJSON, &creds.CreatedAt, &creds.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning credentials: %w", err)
	}

	if oauthJSON.Valid && oauthJSON.String != jsonNull {
		var oauth domain.OAuthCredentials
		if err := json.Unmarshal([]byte(oauthJSON.String), &oauth); err != nil {
			return nil, fmt.Errorf("unmarshalling oauth credentials: %w", err)
		}
		creds.OAuth = &oauth
	}

	if patJSON.Valid && patJSON.String != jsonNull {
		var pat domain.PATCredentials
		if err := json.Unmarshal([]byte(patJSON.String), &pat); err != nil {
			return nil, fmt.Errorf("unmarshalling pat credentials: %w", err)
		}
		creds.PAT = &pat
	}

	return &creds, nil
}

// nullString returns nil for empty strings, otherwise the string.
func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
