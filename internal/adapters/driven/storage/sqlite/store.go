package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/arcadia-labs/daysync/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/arcadia-labs/daysync/internal/core/domain"
	"github.com/arcadia-labs/daysync/internal/core/ports/driven"
)

// Store is a unified SQLite-based storage that provides access to
// all metadata store interfaces through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.daysync/data/daysync.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".daysync", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "daysync.db")

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

// CredentialsStore returns a CredentialsStore interface backed by this store.
func (s *Store) CredentialsStore() driven.CredentialsStore {
	return &credentialsStore{store: s}
}

// SyncStateStore returns a SyncStateStore interface backed by this store.
func (s *Store) SyncStateStore() driven.SyncStateStore {
	return &syncStateStore{store: s}
}

// EventStore returns an EventStore interface backed by this store.
func (s *Store) EventStore() driven.EventStore {
	return &eventStore{store: s}
}

// SchedulerStore returns a SchedulerStore interface backed by this store.
func (s *Store) SchedulerStore() driven.SchedulerStore {
	return &schedulerStore{store: s}
}

// migrate applies any unapplied .up.sql migrations in version order.
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

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

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

// ==================== Credentials Store ====================

// credentialsStore implements driven.CredentialsStore.
type credentialsStore struct {
	store *Store
}

var _ driven.CredentialsStore = (*credentialsStore)(nil)

// Save stores credentials. Creates if new, updates if exists.
func (s *credentialsStore) Save(ctx context.Context, creds domain.Credentials) error {
	if creds.ID == "" {
		return domain.ErrInvalidInput
	}
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO credentials (id, account_email, access_token, refresh_token, token_type, expiry, active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			account_email = excluded.account_email,
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			token_type = excluded.token_type,
			expiry = excluded.expiry,
			active = excluded.active,
			updated_at = excluded.updated_at
	`, creds.ID, creds.AccountEmail, creds.AccessToken, creds.RefreshToken,
		creds.TokenType, nullTime(creds.Expiry), creds.Active, creds.CreatedAt, creds.UpdatedAt)

	if err != nil {
		return fmt.Errorf("saving credentials: %w", err)
	}
	return nil
}

// Get retrieves credentials by ID.
func (s *credentialsStore) Get(ctx context.Context, id string) (*domain.Credentials, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, account_email, access_token, refresh_token, token_type, expiry, active, created_at, updated_at
		FROM credentials WHERE id = ?
	`, id)

	var creds domain.Credentials
	var expiry, createdAt, updatedAt sql.NullTime
	err := row.Scan(&creds.ID, &creds.AccountEmail, &creds.AccessToken, &creds.RefreshToken,
		&creds.TokenType, &expiry, &creds.Active, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning credentials: %w", err)
	}

	if expiry.Valid {
		creds.Expiry = expiry.Time
	}
	if createdAt.Valid {
		creds.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		creds.UpdatedAt = updatedAt.Time
	}
	return &creds, nil
}

// SetActive flips the active flag for a credential.
func (s *credentialsStore) SetActive(ctx context.Context, id string, active bool) error {
	res, err := s.store.db.ExecContext(ctx, `
		UPDATE credentials SET active = ?, updated_at = ? WHERE id = ?
	`, active, time.Now(), id)
	if err != nil {
		return fmt.Errorf("updating credential active flag: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes credentials by ID.
func (s *credentialsStore) Delete(ctx context.Context, id string) error {
	_, err := s.store.db.ExecContext(ctx, "DELETE FROM credentials WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting credentials: %w", err)
	}
	return nil
}

// ==================== Sync State Store ====================

// syncStateStore implements driven.SyncStateStore.
type syncStateStore struct {
	store *Store
}

var _ driven.SyncStateStore = (*syncStateStore)(nil)

// Save stores or replaces the full sync state for a target.
func (s *syncStateStore) Save(ctx context.Context, state domain.SyncState) error {
	if state.TargetID == "" {
		return domain.ErrInvalidInput
	}
	if state.Status == "" {
		state.Status = domain.SyncStatusIdle
	}
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO sync_states (target_id, credential_id, calendar_id, cursor, full_sync_checkpoint, in_progress, status, last_synced_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(target_id) DO UPDATE SET
			credential_id = excluded.credential_id,
			calendar_id = excluded.calendar_id,
			cursor = excluded.cursor,
			full_sync_checkpoint = excluded.full_sync_checkpoint,
			in_progress = excluded.in_progress,
			status = excluded.status,
			last_synced_at = excluded.last_synced_at
	`, state.TargetID, state.CredentialID, state.CalendarID, state.Cursor,
		nullTimePtr(state.FullSyncCheckpoint), state.InProgress, string(state.Status),
		nullTimePtr(state.LastSyncedAt))

	if err != nil {
		return fmt.Errorf("saving sync state: %w", err)
	}
	return nil
}

// Get retrieves sync state for a target.
func (s *syncStateStore) Get(ctx context.Context, targetID string) (*domain.SyncState, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT target_id, credential_id, calendar_id, cursor, full_sync_checkpoint, in_progress, status, last_synced_at
		FROM sync_states WHERE target_id = ?
	`, targetID)
	return scanSyncState(row)
}

// Update applies a partial update to a target's state.
func (s *syncStateStore) Update(ctx context.Context, targetID string, update domain.SyncStateUpdate) error {
	var (
		sets []string
		args []any
	)
	if update.Cursor != nil {
		sets = append(sets, "cursor = ?")
		args = append(args, *update.Cursor)
	}
	if update.ClearCheckpoint {
		sets = append(sets, "full_sync_checkpoint = NULL")
	} else if update.FullSyncCheckpoint != nil {
		sets = append(sets, "full_sync_checkpoint = ?")
		args = append(args, *update.FullSyncCheckpoint)
	}
	if update.InProgress != nil {
		sets = append(sets, "in_progress = ?")
		args = append(args, *update.InProgress)
	}
	if update.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, string(*update.Status))
	}
	if update.LastSyncedAt != nil {
		sets = append(sets, "last_synced_at = ?")
		args = append(args, *update.LastSyncedAt)
	}
	if len(sets) == 0 {
		return nil
	}

	args = append(args, targetID)
	res, err := s.store.db.ExecContext(ctx,
		"UPDATE sync_states SET "+strings.Join(sets, ", ")+" WHERE target_id = ?", args...)
	if err != nil {
		return fmt.Errorf("updating sync state: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List returns the state of every registered target.
func (s *syncStateStore) List(ctx context.Context) ([]domain.SyncState, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT target_id, credential_id, calendar_id, cursor, full_sync_checkpoint, in_progress, status, last_synced_at
		FROM sync_states
	`)
	if err != nil {
		return nil, fmt.Errorf("querying sync states: %w", err)
	}
	defer rows.Close()

	var states []domain.SyncState //nolint:prealloc // size unknown from query
	for rows.Next() {
		state, err := scanSyncState(rows)
		if err != nil {
			return nil, err
		}
		states = append(states, *state)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sync states: %w", err)
	}
	return states, nil
}

// scanner abstracts sql.Row and sql.Rows for the scan helpers.
type scanner interface {
	Scan(dest ...any) error
}

func scanSyncState(row scanner) (*domain.SyncState, error) {
	var state domain.SyncState
	var status string
	var checkpoint, lastSynced sql.NullTime
	err := row.Scan(&state.TargetID, &state.CredentialID, &state.CalendarID,
		&state.Cursor, &checkpoint, &state.InProgress, &status, &lastSynced)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning sync state: %w", err)
	}

	state.Status = domain.SyncStatus(status)
	if checkpoint.Valid {
		state.FullSyncCheckpoint = &checkpoint.Time
	}
	if lastSynced.Valid {
		state.LastSyncedAt = &lastSynced.Time
	}
	return &state, nil
}

// ==================== Event Store ====================

// eventStore implements driven.EventStore.
type eventStore struct {
	store *Store
}

var _ driven.EventStore = (*eventStore)(nil)

// Upsert creates or updates an event keyed by (target_id, external_id).
func (s *eventStore) Upsert(ctx context.Context, event domain.Event) error {
	if event.TargetID == "" || event.ExternalID == "" {
		return domain.ErrInvalidInput
	}
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO events (target_id, external_id, calendar_id, etag, summary, description, location, status, start_time, end_time, html_link, updated)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(target_id, external_id) DO UPDATE SET
			calendar_id = excluded.calendar_id,
			etag = excluded.etag,
			summary = excluded.summary,
			description = excluded.description,
			location = excluded.location,
			status = excluded.status,
			start_time = excluded.start_time,
			end_time = excluded.end_time,
			html_link = excluded.html_link,
			updated = excluded.updated
	`, event.TargetID, event.ExternalID, event.CalendarID, event.Etag, event.Summary,
		event.Description, event.Location, event.Status, nullTime(event.StartTime),
		nullTime(event.EndTime), event.HTMLLink, nullTime(event.Updated))

	if err != nil {
		return fmt.Errorf("upserting event: %w", err)
	}
	return nil
}

// DeleteByExternalID removes an event the remote has cancelled.
func (s *eventStore) DeleteByExternalID(ctx context.Context, targetID, externalID string) error {
	_, err := s.store.db.ExecContext(ctx,
		"DELETE FROM events WHERE target_id = ? AND external_id = ?", targetID, externalID)
	if err != nil {
		return fmt.Errorf("deleting event: %w", err)
	}
	return nil
}

// List returns all events stored for a target.
func (s *eventStore) List(ctx context.Context, targetID string) ([]domain.Event, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT target_id, external_id, calendar_id, etag, summary, description, location, status, start_time, end_time, html_link, updated
		FROM events WHERE target_id = ? ORDER BY start_time
	`, targetID)
	if err != nil {
		return nil, fmt.Errorf("querying events: %w", err)
	}
	defer rows.Close()

	var events []domain.Event //nolint:prealloc // size unknown from query
	for rows.Next() {
		var event domain.Event
		var start, end, updated sql.NullTime
		err := rows.Scan(&event.TargetID, &event.ExternalID, &event.CalendarID, &event.Etag,
			&event.Summary, &event.Description, &event.Location, &event.Status,
			&start, &end, &event.HTMLLink, &updated)
		if err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		if start.Valid {
			event.StartTime = start.Time
		}
		if end.Valid {
			event.EndTime = end.Time
		}
		if updated.Valid {
			event.Updated = updated.Time
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating events: %w", err)
	}
	return events, nil
}

// OldestStart returns the earliest event start time committed for a target.
func (s *eventStore) OldestStart(ctx context.Context, targetID string) (*time.Time, error) {
	row := s.store.db.QueryRowContext(ctx,
		"SELECT MIN(start_time) FROM events WHERE target_id = ? AND start_time IS NOT NULL", targetID)

	var oldest sql.NullTime
	if err := row.Scan(&oldest); err != nil {
		return nil, fmt.Errorf("scanning oldest start: %w", err)
	}
	if !oldest.Valid {
		return nil, nil
	}
	return &oldest.Time, nil
}

// ==================== Scheduler Store ====================

// schedulerStore implements driven.SchedulerStore.
type schedulerStore struct {
	store *Store
}

var _ driven.SchedulerStore = (*schedulerStore)(nil)

// GetTask retrieves a scheduled task by ID.
// Returns nil and no error if the task does not exist.
func (s *schedulerStore) GetTask(ctx context.Context, taskID string) (*domain.ScheduledTask, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, target_id, name, interval_seconds, last_run, next_run, last_error, last_success, enabled
		FROM scheduled_tasks WHERE id = ?
	`, taskID)

	task, err := scanScheduledTask(row)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil // Per interface: return nil and no error if not found
	}
	if err != nil {
		return nil, err
	}
	return task, nil
}

// ListTasks returns all scheduled tasks.
func (s *schedulerStore) ListTasks(ctx context.Context) ([]domain.ScheduledTask, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, target_id, name, interval_seconds, last_run, next_run, last_error, last_success, enabled
		FROM scheduled_tasks
	`)
	if err != nil {
		return nil, fmt.Errorf("querying scheduled tasks: %w", err)
	}
	defer rows.Close()

	var tasks []domain.ScheduledTask //nolint:prealloc // size unknown from query
	for rows.Next() {
		task, err := scanScheduledTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating scheduled tasks: %w", err)
	}
	return tasks, nil
}

// SaveTask persists a task's state.
func (s *schedulerStore) SaveTask(ctx context.Context, task *domain.ScheduledTask) error {
	if task == nil || task.ID == "" {
		return domain.ErrInvalidInput
	}
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO scheduled_tasks (id, target_id, name, interval_seconds, last_run, next_run, last_error, last_success, enabled)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			target_id = excluded.target_id,
			name = excluded.name,
			interval_seconds = excluded.interval_seconds,
			last_run = excluded.last_run,
			next_run = excluded.next_run,
			last_error = excluded.last_error,
			last_success = excluded.last_success,
			enabled = excluded.enabled
	`, task.ID, task.TargetID, task.Name, int64(task.Interval.Seconds()),
		nullTime(task.LastRun), nullTime(task.NextRun), task.LastError,
		nullTime(task.LastSuccess), task.Enabled)

	if err != nil {
		return fmt.Errorf("saving scheduled task: %w", err)
	}
	return nil
}

// DeleteTask removes a task from storage.
func (s *schedulerStore) DeleteTask(ctx context.Context, taskID string) error {
	_, err := s.store.db.ExecContext(ctx, "DELETE FROM scheduled_tasks WHERE id = ?", taskID)
	if err != nil {
		return fmt.Errorf("deleting scheduled task: %w", err)
	}
	return nil
}

func scanScheduledTask(row scanner) (*domain.ScheduledTask, error) {
	var task domain.ScheduledTask
	var intervalSeconds int64
	var lastRun, nextRun, lastSuccess sql.NullTime
	err := row.Scan(&task.ID, &task.TargetID, &task.Name, &intervalSeconds,
		&lastRun, &nextRun, &task.LastError, &lastSuccess, &task.Enabled)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning scheduled task: %w", err)
	}

	task.Interval = time.Duration(intervalSeconds) * time.Second
	if lastRun.Valid {
		task.LastRun = lastRun.Time
	}
	if nextRun.Valid {
		task.NextRun = nextRun.Time
	}
	if lastSuccess.Valid {
		task.LastSuccess = lastSuccess.Time
	}
	return &task, nil
}

// ==================== Helper Functions ====================

// nullTime maps a zero time to NULL.
func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}

// nullTimePtr maps a nil pointer to NULL.
func nullTimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}
