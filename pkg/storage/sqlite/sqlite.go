// Package sqlite implements storage.Driver on an embedded SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/minuteshq/minutes/pkg/storage"
)

// Driver is a SQLite-backed storage driver.
type Driver struct {
	db *sql.DB

	// defaultEnabled applies when a (user, chat) pair has no settings row.
	defaultEnabled bool
}

// NewDriver opens (or creates) the database at dbPath and runs migrations.
// The dbPath can be a file path or ":memory:" for an in-memory database.
func NewDriver(dbPath string, defaultEnabled bool) (*Driver, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	d := &Driver{db: db, defaultEnabled: defaultEnabled}

	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return d, nil
}

// migrate creates the necessary tables if they don't exist.
func (d *Driver) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS user_settings (
		user_id INTEGER NOT NULL,
		chat_id INTEGER NOT NULL,
		indexing_enabled INTEGER NOT NULL DEFAULT 0,
		updated_at TEXT,
		PRIMARY KEY (user_id, chat_id)
	);

	CREATE TABLE IF NOT EXISTS projects (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		alias TEXT NOT NULL,
		confidence REAL NOT NULL,
		occurrences INTEGER NOT NULL DEFAULT 1,
		last_seen_at TEXT NOT NULL,
		UNIQUE(user_id, alias)
	);

	CREATE TABLE IF NOT EXISTS meetings (
		meeting_id TEXT PRIMARY KEY,
		user_id INTEGER NOT NULL,
		chat_id INTEGER NOT NULL,
		meeting_date TEXT,
		title TEXT,
		topics TEXT,
		metadata TEXT
	);

	CREATE TABLE IF NOT EXISTS segmentation_cache (
		meeting_id TEXT PRIMARY KEY,
		transcript_hash TEXT NOT NULL,
		plan TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_projects_user ON projects(user_id);
	CREATE INDEX IF NOT EXISTS idx_meetings_user ON meetings(user_id);
	`

	_, err := d.db.Exec(schema)
	return err
}

// IndexingEnabled reports the stored preference, or the configured
// default when no row exists.
func (d *Driver) IndexingEnabled(ctx context.Context, userID, chatID int64) (bool, error) {
	query := `SELECT indexing_enabled FROM user_settings WHERE user_id = ? AND chat_id = ?`

	var enabled int
	err := d.db.QueryRowContext(ctx, query, userID, chatID).Scan(&enabled)
	if errors.Is(err, sql.ErrNoRows) {
		return d.defaultEnabled, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read indexing setting: %w", err)
	}

	return enabled != 0, nil
}

// SetIndexingEnabled stores the indexing preference for a (user, chat) pair.
func (d *Driver) SetIndexingEnabled(ctx context.Context, userID, chatID int64, enabled bool) error {
	query := `
	INSERT INTO user_settings (user_id, chat_id, indexing_enabled, updated_at)
	VALUES (?, ?, ?, ?)
	ON CONFLICT(user_id, chat_id)
	DO UPDATE SET indexing_enabled = excluded.indexing_enabled, updated_at = excluded.updated_at`

	flag := 0
	if enabled {
		flag = 1
	}

	_, err := d.db.ExecContext(ctx, query, userID, chatID, flag, now())
	if err != nil {
		return fmt.Errorf("failed to upsert indexing setting: %w", err)
	}
	return nil
}

// UpsertProject inserts or updates a registry row as one conditional
// statement, so concurrent ingestions never lose an occurrence increment.
func (d *Driver) UpsertProject(ctx context.Context, userID int64, alias string, confidence float64) error {
	query := `
	INSERT INTO projects (user_id, alias, confidence, occurrences, last_seen_at)
	VALUES (?, ?, ?, 1, ?)
	ON CONFLICT(user_id, alias)
	DO UPDATE SET
		confidence = excluded.confidence,
		occurrences = projects.occurrences + 1,
		last_seen_at = excluded.last_seen_at`

	_, err := d.db.ExecContext(ctx, query, userID, alias, confidence, now())
	if err != nil {
		return fmt.Errorf("failed to upsert project %q: %w", alias, err)
	}
	return nil
}

// ListProjects returns the registry rows for a user, ordered by alias.
func (d *Driver) ListProjects(ctx context.Context, userID int64) ([]storage.ProjectEntry, error) {
	query := `SELECT alias, confidence, occurrences, last_seen_at FROM projects WHERE user_id = ? ORDER BY alias`

	rows, err := d.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var entries []storage.ProjectEntry
	for rows.Next() {
		var entry storage.ProjectEntry
		var lastSeen string
		if err := rows.Scan(&entry.Alias, &entry.Confidence, &entry.Occurrences, &lastSeen); err != nil {
			return nil, fmt.Errorf("failed to scan project row: %w", err)
		}
		entry.LastSeen, _ = time.Parse(time.RFC3339, lastSeen)
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// RecordMeeting inserts or replaces a meeting record.
func (d *Driver) RecordMeeting(ctx context.Context, rec storage.MeetingRecord) error {
	topics, err := json.Marshal(rec.Topics)
	if err != nil {
		return fmt.Errorf("failed to marshal topics: %w", err)
	}
	metadata, err := json.Marshal(rec.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	query := `
	INSERT OR REPLACE INTO meetings (meeting_id, user_id, chat_id, meeting_date, title, topics, metadata)
	VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err = d.db.ExecContext(ctx, query,
		rec.MeetingID, rec.UserID, rec.ChatID, rec.MeetingDate, rec.Title, string(topics), string(metadata))
	if err != nil {
		return fmt.Errorf("failed to record meeting: %w", err)
	}
	return nil
}

// GetMeeting returns a meeting record, or storage.ErrNotFound.
func (d *Driver) GetMeeting(ctx context.Context, meetingID string) (*storage.MeetingRecord, error) {
	query := `SELECT meeting_id, user_id, chat_id, meeting_date, title, topics, metadata FROM meetings WHERE meeting_id = ?`

	var rec storage.MeetingRecord
	var topics, metadata string

	err := d.db.QueryRowContext(ctx, query, meetingID).Scan(
		&rec.MeetingID, &rec.UserID, &rec.ChatID, &rec.MeetingDate, &rec.Title, &topics, &metadata)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan meeting row: %w", err)
	}

	if err := json.Unmarshal([]byte(topics), &rec.Topics); err != nil {
		rec.Topics = nil
	}
	if err := json.Unmarshal([]byte(metadata), &rec.Metadata); err != nil {
		rec.Metadata = nil
	}

	return &rec, nil
}

// GetPlan returns the cached segmentation plan for a meeting.
func (d *Driver) GetPlan(ctx context.Context, meetingID string) (string, []byte, bool, error) {
	query := `SELECT transcript_hash, plan FROM segmentation_cache WHERE meeting_id = ?`

	var hash, plan string
	err := d.db.QueryRowContext(ctx, query, meetingID).Scan(&hash, &plan)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil, false, nil
	}
	if err != nil {
		return "", nil, false, fmt.Errorf("failed to read plan cache: %w", err)
	}

	return hash, []byte(plan), true, nil
}

// PutPlan overwrites the cached segmentation plan for a meeting.
func (d *Driver) PutPlan(ctx context.Context, meetingID, hash string, plan []byte) error {
	query := `
	INSERT OR REPLACE INTO segmentation_cache (meeting_id, transcript_hash, plan, updated_at)
	VALUES (?, ?, ?, ?)`

	_, err := d.db.ExecContext(ctx, query, meetingID, hash, string(plan), now())
	if err != nil {
		return fmt.Errorf("failed to write plan cache: %w", err)
	}
	return nil
}

// PurgeUser removes settings and meetings for a user; when chatID is nil
// the project registry rows go too.
func (d *Driver) PurgeUser(ctx context.Context, userID int64, chatID *int64) error {
	if chatID != nil {
		if _, err := d.db.ExecContext(ctx,
			`DELETE FROM user_settings WHERE user_id = ? AND chat_id = ?`, userID, *chatID); err != nil {
			return fmt.Errorf("failed to purge settings: %w", err)
		}
		if _, err := d.db.ExecContext(ctx,
			`DELETE FROM meetings WHERE user_id = ? AND chat_id = ?`, userID, *chatID); err != nil {
			return fmt.Errorf("failed to purge meetings: %w", err)
		}
		return nil
	}

	if _, err := d.db.ExecContext(ctx, `DELETE FROM user_settings WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("failed to purge settings: %w", err)
	}
	if _, err := d.db.ExecContext(ctx, `DELETE FROM meetings WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("failed to purge meetings: %w", err)
	}
	if _, err := d.db.ExecContext(ctx, `DELETE FROM projects WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("failed to purge projects: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (d *Driver) Close() error {
	return d.db.Close()
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

var _ storage.Driver = (*Driver)(nil)
