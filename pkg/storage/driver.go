// Package storage provides the embedded relational store contract for
// the minutes system: user indexing settings, the project registry,
// meeting records, and the segmentation plan cache.
package storage

import (
	"context"
	"time"
)

// ProjectEntry is one project registry row: a normalized alias with its
// last observed confidence and occurrence count.
type ProjectEntry struct {
	Alias       string    `json:"alias"`
	Confidence  float64   `json:"confidence"`
	Occurrences int       `json:"occurrences"`
	LastSeen    time.Time `json:"last_seen"`
}

// MeetingRecord describes an ingested meeting.
type MeetingRecord struct {
	MeetingID   string            `json:"meeting_id"`
	UserID      int64             `json:"user_id"`
	ChatID      int64             `json:"chat_id"`
	MeetingDate string            `json:"meeting_date"`
	Title       string            `json:"title"`
	Topics      []string          `json:"topics,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// Driver handles persistence for minutes state. The plan cache and
// project registry rows are owned exclusively by this layer.
//
// UpsertProject must be implemented as a single atomic insert-or-update
// statement so concurrent ingestions never lose an occurrence increment.
type Driver interface {
	// IndexingEnabled reports whether ingestion is enabled for the
	// (user, chat) pair, falling back to the configured default when no
	// row exists.
	IndexingEnabled(ctx context.Context, userID, chatID int64) (bool, error)

	// SetIndexingEnabled stores the indexing preference for a pair.
	SetIndexingEnabled(ctx context.Context, userID, chatID int64, enabled bool) error

	// UpsertProject inserts a registry row or, when the (user, alias)
	// pair exists, increments occurrences and overwrites confidence and
	// last-seen. The alias is stored as given; callers normalize first.
	UpsertProject(ctx context.Context, userID int64, alias string, confidence float64) error

	// ListProjects returns the registry rows for a user, ordered by alias.
	ListProjects(ctx context.Context, userID int64) ([]ProjectEntry, error)

	// RecordMeeting inserts or replaces a meeting record.
	RecordMeeting(ctx context.Context, rec MeetingRecord) error

	// GetMeeting returns a meeting record, or ErrNotFound.
	GetMeeting(ctx context.Context, meetingID string) (*MeetingRecord, error)

	// GetPlan returns the cached transcript hash and serialized
	// segmentation plan for a meeting; ok is false when absent.
	GetPlan(ctx context.Context, meetingID string) (hash string, plan []byte, ok bool, err error)

	// PutPlan overwrites the cached segmentation plan for a meeting.
	PutPlan(ctx context.Context, meetingID, hash string, plan []byte) error

	// PurgeUser removes settings and meetings for a user; when chatID is
	// nil the project registry rows are removed too.
	PurgeUser(ctx context.Context, userID int64, chatID *int64) error

	// Close releases any resources held by the driver.
	Close() error
}
