// Package vector provides the contract for the external semantic store:
// per-user namespaces holding chunk text plus metadata, written on
// ingestion and queried by text with optional metadata filters.
package vector

import (
	"context"
	"fmt"
	"time"
)

// Record is a chunk prepared for indexing: text plus flat metadata.
// Embedding generation is delegated to the driver's configured embedding
// function; records never carry vectors.
type Record struct {
	// ChunkID uniquely identifies the record; upserts with the same
	// ChunkID overwrite.
	ChunkID string

	Text string

	Metadata map[string]string
}

// Filter restricts a query by chunk metadata.
type Filter struct {
	// ProjectsNorm keeps chunks whose normalized primary project is in
	// the set.
	ProjectsNorm []string

	// DateFrom keeps chunks whose meeting date is on or after this ISO
	// date. A value MeetingTimestamp cannot parse ("last week") disables
	// the date bound instead of excluding results.
	DateFrom string
}

// Result is one ranked query hit.
type Result struct {
	Text     string
	Metadata map[string]string

	// Distance follows a fixed convention: lower is more similar.
	// Backends that report similarity scores convert before returning.
	Distance float32
}

// Driver handles chunk storage and retrieval in an external semantic
// store, one namespace per user.
type Driver interface {
	// EnsureNamespace creates the user's namespace if absent. Idempotent.
	EnsureNamespace(ctx context.Context, userID int64) error

	// Upsert writes chunk records into the user's namespace, creating it
	// if needed. Idempotent on ChunkID.
	Upsert(ctx context.Context, userID int64, records []Record) error

	// Query returns up to topK nearest neighbors for the query text,
	// ranked by Distance ascending. A missing namespace yields an empty
	// result, not an error.
	Query(ctx context.Context, userID int64, queryText string, topK int, filter *Filter) ([]Result, error)

	// DeleteNamespace removes all chunks for a user.
	DeleteNamespace(ctx context.Context, userID int64) error

	// Close releases any resources held by the driver.
	Close() error
}

// Namespace returns the store namespace for a user.
func Namespace(userID int64) string {
	return fmt.Sprintf("user_%d", userID)
}

// MeetingTimestamp parses a meeting date metadata value into unix
// seconds. Drivers index this numerically so date lower bounds work
// across backends.
func MeetingTimestamp(date string) (float64, bool) {
	for _, layout := range []string{time.RFC3339, "2006-01-02", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, date); err == nil {
			return float64(t.Unix()), true
		}
	}
	return 0, false
}
