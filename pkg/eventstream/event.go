// Package eventstream defines the transport-neutral usage events emitted
// by the ingestion and query paths, and the publisher contract that
// carries them to an external metrics recorder.
package eventstream

import (
	"time"

	"github.com/google/uuid"
)

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeMeetingIndexed is emitted after a meeting transcript is
	// segmented, chunked, and upserted into the vector index.
	EventTypeMeetingIndexed = "minutes.meeting.indexed"

	// EventTypeQueryAnswered is emitted after a query completes,
	// whether or not an answer was produced.
	EventTypeQueryAnswered = "minutes.query.answered"
)

// UsageEvent is the envelope shared by all usage events.
type UsageEvent struct {
	SchemaVersion int       `json:"schema_version"`
	EventType     string    `json:"event_type"`
	EventID       string    `json:"event_id"`
	EmittedAt     time.Time `json:"emitted_at"`
	UserID        int64     `json:"user_id"`

	Meeting *MeetingIndexedMeta `json:"meeting,omitempty"`
	Query   *QueryAnsweredMeta  `json:"query,omitempty"`
}

// MeetingIndexedMeta captures what an ingestion produced.
type MeetingIndexedMeta struct {
	MeetingID string `json:"meeting_id"`
	Episodes  int    `json:"episodes"`
	Chunks    int    `json:"chunks"`
}

// QueryAnsweredMeta captures how a query was resolved.
type QueryAnsweredMeta struct {
	Intent     string `json:"intent"`
	Results    int    `json:"results"`
	Answered   bool   `json:"answered"`
	DurationMs int64  `json:"duration_ms"`
}

// NewMeetingIndexed builds a meeting-indexed event with a fresh id.
func NewMeetingIndexed(userID int64, meetingID string, episodes, chunks int) *UsageEvent {
	return &UsageEvent{
		SchemaVersion: SchemaVersionV1,
		EventType:     EventTypeMeetingIndexed,
		EventID:       uuid.NewString(),
		EmittedAt:     time.Now().UTC(),
		UserID:        userID,
		Meeting: &MeetingIndexedMeta{
			MeetingID: meetingID,
			Episodes:  episodes,
			Chunks:    chunks,
		},
	}
}

// NewQueryAnswered builds a query-answered event with a fresh id.
func NewQueryAnswered(userID int64, intent string, results int, answered bool, duration time.Duration) *UsageEvent {
	return &UsageEvent{
		SchemaVersion: SchemaVersionV1,
		EventType:     EventTypeQueryAnswered,
		EventID:       uuid.NewString(),
		EmittedAt:     time.Now().UTC(),
		UserID:        userID,
		Query: &QueryAnsweredMeta{
			Intent:     intent,
			Results:    results,
			Answered:   answered,
			DurationMs: duration.Milliseconds(),
		},
	}
}
