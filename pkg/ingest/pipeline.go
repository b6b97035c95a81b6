// Package ingest wires the segmentation planner, transcript splitter,
// chunker, vector index, and project registry into the meeting ingestion
// entrypoint.
package ingest

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/minuteshq/minutes/pkg/eventstream"
	"github.com/minuteshq/minutes/pkg/registry"
	"github.com/minuteshq/minutes/pkg/storage"
	"github.com/minuteshq/minutes/pkg/transcript"
	"github.com/minuteshq/minutes/pkg/vector"
)

// Request describes one meeting to ingest. Metadata is carried onto
// every stored chunk; meeting_date and title, when present, also fill
// the meeting record.
type Request struct {
	UserID    int64
	ChatID    int64
	MeetingID string

	Transcript string
	Metadata   map[string]string

	// Force re-plans segmentation even when the cached plan is fresh.
	Force bool
}

// Config tunes the chunking stage.
type Config struct {
	ChunkMaxWords     int
	ChunkOverlapWords int
}

// Pipeline is the ingestion entrypoint: plan, split, chunk, index.
type Pipeline struct {
	planner      *transcript.Planner
	store        storage.Driver
	projects     *registry.Registry
	vectors      vector.Driver
	publisher    eventstream.Publisher
	maxWords     int
	overlapWords int
	logger       *zap.Logger
}

// NewPipeline creates an ingestion pipeline.
func NewPipeline(planner *transcript.Planner, store storage.Driver, projects *registry.Registry, vectors vector.Driver, publisher eventstream.Publisher, cfg Config, logger *zap.Logger) *Pipeline {
	if cfg.ChunkMaxWords <= 0 {
		cfg.ChunkMaxWords = transcript.DefaultMaxWords
	}
	if cfg.ChunkOverlapWords <= 0 {
		cfg.ChunkOverlapWords = transcript.DefaultOverlapWords
	}

	return &Pipeline{
		planner:      planner,
		store:        store,
		projects:     projects,
		vectors:      vectors,
		publisher:    publisher,
		maxWords:     cfg.ChunkMaxWords,
		overlapWords: cfg.ChunkOverlapWords,
		logger:       logger,
	}
}

// IngestMeeting segments the transcript into episodes, chunks them, and
// upserts the chunks into the user's vector namespace. It also merges
// discovered project aliases into the registry and records the meeting.
// Returns the episodes produced, or nil when indexing is disabled for
// the (user, chat) pair.
func (p *Pipeline) IngestMeeting(ctx context.Context, req Request) ([]transcript.Episode, error) {
	enabled, err := p.store.IndexingEnabled(ctx, req.UserID, req.ChatID)
	if err != nil {
		return nil, fmt.Errorf("reading indexing setting: %w", err)
	}
	if !enabled {
		p.logger.Info("indexing disabled, skipping meeting",
			zap.Int64("user_id", req.UserID),
			zap.String("meeting_id", req.MeetingID),
		)
		return nil, nil
	}

	if strings.TrimSpace(req.Transcript) == "" {
		p.logger.Warn("empty transcript, nothing to ingest",
			zap.String("meeting_id", req.MeetingID),
		)
		return nil, nil
	}

	plan, err := p.planner.Plan(ctx, req.MeetingID, req.Transcript, req.Force)
	if err != nil {
		return nil, err
	}

	episodes := transcript.Split(req.Transcript, req.MeetingID, plan)

	records := make([]vector.Record, 0, len(episodes))
	for _, episode := range episodes {
		pieces := transcript.Chunk(episode.Text, episode.EpisodeID, p.maxWords, p.overlapWords)
		for i, piece := range pieces {
			records = append(records, vector.Record{
				ChunkID:  piece.ChunkID,
				Text:     piece.Text,
				Metadata: chunkMetadata(req, episode, i, len(pieces)),
			})
		}

		if err := p.projects.Merge(ctx, req.UserID, episode.ProjectAffinity); err != nil {
			return nil, err
		}
	}

	if err := p.vectors.Upsert(ctx, req.UserID, records); err != nil {
		return nil, fmt.Errorf("indexing chunks: %w", err)
	}

	if err := p.store.RecordMeeting(ctx, meetingRecord(req, episodes)); err != nil {
		return nil, fmt.Errorf("recording meeting: %w", err)
	}

	event := eventstream.NewMeetingIndexed(req.UserID, req.MeetingID, len(episodes), len(records))
	if publishErr := p.publisher.Publish(ctx, event); publishErr != nil {
		p.logger.Warn("publishing ingest event failed", zap.Error(publishErr))
	}

	p.logger.Info("meeting ingested",
		zap.String("meeting_id", req.MeetingID),
		zap.Int("episodes", len(episodes)),
		zap.Int("chunks", len(records)),
	)

	return episodes, nil
}

// chunkMetadata assembles the metadata stored with one chunk: derived
// project fields, episode provenance, sub-chunk position, and whatever
// the caller supplied.
func chunkMetadata(req Request, episode transcript.Episode, index, total int) map[string]string {
	meta := vector.ProjectMetadata(episode.ProjectAffinity)

	meta[vector.MetaMeetingID] = req.MeetingID
	meta[vector.MetaEpisodeID] = episode.EpisodeID
	if episode.Summary != "" {
		meta[vector.MetaSummary] = episode.Summary
	}
	if len(episode.Topics) > 0 {
		meta[vector.MetaTopics] = strings.Join(episode.Topics, ",")
	}
	meta["chunk_index"] = strconv.Itoa(index)
	meta["chunk_total"] = strconv.Itoa(total)

	for k, v := range req.Metadata {
		if _, taken := meta[k]; !taken {
			meta[k] = v
		}
	}

	return meta
}

// meetingRecord builds the persisted meeting row, pulling the date and
// title from caller metadata and the topic list from the episodes.
func meetingRecord(req Request, episodes []transcript.Episode) storage.MeetingRecord {
	seen := make(map[string]bool)
	var topics []string
	for _, episode := range episodes {
		for _, topic := range episode.Topics {
			if !seen[topic] {
				seen[topic] = true
				topics = append(topics, topic)
			}
		}
	}

	return storage.MeetingRecord{
		MeetingID:   req.MeetingID,
		UserID:      req.UserID,
		ChatID:      req.ChatID,
		MeetingDate: req.Metadata[vector.MetaMeetingDate],
		Title:       req.Metadata["title"],
		Topics:      topics,
		Metadata:    req.Metadata,
	}
}
