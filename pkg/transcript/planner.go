package transcript

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/minuteshq/minutes/pkg/textgen"
)

// planMaxTokens bounds the segmentation response; plans are compact JSON.
const planMaxTokens = 4096

// PlanCache persists the last segmentation plan per meeting, keyed by a
// content hash of the transcript.
type PlanCache interface {
	// GetPlan returns the cached transcript hash and serialized plan for
	// a meeting. ok is false when no plan is cached.
	GetPlan(ctx context.Context, meetingID string) (hash string, plan []byte, ok bool, err error)

	// PutPlan overwrites the cached plan for a meeting.
	PutPlan(ctx context.Context, meetingID, hash string, plan []byte) error
}

// Planner asks the text-generation capability to propose an ordered list
// of episode descriptors for a transcript, consulting the plan cache
// first.
type Planner struct {
	gen    textgen.Generator
	cache  PlanCache
	logger *zap.Logger
}

// NewPlanner creates a segmentation planner.
func NewPlanner(gen textgen.Generator, cache PlanCache, logger *zap.Logger) *Planner {
	return &Planner{
		gen:    gen,
		cache:  cache,
		logger: logger,
	}
}

// Plan returns the segmentation plan for a transcript.
//
// When a cached plan exists, its hash matches the transcript, and force
// is false, the cached plan is returned without invoking the generator.
// A failed, timed-out, or unparseable generation degrades to an empty
// plan (callers fall back to a whole-transcript episode); nothing is
// cached in that case. The generation call is never retried here.
func (p *Planner) Plan(ctx context.Context, meetingID, transcriptText string, force bool) ([]PlanSegment, error) {
	hash := HashTranscript(transcriptText)

	if !force {
		cachedHash, cached, ok, err := p.cache.GetPlan(ctx, meetingID)
		if err != nil {
			return nil, fmt.Errorf("reading plan cache: %w", err)
		}
		if ok && cachedHash == hash {
			var plan []PlanSegment
			if err := json.Unmarshal(cached, &plan); err == nil {
				p.logger.Debug("segmentation plan cache hit",
					zap.String("meeting_id", meetingID),
					zap.Int("segments", len(plan)),
				)
				return plan, nil
			}
			// Undecodable cache rows are treated as stale.
			p.logger.Warn("discarding undecodable cached plan",
				zap.String("meeting_id", meetingID),
			)
		}
	}

	response, err := p.gen.Generate(ctx, buildPlanPrompt(transcriptText), planMaxTokens)
	if err != nil {
		p.logger.Warn("segmentation call failed, degrading to empty plan",
			zap.String("meeting_id", meetingID),
			zap.Error(err),
		)
		return nil, nil
	}
	if strings.TrimSpace(response) == "" {
		p.logger.Warn("segmentation call returned empty response",
			zap.String("meeting_id", meetingID),
		)
		return nil, nil
	}

	plan := decodePlan(response, p.logger)
	if len(plan) == 0 {
		p.logger.Warn("segmentation response yielded no usable segments",
			zap.String("meeting_id", meetingID),
		)
		return nil, nil
	}

	serialized, err := json.Marshal(plan)
	if err != nil {
		return nil, fmt.Errorf("serializing plan: %w", err)
	}
	if err := p.cache.PutPlan(ctx, meetingID, hash, serialized); err != nil {
		return nil, fmt.Errorf("writing plan cache: %w", err)
	}

	p.logger.Info("segmentation plan generated",
		zap.String("meeting_id", meetingID),
		zap.Int("segments", len(plan)),
	)

	return plan, nil
}

// HashTranscript returns the content hash used as the plan cache key.
func HashTranscript(transcriptText string) string {
	sum := sha256.Sum256([]byte(transcriptText))
	return hex.EncodeToString(sum[:])
}

// decodePlan parses the model response into validated plan segments.
// Malformed individual segments are skipped rather than failing the plan.
func decodePlan(response string, logger *zap.Logger) []PlanSegment {
	var entries []json.RawMessage
	if err := textgen.DecodeArray(response, &entries); err != nil {
		// Some models wrap the array in an envelope object.
		var envelope struct {
			Segments []json.RawMessage `json:"segments"`
		}
		if err := textgen.DecodeObject(response, &envelope); err != nil {
			return nil
		}
		entries = envelope.Segments
	}

	plan := make([]PlanSegment, 0, len(entries))
	for i, entry := range entries {
		var seg PlanSegment
		if err := json.Unmarshal(entry, &seg); err != nil {
			logger.Debug("skipping malformed plan segment",
				zap.Int("index", i),
				zap.Error(err),
			)
			continue
		}
		if seg.Title == "" && seg.StartAnchor == "" && seg.EndAnchor == "" {
			logger.Debug("skipping empty plan segment", zap.Int("index", i))
			continue
		}

		if seg.Order <= 0 {
			seg.Order = len(plan) + 1
		}
		// An explicit "confidence": 0 is indistinguishable from an
		// absent field here and takes the default.
		if seg.Confidence == 0 {
			seg.Confidence = 0.5
		}
		if seg.Confidence < 0 {
			seg.Confidence = 0
		}
		if seg.Confidence > 1 {
			seg.Confidence = 1
		}

		plan = append(plan, seg)
	}

	return plan
}

// buildPlanPrompt constructs the segmentation prompt: schema guidance, a
// worked example, and the transcript itself.
func buildPlanPrompt(transcriptText string) string {
	var sb strings.Builder

	sb.WriteString("You are segmenting a meeting transcript into coherent topical episodes.\n")
	sb.WriteString("Aim for episodes of roughly 300-600 words each.\n\n")
	sb.WriteString("Return ONLY a JSON array. Each element describes one episode:\n")
	sb.WriteString(`[
  {
    "order": 1,
    "title": "Sprint review",
    "summary": "The team walked through completed sprint items.",
    "topics": ["sprint", "review"],
    "projects": [{"alias": "Piggy Bank", "confidence": 0.9, "quote": "piggy bank launch slipped"}],
    "start_anchor": "ok let's get started with the sprint review",
    "end_anchor": "moving on to the next topic",
    "confidence": 0.8
  }
]`)
	sb.WriteString("\n\nRules:\n")
	sb.WriteString("- start_anchor and end_anchor must be short verbatim excerpts copied exactly from the transcript.\n")
	sb.WriteString("- Episodes must appear in transcript order and must not overlap.\n")
	sb.WriteString("- List every project mentioned in an episode with a confidence between 0 and 1.\n")
	sb.WriteString("- Do not wrap the JSON in markdown fences or add commentary.\n\n")
	sb.WriteString("Transcript:\n")
	sb.WriteString(transcriptText)
	sb.WriteString("\n")

	return sb.String()
}
