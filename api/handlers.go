package api

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/minuteshq/minutes/pkg/ingest"
	"github.com/minuteshq/minutes/pkg/query"
	"github.com/minuteshq/minutes/pkg/storage"
)

// IngestRequest is the body for POST /v1/meetings.
type IngestRequest struct {
	UserID     int64             `json:"user_id"`
	ChatID     int64             `json:"chat_id"`
	MeetingID  string            `json:"meeting_id"`
	Transcript string            `json:"transcript"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	Force      bool              `json:"force,omitempty"`
}

// IngestResponse summarizes what an ingestion produced.
type IngestResponse struct {
	MeetingID string           `json:"meeting_id"`
	Indexed   bool             `json:"indexed"`
	Episodes  []EpisodeSummary `json:"episodes"`
}

// EpisodeSummary is the episode view returned by the ingest endpoint.
type EpisodeSummary struct {
	EpisodeID string   `json:"episode_id"`
	StartChar int      `json:"start_char"`
	EndChar   int      `json:"end_char"`
	Summary   string   `json:"summary,omitempty"`
	Topics    []string `json:"topics,omitempty"`
}

// QueryRequest is the body for POST /v1/query.
type QueryRequest struct {
	UserID  int64  `json:"user_id"`
	Message string `json:"message"`
}

// QueryResponse is the answer for a query.
type QueryResponse struct {
	Answer   string `json:"answer"`
	Answered bool   `json:"answered"`
}

// IndexingRequest is the body for PUT /v1/settings/indexing.
type IndexingRequest struct {
	UserID  int64 `json:"user_id"`
	ChatID  int64 `json:"chat_id"`
	Enabled bool  `json:"enabled"`
}

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

// handleIngestMeeting runs the ingestion pipeline for one transcript.
func (s *Server) handleIngestMeeting(c *fiber.Ctx) error {
	var req IngestRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}
	if req.UserID == 0 || req.MeetingID == "" || req.Transcript == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "user_id, meeting_id and transcript are required"})
	}

	episodes, err := s.pipeline.IngestMeeting(c.Context(), ingest.Request{
		UserID:     req.UserID,
		ChatID:     req.ChatID,
		MeetingID:  req.MeetingID,
		Transcript: req.Transcript,
		Metadata:   req.Metadata,
		Force:      req.Force,
	})
	if err != nil {
		s.logger.Error("ingestion failed",
			zap.String("meeting_id", req.MeetingID),
			zap.Error(err),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "ingestion failed"})
	}

	resp := IngestResponse{
		MeetingID: req.MeetingID,
		Indexed:   len(episodes) > 0,
		Episodes:  make([]EpisodeSummary, 0, len(episodes)),
	}
	for _, episode := range episodes {
		resp.Episodes = append(resp.Episodes, EpisodeSummary{
			EpisodeID: episode.EpisodeID,
			StartChar: episode.StartChar,
			EndChar:   episode.EndChar,
			Summary:   episode.Summary,
			Topics:    episode.Topics,
		})
	}

	return c.JSON(resp)
}

// handleGetMeeting returns a stored meeting record.
func (s *Server) handleGetMeeting(c *fiber.Ctx) error {
	meetingID := c.Params("id")

	rec, err := s.storer.GetMeeting(c.Context(), meetingID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "meeting not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to load meeting"})
	}

	return c.JSON(rec)
}

// handleQuery answers a free-form question over the user's meetings.
func (s *Server) handleQuery(c *fiber.Ctx) error {
	var req QueryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}
	if req.UserID == 0 || req.Message == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "user_id and message are required"})
	}

	answer, err := s.queries.AnswerQuery(c.Context(), req.UserID, req.Message)
	if err != nil {
		s.logger.Error("query failed",
			zap.Int64("user_id", req.UserID),
			zap.Error(err),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "query failed"})
	}

	resp := QueryResponse{
		Answer:   answer,
		Answered: answer != "",
	}
	if answer == "" {
		resp.Answer = query.NoAnswerMessage(req.Message)
	}

	return c.JSON(resp)
}

// handleListProjects returns the project registry rows for a user.
func (s *Server) handleListProjects(c *fiber.Ctx) error {
	userID, ok := queryUserID(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "user_id query parameter is required"})
	}

	entries, err := s.projects.List(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to list projects"})
	}

	return c.JSON(map[string]any{
		"count":    len(entries),
		"projects": entries,
	})
}

// handleGetIndexing reports the indexing setting for a (user, chat) pair.
func (s *Server) handleGetIndexing(c *fiber.Ctx) error {
	userID, ok := queryUserID(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "user_id query parameter is required"})
	}
	chatID, _ := strconv.ParseInt(c.Query("chat_id"), 10, 64)

	enabled, err := s.storer.IndexingEnabled(c.Context(), userID, chatID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to read setting"})
	}

	return c.JSON(map[string]bool{"enabled": enabled})
}

// handleSetIndexing stores the indexing setting for a (user, chat) pair.
func (s *Server) handleSetIndexing(c *fiber.Ctx) error {
	var req IndexingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}
	if req.UserID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "user_id is required"})
	}

	if err := s.storer.SetIndexingEnabled(c.Context(), req.UserID, req.ChatID, req.Enabled); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to store setting"})
	}

	return c.JSON(map[string]bool{"enabled": req.Enabled})
}

// handlePurgeUser deletes a user's stored state: settings and meetings,
// plus the project registry and vector namespace when no chat filter is
// given. The remembered intent is evicted either way.
func (s *Server) handlePurgeUser(c *fiber.Ctx) error {
	userID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || userID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "valid user id is required"})
	}

	var chatID *int64
	if raw := c.Query("chat_id"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "chat_id must be an integer"})
		}
		chatID = &parsed
	}

	if err := s.storer.PurgeUser(c.Context(), userID, chatID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to purge stored state"})
	}

	s.sessions.Forget(userID)

	if chatID == nil {
		if err := s.vectors.DeleteNamespace(c.Context(), userID); err != nil {
			s.logger.Error("failed to delete vector namespace",
				zap.Int64("user_id", userID),
				zap.Error(err),
			)
			return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to purge vector namespace"})
		}
	}

	return c.JSON(map[string]bool{"purged": true})
}

func queryUserID(c *fiber.Ctx) (int64, bool) {
	userID, err := strconv.ParseInt(c.Query("user_id"), 10, 64)
	if err != nil || userID == 0 {
		return 0, false
	}
	return userID, true
}
