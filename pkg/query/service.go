package query

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/minuteshq/minutes/pkg/eventstream"
	"github.com/minuteshq/minutes/pkg/intent"
)

// Service is the query entrypoint: it parses the raw message into an
// intent, remembers it for follow-ups, executes retrieval and synthesis,
// and publishes a usage event.
type Service struct {
	parser    *intent.Parser
	sessions  *intent.SessionStore
	executor  *Executor
	publisher eventstream.Publisher
	logger    *zap.Logger
}

// NewService creates a query service.
func NewService(parser *intent.Parser, sessions *intent.SessionStore, executor *Executor, publisher eventstream.Publisher, logger *zap.Logger) *Service {
	return &Service{
		parser:    parser,
		sessions:  sessions,
		executor:  executor,
		publisher: publisher,
		logger:    logger,
	}
}

// AnswerQuery answers a free-form question over the user's indexed
// meetings. An empty answer with a nil error means nothing relevant was
// found; callers render that with NoAnswerMessage.
func (s *Service) AnswerQuery(ctx context.Context, userID int64, message string) (string, error) {
	started := time.Now()

	var previous *intent.ParsedIntent
	if last, ok := s.sessions.Last(userID); ok {
		previous = &last
	}

	parsed := s.parser.Parse(ctx, message, previous)
	s.sessions.Remember(userID, parsed)

	answer, snippets, err := s.executor.Answer(ctx, userID, parsed, message)
	if err != nil {
		return "", err
	}

	event := eventstream.NewQueryAnswered(userID, parsed.Intent, snippets, answer != "", time.Since(started))
	if publishErr := s.publisher.Publish(ctx, event); publishErr != nil {
		s.logger.Warn("publishing query event failed", zap.Error(publishErr))
	}

	return answer, nil
}

// NoAnswerMessage is the user-visible result for a query that matched
// nothing, in the query's apparent language.
func NoAnswerMessage(message string) string {
	if isCyrillic(message) {
		return "В проиндексированных встречах не нашлось ничего подходящего."
	}
	return "Nothing relevant was found in your indexed meetings."
}
