// Package query resolves parsed intents into cited answers over the
// user's indexed meetings.
package query

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/minuteshq/minutes/pkg/intent"
	"github.com/minuteshq/minutes/pkg/registry"
	"github.com/minuteshq/minutes/pkg/textgen"
	"github.com/minuteshq/minutes/pkg/vector"
)

const (
	// DefaultBaseResults is the starting retrieval count before
	// adaptive widening.
	DefaultBaseResults = 6

	// DefaultMaxResults caps the adaptive retrieval count.
	DefaultMaxResults = 20

	// DefaultSimilarityThreshold is the maximum distance for a chunk
	// to participate in synthesis (lower distance is more similar).
	DefaultSimilarityThreshold = 0.75

	// projectFilterConfidence is the minimum parsed-project confidence
	// for a project mention to constrain retrieval.
	projectFilterConfidence = 0.5

	synthesisMaxTokens = 2048
)

// ExecutorConfig tunes retrieval and synthesis.
type ExecutorConfig struct {
	BaseResults         int
	MaxResults          int
	SimilarityThreshold float64
}

// Executor combines a parsed intent, the vector index, and the text
// generation capability to produce a cited answer. An empty answer with
// a nil error means "nothing relevant found" and is a legitimate
// outcome, not a failure; only vector store errors propagate.
type Executor struct {
	vectors   vector.Driver
	gen       textgen.Generator
	base      int
	max       int
	threshold float64
	logger    *zap.Logger
}

// NewExecutor creates a query executor. Zero config fields take the
// package defaults.
func NewExecutor(vectors vector.Driver, gen textgen.Generator, cfg ExecutorConfig, logger *zap.Logger) *Executor {
	if cfg.BaseResults <= 0 {
		cfg.BaseResults = DefaultBaseResults
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = DefaultMaxResults
	}
	if cfg.SimilarityThreshold <= 0 {
		cfg.SimilarityThreshold = DefaultSimilarityThreshold
	}

	return &Executor{
		vectors:   vectors,
		gen:       gen,
		base:      cfg.BaseResults,
		max:       cfg.MaxResults,
		threshold: cfg.SimilarityThreshold,
		logger:    logger,
	}
}

// Answer retrieves chunks matching the intent and synthesizes a cited
// answer, returning the answer and the number of snippets it drew from.
// Returns "" when nothing is indexed, nothing survives the similarity
// threshold, or the synthesis call fails.
func (e *Executor) Answer(ctx context.Context, userID int64, parsed intent.ParsedIntent, message string) (string, int, error) {
	topK := e.resultCount(parsed, message)
	filter := buildFilter(parsed)

	results, err := e.vectors.Query(ctx, userID, message, topK, filter)
	if err != nil {
		return "", 0, fmt.Errorf("retrieving chunks: %w", err)
	}
	if len(results) == 0 {
		e.logger.Debug("no indexed data for query", zap.Int64("user_id", userID))
		return "", 0, nil
	}

	relevant := make([]vector.Result, 0, len(results))
	for _, result := range results {
		if float64(result.Distance) <= e.threshold {
			relevant = append(relevant, result)
		}
	}
	if len(relevant) == 0 {
		e.logger.Debug("all candidates below similarity threshold",
			zap.Int64("user_id", userID),
			zap.Int("candidates", len(results)),
		)
		return "", 0, nil
	}

	prompt := buildAnswerPrompt(message, parsed, relevant)

	response, err := e.gen.Generate(ctx, prompt, synthesisMaxTokens)
	if err != nil {
		e.logger.Warn("answer synthesis failed", zap.Error(err))
		return "", len(relevant), nil
	}

	return strings.TrimSpace(response), len(relevant), nil
}

// resultCount computes the adaptive retrieval count: wider intents get
// more candidates, capped at the configured maximum.
func (e *Executor) resultCount(parsed intent.ParsedIntent, message string) int {
	count := e.base

	if len(parsed.Projects) > 1 {
		count += 4
	}
	if parsed.Intent == intent.CategoryActionItems || parsed.Intent == intent.CategoryTopicsOverview {
		count += 4
	}
	if len(parsed.DateRanges) > 1 {
		count += 4
	}
	if len(strings.Fields(message)) > 15 {
		count += 2
	}

	if count > e.max {
		count = e.max
	}
	return count
}

// buildFilter maps the intent onto a metadata filter: confident project
// mentions constrain the primary project, and the first date range sets
// a meeting-date lower bound.
func buildFilter(parsed intent.ParsedIntent) *vector.Filter {
	filter := &vector.Filter{}

	for _, project := range parsed.Projects {
		if project.Confidence >= projectFilterConfidence {
			filter.ProjectsNorm = append(filter.ProjectsNorm, registry.Normalize(project.Alias))
		}
	}

	if len(parsed.DateRanges) > 0 {
		filter.DateFrom = parsed.DateRanges[0].Start
	}

	if len(filter.ProjectsNorm) == 0 && filter.DateFrom == "" {
		return nil
	}
	return filter
}

// buildAnswerPrompt assembles the synthesis prompt: annotated snippets,
// a citation-format instruction in the query's apparent language, and
// category-specific focus directives.
func buildAnswerPrompt(message string, parsed intent.ParsedIntent, results []vector.Result) string {
	var b strings.Builder

	b.WriteString("You answer questions about the user's meetings using only the transcript snippets below.\n")
	b.WriteString("Never invent information that is not present in the snippets.\n")
	b.WriteString("If the snippets do not contain the answer, say so.\n\n")

	for i, result := range results {
		fmt.Fprintf(&b, "--- Snippet %d", i+1)
		if date := result.Metadata[vector.MetaMeetingDate]; date != "" {
			fmt.Fprintf(&b, " | meeting date: %s", date)
		}
		if project := result.Metadata[vector.MetaPrimary]; project != "" {
			fmt.Fprintf(&b, " | project: %s", project)
		}
		if topics := result.Metadata[vector.MetaTopics]; topics != "" {
			fmt.Fprintf(&b, " | topics: %s", topics)
		}
		fmt.Fprintf(&b, " | relevance: %.2f ---\n", 1-result.Distance)
		b.WriteString(result.Text)
		b.WriteString("\n\n")
	}

	if isCyrillic(message) {
		b.WriteString("Ответь на вопрос пользователя, опираясь только на фрагменты выше.\n")
		b.WriteString("Формат ответа:\nРезюме: краткий ответ.\nЦитаты: подтверждающие фрагменты с датой встречи и проектом.\n")
	} else {
		b.WriteString("Answer the user's question using only the snippets above.\n")
		b.WriteString("Format:\nSummary: a concise answer.\nCitations: supporting excerpts with their meeting date and project.\n")
	}

	if directive := focusDirective(parsed, message); directive != "" {
		b.WriteString(directive)
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "\nQuestion: %s\n", message)

	return b.String()
}

// focusDirective adds an extra instruction for intents that benefit from
// structured extraction.
func focusDirective(parsed intent.ParsedIntent, message string) string {
	lowered := strings.ToLower(message)

	switch {
	case parsed.Intent == intent.CategoryActionItems:
		return "Focus on concrete action items: who committed to what, and any deadlines mentioned."
	case parsed.Intent == intent.CategoryProjectSummary:
		return "Focus on the state of the project: decisions made, progress reported, and open risks."
	case strings.Contains(lowered, "requirements") || strings.Contains(lowered, "требован"):
		return "Focus on stated requirements: enumerate each one explicitly, with its source snippet."
	}
	return ""
}

// isCyrillic reports whether the message looks Russian: more than three
// characters in the Cyrillic range.
func isCyrillic(message string) bool {
	count := 0
	for _, r := range message {
		if unicode.Is(unicode.Cyrillic, r) {
			count++
			if count > 3 {
				return true
			}
		}
	}
	return false
}
