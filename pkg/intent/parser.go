package intent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/minuteshq/minutes/pkg/textgen"
)

const parseMaxTokens = 1024

// Parser turns a raw user message into a ParsedIntent using the text
// generation capability. Parse never fails: every error path degrades to
// a fallback intent with an uncertainty reason.
type Parser struct {
	gen    textgen.Generator
	logger *zap.Logger
}

// NewParser creates an intent parser.
func NewParser(gen textgen.Generator, logger *zap.Logger) *Parser {
	return &Parser{
		gen:    gen,
		logger: logger,
	}
}

// Parse interprets message. previous, when non-nil, is the user's last
// parsed intent and lets the model resolve follow-up phrasing ("and the
// week before that?").
func (p *Parser) Parse(ctx context.Context, message string, previous *ParsedIntent) ParsedIntent {
	prompt := buildParsePrompt(message, previous)

	response, err := p.gen.Generate(ctx, prompt, parseMaxTokens)
	if err != nil {
		p.logger.Warn("intent generation failed", zap.Error(err))
		return Fallback("empty_response")
	}
	if strings.TrimSpace(response) == "" {
		p.logger.Warn("intent generation returned empty response")
		return Fallback("empty_response")
	}

	var parsed ParsedIntent
	if err := textgen.DecodeObject(response, &parsed); err != nil {
		p.logger.Warn("intent response is not valid JSON", zap.Error(err))
		return Fallback("parse_error")
	}

	return sanitize(parsed)
}

// sanitize applies safe defaults to missing or out-of-range fields.
func sanitize(parsed ParsedIntent) ParsedIntent {
	if !validCategory(parsed.Intent) {
		parsed.Intent = CategoryGeneralQuestion
	}
	if parsed.Projects == nil {
		parsed.Projects = []ProjectRef{}
	}
	if parsed.DateRanges == nil {
		parsed.DateRanges = []DateRange{}
	}
	if parsed.Topics == nil {
		parsed.Topics = []string{}
	}
	if parsed.Confidence < 0 {
		parsed.Confidence = 0
	}
	if parsed.Confidence > 1 {
		parsed.Confidence = 1
	}

	kept := parsed.Projects[:0]
	for _, project := range parsed.Projects {
		if strings.TrimSpace(project.Alias) == "" {
			continue
		}
		if project.Confidence < 0 {
			project.Confidence = 0
		}
		if project.Confidence > 1 {
			project.Confidence = 1
		}
		kept = append(kept, project)
	}
	parsed.Projects = kept

	return parsed
}

func buildParsePrompt(message string, previous *ParsedIntent) string {
	var b strings.Builder

	b.WriteString("You classify a user's question about their indexed meeting transcripts.\n")
	b.WriteString("Respond with a single JSON object and nothing else.\n\n")

	b.WriteString("Schema:\n")
	b.WriteString(`{
  "intent": "project_summary | date_summary | general_question | action_items | topics_overview | requirements_query",
  "projects": [{"alias": "project name as mentioned", "confidence": 0.0-1.0}],
  "date_ranges": [{"start": "relative or absolute expression", "end": "same"}],
  "topics": ["topic keywords"],
  "follow_up": false,
  "confidence": 0.0-1.0
}` + "\n\n")

	b.WriteString("Examples:\n")
	b.WriteString("Q: What did we decide about Piggy Bank last week?\n")
	b.WriteString(`{"intent": "project_summary", "projects": [{"alias": "Piggy Bank", "confidence": 0.9}], "date_ranges": [{"start": "last week", "end": "now"}], "topics": ["decisions"], "follow_up": false, "confidence": 0.85}` + "\n")
	b.WriteString("Q: What are my action items from yesterday's standup?\n")
	b.WriteString(`{"intent": "action_items", "projects": [], "date_ranges": [{"start": "yesterday", "end": "yesterday"}], "topics": ["standup"], "follow_up": false, "confidence": 0.9}` + "\n")
	b.WriteString("Q: And what about the week before?\n")
	b.WriteString(`{"intent": "date_summary", "projects": [], "date_ranges": [{"start": "two weeks ago", "end": "one week ago"}], "topics": [], "follow_up": true, "confidence": 0.7}` + "\n\n")

	if previous != nil {
		serialized, err := json.Marshal(previous)
		if err == nil {
			b.WriteString("The user's previous question was interpreted as:\n")
			b.Write(serialized)
			b.WriteString("\nIf the new question refers back to it, set follow_up to true and inherit the missing context.\n\n")
		}
	}

	fmt.Fprintf(&b, "Question: %s\n", message)

	return b.String()
}
