// Package anthropic implements pkg/textgen's Generator against the
// Anthropic messages API.
package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/minuteshq/minutes/pkg/textgen"
)

const (
	// DefaultModel is the default Anthropic model.
	DefaultModel = "claude-sonnet-4-20250514"

	// DefaultBaseURL is the default Anthropic API URL.
	DefaultBaseURL = "https://api.anthropic.com"

	// apiVersion is the pinned anthropic-version header value.
	apiVersion = "2023-06-01"

	// defaultMaxTokens applies when the caller passes no output cap;
	// the messages API requires max_tokens to be set.
	defaultMaxTokens = 2048
)

// Generator wraps the Anthropic messages API.
type Generator struct {
	baseURL    string
	model      string
	apiKey     string
	httpClient *http.Client
}

// Config holds configuration for the Anthropic generator.
type Config struct {
	// BaseURL overrides the Anthropic API URL. Defaults to DefaultBaseURL.
	BaseURL string

	// Model is the generation model. Defaults to DefaultModel.
	Model string

	// APIKey is the x-api-key header value. Required.
	APIKey string
}

// anthropicRequest represents Anthropic's request format.
type anthropicRequest struct {
	Model     string             `json:"model"`
	Messages  []anthropicMessage `json:"messages"`
	MaxTokens int                `json:"max_tokens"`
}

// anthropicMessage represents a message in Anthropic's format.
type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// anthropicResponse represents Anthropic's response format.
type anthropicResponse struct {
	Content    []anthropicContentBlock `json:"content"`
	StopReason string                  `json:"stop_reason"`
}

type anthropicContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// NewGenerator creates a new generator using the Anthropic messages API.
func NewGenerator(cfg Config) (*Generator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic API key is required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	return &Generator{
		baseURL: baseURL,
		model:   model,
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: 300 * time.Second,
		},
	}, nil
}

// Generate returns the completion for the prompt.
func (g *Generator) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	reqBody := anthropicRequest{
		Model:     g.model,
		Messages:  []anthropicMessage{{Role: "user", Content: prompt}},
		MaxTokens: maxTokens,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("%w: marshaling request: %v", textgen.ErrGeneration, err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", g.baseURL+"/v1/messages", bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("%w: creating request: %v", textgen.ErrGeneration, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", g.apiKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: sending request: %v", textgen.ErrGeneration, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("%w: anthropic returned status %d: %s", textgen.ErrGeneration, resp.StatusCode, string(body))
	}

	var msgResp anthropicResponse
	if err := json.NewDecoder(resp.Body).Decode(&msgResp); err != nil {
		return "", fmt.Errorf("%w: decoding response: %v", textgen.ErrGeneration, err)
	}

	var sb strings.Builder
	for _, block := range msgResp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}

	return sb.String(), nil
}

// Close releases resources held by the generator.
func (g *Generator) Close() error {
	return nil
}

var _ textgen.Generator = (*Generator)(nil)
