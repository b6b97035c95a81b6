// Package textgen provides the contract for the external text-completion
// capability consumed by the segmentation planner, the intent parser, and
// the query executor.
package textgen

import "context"

// Generator produces free-form text completions.
//
// Implementations make a single attempt per call; retry policy belongs to
// the caller or transport. No structured-output guarantee is made — callers
// that expect JSON must decode tolerantly (see DecodeObject/DecodeArray).
type Generator interface {
	// Generate returns the completion for the prompt, bounded by
	// maxTokens when the provider supports an output cap. An empty
	// string with a nil error is a legitimate "empty response".
	Generate(ctx context.Context, prompt string, maxTokens int) (string, error)

	// Close releases any resources held by the generator.
	Close() error
}
