package textgen

import "errors"

var (
	// ErrGeneration is returned when the text generation call fails.
	ErrGeneration = errors.New("text generation failed")

	// ErrMalformed is returned when model output could not be decoded
	// as the expected JSON shape.
	ErrMalformed = errors.New("malformed model output")
)
