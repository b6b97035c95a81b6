package vector

import "errors"

var (
	// ErrEmbedding is returned when embedding generation fails.
	ErrEmbedding = errors.New("embedding failed")

	// ErrStore is returned when the vector store rejects a read or
	// write. This is the only error class that propagates to callers as
	// a hard failure.
	ErrStore = errors.New("vector store request failed")
)
