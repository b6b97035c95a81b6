// Package vectorutils is the vector store utility package
package vectorutils

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/minuteshq/minutes/pkg/embeddings"
	"github.com/minuteshq/minutes/pkg/vector"
	"github.com/minuteshq/minutes/pkg/vector/chroma"
	"github.com/minuteshq/minutes/pkg/vector/qdrant"
)

type NewDriverOpts struct {
	ProviderType string
	Target       string
	Dimensions   uint
	Embedder     embeddings.Embedder
	Logger       *zap.Logger
}

func NewDriver(o *NewDriverOpts) (vector.Driver, error) {
	switch o.ProviderType {
	case "chroma":
		return chroma.NewDriver(chroma.Config{
			URL: o.Target,
		}, o.Embedder, o.Logger)
	case "qdrant":
		return qdrant.NewDriver(qdrant.Config{
			Target:     o.Target,
			Dimensions: o.Dimensions,
		}, o.Embedder, o.Logger)
	default:
		return nil, fmt.Errorf("unsupported vector store provider: %s", o.ProviderType)
	}
}
