// Package textgenutils is the textgen utility package
package textgenutils

import (
	"fmt"

	"github.com/minuteshq/minutes/pkg/textgen"
	"github.com/minuteshq/minutes/pkg/textgen/anthropic"
	"github.com/minuteshq/minutes/pkg/textgen/ollama"
)

type NewGeneratorOpts struct {
	ProviderType string
	TargetURL    string
	Model        string
	APIKey       string
}

func NewGenerator(o *NewGeneratorOpts) (textgen.Generator, error) {
	switch o.ProviderType {
	case "ollama":
		return ollama.NewGenerator(ollama.Config{
			BaseURL: o.TargetURL,
			Model:   o.Model,
		})
	case "anthropic":
		return anthropic.NewGenerator(anthropic.Config{
			BaseURL: o.TargetURL,
			Model:   o.Model,
			APIKey:  o.APIKey,
		})
	default:
		return nil, fmt.Errorf("unsupported textgen provider: %s", o.ProviderType)
	}
}
