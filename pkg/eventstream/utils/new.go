// Package eventstreamutils is the eventstream utility package
package eventstreamutils

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/minuteshq/minutes/pkg/eventstream"
	"github.com/minuteshq/minutes/pkg/eventstream/kafka"
	"github.com/minuteshq/minutes/pkg/eventstream/nop"
)

type NewPublisherOpts struct {
	ProviderType string
	Brokers      string
	Topic        string
	Logger       *zap.Logger
}

func NewPublisher(o *NewPublisherOpts) (eventstream.Publisher, error) {
	switch o.ProviderType {
	case "", "nop":
		return nop.NewPublisher(), nil
	case "kafka":
		return kafka.NewPublisher(kafka.Config{
			Brokers: o.Brokers,
			Topic:   o.Topic,
		}, o.Logger)
	default:
		return nil, fmt.Errorf("unsupported eventstream provider: %s", o.ProviderType)
	}
}
