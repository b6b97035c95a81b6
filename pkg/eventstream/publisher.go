package eventstream

import "context"

// Publisher publishes usage events to an event stream backend.
type Publisher interface {
	Publish(ctx context.Context, event *UsageEvent) error
	Close() error
}
