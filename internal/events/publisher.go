package events

import "context"

// Publisher delivers envelopes. key decides partitioning; events for one
// order share a key so they stay ordered.
type Publisher interface {
	Publish(ctx context.Context, key string, env Envelope) error
}

type Nop struct{}

func (Nop) Publish(context.Context, string, Envelope) error { return nil }
