package stream

import "context"

// StreamConsumer pulls validation requests off a message stream, runs them
// through the dispatcher, and publishes results. Setup prepares broker-side
// state (consumer groups); Start blocks until the context is cancelled.
type StreamConsumer interface {
	Setup(ctx context.Context) error
	Start(ctx context.Context) error
	Stop() error
}
