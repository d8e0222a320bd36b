package driven

import "context"

// Trigger feeds files into the ingestion pipeline in response to
// external events, such as filesystem changes.
type Trigger interface {
	// Start begins watching. Non-blocking; events are handled on a
	// background goroutine until Stop is called or ctx is cancelled.
	Start(ctx context.Context) error

	// Stop halts the trigger and releases resources.
	Stop() error

	// Running reports whether the trigger is active.
	Running() bool
}
