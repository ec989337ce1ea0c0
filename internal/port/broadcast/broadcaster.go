// Package broadcast defines the port for publishing task lifecycle events
// to live subscribers.
package broadcast

import "context"

// Broadcaster publishes a typed event to all subscribers. Implementations
// must not block task execution; delivery is best-effort.
type Broadcaster interface {
	BroadcastEvent(ctx context.Context, eventType string, payload any)
}
