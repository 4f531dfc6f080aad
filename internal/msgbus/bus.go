// Package msgbus separates the progress event channel from the expiring
// key-value cache. Both happen to be served by PostgreSQL here, but callers
// only ever see the two capability interfaces.
package msgbus

import (
	"context"
	"time"
)

// ProgressEvent is the payload published while long-running work advances.
type ProgressEvent struct {
	Status  string `json:"status"`
	Level   string `json:"level"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

// Publisher delivers progress events to any subscribed frontend.
// A zero TTL means the event is not retained after delivery; a positive TTL
// keeps the last event readable for late pollers until it expires.
type Publisher interface {
	Publish(ctx context.Context, key string, ev ProgressEvent, ttl time.Duration) error
}

// Cache is an expiring key-value store for small coordination values such as
// the last-completed-cycle timestamp. A zero TTL stores without expiry.
type Cache interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	// Get unmarshals the stored value into out. Returns domain.ErrNotFound
	// for a missing or expired key.
	Get(ctx context.Context, key string, out any) error
}
