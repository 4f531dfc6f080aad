// Package queue provides the durable refresh queues, one logical FIFO per
// entity type. Queue contents survive process restarts; multiple worker
// replicas may pop concurrently.
package queue

import (
	"context"

	"github.com/vidvault/ingestd/internal/domain"
)

// RefreshQueue is the durable per-type refresh queue.
//
// Push is idempotent: an identifier already waiting in a type's queue is not
// duplicated. Pop is atomic and exclusive: exactly one consumer receives a
// given entry, in FIFO order.
type RefreshQueue interface {
	Push(ctx context.Context, t domain.EntityType, ids []string) error
	// Pop claims and removes the oldest entry of the given type.
	// ok is false when the queue is empty.
	Pop(ctx context.Context, t domain.EntityType) (id string, ok bool, err error)
	// All lists the ids currently waiting in a type's queue, FIFO order.
	All(ctx context.Context, t domain.EntityType) ([]string, error)
	Depth(ctx context.Context, t domain.EntityType) (int, error)
	// Contains is a live membership check, never cached.
	Contains(ctx context.Context, t domain.EntityType, id string) (bool, error)
}
