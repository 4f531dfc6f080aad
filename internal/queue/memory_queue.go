package queue

import (
	"context"
	"sync"

	"github.com/vidvault/ingestd/internal/domain"
)

// MemoryQueue is an in-memory RefreshQueue with the same FIFO and idempotency
// semantics as the PostgreSQL implementation. Used in unit tests.
type MemoryQueue struct {
	mu     sync.Mutex
	queues map[domain.EntityType][]string
	member map[domain.RefreshQueueEntry]struct{}
}

func NewMemoryQueue() *MemoryQueue {
	return &MemoryQueue{
		queues: make(map[domain.EntityType][]string),
		member: make(map[domain.RefreshQueueEntry]struct{}),
	}
}

func (q *MemoryQueue) Push(_ context.Context, t domain.EntityType, ids []string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, id := range ids {
		key := domain.RefreshQueueEntry{Type: t, ID: id}
		if _, exists := q.member[key]; exists {
			continue
		}
		q.member[key] = struct{}{}
		q.queues[t] = append(q.queues[t], id)
	}
	return nil
}

func (q *MemoryQueue) Pop(_ context.Context, t domain.EntityType) (string, bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	ids := q.queues[t]
	if len(ids) == 0 {
		return "", false, nil
	}
	id := ids[0]
	q.queues[t] = ids[1:]
	delete(q.member, domain.RefreshQueueEntry{Type: t, ID: id})
	return id, true, nil
}

func (q *MemoryQueue) All(_ context.Context, t domain.EntityType) ([]string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	ids := make([]string, len(q.queues[t]))
	copy(ids, q.queues[t])
	return ids, nil
}

func (q *MemoryQueue) Depth(_ context.Context, t domain.EntityType) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.queues[t]), nil
}

func (q *MemoryQueue) Contains(_ context.Context, t domain.EntityType, id string) (bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	_, found := q.member[domain.RefreshQueueEntry{Type: t, ID: id}]
	return found, nil
}

// compile-time check
var _ RefreshQueue = (*MemoryQueue)(nil)
