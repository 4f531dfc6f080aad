package msgbus

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/vidvault/ingestd/internal/domain"
)

// PublishedEvent records one Publish call for test assertions.
type PublishedEvent struct {
	Key   string
	Event ProgressEvent
	TTL   time.Duration
}

// MockBus is an in-memory Publisher and Cache that records everything.
type MockBus struct {
	mu     sync.Mutex
	Events []PublishedEvent
	values map[string][]byte
}

func NewMockBus() *MockBus {
	return &MockBus{values: make(map[string][]byte)}
}

func (b *MockBus) Publish(_ context.Context, key string, ev ProgressEvent, ttl time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Events = append(b.Events, PublishedEvent{Key: key, Event: ev, TTL: ttl})
	return nil
}

func (b *MockBus) Set(_ context.Context, key string, value any, _ time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.values[key] = payload
	return nil
}

func (b *MockBus) Get(_ context.Context, key string, out any) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	payload, ok := b.values[key]
	if !ok {
		return domain.ErrNotFound
	}
	return json.Unmarshal(payload, out)
}

// Last returns the most recent published event, or false when none exist.
func (b *MockBus) Last() (PublishedEvent, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.Events) == 0 {
		return PublishedEvent{}, false
	}
	return b.Events[len(b.Events)-1], true
}

var (
	_ Publisher = (*MockBus)(nil)
	_ Cache     = (*MockBus)(nil)
)
