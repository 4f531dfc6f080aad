package intake

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/vidvault/ingestd/internal/domain"
	"github.com/vidvault/ingestd/internal/repository"
)

// snapshot is the read-only dedup state for one resolution pass: every
// identifier that must not be enqueued again, the set of locally tracked
// channels, and the per-channel overwrite maps. It is computed once at pass
// start and never re-queried, so a batch cannot race its own writes.
type snapshot struct {
	skip       map[string]struct{}
	channels   map[string]struct{}
	overwrites map[string]json.RawMessage
}

func buildSnapshot(ctx context.Context, store *repository.Store) (*snapshot, error) {
	s := &snapshot{
		skip:     make(map[string]struct{}),
		channels: make(map[string]struct{}),
	}

	items, err := store.WorkItems.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("snapshot pending queue: %w", err)
	}
	for _, it := range items {
		if it.Status == domain.StatusPending || it.Status == domain.StatusIgnore {
			s.skip[it.VideoID] = struct{}{}
		}
	}

	indexed, err := store.Videos.AllIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("snapshot indexed videos: %w", err)
	}
	for _, id := range indexed {
		s.skip[id] = struct{}{}
	}

	channelIDs, err := store.Channels.AllIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("snapshot channels: %w", err)
	}
	for _, id := range channelIDs {
		s.channels[id] = struct{}{}
	}

	s.overwrites, err = store.Channels.Overwrites(ctx)
	if err != nil {
		return nil, fmt.Errorf("snapshot channel overwrites: %w", err)
	}

	return s, nil
}

func (s *snapshot) shouldSkip(id string) bool {
	_, found := s.skip[id]
	return found
}

func (s *snapshot) channelIndexed(channelID string) bool {
	_, found := s.channels[channelID]
	return found
}
