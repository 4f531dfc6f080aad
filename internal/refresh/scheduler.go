// Package refresh keeps the archive in sync with the source: a scheduler
// fills per-type durable queues under a daily quota, a worker drains them
// one item at a time, and a progress tracker reports queue state.
package refresh

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/vidvault/ingestd/internal/domain"
	"github.com/vidvault/ingestd/internal/queue"
	"github.com/vidvault/ingestd/internal/repository"
)

// Scheduler decides which entities are due and pushes them onto the durable
// refresh queues.
type Scheduler struct {
	store        *repository.Store
	queue        queue.RefreshQueue
	intervalDays int
	logger       *zap.Logger
}

func NewScheduler(store *repository.Store, q queue.RefreshQueue, intervalDays int, logger *zap.Logger) *Scheduler {
	return &Scheduler{store: store, queue: q, intervalDays: intervalDays, logger: logger}
}

// counters returns the per-type count/scan functions. An explicit table
// keyed by entity type, no dynamic dispatch.
func (s *Scheduler) counters(t domain.EntityType) (
	countActive func(context.Context) (int, error),
	outdatedIDs func(context.Context, int64, int) ([]string, error),
) {
	switch t {
	case domain.TypeVideo:
		return s.store.Videos.CountActive, s.store.Videos.OutdatedIDs
	case domain.TypeChannel:
		return s.store.Channels.CountActive, s.store.Channels.OutdatedIDs
	case domain.TypePlaylist:
		return s.store.Playlists.CountActive, s.store.Playlists.OutdatedIDs
	}
	return nil, nil
}

// AddOutdated runs the outdated-detection pass once for every entity type:
// count the active set, derive the daily quota, collect the oldest-refreshed
// ids under the quota, and push them.
func (s *Scheduler) AddOutdated(ctx context.Context) error {
	olderThan := time.Now().Unix() - int64(s.intervalDays)*24*60*60

	for _, t := range domain.AllEntityTypes {
		countActive, outdatedIDs := s.counters(t)

		total, err := countActive(ctx)
		if err != nil {
			return fmt.Errorf("count active %s: %w", t, err)
		}

		quota := domain.DailyQuota(total, s.intervalDays)
		if quota == 0 {
			continue
		}

		ids, err := outdatedIDs(ctx, olderThan, quota)
		if err != nil {
			return fmt.Errorf("outdated %s: %w", t, err)
		}
		if len(ids) == 0 {
			continue
		}

		if err := s.queue.Push(ctx, t, ids); err != nil {
			return fmt.Errorf("enqueue outdated %s: %w", t, err)
		}
		s.logger.Info("queued outdated entities",
			zap.String("type", string(t)),
			zap.Int("count", len(ids)),
			zap.Int("quota", quota),
		)
	}
	return nil
}

// AddManual enqueues an explicit {type: [ids]} map. An unknown type fails
// the whole request before anything is queued. With cascade set, every video
// currently attributed to a listed channel or playlist is enqueued as well.
func (s *Scheduler) AddManual(ctx context.Context, req domain.ManualRefreshRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	for t, ids := range req.IDs {
		if len(ids) == 0 {
			continue
		}
		if err := s.queue.Push(ctx, t, ids); err != nil {
			return fmt.Errorf("enqueue manual %s: %w", t, err)
		}

		if !req.Cascade {
			continue
		}
		switch t {
		case domain.TypeChannel:
			for _, channelID := range ids {
				videoIDs, err := s.store.Videos.IDsByChannel(ctx, channelID)
				if err != nil {
					return fmt.Errorf("cascade channel %s: %w", channelID, err)
				}
				if err := s.queue.Push(ctx, domain.TypeVideo, videoIDs); err != nil {
					return fmt.Errorf("enqueue cascade videos: %w", err)
				}
			}
		case domain.TypePlaylist:
			for _, playlistID := range ids {
				videoIDs, err := s.store.Videos.IDsByPlaylist(ctx, playlistID)
				if err != nil {
					return fmt.Errorf("cascade playlist %s: %w", playlistID, err)
				}
				if err := s.queue.Push(ctx, domain.TypeVideo, videoIDs); err != nil {
					return fmt.Errorf("enqueue cascade videos: %w", err)
				}
			}
		}
	}
	return nil
}
