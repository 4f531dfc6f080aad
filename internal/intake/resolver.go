package intake

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/vidvault/ingestd/internal/domain"
	"github.com/vidvault/ingestd/internal/extractor"
	"github.com/vidvault/ingestd/internal/msgbus"
	"github.com/vidvault/ingestd/internal/repository"
)

const progressKey = "message:add"

// logEvery is the cadence for per-item progress log lines during a large pass.
const logEvery = 25

// ThumbCacher triggers thumbnail caching for an accepted work item.
type ThumbCacher interface {
	CacheThumb(ctx context.Context, videoID, url string) error
}

// Resolver turns heterogeneous ingest requests into deduplicated,
// metadata-validated work items and commits them in one batch.
type Resolver struct {
	store     *repository.Store
	source    extractor.Extractor
	thumbs    ThumbCacher
	publisher msgbus.Publisher
	logger    *zap.Logger

	extractTimeout time.Duration
	progressTTL    time.Duration
	finalTTL       time.Duration
}

func NewResolver(
	store *repository.Store,
	source extractor.Extractor,
	thumbs ThumbCacher,
	publisher msgbus.Publisher,
	extractTimeout, progressTTL, finalTTL time.Duration,
	logger *zap.Logger,
) *Resolver {
	return &Resolver{
		store:          store,
		source:         source,
		thumbs:         thumbs,
		publisher:      publisher,
		logger:         logger,
		extractTimeout: extractTimeout,
		progressTTL:    progressTTL,
		finalTTL:       finalTTL,
	}
}

// Result reports what one resolution pass committed.
type Result struct {
	// Requested is how many distinct missing identifiers survived dedup.
	Requested int
	// Created is how many work items the batch commit actually inserted.
	Created int
	// Overwrites maps accepted video ids to their owning channel's
	// operator overrides, for the downstream fetcher.
	Overwrites map[string]json.RawMessage
}

// Resolve runs one full resolution pass: snapshot, per-entry resolution,
// metadata validation, and a single batched create. Per-item failures are
// logged and skipped; only infrastructure errors abort the pass.
func (r *Resolver) Resolve(ctx context.Context, req domain.IngestRequest) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	snap, err := buildSnapshot(ctx, r.store)
	if err != nil {
		return nil, err
	}

	missing, err := r.collectMissing(ctx, snap, req.Entries)
	if err != nil {
		return nil, err
	}

	items, overwrites := r.buildItems(ctx, snap, missing, req.Status)

	created, err := r.store.WorkItems.CreateBatch(ctx, items)
	if err != nil {
		return nil, fmt.Errorf("commit work items: %w", err)
	}

	return &Result{
		Requested:  len(missing),
		Created:    created,
		Overwrites: overwrites,
	}, nil
}

// collectMissing resolves every entry to item identifiers and keeps the ones
// absent from the dedup snapshot, preserving request order without
// duplicates within the pass.
func (r *Resolver) collectMissing(ctx context.Context, snap *snapshot, entries []domain.IngestEntry) ([]string, error) {
	var missing []string
	seen := make(map[string]struct{})

	add := func(id string) {
		if snap.shouldSkip(id) {
			r.logger.Debug("skipped already known video", zap.String("video_id", id))
			return
		}
		if _, dup := seen[id]; dup {
			return
		}
		seen[id] = struct{}{}
		missing = append(missing, id)
	}

	for _, entry := range entries {
		r.publishEvent(ctx, "Adding to download queue.", "Extracting lists", r.progressTTL)

		switch entry.Type {
		case domain.LocatorVideo:
			add(entry.Locator)

		case domain.LocatorChannel:
			ids, err := r.source.ChannelVideos(ctx, entry.Locator)
			if err != nil {
				return nil, fmt.Errorf("resolve channel %s: %w", entry.Locator, err)
			}
			for _, id := range ids {
				add(id)
			}

		case domain.LocatorPlaylist:
			meta, err := r.source.Playlist(ctx, entry.Locator)
			if err != nil {
				return nil, fmt.Errorf("resolve playlist %s: %w", entry.Locator, err)
			}
			if meta == nil {
				r.logger.Warn("playlist not found upstream", zap.String("playlist_id", entry.Locator))
				continue
			}
			for _, e := range meta.Entries {
				add(e.VideoID)
			}
			if err := r.trackPlaylist(ctx, meta); err != nil {
				return nil, err
			}
		}
	}

	return missing, nil
}

// trackPlaylist registers a passive, non-subscribed tracking record so later
// refreshes can validate membership even without a subscription.
func (r *Resolver) trackPlaylist(ctx context.Context, meta *extractor.PlaylistMetadata) error {
	entries := make([]domain.PlaylistEntry, len(meta.Entries))
	for i, e := range meta.Entries {
		entries[i] = domain.PlaylistEntry{VideoID: e.VideoID, Title: e.Title, Index: i}
	}

	p := &domain.Playlist{
		PlaylistID:  meta.ID,
		Active:      true,
		LastRefresh: time.Now().Unix(),
		Name:        meta.Name,
		Description: meta.Description,
		ChannelID:   meta.ChannelID,
		Entries:     entries,
	}
	if err := r.store.Playlists.CreatePassive(ctx, p); err != nil {
		return fmt.Errorf("track playlist %s: %w", meta.ID, err)
	}
	return nil
}

// buildItems validates each missing identifier against fresh metadata and
// builds the work items to commit. Rejections are logged and skipped.
func (r *Resolver) buildItems(ctx context.Context, snap *snapshot, missing []string, status domain.WorkItemStatus) ([]*domain.WorkItem, map[string]json.RawMessage) {
	var items []*domain.WorkItem
	overwrites := make(map[string]json.RawMessage)
	total := len(missing)

	for i, id := range missing {
		item, err := r.buildItem(ctx, snap, id, status)
		if err != nil {
			r.logger.Warn("rejected during intake",
				zap.String("video_id", id), zap.Error(err))
			r.notifyAdd(ctx, i, total)
			continue
		}

		items = append(items, item)
		if ow, found := snap.overwrites[item.ChannelID]; found {
			overwrites[id] = ow
		}

		// Thumbnail caching runs detached; the pass does not wait on it.
		go func(videoID, url string) {
			thumbCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := r.thumbs.CacheThumb(thumbCtx, videoID, url); err != nil {
				r.logger.Warn("thumbnail cache failed",
					zap.String("video_id", videoID), zap.Error(err))
			}
		}(id, item.ThumbURL)

		r.notifyAdd(ctx, i, total)
	}

	return items, overwrites
}

// buildItem pulls metadata-only details for one identifier and normalizes
// them into a work item.
func (r *Resolver) buildItem(ctx context.Context, snap *snapshot, id string, status domain.WorkItemStatus) (*domain.WorkItem, error) {
	meta, err := r.source.Extract(ctx, id, extractor.Options{
		MetadataOnly:   true,
		ProbeThumbnail: true,
		Timeout:        r.extractTimeout,
	})
	if err != nil {
		return nil, err
	}
	if meta == nil {
		return nil, domain.ErrNoMetadata
	}
	if meta.ID != id {
		// Content substitution, e.g. a premium variant served under
		// a different identifier.
		return nil, domain.ErrIdentifierMismatch
	}
	if meta.LiveStatus == "is_upcoming" || meta.LiveStatus == "is_live" {
		return nil, domain.ErrLiveBroadcast
	}

	duration := domain.DurationString(meta.DurationSec)
	if duration == "NA" {
		r.logger.Info("could not parse duration", zap.String("video_id", id))
	}

	return &domain.WorkItem{
		VideoID:        id,
		Status:         status,
		ChannelID:      meta.ChannelID,
		ChannelName:    meta.ChannelName,
		Title:          meta.Title,
		ThumbURL:       meta.Thumbnail,
		Duration:       duration,
		Published:      formatUploadDate(meta.UploadDate),
		Timestamp:      time.Now().Unix(),
		ChannelIndexed: snap.channelIndexed(meta.ChannelID),
	}, nil
}

// notifyAdd publishes the done/total counter. Every event but the last is
// ephemeral; the last is retained longer so late pollers still observe
// completion.
func (r *Resolver) notifyAdd(ctx context.Context, idx, total int) {
	progress := fmt.Sprintf("%d/%d", idx+1, total)

	ttl := r.progressTTL
	if idx+1 == total {
		ttl = r.finalTTL
	}
	r.publishEvent(ctx, "Adding new videos to download queue.", "Progress: "+progress, ttl)

	if (idx+1)%logEvery == 0 {
		r.logger.Info("intake progress", zap.String("progress", progress))
	}
}

func (r *Resolver) publishEvent(ctx context.Context, title, message string, ttl time.Duration) {
	ev := msgbus.ProgressEvent{
		Status:  progressKey,
		Level:   "info",
		Title:   title,
		Message: message,
	}
	if err := r.publisher.Publish(ctx, progressKey, ev, ttl); err != nil {
		r.logger.Warn("progress publish failed", zap.Error(err))
	}
}

// formatUploadDate converts the source's YYYYMMDD into an ISO date.
// A malformed date is passed through untouched rather than dropped.
func formatUploadDate(uploadDate string) string {
	t, err := time.Parse("20060102", uploadDate)
	if err != nil {
		return uploadDate
	}
	return t.Format("2006-01-02")
}
