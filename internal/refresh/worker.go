package refresh

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/vidvault/ingestd/internal/domain"
	"github.com/vidvault/ingestd/internal/extractor"
	"github.com/vidvault/ingestd/internal/msgbus"
	"github.com/vidvault/ingestd/internal/queue"
	"github.com/vidvault/ingestd/internal/repository"
)

// lastRefreshKey is the cache key holding the completion time of the most
// recent cycle.
const lastRefreshKey = "last_refresh"

// MediaFiles is the slice of the media store the worker needs: path
// derivation, existence checks and the cached artifacts tied to a video.
type MediaFiles interface {
	MediaURL(videoID, channelID, channelName string) string
	Exists(mediaURL string) bool
	DeleteSubtitles(mediaURL string, langs []string) error
	CacheThumb(ctx context.Context, videoID, url string) error
	DeleteThumb(videoID string) error
}

// Reconciler repairs a video whose media file is no longer where the current
// channel name says it should be.
type Reconciler interface {
	Repair(ctx context.Context, videoID string) error
}

// Hooks receives per-item outcome callbacks, wired to metrics in production.
// A nil hook is skipped.
type Hooks struct {
	OnRefreshed func(t domain.EntityType)
	OnFailed    func(t domain.EntityType)
}

func (h Hooks) refreshed(t domain.EntityType) {
	if h.OnRefreshed != nil {
		h.OnRefreshed(t)
	}
}

func (h Hooks) failed(t domain.EntityType) {
	if h.OnFailed != nil {
		h.OnFailed(t)
	}
}

// Worker drains the refresh queues. One item is processed at a time with a
// fixed delay between extractions so the upstream source is never hammered.
type Worker struct {
	store      *repository.Store
	queue      queue.RefreshQueue
	source     extractor.Extractor
	cred       extractor.CredentialValidator
	media      MediaFiles
	reconciler Reconciler
	cache      msgbus.Cache
	limiter    *rate.Limiter
	comments   *extractor.CommentOptions
	hooks      Hooks
	logger     *zap.Logger

	// indexedIDs caches the full indexed-video id set for one cycle; playlist
	// entry validation reads it instead of querying per entry.
	indexedIDs map[string]struct{}
}

// WorkerConfig carries the worker's collaborators and tuning.
type WorkerConfig struct {
	Store      *repository.Store
	Queue      queue.RefreshQueue
	Source     extractor.Extractor
	Credential extractor.CredentialValidator // nil when no credential is configured
	Media      MediaFiles
	Reconciler Reconciler
	Cache      msgbus.Cache
	ItemDelay  time.Duration
	Comments   *extractor.CommentOptions // nil disables comment refresh
	Hooks      Hooks
	Logger     *zap.Logger
}

func NewWorker(cfg WorkerConfig) *Worker {
	delay := cfg.ItemDelay
	if delay <= 0 {
		delay = time.Second
	}
	return &Worker{
		store:      cfg.Store,
		queue:      cfg.Queue,
		source:     cfg.Source,
		cred:       cfg.Credential,
		media:      cfg.Media,
		reconciler: cfg.Reconciler,
		cache:      cfg.Cache,
		limiter:    rate.NewLimiter(rate.Every(delay), 1),
		comments:   cfg.Comments,
		hooks:      cfg.Hooks,
		logger:     cfg.Logger,
	}
}

// RunCycle drains all three queues completely, videos first, then channels,
// then playlists. A configured credential is validated up front; an invalid
// one aborts the cycle before any item is consumed. Per-item failures are
// logged and skipped. The cycle completion time is recorded at the end even
// when the queues were already empty.
func (w *Worker) RunCycle(ctx context.Context) error {
	if w.cred != nil {
		if err := w.cred.ValidateCredential(ctx); err != nil {
			w.logger.Error("credential validation failed, aborting cycle", zap.Error(err))
			return err
		}
	}

	w.indexedIDs = nil

	for _, t := range domain.AllEntityTypes {
		if err := w.drain(ctx, t); err != nil {
			return err
		}
	}

	if err := w.cache.Set(ctx, lastRefreshKey, time.Now().Unix(), 0); err != nil {
		w.logger.Warn("recording cycle completion failed", zap.Error(err))
	}
	return nil
}

// drain pops one type's queue until empty.
func (w *Worker) drain(ctx context.Context, t domain.EntityType) error {
	for {
		id, ok, err := w.queue.Pop(ctx, t)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}

		if err := w.limiter.Wait(ctx); err != nil {
			return err
		}

		if err := w.refreshOne(ctx, t, id); err != nil {
			w.hooks.failed(t)
			w.logger.Error("refresh failed",
				zap.String("type", string(t)),
				zap.String("id", id),
				zap.Error(err),
			)
			continue
		}
		w.hooks.refreshed(t)
	}
}

func (w *Worker) refreshOne(ctx context.Context, t domain.EntityType, id string) error {
	switch t {
	case domain.TypeVideo:
		return w.refreshVideo(ctx, id)
	case domain.TypeChannel:
		return w.refreshChannel(ctx, id)
	case domain.TypePlaylist:
		return w.refreshPlaylist(ctx, id)
	}
	return domain.ErrInvalidEntityType
}

// allIndexed returns the cycle-cached indexed video id set.
func (w *Worker) allIndexed(ctx context.Context) (map[string]struct{}, error) {
	if w.indexedIDs != nil {
		return w.indexedIDs, nil
	}
	ids, err := w.store.Videos.AllIDs(ctx)
	if err != nil {
		return nil, err
	}
	w.indexedIDs = make(map[string]struct{}, len(ids))
	for _, id := range ids {
		w.indexedIDs[id] = struct{}{}
	}
	return w.indexedIDs, nil
}
