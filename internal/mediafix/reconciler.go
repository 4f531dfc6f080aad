// Package mediafix repairs archive layout drift. A channel rename upstream
// changes the name-derived folder a video is expected in; the reconciler
// moves the file from its recorded location to the corrected one and updates
// the stored media URL.
package mediafix

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/vidvault/ingestd/internal/domain"
	"github.com/vidvault/ingestd/internal/extractor"
	"github.com/vidvault/ingestd/internal/repository"
)

// MediaMover is the slice of the media store the reconciler needs.
type MediaMover interface {
	MediaURL(videoID, channelID, channelName string) string
	Exists(mediaURL string) bool
	StageMedia(mediaURL, videoID string) (string, error)
	PlaceFromStaging(ctx context.Context, videoID, mediaURL string) error
}

// Reconciler re-files a single video. It is invoked by the refresh worker
// when the expected path check fails.
type Reconciler struct {
	videos repository.VideoRepository
	source extractor.Extractor
	media  MediaMover
	logger *zap.Logger
}

func NewReconciler(videos repository.VideoRepository, source extractor.Extractor, media MediaMover, logger *zap.Logger) *Reconciler {
	return &Reconciler{videos: videos, source: source, media: media, logger: logger}
}

// Repair moves the media file from the recorded location to the path derived
// from the channel name the source reports now, then persists the corrected
// URL. The recorded file missing from disk is unrecoverable; recorded and
// fresh locations already agreeing means the drift signal was wrong.
func (r *Reconciler) Repair(ctx context.Context, videoID string) error {
	v, err := r.videos.Get(ctx, videoID)
	if err != nil {
		return err
	}

	if !r.media.Exists(v.MediaURL) {
		return fmt.Errorf("video %s: recorded file %s missing: %w",
			videoID, v.MediaURL, domain.ErrPathUnrecoverable)
	}

	meta, err := r.source.Extract(ctx, videoID, extractor.Options{MetadataOnly: true})
	if err != nil {
		return err
	}
	if meta == nil {
		return fmt.Errorf("video %s gone upstream: %w", videoID, domain.ErrPathUnrecoverable)
	}

	freshURL := r.media.MediaURL(videoID, meta.ChannelID, meta.ChannelName)
	if freshURL == v.MediaURL {
		return fmt.Errorf("video %s: %w", videoID, domain.ErrPathAlreadyCorrect)
	}

	staged, err := r.media.StageMedia(v.MediaURL, videoID)
	if err != nil {
		return err
	}
	r.logger.Info("staged mislaid media file",
		zap.String("video_id", videoID),
		zap.String("from", v.MediaURL),
		zap.String("staged", staged),
	)

	if err := r.media.PlaceFromStaging(ctx, videoID, freshURL); err != nil {
		return err
	}
	if err := r.videos.SetMediaURL(ctx, videoID, freshURL); err != nil {
		return err
	}

	r.logger.Info("media file re-filed",
		zap.String("video_id", videoID),
		zap.String("media_url", freshURL),
	)
	return nil
}
