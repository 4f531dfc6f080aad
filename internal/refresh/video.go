package refresh

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/vidvault/ingestd/internal/domain"
	"github.com/vidvault/ingestd/internal/extractor"
)

// refreshVideo runs the video refresh with at most one self-heal attempt:
// a path drift triggers the reconciler once, then a single retry. A second
// drift fails the item.
func (w *Worker) refreshVideo(ctx context.Context, videoID string) error {
	err := w.refreshVideoOnce(ctx, videoID)
	if !errors.Is(err, domain.ErrPathDrift) {
		return err
	}

	w.logger.Info("media file not at expected path, attempting repair",
		zap.String("video_id", videoID))
	if repairErr := w.reconciler.Repair(ctx, videoID); repairErr != nil {
		return fmt.Errorf("repair %s: %w", videoID, repairErr)
	}
	return w.refreshVideoOnce(ctx, videoID)
}

// refreshVideoOnce merges fresh metadata over the stored record while
// preserving the sticky local state, then verifies the media file is where
// the fresh channel name places it.
func (w *Worker) refreshVideoOnce(ctx context.Context, videoID string) error {
	v, err := w.store.Videos.Get(ctx, videoID)
	if err != nil {
		return err
	}

	meta, err := w.source.Extract(ctx, videoID, extractor.Options{ProbeThumbnail: true})
	if err != nil {
		return err
	}
	if meta == nil {
		// Gone upstream. The local copy stays; only the active flag drops.
		w.logger.Info("video not found upstream, deactivating",
			zap.String("video_id", videoID))
		return w.store.Videos.SetActive(ctx, videoID, false)
	}

	// Old subtitle files are removed before the track list is rebuilt from
	// fresh metadata, otherwise a dropped language would leave an orphan.
	if langs := subtitleLangs(v.Subtitles); len(langs) > 0 {
		if err := w.media.DeleteSubtitles(v.MediaURL, langs); err != nil {
			w.logger.Warn("stale subtitle cleanup failed",
				zap.String("video_id", videoID), zap.Error(err))
		}
	}

	// Sticky fields survive the merge byte for byte.
	sticky := struct {
		channel        domain.ChannelRef
		playlists      []string
		player         json.RawMessage
		dateDownloaded int64
	}{v.Channel, v.Playlists, v.Player, v.DateDownloaded}

	v.Title = meta.Title
	v.Description = meta.Description
	v.ThumbURL = meta.Thumbnail
	v.Duration = domain.DurationString(meta.DurationSec)
	v.Published = formatUploadDate(meta.UploadDate)
	v.Subtitles = marshalSubtitles(meta.Subtitles)

	v.Channel = sticky.channel
	v.Playlists = sticky.playlists
	v.Player = sticky.player
	v.DateDownloaded = sticky.dateDownloaded

	// The expected path follows the channel name the source reports now.
	// If the file is not there the channel was renamed upstream and the
	// archive layout has drifted.
	freshURL := w.media.MediaURL(videoID, meta.ChannelID, meta.ChannelName)
	if !w.media.Exists(freshURL) {
		return fmt.Errorf("video %s at %s: %w", videoID, freshURL, domain.ErrPathDrift)
	}
	v.MediaURL = freshURL

	v.Active = true
	v.LastRefresh = time.Now().Unix()

	if err := w.store.Videos.Upsert(ctx, v); err != nil {
		return err
	}

	if err := w.media.DeleteThumb(videoID); err != nil {
		w.logger.Warn("thumb delete failed", zap.String("video_id", videoID), zap.Error(err))
	}
	if err := w.media.CacheThumb(ctx, videoID, meta.Thumbnail); err != nil {
		w.logger.Warn("thumb refresh failed", zap.String("video_id", videoID), zap.Error(err))
	}

	if err := w.refreshComments(ctx, v); err != nil {
		w.logger.Warn("comment refresh failed", zap.String("video_id", videoID), zap.Error(err))
	}
	return nil
}

// refreshComments re-extracts the comment set. An empty or failed extraction
// never overwrites previously stored comments.
func (w *Worker) refreshComments(ctx context.Context, v *domain.Video) error {
	if w.comments == nil {
		return nil
	}

	meta, err := w.source.Extract(ctx, v.VideoID, extractor.Options{
		MetadataOnly: true,
		Comments:     w.comments,
	})
	if err != nil {
		return err
	}
	if meta == nil || len(meta.Comments) == 0 {
		return nil
	}

	comments := make([]domain.Comment, len(meta.Comments))
	for i, c := range meta.Comments {
		comments[i] = domain.Comment{
			CommentID:        c.ID,
			Text:             c.Text,
			Timestamp:        c.Timestamp,
			TimeText:         commentTimeText(c.Timestamp),
			LikeCount:        c.LikeCount,
			Author:           c.Author,
			AuthorID:         c.AuthorID,
			AuthorThumb:      c.AuthorThumbnail,
			AuthorIsUploader: c.AuthorIsUploader,
			Parent:           c.Parent,
		}
	}

	cs := &domain.CommentSet{
		VideoID:     v.VideoID,
		ChannelID:   v.Channel.ChannelID,
		LastRefresh: time.Now().Unix(),
		Comments:    comments,
	}
	if err := w.store.Comments.Put(ctx, cs); err != nil {
		return err
	}
	return w.store.Videos.SetCommentCount(ctx, v.VideoID, len(comments))
}

// commentTimeText renders a comment timestamp for display: date only, or
// date plus time when the source kept sub-day precision.
func commentTimeText(ts int64) string {
	t := time.Unix(ts, 0).UTC()
	if t.Hour() == 0 && t.Minute() == 0 {
		return t.Format("Jan 02, 2006")
	}
	return t.Format("Jan 02, 2006 15:04")
}

// subtitleLangs lists the language codes stored in a raw subtitle document.
func subtitleLangs(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var tracks []extractor.Subtitle
	if err := json.Unmarshal(raw, &tracks); err != nil {
		return nil
	}
	langs := make([]string, 0, len(tracks))
	for _, tr := range tracks {
		langs = append(langs, tr.Lang)
	}
	return langs
}

func marshalSubtitles(tracks []extractor.Subtitle) json.RawMessage {
	if len(tracks) == 0 {
		return nil
	}
	raw, err := json.Marshal(tracks)
	if err != nil {
		return nil
	}
	return raw
}

// formatUploadDate converts the source's YYYYMMDD into an ISO date, passing
// malformed input through untouched.
func formatUploadDate(uploadDate string) string {
	t, err := time.Parse("20060102", uploadDate)
	if err != nil {
		return uploadDate
	}
	return t.Format("2006-01-02")
}
