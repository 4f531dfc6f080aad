package refresh

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"
)

// refreshChannel merges fresh channel metadata over the stored record and
// propagates the result to every owned video. Subscribed and Overwrites are
// sticky. A channel gone upstream is deactivated together with its videos,
// never deleted.
func (w *Worker) refreshChannel(ctx context.Context, channelID string) error {
	ch, err := w.store.Channels.Get(ctx, channelID)
	if err != nil {
		return err
	}

	meta, err := w.source.Channel(ctx, channelID)
	if err != nil {
		return err
	}
	if meta == nil {
		w.logger.Info("channel not found upstream, deactivating",
			zap.String("channel_id", channelID))
		if err := w.store.Channels.SetActive(ctx, channelID, false); err != nil {
			return err
		}
		ch.Active = false
		return w.store.Videos.SyncChannel(ctx, ch)
	}

	sticky := struct {
		subscribed bool
		overwrites json.RawMessage
	}{ch.Subscribed, ch.Overwrites}

	ch.Name = meta.Name
	ch.Description = meta.Description
	ch.ThumbURL = meta.Thumbnail

	ch.Subscribed = sticky.subscribed
	ch.Overwrites = sticky.overwrites

	ch.Active = true
	ch.LastRefresh = time.Now().Unix()

	if err := w.store.Channels.Upsert(ctx, ch); err != nil {
		return err
	}
	return w.store.Videos.SyncChannel(ctx, ch)
}
