package refresh

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/vidvault/ingestd/internal/domain"
)

// refreshPlaylist merges fresh playlist metadata and revalidates every entry
// against the indexed-video set cached for this cycle. Subscribed is sticky.
func (w *Worker) refreshPlaylist(ctx context.Context, playlistID string) error {
	p, err := w.store.Playlists.Get(ctx, playlistID)
	if err != nil {
		return err
	}

	meta, err := w.source.Playlist(ctx, playlistID)
	if err != nil {
		return err
	}
	if meta == nil {
		w.logger.Info("playlist not found upstream, deactivating",
			zap.String("playlist_id", playlistID))
		return w.store.Playlists.SetActive(ctx, playlistID, false)
	}

	indexed, err := w.allIndexed(ctx)
	if err != nil {
		return err
	}

	entries := make([]domain.PlaylistEntry, len(meta.Entries))
	for i, e := range meta.Entries {
		_, downloaded := indexed[e.VideoID]
		entries[i] = domain.PlaylistEntry{
			VideoID:    e.VideoID,
			Title:      e.Title,
			Index:      i,
			Downloaded: downloaded,
		}
	}

	subscribed := p.Subscribed

	p.Name = meta.Name
	p.Description = meta.Description
	p.ChannelID = meta.ChannelID
	p.Entries = entries

	p.Subscribed = subscribed

	p.Active = true
	p.LastRefresh = time.Now().Unix()

	return w.store.Playlists.Upsert(ctx, p)
}
