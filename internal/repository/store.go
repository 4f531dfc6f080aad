package repository

import (
	"context"
	"encoding/json"

	"github.com/vidvault/ingestd/internal/domain"
)

// WorkItemRepository defines persistence for the pending-download queue.
// The pgx implementation is in pg_workitems.go; tests use MockStore.
type WorkItemRepository interface {
	// CreateBatch inserts all items in one request with create semantics:
	// an identifier conflict skips only that item, never the batch.
	// Returns the number of rows actually created.
	CreateBatch(ctx context.Context, items []*domain.WorkItem) (int, error)
	// All returns every queue entry ordered by ingestion timestamp.
	All(ctx context.Context) ([]*domain.WorkItem, error)
	Delete(ctx context.Context, videoID string) error
	DeleteByStatus(ctx context.Context, status domain.WorkItemStatus) error
	UpdateStatus(ctx context.Context, videoID string, status domain.WorkItemStatus) error
}

// VideoRepository defines persistence for indexed videos.
type VideoRepository interface {
	Get(ctx context.Context, videoID string) (*domain.Video, error)
	// Upsert replaces the whole document in one atomic write.
	Upsert(ctx context.Context, v *domain.Video) error
	AllIDs(ctx context.Context) ([]string, error)
	CountActive(ctx context.Context) (int, error)
	// OutdatedIDs returns up to limit active ids with last_refresh <= olderThan,
	// oldest first.
	OutdatedIDs(ctx context.Context, olderThan int64, limit int) ([]string, error)
	IDsByChannel(ctx context.Context, channelID string) ([]string, error)
	IDsByPlaylist(ctx context.Context, playlistID string) ([]string, error)
	SetActive(ctx context.Context, videoID string, active bool) error
	SetMediaURL(ctx context.Context, videoID, mediaURL string) error
	SetCommentCount(ctx context.Context, videoID string, count int) error
	// SyncChannel propagates channel display fields and the active flag to
	// every video owned by the channel.
	SyncChannel(ctx context.Context, ch *domain.Channel) error
}

// ChannelRepository defines persistence for indexed channels.
type ChannelRepository interface {
	Get(ctx context.Context, channelID string) (*domain.Channel, error)
	Upsert(ctx context.Context, ch *domain.Channel) error
	AllIDs(ctx context.Context) ([]string, error)
	CountActive(ctx context.Context) (int, error)
	OutdatedIDs(ctx context.Context, olderThan int64, limit int) ([]string, error)
	SetActive(ctx context.Context, channelID string, active bool) error
	// Overwrites returns the per-channel operator override maps, keyed by
	// channel id. Channels without overrides are absent.
	Overwrites(ctx context.Context) (map[string]json.RawMessage, error)
}

// PlaylistRepository defines persistence for indexed playlists.
type PlaylistRepository interface {
	Get(ctx context.Context, playlistID string) (*domain.Playlist, error)
	Upsert(ctx context.Context, p *domain.Playlist) error
	CountActive(ctx context.Context) (int, error)
	OutdatedIDs(ctx context.Context, olderThan int64, limit int) ([]string, error)
	SetActive(ctx context.Context, playlistID string, active bool) error
	// CreatePassive registers a non-subscribed tracking record if the
	// playlist is not yet known; an existing record is left untouched.
	CreatePassive(ctx context.Context, p *domain.Playlist) error
}

// CommentRepository defines persistence for stored comment sets.
type CommentRepository interface {
	Get(ctx context.Context, videoID string) (*domain.CommentSet, error)
	Put(ctx context.Context, cs *domain.CommentSet) error
	Delete(ctx context.Context, videoID string) error
}

// Store bundles the per-collection repositories so constructors take one
// dependency instead of five.
type Store struct {
	WorkItems WorkItemRepository
	Videos    VideoRepository
	Channels  ChannelRepository
	Playlists PlaylistRepository
	Comments  CommentRepository
}
