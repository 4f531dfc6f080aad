// Package extractor abstracts the external metadata source. The refresh
// worker and the intake resolver only depend on the interfaces; the HTTP
// implementation talks to a yt-dlp sidecar service.
package extractor

import (
	"context"
	"time"
)

// Options controls a single extraction call.
type Options struct {
	// MetadataOnly skips payload probing: single item, no format checks
	// beyond the thumbnail, short socket timeout.
	MetadataOnly bool
	// ProbeThumbnail asks the source to verify the thumbnail URL resolves.
	ProbeThumbnail bool
	// Timeout overrides the client default when non-zero.
	Timeout time.Duration
	// Comments enables comment extraction (full mode only).
	Comments *CommentOptions
}

// CommentOptions mirrors the extractor's comment parameters:
// Max is the "max-comments,max-parents,max-replies,max-replies-per-thread"
// spec string, Sort is "top" or "new".
type CommentOptions struct {
	Max  string
	Sort string
}

// Subtitle is one subtitle track the source reports for a video.
type Subtitle struct {
	Lang   string `json:"lang"`
	Source string `json:"source"`
	URL    string `json:"url"`
}

// Comment is one raw comment as the source returns it.
type Comment struct {
	ID               string `json:"id"`
	Text             string `json:"text"`
	Timestamp        int64  `json:"timestamp"`
	LikeCount        int    `json:"like_count"`
	Author           string `json:"author"`
	AuthorID         string `json:"author_id"`
	AuthorThumbnail  string `json:"author_thumbnail"`
	AuthorIsUploader bool   `json:"author_is_uploader"`
	Parent           string `json:"parent"`
}

// Metadata is the parsed result of one extraction.
type Metadata struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	ChannelID   string     `json:"channel_id"`
	ChannelName string     `json:"channel"`
	Thumbnail   string     `json:"thumbnail"`
	DurationSec int        `json:"duration"`
	UploadDate  string     `json:"upload_date"` // YYYYMMDD as the source emits it
	LiveStatus  string     `json:"live_status"` // "is_upcoming", "is_live", "not_live", ...
	Subtitles   []Subtitle `json:"subtitles,omitempty"`
	Comments    []Comment  `json:"comments,omitempty"`
}

// ChannelMetadata is the parsed result of a channel lookup.
type ChannelMetadata struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Thumbnail   string `json:"thumbnail"`
}

// PlaylistEntry is one member of a playlist in source order.
type PlaylistEntry struct {
	VideoID string `json:"video_id"`
	Title   string `json:"title"`
}

// PlaylistMetadata is the parsed result of a playlist lookup.
type PlaylistMetadata struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	ChannelID   string          `json:"channel_id"`
	Entries     []PlaylistEntry `json:"entries"`
}

// Extractor is the metadata source. Lookups that resolve to nothing upstream
// return (nil, nil): absence is data, not an error.
type Extractor interface {
	Extract(ctx context.Context, id string, opts Options) (*Metadata, error)
	Channel(ctx context.Context, channelID string) (*ChannelMetadata, error)
	// ChannelVideos returns the channel's member video ids, newest first.
	ChannelVideos(ctx context.Context, channelID string) ([]string, error)
	Playlist(ctx context.Context, playlistID string) (*PlaylistMetadata, error)
}

// CredentialValidator checks the configured source credential.
// Implementations return domain.ErrCredentialInvalid on a definitive reject.
type CredentialValidator interface {
	ValidateCredential(ctx context.Context) error
}
