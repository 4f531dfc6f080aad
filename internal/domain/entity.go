package domain

import (
	"encoding/json"
	"fmt"
)

// EntityType identifies one of the three indexed entity kinds.
type EntityType string

const (
	TypeVideo    EntityType = "video"
	TypeChannel  EntityType = "channel"
	TypePlaylist EntityType = "playlist"
)

func (t EntityType) IsValid() bool {
	switch t {
	case TypeVideo, TypeChannel, TypePlaylist:
		return true
	}
	return false
}

// AllEntityTypes is the fixed drain order for a refresh cycle:
// videos first, then channels, then playlists.
var AllEntityTypes = []EntityType{TypeVideo, TypeChannel, TypePlaylist}

// WorkItemStatus tracks a pending-queue entry.
type WorkItemStatus string

const (
	StatusPending WorkItemStatus = "pending"
	StatusIgnore  WorkItemStatus = "ignore"
)

func (s WorkItemStatus) IsValid() bool {
	return s == StatusPending || s == StatusIgnore
}

// WorkItem is a pending-download queue entry awaiting the external fetcher.
type WorkItem struct {
	VideoID        string         `json:"video_id"`
	Status         WorkItemStatus `json:"status"`
	ChannelID      string         `json:"channel_id"`
	ChannelName    string         `json:"channel_name"`
	Title          string         `json:"title"`
	ThumbURL       string         `json:"thumb_url"`
	Duration       string         `json:"duration"`
	Published      string         `json:"published"`
	Timestamp      int64          `json:"timestamp"`
	ChannelIndexed bool           `json:"channel_indexed"`
}

// ChannelRef is the owning-channel reference embedded in a video.
// It is a sticky field: a refresh must not replace the locally stored
// reference with freshly scraped channel data.
type ChannelRef struct {
	ChannelID   string `json:"channel_id"`
	ChannelName string `json:"channel_name"`
}

// Video is an indexed media item. Payload fields are overwritten on every
// refresh; Player, DateDownloaded, Channel, Playlists and the subscription
// state of the owning collections survive a refresh untouched.
type Video struct {
	VideoID      string `json:"video_id"`
	Active       bool   `json:"active"`
	LastRefresh  int64  `json:"last_refresh"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	ThumbURL     string `json:"thumb_url"`
	Duration     string `json:"duration"`
	Published    string `json:"published"`
	MediaURL     string `json:"media_url"`

	Channel        ChannelRef      `json:"channel"`
	Playlists      []string        `json:"playlists,omitempty"`
	Player         json.RawMessage `json:"player,omitempty"`
	Subtitles      json.RawMessage `json:"subtitles,omitempty"`
	DateDownloaded int64           `json:"date_downloaded"`
	CommentCount   int             `json:"comment_count"`
}

// Channel is an indexed collection of videos.
// Subscribed and Overwrites are sticky across refreshes.
type Channel struct {
	ChannelID   string          `json:"channel_id"`
	Active      bool            `json:"active"`
	LastRefresh int64           `json:"last_refresh"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	ThumbURL    string          `json:"thumb_url"`
	Subscribed  bool            `json:"subscribed"`
	Overwrites  json.RawMessage `json:"overwrites,omitempty"`
}

// PlaylistEntry is one member position inside a playlist.
type PlaylistEntry struct {
	VideoID    string `json:"video_id"`
	Title      string `json:"title"`
	Index      int    `json:"index"`
	Downloaded bool   `json:"downloaded"`
}

// Playlist is an indexed sub-collection. Subscribed is sticky.
type Playlist struct {
	PlaylistID  string          `json:"playlist_id"`
	Active      bool            `json:"active"`
	LastRefresh int64           `json:"last_refresh"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	ChannelID   string          `json:"channel_id"`
	Subscribed  bool            `json:"subscribed"`
	Entries     []PlaylistEntry `json:"entries,omitempty"`
}

// Comment is a single stored comment.
type Comment struct {
	CommentID        string `json:"comment_id"`
	Text             string `json:"text"`
	Timestamp        int64  `json:"timestamp"`
	TimeText         string `json:"time_text"`
	LikeCount        int    `json:"like_count"`
	Author           string `json:"author"`
	AuthorID         string `json:"author_id"`
	AuthorThumb      string `json:"author_thumbnail"`
	AuthorIsUploader bool   `json:"author_is_uploader"`
	Parent           string `json:"parent"`
}

// CommentSet is the full stored comment document for one video.
type CommentSet struct {
	VideoID     string    `json:"video_id"`
	ChannelID   string    `json:"channel_id"`
	LastRefresh int64     `json:"last_refresh"`
	Comments    []Comment `json:"comments"`
}

// RefreshQueueEntry is one (type, id) pair on a durable refresh queue.
type RefreshQueueEntry struct {
	Type EntityType
	ID   string
}

func (e RefreshQueueEntry) String() string {
	return fmt.Sprintf("%s:%s", e.Type, e.ID)
}
