package extractor

import (
	"context"
	"sync"
)

// Mock is a hand-written in-memory Extractor for unit tests. Lookups miss
// unless primed; a primed nil stays a miss (upstream disappearance).
type Mock struct {
	mu        sync.Mutex
	Videos    map[string]*Metadata
	Channels  map[string]*ChannelMetadata
	Members   map[string][]string // channel id -> video ids
	Playlists map[string]*PlaylistMetadata

	CredentialErr error
	ExtractCalls  []string
}

func NewMock() *Mock {
	return &Mock{
		Videos:    make(map[string]*Metadata),
		Channels:  make(map[string]*ChannelMetadata),
		Members:   make(map[string][]string),
		Playlists: make(map[string]*PlaylistMetadata),
	}
}

func (m *Mock) Extract(_ context.Context, id string, _ Options) (*Metadata, error) {
	m.mu.Lock()
	m.ExtractCalls = append(m.ExtractCalls, id)
	m.mu.Unlock()
	return m.Videos[id], nil
}

func (m *Mock) Channel(_ context.Context, channelID string) (*ChannelMetadata, error) {
	return m.Channels[channelID], nil
}

func (m *Mock) ChannelVideos(_ context.Context, channelID string) ([]string, error) {
	return m.Members[channelID], nil
}

func (m *Mock) Playlist(_ context.Context, playlistID string) (*PlaylistMetadata, error) {
	return m.Playlists[playlistID], nil
}

func (m *Mock) ValidateCredential(_ context.Context) error {
	return m.CredentialErr
}

var (
	_ Extractor           = (*Mock)(nil)
	_ CredentialValidator = (*Mock)(nil)
)
