package repository

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/vidvault/ingestd/internal/domain"
)

// MockStore is a hand-written, in-memory implementation of every repository
// interface, used in unit tests. No mock-generation library needed.
type MockStore struct {
	mu        sync.RWMutex
	workItems map[string]*domain.WorkItem
	videos    map[string]*domain.Video
	channels  map[string]*domain.Channel
	playlists map[string]*domain.Playlist
	comments  map[string]*domain.CommentSet

	// Optional error overrides — set in tests to simulate failure paths.
	CreateBatchErr error
	GetVideoErr    error
	UpsertVideoErr error
}

func NewMockStore() *MockStore {
	return &MockStore{
		workItems: make(map[string]*domain.WorkItem),
		videos:    make(map[string]*domain.Video),
		channels:  make(map[string]*domain.Channel),
		playlists: make(map[string]*domain.Playlist),
		comments:  make(map[string]*domain.CommentSet),
	}
}

// Store returns a Store view with every repository backed by this mock.
// Channels, playlists and comments go through thin adapters because their
// interface method names overlap with the video and work-item ones.
func (m *MockStore) Store() *Store {
	return &Store{
		WorkItems: m,
		Videos:    m,
		Channels:  mockChannelRepo{m},
		Playlists: mockPlaylistRepo{m},
		Comments:  mockCommentRepo{m},
	}
}

// ---- WorkItemRepository ----

func (m *MockStore) CreateBatch(_ context.Context, items []*domain.WorkItem) (int, error) {
	if m.CreateBatchErr != nil {
		return 0, m.CreateBatchErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	created := 0
	for _, it := range items {
		if _, exists := m.workItems[it.VideoID]; exists {
			continue
		}
		clone := *it
		m.workItems[it.VideoID] = &clone
		created++
	}
	return created, nil
}

func (m *MockStore) All(_ context.Context) ([]*domain.WorkItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	items := make([]*domain.WorkItem, 0, len(m.workItems))
	for _, it := range m.workItems {
		clone := *it
		items = append(items, &clone)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Timestamp < items[j].Timestamp })
	return items, nil
}

func (m *MockStore) Delete(_ context.Context, videoID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.workItems[videoID]; !ok {
		return domain.ErrNotFound
	}
	delete(m.workItems, videoID)
	return nil
}

func (m *MockStore) DeleteByStatus(_ context.Context, status domain.WorkItemStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, it := range m.workItems {
		if it.Status == status {
			delete(m.workItems, id)
		}
	}
	return nil
}

func (m *MockStore) UpdateStatus(_ context.Context, videoID string, status domain.WorkItemStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.workItems[videoID]
	if !ok {
		return domain.ErrNotFound
	}
	it.Status = status
	return nil
}

// ---- VideoRepository ----

func (m *MockStore) Get(_ context.Context, videoID string) (*domain.Video, error) {
	if m.GetVideoErr != nil {
		return nil, m.GetVideoErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.videos[videoID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *v
	return &clone, nil
}

func (m *MockStore) Upsert(_ context.Context, v *domain.Video) error {
	if m.UpsertVideoErr != nil {
		return m.UpsertVideoErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *v
	m.videos[v.VideoID] = &clone
	return nil
}

func (m *MockStore) AllIDs(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.videos))
	for id := range m.videos {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (m *MockStore) CountActive(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, v := range m.videos {
		if v.Active {
			n++
		}
	}
	return n, nil
}

func (m *MockStore) OutdatedIDs(_ context.Context, olderThan int64, limit int) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	type pair struct {
		id      string
		refresh int64
	}
	var outdated []pair
	for _, v := range m.videos {
		if v.Active && v.LastRefresh <= olderThan {
			outdated = append(outdated, pair{v.VideoID, v.LastRefresh})
		}
	}
	sort.Slice(outdated, func(i, j int) bool { return outdated[i].refresh < outdated[j].refresh })
	ids := make([]string, 0, len(outdated))
	for _, p := range outdated {
		if len(ids) == limit {
			break
		}
		ids = append(ids, p.id)
	}
	return ids, nil
}

func (m *MockStore) IDsByChannel(_ context.Context, channelID string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var ids []string
	for _, v := range m.videos {
		if v.Channel.ChannelID == channelID {
			ids = append(ids, v.VideoID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (m *MockStore) IDsByPlaylist(_ context.Context, playlistID string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var ids []string
	for _, v := range m.videos {
		for _, p := range v.Playlists {
			if p == playlistID {
				ids = append(ids, v.VideoID)
				break
			}
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (m *MockStore) SetActive(_ context.Context, videoID string, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.videos[videoID]; ok {
		v.Active = active
	}
	return nil
}

func (m *MockStore) SetMediaURL(_ context.Context, videoID, mediaURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.videos[videoID]; ok {
		v.MediaURL = mediaURL
	}
	return nil
}

func (m *MockStore) SetCommentCount(_ context.Context, videoID string, count int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.videos[videoID]; ok {
		v.CommentCount = count
	}
	return nil
}

func (m *MockStore) SyncChannel(_ context.Context, ch *domain.Channel) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, v := range m.videos {
		if v.Channel.ChannelID == ch.ChannelID {
			v.Channel.ChannelName = ch.Name
			if !ch.Active {
				v.Active = false
			}
		}
	}
	return nil
}

// ---- ChannelRepository ----

func (m *MockStore) GetChannel(_ context.Context, channelID string) (*domain.Channel, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ch, ok := m.channels[channelID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *ch
	return &clone, nil
}

func (m *MockStore) UpsertChannel(_ context.Context, ch *domain.Channel) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *ch
	m.channels[ch.ChannelID] = &clone
	return nil
}

func (m *MockStore) AllChannelIDs(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.channels))
	for id := range m.channels {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (m *MockStore) CountActiveChannels(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, ch := range m.channels {
		if ch.Active {
			n++
		}
	}
	return n, nil
}

func (m *MockStore) OutdatedChannelIDs(_ context.Context, olderThan int64, limit int) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	type pair struct {
		id      string
		refresh int64
	}
	var outdated []pair
	for _, ch := range m.channels {
		if ch.Active && ch.LastRefresh <= olderThan {
			outdated = append(outdated, pair{ch.ChannelID, ch.LastRefresh})
		}
	}
	sort.Slice(outdated, func(i, j int) bool { return outdated[i].refresh < outdated[j].refresh })
	ids := make([]string, 0, len(outdated))
	for _, p := range outdated {
		if len(ids) == limit {
			break
		}
		ids = append(ids, p.id)
	}
	return ids, nil
}

func (m *MockStore) SetChannelActive(_ context.Context, channelID string, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ch, ok := m.channels[channelID]; ok {
		ch.Active = active
	}
	return nil
}

func (m *MockStore) Overwrites(_ context.Context) (map[string]json.RawMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	overwrites := make(map[string]json.RawMessage)
	for id, ch := range m.channels {
		if len(ch.Overwrites) > 0 {
			overwrites[id] = ch.Overwrites
		}
	}
	return overwrites, nil
}

// ---- PlaylistRepository ----

func (m *MockStore) GetPlaylist(_ context.Context, playlistID string) (*domain.Playlist, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.playlists[playlistID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *p
	return &clone, nil
}

func (m *MockStore) UpsertPlaylist(_ context.Context, p *domain.Playlist) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *p
	m.playlists[p.PlaylistID] = &clone
	return nil
}

func (m *MockStore) CountActivePlaylists(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, p := range m.playlists {
		if p.Active {
			n++
		}
	}
	return n, nil
}

func (m *MockStore) OutdatedPlaylistIDs(_ context.Context, olderThan int64, limit int) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	type pair struct {
		id      string
		refresh int64
	}
	var outdated []pair
	for _, p := range m.playlists {
		if p.Active && p.LastRefresh <= olderThan {
			outdated = append(outdated, pair{p.PlaylistID, p.LastRefresh})
		}
	}
	sort.Slice(outdated, func(i, j int) bool { return outdated[i].refresh < outdated[j].refresh })
	ids := make([]string, 0, len(outdated))
	for _, p := range outdated {
		if len(ids) == limit {
			break
		}
		ids = append(ids, p.id)
	}
	return ids, nil
}

func (m *MockStore) SetPlaylistActive(_ context.Context, playlistID string, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.playlists[playlistID]; ok {
		p.Active = active
	}
	return nil
}

func (m *MockStore) CreatePassive(_ context.Context, p *domain.Playlist) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.playlists[p.PlaylistID]; exists {
		return nil
	}
	clone := *p
	clone.Subscribed = false
	m.playlists[p.PlaylistID] = &clone
	return nil
}

// ---- CommentRepository ----

func (m *MockStore) GetComments(_ context.Context, videoID string) (*domain.CommentSet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cs, ok := m.comments[videoID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *cs
	return &clone, nil
}

func (m *MockStore) PutComments(_ context.Context, cs *domain.CommentSet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *cs
	m.comments[cs.VideoID] = &clone
	return nil
}

func (m *MockStore) DeleteComments(_ context.Context, videoID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.comments, videoID)
	return nil
}

// ---- interface adapters ----

type mockChannelRepo struct{ s *MockStore }

func (a mockChannelRepo) Get(ctx context.Context, id string) (*domain.Channel, error) {
	return a.s.GetChannel(ctx, id)
}
func (a mockChannelRepo) Upsert(ctx context.Context, ch *domain.Channel) error {
	return a.s.UpsertChannel(ctx, ch)
}
func (a mockChannelRepo) AllIDs(ctx context.Context) ([]string, error) {
	return a.s.AllChannelIDs(ctx)
}
func (a mockChannelRepo) CountActive(ctx context.Context) (int, error) {
	return a.s.CountActiveChannels(ctx)
}
func (a mockChannelRepo) OutdatedIDs(ctx context.Context, olderThan int64, limit int) ([]string, error) {
	return a.s.OutdatedChannelIDs(ctx, olderThan, limit)
}
func (a mockChannelRepo) SetActive(ctx context.Context, id string, active bool) error {
	return a.s.SetChannelActive(ctx, id, active)
}
func (a mockChannelRepo) Overwrites(ctx context.Context) (map[string]json.RawMessage, error) {
	return a.s.Overwrites(ctx)
}

type mockPlaylistRepo struct{ s *MockStore }

func (a mockPlaylistRepo) Get(ctx context.Context, id string) (*domain.Playlist, error) {
	return a.s.GetPlaylist(ctx, id)
}
func (a mockPlaylistRepo) Upsert(ctx context.Context, p *domain.Playlist) error {
	return a.s.UpsertPlaylist(ctx, p)
}
func (a mockPlaylistRepo) CountActive(ctx context.Context) (int, error) {
	return a.s.CountActivePlaylists(ctx)
}
func (a mockPlaylistRepo) OutdatedIDs(ctx context.Context, olderThan int64, limit int) ([]string, error) {
	return a.s.OutdatedPlaylistIDs(ctx, olderThan, limit)
}
func (a mockPlaylistRepo) SetActive(ctx context.Context, id string, active bool) error {
	return a.s.SetPlaylistActive(ctx, id, active)
}
func (a mockPlaylistRepo) CreatePassive(ctx context.Context, p *domain.Playlist) error {
	return a.s.CreatePassive(ctx, p)
}

type mockCommentRepo struct{ s *MockStore }

func (a mockCommentRepo) Get(ctx context.Context, videoID string) (*domain.CommentSet, error) {
	return a.s.GetComments(ctx, videoID)
}
func (a mockCommentRepo) Put(ctx context.Context, cs *domain.CommentSet) error {
	return a.s.PutComments(ctx, cs)
}
func (a mockCommentRepo) Delete(ctx context.Context, videoID string) error {
	return a.s.DeleteComments(ctx, videoID)
}
