package refresh_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/vidvault/ingestd/internal/domain"
	"github.com/vidvault/ingestd/internal/extractor"
	"github.com/vidvault/ingestd/internal/msgbus"
	"github.com/vidvault/ingestd/internal/queue"
	"github.com/vidvault/ingestd/internal/refresh"
	"github.com/vidvault/ingestd/internal/repository"
)

// fakeMedia is an in-memory MediaFiles: paths are derived deterministically
// and existence is a settable map.
type fakeMedia struct {
	existing      map[string]bool
	deletedSubs   map[string][]string
	cachedThumbs  []string
	deletedThumbs []string
}

func newFakeMedia() *fakeMedia {
	return &fakeMedia{
		existing:    make(map[string]bool),
		deletedSubs: make(map[string][]string),
	}
}

func (f *fakeMedia) MediaURL(videoID, channelID, channelName string) string {
	return channelID + "_" + channelName + "/" + videoID + ".mp4"
}

func (f *fakeMedia) Exists(mediaURL string) bool { return f.existing[mediaURL] }

func (f *fakeMedia) DeleteSubtitles(mediaURL string, langs []string) error {
	f.deletedSubs[mediaURL] = append(f.deletedSubs[mediaURL], langs...)
	return nil
}

func (f *fakeMedia) CacheThumb(_ context.Context, videoID, _ string) error {
	f.cachedThumbs = append(f.cachedThumbs, videoID)
	return nil
}

func (f *fakeMedia) DeleteThumb(videoID string) error {
	f.deletedThumbs = append(f.deletedThumbs, videoID)
	return nil
}

// fakeReconciler counts invocations and runs an optional repair action.
type fakeReconciler struct {
	calls  int
	repair func() error
}

func (r *fakeReconciler) Repair(context.Context, string) error {
	r.calls++
	if r.repair != nil {
		return r.repair()
	}
	return nil
}

type workerEnv struct {
	store  *repository.MockStore
	queue  *queue.MemoryQueue
	source *extractor.Mock
	media  *fakeMedia
	rec    *fakeReconciler
	bus    *msgbus.MockBus

	refreshed map[domain.EntityType]int
	failed    map[domain.EntityType]int
}

func newWorkerEnv(comments *extractor.CommentOptions) (*refresh.Worker, *workerEnv) {
	env := &workerEnv{
		store:     repository.NewMockStore(),
		queue:     queue.NewMemoryQueue(),
		source:    extractor.NewMock(),
		media:     newFakeMedia(),
		rec:       &fakeReconciler{},
		bus:       msgbus.NewMockBus(),
		refreshed: make(map[domain.EntityType]int),
		failed:    make(map[domain.EntityType]int),
	}

	w := refresh.NewWorker(refresh.WorkerConfig{
		Store:      env.store.Store(),
		Queue:      env.queue,
		Source:     env.source,
		Credential: env.source,
		Media:      env.media,
		Reconciler: env.rec,
		Cache:      env.bus,
		ItemDelay:  time.Millisecond,
		Comments:   comments,
		Hooks: refresh.Hooks{
			OnRefreshed: func(t domain.EntityType) { env.refreshed[t]++ },
			OnFailed:    func(t domain.EntityType) { env.failed[t]++ },
		},
		Logger: zap.NewNop(),
	})
	return w, env
}

func seedVideo(env *workerEnv) *domain.Video {
	v := &domain.Video{
		VideoID:        "vid1",
		Active:         true,
		LastRefresh:    100,
		Title:          "Old title",
		Description:    "Old description",
		Duration:       "1:00",
		MediaURL:       "ch1_Channel One/vid1.mp4",
		Channel:        domain.ChannelRef{ChannelID: "ch1", ChannelName: "Channel One"},
		Playlists:      []string{"pl1"},
		Player:         json.RawMessage(`{"height":1080,"width":1920}`),
		Subtitles:      json.RawMessage(`[{"lang":"en","source":"user","url":"u"}]`),
		DateDownloaded: 1700000000,
	}
	_ = env.store.Upsert(context.Background(), v)
	env.media.existing[v.MediaURL] = true
	return v
}

func freshVideoMeta() *extractor.Metadata {
	return &extractor.Metadata{
		ID:          "vid1",
		Title:       "New title",
		Description: "New description",
		ChannelID:   "ch1",
		ChannelName: "Channel One",
		Thumbnail:   "https://thumbs.example/vid1.jpg",
		DurationSec: 90,
		UploadDate:  "20260105",
		LiveStatus:  "not_live",
		Subtitles:   []extractor.Subtitle{{Lang: "de", Source: "auto", URL: "u2"}},
	}
}

func TestWorker_VideoRefresh_StickyFieldsSurvive(t *testing.T) {
	w, env := newWorkerEnv(nil)
	ctx := context.Background()

	orig := seedVideo(env)
	env.source.Videos["vid1"] = freshVideoMeta()
	_ = env.queue.Push(ctx, domain.TypeVideo, []string{"vid1"})

	if err := w.RunCycle(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := env.store.Get(ctx, "vid1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	// Payload fields follow the fresh metadata.
	if got.Title != "New title" || got.Description != "New description" {
		t.Fatalf("expected payload overwritten, got %q / %q", got.Title, got.Description)
	}
	if got.Duration != "1:30" {
		t.Fatalf("expected duration 1:30, got %q", got.Duration)
	}
	if got.LastRefresh <= orig.LastRefresh {
		t.Fatal("expected last_refresh advanced")
	}
	if !got.Active {
		t.Fatal("expected video active after a successful refresh")
	}

	// Sticky fields are byte for byte what was stored before.
	if !bytes.Equal(got.Player, orig.Player) {
		t.Fatalf("player clobbered: %s", got.Player)
	}
	if got.DateDownloaded != orig.DateDownloaded {
		t.Fatal("date_downloaded clobbered")
	}
	if got.Channel != orig.Channel {
		t.Fatalf("channel ref clobbered: %+v", got.Channel)
	}
	if len(got.Playlists) != 1 || got.Playlists[0] != "pl1" {
		t.Fatalf("playlists clobbered: %v", got.Playlists)
	}

	// Subtitle files of the old track list were removed, the document
	// rebuilt from fresh metadata.
	if langs := env.media.deletedSubs[orig.MediaURL]; len(langs) != 1 || langs[0] != "en" {
		t.Fatalf("expected old en subtitle deleted, got %v", langs)
	}
	var tracks []extractor.Subtitle
	_ = json.Unmarshal(got.Subtitles, &tracks)
	if len(tracks) != 1 || tracks[0].Lang != "de" {
		t.Fatalf("expected fresh de track, got %v", tracks)
	}

	if env.refreshed[domain.TypeVideo] != 1 {
		t.Fatalf("expected 1 refreshed hook call, got %d", env.refreshed[domain.TypeVideo])
	}
}

func TestWorker_VideoGoneUpstream_DeactivatedNotDeleted(t *testing.T) {
	w, env := newWorkerEnv(nil)
	ctx := context.Background()

	seedVideo(env)
	// No metadata primed: the extractor reports the video gone.
	_ = env.queue.Push(ctx, domain.TypeVideo, []string{"vid1"})

	if err := w.RunCycle(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := env.store.Get(ctx, "vid1")
	if err != nil {
		t.Fatalf("record must survive: %v", err)
	}
	if got.Active {
		t.Fatal("expected video deactivated")
	}
	if got.Title != "Old title" {
		t.Fatal("payload must stay untouched for a gone video")
	}
}

func TestWorker_PathDrift_SelfHealOnce(t *testing.T) {
	w, env := newWorkerEnv(nil)
	ctx := context.Background()

	v := seedVideo(env)
	meta := freshVideoMeta()
	meta.ChannelName = "Renamed Channel"
	env.source.Videos["vid1"] = meta

	// File sits at the old location only; repair moves it.
	driftedURL := "ch1_Renamed Channel/vid1.mp4"
	env.rec.repair = func() error {
		delete(env.media.existing, v.MediaURL)
		env.media.existing[driftedURL] = true
		return nil
	}

	_ = env.queue.Push(ctx, domain.TypeVideo, []string{"vid1"})
	if err := w.RunCycle(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if env.rec.calls != 1 {
		t.Fatalf("expected exactly one repair attempt, got %d", env.rec.calls)
	}

	got, _ := env.store.Get(ctx, "vid1")
	if got.MediaURL != driftedURL {
		t.Fatalf("expected corrected media URL, got %q", got.MediaURL)
	}
	if !got.Active || got.LastRefresh <= 100 {
		t.Fatal("expected refresh completed after repair")
	}
	if env.refreshed[domain.TypeVideo] != 1 {
		t.Fatal("expected the item counted as refreshed")
	}
}

func TestWorker_PathDrift_SecondFailureFailsItemOnly(t *testing.T) {
	w, env := newWorkerEnv(nil)
	ctx := context.Background()

	seedVideo(env)
	meta := freshVideoMeta()
	meta.ChannelName = "Renamed Channel"
	env.source.Videos["vid1"] = meta
	// Repair reports success but the file never shows up at the new path.
	env.rec.repair = func() error { return nil }

	_ = env.queue.Push(ctx, domain.TypeVideo, []string{"vid1"})
	if err := w.RunCycle(ctx); err != nil {
		t.Fatalf("a failing item must not abort the cycle: %v", err)
	}

	if env.rec.calls != 1 {
		t.Fatalf("repair must run once, not loop: %d calls", env.rec.calls)
	}
	if env.failed[domain.TypeVideo] != 1 {
		t.Fatalf("expected 1 failed hook call, got %d", env.failed[domain.TypeVideo])
	}

	got, _ := env.store.Get(ctx, "vid1")
	if got.LastRefresh != 100 {
		t.Fatal("a failed item must not be marked refreshed")
	}
}

func TestWorker_CredentialFailureAbortsCycle(t *testing.T) {
	w, env := newWorkerEnv(nil)
	ctx := context.Background()

	env.source.CredentialErr = domain.ErrCredentialInvalid
	_ = env.queue.Push(ctx, domain.TypeVideo, []string{"vid1"})

	err := w.RunCycle(ctx)
	if !errors.Is(err, domain.ErrCredentialInvalid) {
		t.Fatalf("expected ErrCredentialInvalid, got %v", err)
	}

	// Nothing was consumed.
	if d, _ := env.queue.Depth(ctx, domain.TypeVideo); d != 1 {
		t.Fatalf("expected queue untouched, depth %d", d)
	}
	if len(env.source.ExtractCalls) != 0 {
		t.Fatal("no extraction may happen after a credential reject")
	}
}

func TestWorker_Comments_NoClobber(t *testing.T) {
	opts := &extractor.CommentOptions{Max: "100,all,100,10", Sort: "top"}
	w, env := newWorkerEnv(opts)
	ctx := context.Background()

	seedVideo(env)
	_ = env.store.PutComments(ctx, &domain.CommentSet{
		VideoID:  "vid1",
		Comments: []domain.Comment{{CommentID: "c1", Text: "kept"}},
	})
	_ = env.store.SetCommentCount(ctx, "vid1", 1)

	// Fresh metadata has no comments this time.
	env.source.Videos["vid1"] = freshVideoMeta()
	_ = env.queue.Push(ctx, domain.TypeVideo, []string{"vid1"})

	if err := w.RunCycle(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cs, err := env.store.GetComments(ctx, "vid1")
	if err != nil {
		t.Fatalf("stored comments must survive: %v", err)
	}
	if len(cs.Comments) != 1 || cs.Comments[0].Text != "kept" {
		t.Fatalf("comments clobbered: %+v", cs.Comments)
	}

	got, _ := env.store.Get(ctx, "vid1")
	if got.CommentCount != 1 {
		t.Fatalf("comment count clobbered: %d", got.CommentCount)
	}
}

func TestWorker_Comments_FreshSetStored(t *testing.T) {
	opts := &extractor.CommentOptions{Max: "100,all,100,10", Sort: "top"}
	w, env := newWorkerEnv(opts)
	ctx := context.Background()

	seedVideo(env)
	meta := freshVideoMeta()
	meta.Comments = []extractor.Comment{
		{ID: "c1", Text: "first", Timestamp: 1760000000, Author: "a"},
		{ID: "c1.r1", Text: "reply", Timestamp: 1760000100, Parent: "c1"},
	}
	env.source.Videos["vid1"] = meta
	_ = env.queue.Push(ctx, domain.TypeVideo, []string{"vid1"})

	if err := w.RunCycle(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cs, err := env.store.GetComments(ctx, "vid1")
	if err != nil {
		t.Fatalf("expected stored comments: %v", err)
	}
	if len(cs.Comments) != 2 {
		t.Fatalf("expected 2 comments, got %d", len(cs.Comments))
	}
	if cs.Comments[1].Parent != "c1" {
		t.Fatal("reply threading lost")
	}

	got, _ := env.store.Get(ctx, "vid1")
	if got.CommentCount != 2 {
		t.Fatalf("expected comment count 2, got %d", got.CommentCount)
	}
}

func TestWorker_ChannelRefresh_StickyAndSync(t *testing.T) {
	w, env := newWorkerEnv(nil)
	ctx := context.Background()

	overwrites := json.RawMessage(`{"download_format":"bestvideo"}`)
	_ = env.store.UpsertChannel(ctx, &domain.Channel{
		ChannelID:   "ch1",
		Active:      true,
		LastRefresh: 100,
		Name:        "Channel One",
		Subscribed:  true,
		Overwrites:  overwrites,
	})
	_ = env.store.Upsert(ctx, &domain.Video{
		VideoID: "vid1", Active: true,
		Channel: domain.ChannelRef{ChannelID: "ch1", ChannelName: "Channel One"},
	})

	env.source.Channels["ch1"] = &extractor.ChannelMetadata{
		ID: "ch1", Name: "Channel One Rebranded", Description: "new about",
	}
	_ = env.queue.Push(ctx, domain.TypeChannel, []string{"ch1"})

	if err := w.RunCycle(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ch, _ := env.store.GetChannel(ctx, "ch1")
	if ch.Name != "Channel One Rebranded" {
		t.Fatalf("expected name updated, got %q", ch.Name)
	}
	if !ch.Subscribed {
		t.Fatal("subscribed flag clobbered")
	}
	if !bytes.Equal(ch.Overwrites, overwrites) {
		t.Fatalf("overwrites clobbered: %s", ch.Overwrites)
	}

	v, _ := env.store.Get(ctx, "vid1")
	if v.Channel.ChannelName != "Channel One Rebranded" {
		t.Fatalf("expected channel name synced to video, got %q", v.Channel.ChannelName)
	}
}

func TestWorker_ChannelGoneUpstream_VideosDeactivated(t *testing.T) {
	w, env := newWorkerEnv(nil)
	ctx := context.Background()

	_ = env.store.UpsertChannel(ctx, &domain.Channel{
		ChannelID: "ch1", Active: true, Name: "Channel One",
	})
	_ = env.store.Upsert(ctx, &domain.Video{
		VideoID: "vid1", Active: true,
		Channel: domain.ChannelRef{ChannelID: "ch1"},
	})

	_ = env.queue.Push(ctx, domain.TypeChannel, []string{"ch1"})
	if err := w.RunCycle(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ch, _ := env.store.GetChannel(ctx, "ch1")
	if ch.Active {
		t.Fatal("expected channel deactivated")
	}
	v, _ := env.store.Get(ctx, "vid1")
	if v.Active {
		t.Fatal("expected owned video deactivated")
	}
}

func TestWorker_PlaylistRefresh_EntriesValidated(t *testing.T) {
	w, env := newWorkerEnv(nil)
	ctx := context.Background()

	_ = env.store.UpsertPlaylist(ctx, &domain.Playlist{
		PlaylistID: "pl1", Active: true, Subscribed: true, Name: "Mix",
	})
	_ = env.store.Upsert(ctx, &domain.Video{VideoID: "have", Active: true})

	env.source.Playlists["pl1"] = &extractor.PlaylistMetadata{
		ID: "pl1", Name: "Mix v2", ChannelID: "ch1",
		Entries: []extractor.PlaylistEntry{
			{VideoID: "have", Title: "Have"},
			{VideoID: "missing", Title: "Missing"},
		},
	}
	_ = env.queue.Push(ctx, domain.TypePlaylist, []string{"pl1"})

	if err := w.RunCycle(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p, _ := env.store.GetPlaylist(ctx, "pl1")
	if p.Name != "Mix v2" {
		t.Fatalf("expected name updated, got %q", p.Name)
	}
	if !p.Subscribed {
		t.Fatal("subscribed flag clobbered")
	}
	if len(p.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(p.Entries))
	}
	if !p.Entries[0].Downloaded || p.Entries[1].Downloaded {
		t.Fatalf("entry validation wrong: %+v", p.Entries)
	}
}

func TestWorker_PlaylistGoneUpstream(t *testing.T) {
	w, env := newWorkerEnv(nil)
	ctx := context.Background()

	_ = env.store.UpsertPlaylist(ctx, &domain.Playlist{
		PlaylistID: "pl1", Active: true, Name: "Mix",
	})
	_ = env.queue.Push(ctx, domain.TypePlaylist, []string{"pl1"})

	if err := w.RunCycle(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p, _ := env.store.GetPlaylist(ctx, "pl1")
	if p.Active {
		t.Fatal("expected playlist deactivated")
	}
}

func TestWorker_CycleRecordsCompletion(t *testing.T) {
	w, env := newWorkerEnv(nil)
	ctx := context.Background()

	before := time.Now().Unix()
	if err := w.RunCycle(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var ts int64
	if err := env.bus.Get(ctx, "last_refresh", &ts); err != nil {
		t.Fatalf("expected completion timestamp recorded: %v", err)
	}
	if ts < before {
		t.Fatalf("stale completion timestamp: %d", ts)
	}
}
