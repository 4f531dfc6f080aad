package mediafix_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/vidvault/ingestd/internal/domain"
	"github.com/vidvault/ingestd/internal/extractor"
	"github.com/vidvault/ingestd/internal/mediafix"
	"github.com/vidvault/ingestd/internal/mediastore"
	"github.com/vidvault/ingestd/internal/repository"
)

func newReconciler(t *testing.T) (*mediafix.Reconciler, *repository.MockStore, *extractor.Mock, *mediastore.FS, string) {
	t.Helper()
	videosDir := t.TempDir()
	cacheDir := t.TempDir()
	fs := mediastore.NewFS(videosDir, cacheDir)
	store := repository.NewMockStore()
	source := extractor.NewMock()
	r := mediafix.NewReconciler(store, source, fs, zap.NewNop())
	return r, store, source, fs, videosDir
}

func writeMedia(t *testing.T, videosDir, mediaURL string) {
	t.Helper()
	path := filepath.Join(videosDir, filepath.FromSlash(mediaURL))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("media bytes"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestReconciler_MovesDriftedFile(t *testing.T) {
	r, store, source, fs, videosDir := newReconciler(t)
	ctx := context.Background()

	staleURL := "ch1_old_name/vid1.mp4"
	_ = store.Upsert(ctx, &domain.Video{VideoID: "vid1", MediaURL: staleURL})
	writeMedia(t, videosDir, staleURL)

	source.Videos["vid1"] = &extractor.Metadata{
		ID: "vid1", ChannelID: "ch1", ChannelName: "New Name",
	}

	if err := r.Repair(ctx, "vid1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	freshURL := "ch1_new_name/vid1.mp4"
	if !fs.Exists(freshURL) {
		t.Fatal("expected file at the corrected location")
	}
	if fs.Exists(staleURL) {
		t.Fatal("expected stale file gone")
	}

	v, _ := store.Get(ctx, "vid1")
	if v.MediaURL != freshURL {
		t.Fatalf("expected media URL persisted, got %q", v.MediaURL)
	}
}

func TestReconciler_StaleFileMissing(t *testing.T) {
	r, store, source, _, _ := newReconciler(t)
	ctx := context.Background()

	_ = store.Upsert(ctx, &domain.Video{VideoID: "vid1", MediaURL: "ch1_old_name/vid1.mp4"})
	source.Videos["vid1"] = &extractor.Metadata{
		ID: "vid1", ChannelID: "ch1", ChannelName: "New Name",
	}

	err := r.Repair(ctx, "vid1")
	if !errors.Is(err, domain.ErrPathUnrecoverable) {
		t.Fatalf("expected ErrPathUnrecoverable, got %v", err)
	}
}

func TestReconciler_PathAlreadyCorrect(t *testing.T) {
	r, store, source, _, videosDir := newReconciler(t)
	ctx := context.Background()

	url := "ch1_same_name/vid1.mp4"
	_ = store.Upsert(ctx, &domain.Video{VideoID: "vid1", MediaURL: url})
	writeMedia(t, videosDir, url)

	source.Videos["vid1"] = &extractor.Metadata{
		ID: "vid1", ChannelID: "ch1", ChannelName: "Same Name",
	}

	err := r.Repair(ctx, "vid1")
	if !errors.Is(err, domain.ErrPathAlreadyCorrect) {
		t.Fatalf("expected ErrPathAlreadyCorrect, got %v", err)
	}
}

func TestReconciler_VideoGoneUpstream(t *testing.T) {
	r, store, _, _, videosDir := newReconciler(t)
	ctx := context.Background()

	url := "ch1_old_name/vid1.mp4"
	_ = store.Upsert(ctx, &domain.Video{VideoID: "vid1", MediaURL: url})
	writeMedia(t, videosDir, url)

	err := r.Repair(ctx, "vid1")
	if !errors.Is(err, domain.ErrPathUnrecoverable) {
		t.Fatalf("expected ErrPathUnrecoverable, got %v", err)
	}
}
