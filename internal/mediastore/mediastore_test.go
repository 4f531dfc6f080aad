package mediastore_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/vidvault/ingestd/internal/mediastore"
)

func TestChannelFolder(t *testing.T) {
	fs := mediastore.NewFS(t.TempDir(), t.TempDir())

	tests := []struct {
		name        string
		channelName string
		want        string
	}{
		{"simple", "My Channel", "UC123_my_channel"},
		{"punctuation stripped", "Vids! (Official)", "UC123_vids_official"},
		{"empty name", "", "UC123"},
		{"only punctuation", "???", "UC123"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := fs.ChannelFolder("UC123", tc.channelName)
			if got != tc.want {
				t.Fatalf("ChannelFolder(%q) = %q, want %q", tc.channelName, got, tc.want)
			}
		})
	}
}

func TestStageAndPlace(t *testing.T) {
	videosDir := t.TempDir()
	fs := mediastore.NewFS(videosDir, t.TempDir())

	oldURL := "UC1_old/vid1.mp4"
	oldPath := filepath.Join(videosDir, "UC1_old", "vid1.mp4")
	if err := os.MkdirAll(filepath.Dir(oldPath), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(oldPath, []byte("payload"), 0o644); err != nil {
		t.Fatal(err)
	}

	staged, err := fs.StageMedia(oldURL, "vid1")
	if err != nil {
		t.Fatalf("stage: %v", err)
	}
	if _, err := os.Stat(staged); err != nil {
		t.Fatalf("staged file missing: %v", err)
	}
	if fs.Exists(oldURL) {
		t.Fatal("expected original gone after staging")
	}

	newURL := "UC1_new/vid1.mp4"
	if err := fs.PlaceFromStaging(context.Background(), "vid1", newURL); err != nil {
		t.Fatalf("place: %v", err)
	}
	if !fs.Exists(newURL) {
		t.Fatal("expected file at new location")
	}

	data, err := os.ReadFile(fs.MediaPath(newURL))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "payload" {
		t.Fatal("payload changed during the move")
	}
}

func TestDeleteSubtitles(t *testing.T) {
	videosDir := t.TempDir()
	fs := mediastore.NewFS(videosDir, t.TempDir())

	dir := filepath.Join(videosDir, "UC1_ch")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"vid1.mp4", "vid1.en.vtt", "vid1.de.vtt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	if err := fs.DeleteSubtitles("UC1_ch/vid1.mp4", []string{"en", "de", "fr"}); err != nil {
		t.Fatalf("delete with a missing language must not fail: %v", err)
	}

	for _, name := range []string{"vid1.en.vtt", "vid1.de.vtt"} {
		if _, err := os.Stat(filepath.Join(dir, name)); !os.IsNotExist(err) {
			t.Fatalf("expected %s removed", name)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "vid1.mp4")); err != nil {
		t.Fatal("media file must survive subtitle cleanup")
	}
}

func TestDeleteThumbMissingIsNoop(t *testing.T) {
	fs := mediastore.NewFS(t.TempDir(), t.TempDir())
	if err := fs.DeleteThumb("never-cached"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
