// Package mediastore owns the on-disk layout of the archive: canonical media
// paths (base / channel folder / file), the thumbnail cache, subtitle files,
// and the staging area used while a mislaid file is re-filed.
package mediastore

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

const mediaExt = ".mp4"

// FS is the filesystem implementation used in production. Tests point it at
// temp directories.
type FS struct {
	videosDir  string
	cacheDir   string
	httpClient *http.Client
}

func NewFS(videosDir, cacheDir string) *FS {
	return &FS{
		videosDir: videosDir,
		cacheDir:  cacheDir,
		httpClient: &http.Client{
			Timeout: 20 * time.Second,
		},
	}
}

// ChannelFolder derives the on-disk folder for a channel. The name is part
// of the folder, so an upstream rename moves the expected location — that is
// the drift the reconciler repairs.
func (f *FS) ChannelFolder(channelID, channelName string) string {
	slug := slugify(channelName)
	if slug == "" {
		return channelID
	}
	return channelID + "_" + slug
}

// MediaURL is the archive-relative location of a video file.
func (f *FS) MediaURL(videoID, channelID, channelName string) string {
	return path.Join(f.ChannelFolder(channelID, channelName), videoID+mediaExt)
}

// MediaPath resolves an archive-relative media URL to an absolute path.
func (f *FS) MediaPath(mediaURL string) string {
	return filepath.Join(f.videosDir, filepath.FromSlash(mediaURL))
}

// Exists reports whether the media file behind mediaURL is on disk.
func (f *FS) Exists(mediaURL string) bool {
	_, err := os.Stat(f.MediaPath(mediaURL))
	return err == nil
}

// StageMedia moves the file behind mediaURL into the staging area and
// returns the staged path. Rename first, byte copy as the cross-device
// fallback.
func (f *FS) StageMedia(mediaURL, videoID string) (string, error) {
	src := f.MediaPath(mediaURL)
	staged := filepath.Join(f.cacheDir, "download", videoID+mediaExt)

	if err := os.MkdirAll(filepath.Dir(staged), 0o755); err != nil {
		return "", fmt.Errorf("create staging dir: %w", err)
	}
	if err := moveFile(src, staged); err != nil {
		return "", fmt.Errorf("stage media file: %w", err)
	}
	return staged, nil
}

// PlaceFromStaging re-files a staged video under its corrected media URL.
// This is the archival placement step the downloader normally performs.
func (f *FS) PlaceFromStaging(_ context.Context, videoID, mediaURL string) error {
	staged := filepath.Join(f.cacheDir, "download", videoID+mediaExt)
	dst := f.MediaPath(mediaURL)

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create channel dir: %w", err)
	}
	if err := moveFile(staged, dst); err != nil {
		return fmt.Errorf("place media file: %w", err)
	}
	return nil
}

// ---- thumbnail cache ----

func (f *FS) thumbPath(videoID string) string {
	return filepath.Join(f.cacheDir, "thumbs", videoID+".jpg")
}

// CacheThumb downloads the thumbnail behind url into the cache.
func (f *FS) CacheThumb(ctx context.Context, videoID, url string) error {
	if url == "" {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create thumb request: %w", err)
	}
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetch thumb: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected thumb status: %d", resp.StatusCode)
	}

	dst := f.thumbPath(videoID)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create thumb dir: %w", err)
	}
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create thumb file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return fmt.Errorf("write thumb file: %w", err)
	}
	return nil
}

// DeleteThumb removes a cached thumbnail. A missing file is not an error.
func (f *FS) DeleteThumb(videoID string) error {
	err := os.Remove(f.thumbPath(videoID))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete thumb: %w", err)
	}
	return nil
}

// ---- subtitles ----

// DeleteSubtitles removes the subtitle files stored next to the media file,
// one per language: <media base>.<lang>.vtt.
func (f *FS) DeleteSubtitles(mediaURL string, langs []string) error {
	base := strings.TrimSuffix(f.MediaPath(mediaURL), mediaExt)
	for _, lang := range langs {
		err := os.Remove(base + "." + lang + ".vtt")
		if err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("delete subtitle %s: %w", lang, err)
		}
	}
	return nil
}

// ---- helpers ----

// moveFile renames src to dst, falling back to copy+remove across devices.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Remove(src)
}

// slugify reduces a channel name to a filesystem-safe token.
func slugify(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_':
			b.WriteByte('_')
		}
	}
	return strings.Trim(b.String(), "_")
}
