package extractor

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/vidvault/ingestd/internal/domain"
)

// HTTPExtractor talks to the yt-dlp sidecar over JSON. The base URL is
// injected from config so tests can point to a local mock server.
type HTTPExtractor struct {
	baseURL    string
	cookieFile string
	httpClient *http.Client
}

func NewHTTPExtractor(baseURL, cookieFile string, timeout time.Duration) *HTTPExtractor {
	return &HTTPExtractor{
		baseURL:    baseURL,
		cookieFile: cookieFile,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (e *HTTPExtractor) Extract(ctx context.Context, id string, opts Options) (*Metadata, error) {
	q := url.Values{}
	if opts.MetadataOnly {
		q.Set("meta_only", "1")
	}
	if opts.ProbeThumbnail {
		q.Set("probe_thumbnail", "1")
	}
	if opts.Timeout > 0 {
		q.Set("timeout", strconv.Itoa(int(opts.Timeout.Seconds())))
	}
	if opts.Comments != nil {
		q.Set("max_comments", opts.Comments.Max)
		q.Set("comment_sort", opts.Comments.Sort)
	}

	var meta Metadata
	ok, err := e.getJSON(ctx, "/api/video/"+url.PathEscape(id), q, &meta)
	if err != nil || !ok {
		return nil, err
	}
	return &meta, nil
}

func (e *HTTPExtractor) Channel(ctx context.Context, channelID string) (*ChannelMetadata, error) {
	var meta ChannelMetadata
	ok, err := e.getJSON(ctx, "/api/channel/"+url.PathEscape(channelID), nil, &meta)
	if err != nil || !ok {
		return nil, err
	}
	return &meta, nil
}

func (e *HTTPExtractor) ChannelVideos(ctx context.Context, channelID string) ([]string, error) {
	var resp struct {
		VideoIDs []string `json:"video_ids"`
	}
	ok, err := e.getJSON(ctx, "/api/channel/"+url.PathEscape(channelID)+"/videos", nil, &resp)
	if err != nil || !ok {
		return nil, err
	}
	return resp.VideoIDs, nil
}

func (e *HTTPExtractor) Playlist(ctx context.Context, playlistID string) (*PlaylistMetadata, error) {
	var meta PlaylistMetadata
	ok, err := e.getJSON(ctx, "/api/playlist/"+url.PathEscape(playlistID), nil, &meta)
	if err != nil || !ok {
		return nil, err
	}
	return &meta, nil
}

// ValidateCredential asks the sidecar to exercise the configured cookie
// against the source. 401/403 is a definitive reject.
func (e *HTTPExtractor) ValidateCredential(ctx context.Context) error {
	if e.cookieFile == "" {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		e.baseURL+"/api/credential/validate", nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("validate credential: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusUnauthorized, http.StatusForbidden:
		return domain.ErrCredentialInvalid
	default:
		return fmt.Errorf("unexpected validate status: %d", resp.StatusCode)
	}
}

// getJSON performs a GET and decodes the body. Returns ok=false on 404,
// mapping upstream absence to "no data".
func (e *HTTPExtractor) getJSON(ctx context.Context, path string, q url.Values, out any) (bool, error) {
	u := e.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return false, fmt.Errorf("create request: %w", err)
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("extractor request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("unexpected extractor status: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return false, fmt.Errorf("decode extractor response: %w", err)
	}
	return true, nil
}

var (
	_ Extractor           = (*HTTPExtractor)(nil)
	_ CredentialValidator = (*HTTPExtractor)(nil)
)
