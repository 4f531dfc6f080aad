package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vidvault/ingestd/internal/domain"
)

type pgVideoRepository struct {
	pool *pgxpool.Pool
}

// NewPgVideoRepository returns a VideoRepository backed by PostgreSQL.
func NewPgVideoRepository(pool *pgxpool.Pool) VideoRepository {
	return &pgVideoRepository{pool: pool}
}

const videoColumns = `video_id, active, last_refresh, title, description,
	thumb_url, duration, published, media_url, channel_id, channel_name,
	playlists, player, subtitles, date_downloaded, comment_count`

func (r *pgVideoRepository) Get(ctx context.Context, videoID string) (*domain.Video, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+videoColumns+` FROM videos WHERE video_id = $1`, videoID)

	v, err := scanVideo(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return v, err
}

func (r *pgVideoRepository) Upsert(ctx context.Context, v *domain.Video) error {
	playlists, err := json.Marshal(v.Playlists)
	if err != nil {
		return fmt.Errorf("marshal playlists: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO videos (`+videoColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
		ON CONFLICT (video_id) DO UPDATE SET
			active = EXCLUDED.active,
			last_refresh = EXCLUDED.last_refresh,
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			thumb_url = EXCLUDED.thumb_url,
			duration = EXCLUDED.duration,
			published = EXCLUDED.published,
			media_url = EXCLUDED.media_url,
			channel_id = EXCLUDED.channel_id,
			channel_name = EXCLUDED.channel_name,
			playlists = EXCLUDED.playlists,
			player = EXCLUDED.player,
			subtitles = EXCLUDED.subtitles,
			date_downloaded = EXCLUDED.date_downloaded,
			comment_count = EXCLUDED.comment_count`,
		v.VideoID, v.Active, v.LastRefresh, v.Title, v.Description,
		v.ThumbURL, v.Duration, v.Published, v.MediaURL,
		v.Channel.ChannelID, v.Channel.ChannelName,
		playlists, v.Player, v.Subtitles, v.DateDownloaded, v.CommentCount,
	)
	if err != nil {
		return fmt.Errorf("upsert video: %w", err)
	}
	return nil
}

func (r *pgVideoRepository) AllIDs(ctx context.Context) ([]string, error) {
	return r.queryIDs(ctx, `SELECT video_id FROM videos ORDER BY published DESC`)
}

func (r *pgVideoRepository) CountActive(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM videos WHERE active`).Scan(&n)
	return n, err
}

func (r *pgVideoRepository) OutdatedIDs(ctx context.Context, olderThan int64, limit int) ([]string, error) {
	return r.queryIDs(ctx, `
		SELECT video_id FROM videos
		WHERE active AND last_refresh <= $1
		ORDER BY last_refresh ASC
		LIMIT $2`, olderThan, limit)
}

func (r *pgVideoRepository) IDsByChannel(ctx context.Context, channelID string) ([]string, error) {
	return r.queryIDs(ctx,
		`SELECT video_id FROM videos WHERE channel_id = $1`, channelID)
}

func (r *pgVideoRepository) IDsByPlaylist(ctx context.Context, playlistID string) ([]string, error) {
	return r.queryIDs(ctx,
		`SELECT video_id FROM videos WHERE playlists ? $1`, playlistID)
}

func (r *pgVideoRepository) SetActive(ctx context.Context, videoID string, active bool) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE videos SET active = $1 WHERE video_id = $2`, active, videoID)
	return err
}

func (r *pgVideoRepository) SetMediaURL(ctx context.Context, videoID, mediaURL string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE videos SET media_url = $1 WHERE video_id = $2`, mediaURL, videoID)
	return err
}

func (r *pgVideoRepository) SetCommentCount(ctx context.Context, videoID string, count int) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE videos SET comment_count = $1 WHERE video_id = $2`, count, videoID)
	return err
}

func (r *pgVideoRepository) SyncChannel(ctx context.Context, ch *domain.Channel) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE videos
		SET channel_name = $1, active = CASE WHEN $2 THEN active ELSE FALSE END
		WHERE channel_id = $3`,
		ch.Name, ch.Active, ch.ChannelID)
	if err != nil {
		return fmt.Errorf("sync channel to videos: %w", err)
	}
	return nil
}

func (r *pgVideoRepository) queryIDs(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query video ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func scanVideo(row pgx.Row) (*domain.Video, error) {
	var v domain.Video
	var playlists []byte
	err := row.Scan(
		&v.VideoID, &v.Active, &v.LastRefresh, &v.Title, &v.Description,
		&v.ThumbURL, &v.Duration, &v.Published, &v.MediaURL,
		&v.Channel.ChannelID, &v.Channel.ChannelName,
		&playlists, &v.Player, &v.Subtitles, &v.DateDownloaded, &v.CommentCount,
	)
	if err != nil {
		return nil, err
	}
	if len(playlists) > 0 {
		if err := json.Unmarshal(playlists, &v.Playlists); err != nil {
			return nil, fmt.Errorf("unmarshal playlists: %w", err)
		}
	}
	return &v, nil
}
