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

type pgPlaylistRepository struct {
	pool *pgxpool.Pool
}

// NewPgPlaylistRepository returns a PlaylistRepository backed by PostgreSQL.
func NewPgPlaylistRepository(pool *pgxpool.Pool) PlaylistRepository {
	return &pgPlaylistRepository{pool: pool}
}

func (r *pgPlaylistRepository) Get(ctx context.Context, playlistID string) (*domain.Playlist, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT playlist_id, active, last_refresh, name, description,
		       channel_id, subscribed, entries
		FROM playlists WHERE playlist_id = $1`, playlistID)

	var p domain.Playlist
	var entries []byte
	err := row.Scan(
		&p.PlaylistID, &p.Active, &p.LastRefresh, &p.Name, &p.Description,
		&p.ChannelID, &p.Subscribed, &entries,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get playlist: %w", err)
	}
	if len(entries) > 0 {
		if err := json.Unmarshal(entries, &p.Entries); err != nil {
			return nil, fmt.Errorf("unmarshal playlist entries: %w", err)
		}
	}
	return &p, nil
}

func (r *pgPlaylistRepository) Upsert(ctx context.Context, p *domain.Playlist) error {
	entries, err := json.Marshal(p.Entries)
	if err != nil {
		return fmt.Errorf("marshal playlist entries: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO playlists
			(playlist_id, active, last_refresh, name, description,
			 channel_id, subscribed, entries)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (playlist_id) DO UPDATE SET
			active = EXCLUDED.active,
			last_refresh = EXCLUDED.last_refresh,
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			channel_id = EXCLUDED.channel_id,
			subscribed = EXCLUDED.subscribed,
			entries = EXCLUDED.entries`,
		p.PlaylistID, p.Active, p.LastRefresh, p.Name, p.Description,
		p.ChannelID, p.Subscribed, entries,
	)
	if err != nil {
		return fmt.Errorf("upsert playlist: %w", err)
	}
	return nil
}

func (r *pgPlaylistRepository) CountActive(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM playlists WHERE active`).Scan(&n)
	return n, err
}

func (r *pgPlaylistRepository) OutdatedIDs(ctx context.Context, olderThan int64, limit int) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT playlist_id FROM playlists
		WHERE active AND last_refresh <= $1
		ORDER BY last_refresh ASC
		LIMIT $2`, olderThan, limit)
	if err != nil {
		return nil, fmt.Errorf("outdated playlists: %w", err)
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

func (r *pgPlaylistRepository) SetActive(ctx context.Context, playlistID string, active bool) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE playlists SET active = $1 WHERE playlist_id = $2`, active, playlistID)
	return err
}

func (r *pgPlaylistRepository) CreatePassive(ctx context.Context, p *domain.Playlist) error {
	entries, err := json.Marshal(p.Entries)
	if err != nil {
		return fmt.Errorf("marshal playlist entries: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO playlists
			(playlist_id, active, last_refresh, name, description,
			 channel_id, subscribed, entries)
		VALUES ($1,$2,$3,$4,$5,$6,FALSE,$7)
		ON CONFLICT (playlist_id) DO NOTHING`,
		p.PlaylistID, p.Active, p.LastRefresh, p.Name, p.Description,
		p.ChannelID, entries,
	)
	if err != nil {
		return fmt.Errorf("create passive playlist: %w", err)
	}
	return nil
}
