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

type pgChannelRepository struct {
	pool *pgxpool.Pool
}

// NewPgChannelRepository returns a ChannelRepository backed by PostgreSQL.
func NewPgChannelRepository(pool *pgxpool.Pool) ChannelRepository {
	return &pgChannelRepository{pool: pool}
}

func (r *pgChannelRepository) Get(ctx context.Context, channelID string) (*domain.Channel, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT channel_id, active, last_refresh, name, description,
		       thumb_url, subscribed, overwrites
		FROM channels WHERE channel_id = $1`, channelID)

	var ch domain.Channel
	err := row.Scan(
		&ch.ChannelID, &ch.Active, &ch.LastRefresh, &ch.Name, &ch.Description,
		&ch.ThumbURL, &ch.Subscribed, &ch.Overwrites,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get channel: %w", err)
	}
	return &ch, nil
}

func (r *pgChannelRepository) Upsert(ctx context.Context, ch *domain.Channel) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO channels
			(channel_id, active, last_refresh, name, description,
			 thumb_url, subscribed, overwrites)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (channel_id) DO UPDATE SET
			active = EXCLUDED.active,
			last_refresh = EXCLUDED.last_refresh,
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			thumb_url = EXCLUDED.thumb_url,
			subscribed = EXCLUDED.subscribed,
			overwrites = EXCLUDED.overwrites`,
		ch.ChannelID, ch.Active, ch.LastRefresh, ch.Name, ch.Description,
		ch.ThumbURL, ch.Subscribed, ch.Overwrites,
	)
	if err != nil {
		return fmt.Errorf("upsert channel: %w", err)
	}
	return nil
}

func (r *pgChannelRepository) AllIDs(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT channel_id FROM channels ORDER BY channel_id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list channel ids: %w", err)
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

func (r *pgChannelRepository) CountActive(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM channels WHERE active`).Scan(&n)
	return n, err
}

func (r *pgChannelRepository) OutdatedIDs(ctx context.Context, olderThan int64, limit int) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT channel_id FROM channels
		WHERE active AND last_refresh <= $1
		ORDER BY last_refresh ASC
		LIMIT $2`, olderThan, limit)
	if err != nil {
		return nil, fmt.Errorf("outdated channels: %w", err)
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

func (r *pgChannelRepository) SetActive(ctx context.Context, channelID string, active bool) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE channels SET active = $1 WHERE channel_id = $2`, active, channelID)
	return err
}

func (r *pgChannelRepository) Overwrites(ctx context.Context) (map[string]json.RawMessage, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT channel_id, overwrites FROM channels WHERE overwrites IS NOT NULL`)
	if err != nil {
		return nil, fmt.Errorf("channel overwrites: %w", err)
	}
	defer rows.Close()

	overwrites := make(map[string]json.RawMessage)
	for rows.Next() {
		var id string
		var raw json.RawMessage
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, err
		}
		overwrites[id] = raw
	}
	return overwrites, rows.Err()
}
