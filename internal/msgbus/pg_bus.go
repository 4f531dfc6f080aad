package msgbus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vidvault/ingestd/internal/domain"
)

// notifyChannel is the pg_notify channel progress events go out on.
const notifyChannel = "ingestd_progress"

// PgBus implements Publisher and Cache on the connection pool: events go out
// via NOTIFY, retained values live in the kv_cache table with an expiry.
type PgBus struct {
	pool *pgxpool.Pool
}

func NewPgBus(pool *pgxpool.Pool) *PgBus {
	return &PgBus{pool: pool}
}

func (b *PgBus) Publish(ctx context.Context, key string, ev ProgressEvent, ttl time.Duration) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal progress event: %w", err)
	}

	if _, err := b.pool.Exec(ctx,
		`SELECT pg_notify($1, $2)`, notifyChannel, string(payload)); err != nil {
		return fmt.Errorf("notify progress: %w", err)
	}

	if ttl > 0 {
		return b.Set(ctx, key, ev, ttl)
	}
	return nil
}

func (b *PgBus) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal cache value: %w", err)
	}

	var expires *time.Time
	if ttl > 0 {
		t := time.Now().UTC().Add(ttl)
		expires = &t
	}

	_, err = b.pool.Exec(ctx, `
		INSERT INTO kv_cache (key, value, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET
			value = EXCLUDED.value,
			expires_at = EXCLUDED.expires_at`,
		key, payload, expires)
	if err != nil {
		return fmt.Errorf("set cache key: %w", err)
	}
	return nil
}

func (b *PgBus) Get(ctx context.Context, key string, out any) error {
	var payload []byte
	err := b.pool.QueryRow(ctx, `
		SELECT value FROM kv_cache
		WHERE key = $1 AND (expires_at IS NULL OR expires_at > NOW())`,
		key).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("get cache key: %w", err)
	}
	return json.Unmarshal(payload, out)
}

var (
	_ Publisher = (*PgBus)(nil)
	_ Cache     = (*PgBus)(nil)
)
