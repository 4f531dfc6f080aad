package queue

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vidvault/ingestd/internal/domain"
)

type pgRefreshQueue struct {
	pool *pgxpool.Pool
}

// NewPgRefreshQueue returns a RefreshQueue backed by the refresh_queue table.
func NewPgRefreshQueue(pool *pgxpool.Pool) RefreshQueue {
	return &pgRefreshQueue{pool: pool}
}

func (q *pgRefreshQueue) Push(ctx context.Context, t domain.EntityType, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, id := range ids {
		// The unique constraint on (entity_type, entity_id) makes the push
		// idempotent: an id already in flight keeps its queue position.
		batch.Queue(`
			INSERT INTO refresh_queue (entity_type, entity_id)
			VALUES ($1, $2)
			ON CONFLICT (entity_type, entity_id) DO NOTHING`, t, id)
	}

	results := q.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range ids {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("push refresh queue: %w", err)
		}
	}
	return nil
}

// Pop claims the oldest entry with FOR UPDATE SKIP LOCKED so concurrent
// consumers never receive the same id, then deletes it in the same statement.
func (q *pgRefreshQueue) Pop(ctx context.Context, t domain.EntityType) (string, bool, error) {
	var id string
	err := q.pool.QueryRow(ctx, `
		DELETE FROM refresh_queue
		WHERE position = (
			SELECT position FROM refresh_queue
			WHERE entity_type = $1
			ORDER BY position ASC
			FOR UPDATE SKIP LOCKED
			LIMIT 1
		)
		RETURNING entity_id`, t).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("pop refresh queue: %w", err)
	}
	return id, true, nil
}

func (q *pgRefreshQueue) All(ctx context.Context, t domain.EntityType) ([]string, error) {
	rows, err := q.pool.Query(ctx, `
		SELECT entity_id FROM refresh_queue
		WHERE entity_type = $1
		ORDER BY position ASC`, t)
	if err != nil {
		return nil, fmt.Errorf("list refresh queue: %w", err)
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

func (q *pgRefreshQueue) Depth(ctx context.Context, t domain.EntityType) (int, error) {
	var n int
	err := q.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM refresh_queue WHERE entity_type = $1`, t).Scan(&n)
	return n, err
}

func (q *pgRefreshQueue) Contains(ctx context.Context, t domain.EntityType, id string) (bool, error) {
	var found bool
	err := q.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM refresh_queue
			WHERE entity_type = $1 AND entity_id = $2
		)`, t, id).Scan(&found)
	return found, err
}
