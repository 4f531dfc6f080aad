package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vidvault/ingestd/internal/domain"
)

type pgWorkItemRepository struct {
	pool *pgxpool.Pool
}

// NewPgWorkItemRepository returns a WorkItemRepository backed by PostgreSQL.
func NewPgWorkItemRepository(pool *pgxpool.Pool) WorkItemRepository {
	return &pgWorkItemRepository{pool: pool}
}

func (r *pgWorkItemRepository) CreateBatch(ctx context.Context, items []*domain.WorkItem) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}

	// One batched request; ON CONFLICT DO NOTHING keeps create semantics
	// per item without failing the rest of the batch.
	batch := &pgx.Batch{}
	for _, it := range items {
		batch.Queue(`
			INSERT INTO work_items
				(video_id, status, channel_id, channel_name, title,
				 thumb_url, duration, published, timestamp, channel_indexed)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
			ON CONFLICT (video_id) DO NOTHING`,
			it.VideoID, it.Status, it.ChannelID, it.ChannelName, it.Title,
			it.ThumbURL, it.Duration, it.Published, it.Timestamp, it.ChannelIndexed,
		)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	created := 0
	for range items {
		tag, err := results.Exec()
		if err != nil {
			return created, fmt.Errorf("batch insert work item: %w", err)
		}
		created += int(tag.RowsAffected())
	}
	return created, nil
}

func (r *pgWorkItemRepository) All(ctx context.Context) ([]*domain.WorkItem, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT video_id, status, channel_id, channel_name, title,
		       thumb_url, duration, published, timestamp, channel_indexed
		FROM work_items
		ORDER BY timestamp ASC`)
	if err != nil {
		return nil, fmt.Errorf("list work items: %w", err)
	}
	defer rows.Close()

	var items []*domain.WorkItem
	for rows.Next() {
		var it domain.WorkItem
		if err := rows.Scan(
			&it.VideoID, &it.Status, &it.ChannelID, &it.ChannelName, &it.Title,
			&it.ThumbURL, &it.Duration, &it.Published, &it.Timestamp, &it.ChannelIndexed,
		); err != nil {
			return nil, err
		}
		items = append(items, &it)
	}
	return items, rows.Err()
}

func (r *pgWorkItemRepository) Delete(ctx context.Context, videoID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM work_items WHERE video_id = $1`, videoID)
	if err != nil {
		return fmt.Errorf("delete work item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *pgWorkItemRepository) DeleteByStatus(ctx context.Context, status domain.WorkItemStatus) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM work_items WHERE status = $1`, status)
	return err
}

func (r *pgWorkItemRepository) UpdateStatus(ctx context.Context, videoID string, status domain.WorkItemStatus) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE work_items SET status = $1 WHERE video_id = $2`, status, videoID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
