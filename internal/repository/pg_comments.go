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

type pgCommentRepository struct {
	pool *pgxpool.Pool
}

// NewPgCommentRepository returns a CommentRepository backed by PostgreSQL.
func NewPgCommentRepository(pool *pgxpool.Pool) CommentRepository {
	return &pgCommentRepository{pool: pool}
}

func (r *pgCommentRepository) Get(ctx context.Context, videoID string) (*domain.CommentSet, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT video_id, channel_id, last_refresh, comments
		FROM comment_sets WHERE video_id = $1`, videoID)

	var cs domain.CommentSet
	var comments []byte
	err := row.Scan(&cs.VideoID, &cs.ChannelID, &cs.LastRefresh, &comments)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get comment set: %w", err)
	}
	if len(comments) > 0 {
		if err := json.Unmarshal(comments, &cs.Comments); err != nil {
			return nil, fmt.Errorf("unmarshal comments: %w", err)
		}
	}
	return &cs, nil
}

func (r *pgCommentRepository) Put(ctx context.Context, cs *domain.CommentSet) error {
	comments, err := json.Marshal(cs.Comments)
	if err != nil {
		return fmt.Errorf("marshal comments: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO comment_sets (video_id, channel_id, last_refresh, comments)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (video_id) DO UPDATE SET
			channel_id = EXCLUDED.channel_id,
			last_refresh = EXCLUDED.last_refresh,
			comments = EXCLUDED.comments`,
		cs.VideoID, cs.ChannelID, cs.LastRefresh, comments,
	)
	if err != nil {
		return fmt.Errorf("put comment set: %w", err)
	}
	return nil
}

func (r *pgCommentRepository) Delete(ctx context.Context, videoID string) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM comment_sets WHERE video_id = $1`, videoID)
	return err
}
