package intake

import (
	"context"

	"go.uber.org/zap"

	"github.com/vidvault/ingestd/internal/domain"
	"github.com/vidvault/ingestd/internal/repository"
)

// Mutator performs targeted changes on queued work items. All operations are
// synchronously visible: a read issued right after a call observes the
// change.
type Mutator struct {
	workItems repository.WorkItemRepository
	logger    *zap.Logger
}

func NewMutator(workItems repository.WorkItemRepository, logger *zap.Logger) *Mutator {
	return &Mutator{workItems: workItems, logger: logger}
}

// DeleteItem removes a single queue entry.
func (m *Mutator) DeleteItem(ctx context.Context, videoID string) error {
	if err := m.workItems.Delete(ctx, videoID); err != nil {
		return err
	}
	m.logger.Info("deleted from pending queue", zap.String("video_id", videoID))
	return nil
}

// DeleteByStatus removes every queue entry matching the status.
func (m *Mutator) DeleteByStatus(ctx context.Context, status domain.WorkItemStatus) error {
	if !status.IsValid() {
		return domain.ErrInvalidStatus
	}
	return m.workItems.DeleteByStatus(ctx, status)
}

// UpdateStatus changes only the status field of one entry.
func (m *Mutator) UpdateStatus(ctx context.Context, videoID string, status domain.WorkItemStatus) error {
	if !status.IsValid() {
		return domain.ErrInvalidStatus
	}
	return m.workItems.UpdateStatus(ctx, videoID, status)
}
