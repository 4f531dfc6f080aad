package refresh

import (
	"context"
	"fmt"

	"github.com/vidvault/ingestd/internal/domain"
	"github.com/vidvault/ingestd/internal/queue"
)

// Report is the queue state returned by the progress tracker. State is
// "running" while entries are waiting and "empty" otherwise; for an id query
// it is "queued" or "absent".
type Report struct {
	Type  string `json:"type"`
	Total int    `json:"total_queued"`
	State string `json:"state"`
	ID    string `json:"id,omitempty"`
}

// Progress answers queue state questions from the live queues. Nothing is
// cached: an id popped a moment ago is already reported absent.
type Progress struct {
	queue queue.RefreshQueue
}

func NewProgress(q queue.RefreshQueue) *Progress {
	return &Progress{queue: q}
}

// Overall aggregates the waiting totals of all three queues.
func (p *Progress) Overall(ctx context.Context) (*Report, error) {
	total := 0
	for _, t := range domain.AllEntityTypes {
		depth, err := p.queue.Depth(ctx, t)
		if err != nil {
			return nil, fmt.Errorf("queue depth %s: %w", t, err)
		}
		total += depth
	}
	return &Report{Type: "all", Total: total, State: stateFor(total > 0)}, nil
}

// ByType reports one queue's waiting total.
func (p *Progress) ByType(ctx context.Context, t domain.EntityType) (*Report, error) {
	if !t.IsValid() {
		return nil, domain.ErrInvalidEntityType
	}
	depth, err := p.queue.Depth(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("queue depth %s: %w", t, err)
	}
	return &Report{Type: string(t), Total: depth, State: stateFor(depth > 0)}, nil
}

// ByID reports whether one identifier is still waiting in its type's queue.
func (p *Progress) ByID(ctx context.Context, t domain.EntityType, id string) (*Report, error) {
	if !t.IsValid() {
		return nil, domain.ErrInvalidEntityType
	}
	queued, err := p.queue.Contains(ctx, t, id)
	if err != nil {
		return nil, fmt.Errorf("queue membership %s: %w", t, err)
	}
	state := "absent"
	if queued {
		state = "queued"
	}
	return &Report{Type: string(t), State: state, ID: id}, nil
}

func stateFor(running bool) string {
	if running {
		return "running"
	}
	return "empty"
}
