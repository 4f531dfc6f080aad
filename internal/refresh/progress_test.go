package refresh_test

import (
	"context"
	"testing"

	"github.com/vidvault/ingestd/internal/domain"
	"github.com/vidvault/ingestd/internal/queue"
	"github.com/vidvault/ingestd/internal/refresh"
)

func TestProgress_Overall(t *testing.T) {
	q := queue.NewMemoryQueue()
	p := refresh.NewProgress(q)
	ctx := context.Background()

	rep, err := p.Overall(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rep.Total != 0 || rep.State != "empty" {
		t.Fatalf("expected empty report, got %+v", rep)
	}

	_ = q.Push(ctx, domain.TypeVideo, []string{"a", "b"})
	_ = q.Push(ctx, domain.TypeChannel, []string{"c"})

	rep, err = p.Overall(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rep.Total != 3 || rep.State != "running" {
		t.Fatalf("expected 3 running, got %+v", rep)
	}
}

func TestProgress_ByType(t *testing.T) {
	q := queue.NewMemoryQueue()
	p := refresh.NewProgress(q)
	ctx := context.Background()

	_ = q.Push(ctx, domain.TypeChannel, []string{"c1"})

	rep, err := p.ByType(ctx, domain.TypeChannel)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rep.Total != 1 || rep.State != "running" {
		t.Fatalf("unexpected report: %+v", rep)
	}

	if _, err := p.ByType(ctx, "album"); err != domain.ErrInvalidEntityType {
		t.Fatalf("expected ErrInvalidEntityType, got %v", err)
	}
}

func TestProgress_ByID_ReflectsPop(t *testing.T) {
	q := queue.NewMemoryQueue()
	p := refresh.NewProgress(q)
	ctx := context.Background()

	_ = q.Push(ctx, domain.TypeVideo, []string{"vid1"})

	rep, err := p.ByID(ctx, domain.TypeVideo, "vid1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rep.State != "queued" {
		t.Fatalf("expected queued, got %q", rep.State)
	}

	// The membership check is live: a pop is visible immediately.
	_, _, _ = q.Pop(ctx, domain.TypeVideo)

	rep, err = p.ByID(ctx, domain.TypeVideo, "vid1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rep.State != "absent" {
		t.Fatalf("expected absent after pop, got %q", rep.State)
	}
}
