package intake_test

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/vidvault/ingestd/internal/domain"
	"github.com/vidvault/ingestd/internal/intake"
	"github.com/vidvault/ingestd/internal/repository"
)

func seedItems(t *testing.T, store *repository.MockStore) {
	t.Helper()
	_, err := store.CreateBatch(context.Background(), []*domain.WorkItem{
		{VideoID: "p1", Status: domain.StatusPending, Timestamp: 1},
		{VideoID: "p2", Status: domain.StatusPending, Timestamp: 2},
		{VideoID: "i1", Status: domain.StatusIgnore, Timestamp: 3},
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
}

func TestMutator_DeleteItem(t *testing.T) {
	store := repository.NewMockStore()
	m := intake.NewMutator(store, zap.NewNop())
	seedItems(t, store)

	if err := m.DeleteItem(context.Background(), "p1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	items, _ := store.All(context.Background())
	if len(items) != 2 {
		t.Fatalf("expected 2 remaining, got %d", len(items))
	}
}

func TestMutator_DeleteItem_NotFound(t *testing.T) {
	store := repository.NewMockStore()
	m := intake.NewMutator(store, zap.NewNop())

	if err := m.DeleteItem(context.Background(), "missing"); err != domain.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMutator_DeleteByStatus(t *testing.T) {
	store := repository.NewMockStore()
	m := intake.NewMutator(store, zap.NewNop())
	seedItems(t, store)

	if err := m.DeleteByStatus(context.Background(), domain.StatusIgnore); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	items, _ := store.All(context.Background())
	for _, it := range items {
		if it.Status == domain.StatusIgnore {
			t.Fatalf("ignore entry %s survived", it.VideoID)
		}
	}
	if len(items) != 2 {
		t.Fatalf("expected pending entries untouched, got %d", len(items))
	}
}

func TestMutator_DeleteByStatus_Invalid(t *testing.T) {
	store := repository.NewMockStore()
	m := intake.NewMutator(store, zap.NewNop())

	if err := m.DeleteByStatus(context.Background(), "done"); err != domain.ErrInvalidStatus {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestMutator_UpdateStatus(t *testing.T) {
	store := repository.NewMockStore()
	m := intake.NewMutator(store, zap.NewNop())
	seedItems(t, store)

	if err := m.UpdateStatus(context.Background(), "p1", domain.StatusIgnore); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	items, _ := store.All(context.Background())
	for _, it := range items {
		if it.VideoID == "p1" && it.Status != domain.StatusIgnore {
			t.Fatalf("expected p1 ignored, got %q", it.Status)
		}
	}
}

func TestMutator_UpdateStatus_Invalid(t *testing.T) {
	store := repository.NewMockStore()
	m := intake.NewMutator(store, zap.NewNop())
	seedItems(t, store)

	if err := m.UpdateStatus(context.Background(), "p1", "archived"); err != domain.ErrInvalidStatus {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}
