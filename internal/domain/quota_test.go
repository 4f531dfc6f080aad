package domain_test

import (
	"testing"

	"github.com/vidvault/ingestd/internal/domain"
)

func TestDailyQuota(t *testing.T) {
	tests := []struct {
		name     string
		active   int
		interval int
		want     int
	}{
		{"empty archive", 0, 90, 0},
		{"negative active", -5, 90, 0},
		{"zero interval", 500, 0, 0},
		{"small archive rounds up", 100, 90, 2},
		{"mid archive", 1350, 90, 18},
		{"headroom applied", 900, 90, 12},
		{"capped at 9999", 10_000_000, 90, 9999},
		{"exactly one per day", 90, 90, 2},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := domain.DailyQuota(tc.active, tc.interval)
			if got != tc.want {
				t.Fatalf("DailyQuota(%d, %d) = %d, want %d",
					tc.active, tc.interval, got, tc.want)
			}
		})
	}
}

func TestDurationString(t *testing.T) {
	tests := []struct {
		seconds int
		want    string
	}{
		{0, "NA"},
		{-1, "NA"},
		{59, "0:59"},
		{61, "1:01"},
		{3599, "59:59"},
		{3600, "1:00:00"},
		{3725, "1:02:05"},
		{7325, "2:02:05"},
	}

	for _, tc := range tests {
		got := domain.DurationString(tc.seconds)
		if got != tc.want {
			t.Fatalf("DurationString(%d) = %q, want %q", tc.seconds, got, tc.want)
		}
	}
}

func TestIngestRequestValidate(t *testing.T) {
	valid := domain.IngestRequest{
		Entries: []domain.IngestEntry{{Type: domain.LocatorVideo, Locator: "vid1"}},
	}

	t.Run("defaults status to pending", func(t *testing.T) {
		req := valid
		if err := req.Validate(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if req.Status != domain.StatusPending {
			t.Fatalf("expected default status pending, got %q", req.Status)
		}
	})

	t.Run("empty request", func(t *testing.T) {
		req := domain.IngestRequest{}
		if err := req.Validate(); err != domain.ErrEmptyRequest {
			t.Fatalf("expected ErrEmptyRequest, got %v", err)
		}
	})

	t.Run("unknown locator type", func(t *testing.T) {
		req := domain.IngestRequest{
			Entries: []domain.IngestEntry{{Type: "album", Locator: "x"}},
		}
		if err := req.Validate(); err != domain.ErrInvalidEntityType {
			t.Fatalf("expected ErrInvalidEntityType, got %v", err)
		}
	})

	t.Run("empty locator", func(t *testing.T) {
		req := domain.IngestRequest{
			Entries: []domain.IngestEntry{{Type: domain.LocatorVideo}},
		}
		if err := req.Validate(); err != domain.ErrInvalidLocator {
			t.Fatalf("expected ErrInvalidLocator, got %v", err)
		}
	})

	t.Run("bad status", func(t *testing.T) {
		req := valid
		req.Status = "done"
		if err := req.Validate(); err != domain.ErrInvalidStatus {
			t.Fatalf("expected ErrInvalidStatus, got %v", err)
		}
	})
}

func TestManualRefreshRequestValidate(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		req := domain.ManualRefreshRequest{}
		if err := req.Validate(); err != domain.ErrEmptyRequest {
			t.Fatalf("expected ErrEmptyRequest, got %v", err)
		}
	})

	t.Run("unknown type rejects whole request", func(t *testing.T) {
		req := domain.ManualRefreshRequest{
			IDs: map[domain.EntityType][]string{
				domain.TypeVideo: {"vid1"},
				"album":          {"a1"},
			},
		}
		if err := req.Validate(); err != domain.ErrInvalidEntityType {
			t.Fatalf("expected ErrInvalidEntityType, got %v", err)
		}
	})

	t.Run("valid", func(t *testing.T) {
		req := domain.ManualRefreshRequest{
			IDs: map[domain.EntityType][]string{domain.TypeChannel: {"ch1"}},
		}
		if err := req.Validate(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}
