package handler

import (
	"net/http"

	"github.com/vidvault/ingestd/internal/domain"
	"github.com/vidvault/ingestd/internal/queue"
)

// QueueHandler serves a human-readable JSON queue snapshot.
// Raw Prometheus metrics (counters, gauges) are available at /metrics
// via promhttp.Handler and are separate from this endpoint.
type QueueHandler struct {
	q queue.RefreshQueue
}

func NewQueueHandler(q queue.RefreshQueue) *QueueHandler {
	return &QueueHandler{q: q}
}

// GetDepths handles GET /api/v1/metrics
//
// @Summary  Real-time refresh queue depth snapshot
// @Tags     metrics
// @Produce  json
// @Success  200  {object}  map[string]any
// @Router   /api/v1/metrics [get]
func (h *QueueHandler) GetDepths(w http.ResponseWriter, r *http.Request) {
	depths := make(map[string]int, len(domain.AllEntityTypes)+1)
	total := 0
	for _, t := range domain.AllEntityTypes {
		d, err := h.q.Depth(r.Context(), t)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "queue depth unavailable")
			return
		}
		depths[string(t)] = d
		total += d
	}
	depths["total"] = total

	respondJSON(w, http.StatusOK, map[string]any{"queue_depth": depths})
}
