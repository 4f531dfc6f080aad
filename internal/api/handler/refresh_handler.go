package handler

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	apimw "github.com/vidvault/ingestd/internal/api/middleware"
	"github.com/vidvault/ingestd/internal/domain"
	"github.com/vidvault/ingestd/internal/refresh"
)

// RefreshHandler exposes manual refresh enqueueing and queue progress.
type RefreshHandler struct {
	scheduler *refresh.Scheduler
	progress  *refresh.Progress
	logger    *zap.Logger
}

func NewRefreshHandler(scheduler *refresh.Scheduler, progress *refresh.Progress, logger *zap.Logger) *RefreshHandler {
	return &RefreshHandler{scheduler: scheduler, progress: progress, logger: logger}
}

// Enqueue handles POST /api/v1/refresh
//
// @Summary  Enqueue entities for refresh
// @Tags     refresh
// @Accept   json
// @Param    body  body  domain.ManualRefreshRequest  true  "Manual refresh request"
// @Success  202
// @Failure  422  {object}  map[string]string
// @Router   /api/v1/refresh [post]
func (h *RefreshHandler) Enqueue(w http.ResponseWriter, r *http.Request) {
	var req domain.ManualRefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := h.scheduler.AddManual(r.Context(), req); err != nil {
		h.logger.Warn("manual refresh enqueue failed",
			zap.String("correlation_id", apimw.GetCorrelationID(r.Context())),
			zap.Error(err),
		)
		mapError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// Status handles GET /api/v1/refresh
//
// @Summary  Refresh queue progress
// @Tags     refresh
// @Produce  json
// @Param    type  query     string  false  "Entity type"
// @Param    id    query     string  false  "Entity identifier (requires type)"
// @Success  200   {object}  refresh.Report
// @Failure  422   {object}  map[string]string
// @Router   /api/v1/refresh [get]
func (h *RefreshHandler) Status(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	typ := q.Get("type")
	id := q.Get("id")

	var (
		report *refresh.Report
		err    error
	)
	switch {
	case typ == "":
		report, err = h.progress.Overall(r.Context())
	case id == "":
		report, err = h.progress.ByType(r.Context(), domain.EntityType(typ))
	default:
		report, err = h.progress.ByID(r.Context(), domain.EntityType(typ), id)
	}
	if err != nil {
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}
