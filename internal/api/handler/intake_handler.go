package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	apimw "github.com/vidvault/ingestd/internal/api/middleware"
	"github.com/vidvault/ingestd/internal/domain"
	"github.com/vidvault/ingestd/internal/intake"
)

// IntakeObserver receives the outcome of a completed intake pass.
type IntakeObserver func(requested, created int)

// IntakeHandler exposes the ingest resolution pass and the pending-queue
// mutations.
type IntakeHandler struct {
	resolver *intake.Resolver
	mutator  *intake.Mutator
	observe  IntakeObserver
	logger   *zap.Logger
}

func NewIntakeHandler(resolver *intake.Resolver, mutator *intake.Mutator, observe IntakeObserver, logger *zap.Logger) *IntakeHandler {
	return &IntakeHandler{resolver: resolver, mutator: mutator, observe: observe, logger: logger}
}

// Resolve handles POST /api/v1/intake
//
// @Summary  Resolve an ingest request into pending work items
// @Tags     intake
// @Accept   json
// @Produce  json
// @Param    body  body      domain.IngestRequest  true  "Ingest request"
// @Success  200   {object}  intake.Result
// @Failure  422   {object}  map[string]string
// @Router   /api/v1/intake [post]
func (h *IntakeHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	var req domain.IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	res, err := h.resolver.Resolve(r.Context(), req)
	if err != nil {
		h.logger.Warn("intake resolve failed",
			zap.String("correlation_id", apimw.GetCorrelationID(r.Context())),
			zap.Error(err),
		)
		mapError(w, err)
		return
	}

	if h.observe != nil {
		h.observe(res.Requested, res.Created)
	}
	respondJSON(w, http.StatusOK, res)
}

// DeleteItem handles DELETE /api/v1/intake/{videoID}
//
// @Summary  Remove one pending-queue entry
// @Tags     intake
// @Param    videoID  path  string  true  "Video identifier"
// @Success  204
// @Failure  404  {object}  map[string]string
// @Router   /api/v1/intake/{videoID} [delete]
func (h *IntakeHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	videoID := chi.URLParam(r, "videoID")
	if err := h.mutator.DeleteItem(r.Context(), videoID); err != nil {
		mapError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteByStatus handles DELETE /api/v1/intake?status=...
//
// @Summary  Remove every pending-queue entry with the given status
// @Tags     intake
// @Param    status  query  string  true  "pending or ignore"
// @Success  204
// @Failure  422  {object}  map[string]string
// @Router   /api/v1/intake [delete]
func (h *IntakeHandler) DeleteByStatus(w http.ResponseWriter, r *http.Request) {
	status := domain.WorkItemStatus(r.URL.Query().Get("status"))
	if err := h.mutator.DeleteByStatus(r.Context(), status); err != nil {
		mapError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdateStatus handles PATCH /api/v1/intake/{videoID}
//
// @Summary  Change the status of one pending-queue entry
// @Tags     intake
// @Accept   json
// @Param    videoID  path  string             true  "Video identifier"
// @Param    body     body  map[string]string  true  "{\"status\": \"ignore\"}"
// @Success  204
// @Failure  404  {object}  map[string]string
// @Failure  422  {object}  map[string]string
// @Router   /api/v1/intake/{videoID} [patch]
func (h *IntakeHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	videoID := chi.URLParam(r, "videoID")

	var body struct {
		Status domain.WorkItemStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := h.mutator.UpdateStatus(r.Context(), videoID, body.Status); err != nil {
		mapError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
