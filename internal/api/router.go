package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/vidvault/ingestd/internal/api/handler"
	apimw "github.com/vidvault/ingestd/internal/api/middleware"
	"github.com/vidvault/ingestd/internal/intake"
	"github.com/vidvault/ingestd/internal/queue"
	"github.com/vidvault/ingestd/internal/refresh"
)

// NewRouter wires the chi router, attaches all middleware, and registers
// every route. It is the single source of truth for the HTTP surface area.
func NewRouter(
	resolver *intake.Resolver,
	mutator *intake.Mutator,
	scheduler *refresh.Scheduler,
	progress *refresh.Progress,
	q queue.RefreshQueue,
	observeIntake handler.IntakeObserver,
	reg prometheus.Gatherer,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// --- global middleware (applied to every route) ---
	r.Use(chimw.Recoverer)          // recover panics, return 500
	r.Use(chimw.RealIP)             // trust X-Forwarded-For / X-Real-IP
	r.Use(chimw.RequestSize(1<<20)) // 1 MB max request body
	r.Use(apimw.CorrelationID)      // X-Correlation-ID inject / echo
	r.Use(apimw.RequestLogger(logger))

	// --- handler instances ---
	ih := handler.NewIntakeHandler(resolver, mutator, observeIntake, logger)
	rh := handler.NewRefreshHandler(scheduler, progress, logger)
	qh := handler.NewQueueHandler(q)
	hh := handler.NewHealthHandler()

	// --- routes ---
	r.Get("/health", hh.Health)

	// Raw Prometheus scrape endpoint (for Prometheus server / Grafana)
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/intake", ih.Resolve)
		r.Delete("/intake", ih.DeleteByStatus)
		r.Delete("/intake/{videoID}", ih.DeleteItem)
		r.Patch("/intake/{videoID}", ih.UpdateStatus)

		r.Post("/refresh", rh.Enqueue)
		r.Get("/refresh", rh.Status)

		// JSON queue depth snapshot
		r.Get("/metrics", qh.GetDepths)
	})

	return r
}
