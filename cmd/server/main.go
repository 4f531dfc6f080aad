package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/vidvault/ingestd/internal/api"
	"github.com/vidvault/ingestd/internal/config"
	"github.com/vidvault/ingestd/internal/db"
	"github.com/vidvault/ingestd/internal/domain"
	"github.com/vidvault/ingestd/internal/extractor"
	"github.com/vidvault/ingestd/internal/intake"
	"github.com/vidvault/ingestd/internal/mediafix"
	"github.com/vidvault/ingestd/internal/mediastore"
	"github.com/vidvault/ingestd/internal/metrics"
	"github.com/vidvault/ingestd/internal/msgbus"
	"github.com/vidvault/ingestd/internal/queue"
	"github.com/vidvault/ingestd/internal/refresh"
	"github.com/vidvault/ingestd/internal/repository"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync() //nolint:errcheck

	// ---- configuration ----
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	// ---- database ----
	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	if err := db.Migrate(cfg.DatabaseURL); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}
	logger.Info("database migrations applied")

	// ---- core dependencies ----
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	store := &repository.Store{
		WorkItems: repository.NewPgWorkItemRepository(pool),
		Videos:    repository.NewPgVideoRepository(pool),
		Channels:  repository.NewPgChannelRepository(pool),
		Playlists: repository.NewPgPlaylistRepository(pool),
		Comments:  repository.NewPgCommentRepository(pool),
	}

	q := queue.NewPgRefreshQueue(pool)
	bus := msgbus.NewPgBus(pool)
	media := mediastore.NewFS(cfg.VideosDir, cfg.CacheDir)
	source := extractor.NewHTTPExtractor(cfg.ExtractorBaseURL, cfg.CookieFile, cfg.ExtractorTimeout)

	resolver := intake.NewResolver(store, source, media, bus,
		cfg.ExtractorTimeout, cfg.ProgressTTL, cfg.ProgressFinalTTL, logger)
	mutator := intake.NewMutator(store.WorkItems, logger)

	scheduler := refresh.NewScheduler(store, q, cfg.RefreshIntervalDays, logger)
	progress := refresh.NewProgress(q)
	reconciler := mediafix.NewReconciler(store.Videos, source, media, logger)

	// A configured cookie file makes the extractor a credential validator;
	// without one the worker skips the pre-cycle check.
	var cred extractor.CredentialValidator
	if cfg.CookieFile != "" {
		cred = source
	}

	var commentOpts *extractor.CommentOptions
	if cfg.CommentMax != "" {
		commentOpts = &extractor.CommentOptions{Max: cfg.CommentMax, Sort: cfg.CommentSort}
	}

	onRefreshed, onFailed := m.WorkerHooks()
	worker := refresh.NewWorker(refresh.WorkerConfig{
		Store:      store,
		Queue:      q,
		Source:     source,
		Credential: cred,
		Media:      media,
		Reconciler: reconciler,
		Cache:      bus,
		ItemDelay:  cfg.ItemDelay,
		Comments:   commentOpts,
		Hooks:      refresh.Hooks{OnRefreshed: onRefreshed, OnFailed: onFailed},
		Logger:     logger,
	})

	// ---- background loops ----
	// Context for all background goroutines; cancelled on shutdown signal.
	workerCtx, cancelWorkers := context.WithCancel(ctx)
	defer cancelWorkers()

	go runEvery(workerCtx, cfg.ScheduleInterval, func(ctx context.Context) {
		if err := scheduler.AddOutdated(ctx); err != nil {
			logger.Error("outdated scan failed", zap.Error(err))
		}
	})

	go runEvery(workerCtx, cfg.CycleInterval, func(ctx context.Context) {
		if err := worker.RunCycle(ctx); err != nil {
			logger.Error("refresh cycle failed", zap.Error(err))
		}
	})

	go runEvery(workerCtx, 30*time.Second, func(ctx context.Context) {
		for _, t := range domain.AllEntityTypes {
			depth, err := q.Depth(ctx, t)
			if err != nil {
				continue
			}
			m.QueueDepth.WithLabelValues(string(t)).Set(float64(depth))
		}
	})

	// ---- HTTP server ----
	router := api.NewRouter(resolver, mutator, scheduler, progress, q,
		m.ObserveIntake, reg, logger)
	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	// Start server in a goroutine so it does not block the shutdown listener.
	go func() {
		logger.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// ---- graceful shutdown ----
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutdown signal received")

	// 1. Stop accepting new HTTP requests.
	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	// 2. Signal the background loops to stop.
	cancelWorkers()

	logger.Info("server stopped cleanly")
}

// runEvery runs fn immediately and then on every tick until ctx is done.
func runEvery(ctx context.Context, interval time.Duration, fn func(context.Context)) {
	fn(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn(ctx)
		}
	}
}
