package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"smartsearch/internal/audit"
	"smartsearch/internal/platform/config"
	"smartsearch/internal/platform/httpserver"
	"smartsearch/internal/platform/logger"
	"smartsearch/internal/platform/middleware"
	"smartsearch/internal/platform/redis"
	registrystore "smartsearch/internal/registry/store"
	searchhandler "smartsearch/internal/search/handler"
	searchmetrics "smartsearch/internal/search/metrics"
	searchservice "smartsearch/internal/search/service"
	statshandler "smartsearch/internal/stats/handler"
	statsmetrics "smartsearch/internal/stats/metrics"
	statsservice "smartsearch/internal/stats/service"
	statsstore "smartsearch/internal/stats/store"
)

// main wires dependencies and keeps the server lifecycle small. Business
// logic lives in the internal service packages.
func main() {
	cfg := config.FromEnv()
	if err := cfg.Validate(); err != nil {
		panic(err)
	}
	log := logger.New()
	ctx := context.Background()

	// Record source: Postgres when configured, in-memory otherwise so the
	// service still comes up for local development.
	var source registrystore.Store
	if cfg.DatabaseURL != "" {
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			log.Error("open database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			log.Error("ping database", "error", err)
			os.Exit(1)
		}
		source = registrystore.NewPostgres(db)
	} else {
		log.Warn("no database configured, using empty in-memory registry")
		source = registrystore.NewMemory()
	}

	redisClient, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		log.Error("connect redis", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	aggOpts := []statsservice.Option{
		statsservice.WithLogger(log),
		statsservice.WithMetrics(statsmetrics.New()),
	}
	if redisClient != nil {
		aggOpts = append(aggOpts,
			statsservice.WithSnapshotStore(statsstore.NewRedisSnapshots(redisClient, cfg.StatisticsTTL)))
	}
	aggregator := statsservice.New(source, cfg.StatisticsTTL, aggOpts...)
	aggregator.Restore(ctx)

	auditPublisher := audit.NewPublisher(256, log)
	var auditStore audit.Store = audit.NewMemoryStore()
	if pg, ok := source.(*registrystore.Postgres); ok {
		auditStore = audit.NewPostgresStore(pg.DB())
	}
	auditWorker := audit.NewWorker(auditStore, auditPublisher.Inbox(), log)

	workerCtx, stopWorker := context.WithCancel(ctx)
	defer stopWorker()
	go func() {
		if err := auditWorker.Run(workerCtx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("audit worker stopped", "error", err)
		}
	}()

	searchSvc := searchservice.New(source,
		searchservice.WithLogger(log),
		searchservice.WithAuditPublisher(auditPublisher),
		searchservice.WithMetrics(searchmetrics.New()),
	)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(log))
	r.Use(middleware.Logger(log))
	r.Use(middleware.Timeout(cfg.SearchTimeout))
	r.Use(middleware.ContentTypeJSON)

	searchhandler.New(searchSvc, log).Register(r)
	statshandler.New(aggregator, statshandler.Limits{
		IdentifierMinLength: cfg.IdentifierMinLength,
		PhoneMinLength:      cfg.PhoneMinLength,
		PartialMinLength:    cfg.PartialMinLength,
	}).Register(r)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	srv := httpserver.New(cfg.Addr, r, cfg.SearchTimeout)

	log.Info("starting smartsearch", "addr", cfg.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	log.Info("smartsearch stopped")
}
