package main

import (
	"context"
	"log"

	"riderpro/internal/core/cache"
	"riderpro/internal/core/config"
	"riderpro/internal/core/db"
	"riderpro/internal/core/logger"
	"riderpro/internal/core/server"
	analyticsadapter "riderpro/internal/features/analytics/adapters"
	analyticshandler "riderpro/internal/features/analytics/handler"
	analyticsservice "riderpro/internal/features/analytics/service"
	syncadapter "riderpro/internal/features/sync/adapters"
	synchandler "riderpro/internal/features/sync/handler"
	syncservice "riderpro/internal/features/sync/service"
	trackingadapter "riderpro/internal/features/tracking/adapters"
	trackinghandler "riderpro/internal/features/tracking/handler"
	trackingservice "riderpro/internal/features/tracking/service"

	"go.uber.org/zap"
)

// @title RiderPro Fleet Tracking API
// @version 1.0
// @description Route session tracking, GPS ingestion and fleet analytics for delivery riders.
// @contact.name API Support
// @contact.email support@riderpro.io
// @license.name MIT
// @host localhost:8080
// @BasePath /
func main() {
	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Environment, cfg.LogLevel); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()

	l := logger.Get()
	l.Info("Application starting",
		zap.String("environment", cfg.Environment),
		zap.String("log_level", cfg.LogLevel),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := db.Connect(ctx, cfg.PostgresURL)
	if err != nil {
		l.Fatal("Postgres connection failed", zap.Error(err))
	}
	defer pool.Close()
	l.Info("Postgres connection verified")

	redisCache, err := cache.NewRedisAdapter(cfg.RedisURL)
	if err != nil {
		l.Fatal("Redis setup failed", zap.Error(err))
	}
	defer redisCache.Close()
	if err := redisCache.Ping(ctx); err != nil {
		// Redis only backs the dedup fast path and analytics cache; both
		// degrade to Postgres, so a cold cache is not fatal.
		l.Warn("Redis unreachable, running without cache", zap.Error(err))
	}

	// Tracking: session lifecycle and coordinate ingestion.
	sessionRepo := trackingadapter.NewPostgresSessionRepository(pool)
	sampleRepo := trackingadapter.NewPostgresSampleRepository(pool)
	deduper := trackingadapter.NewRedisDeduper(redisCache, cfg.Tracking.DedupTTL())

	sessionSvc := trackingservice.NewSessionService(sessionRepo, cfg.Tracking)
	ingestSvc := trackingservice.NewIngestService(sessionSvc, sampleRepo, deduper, cfg.Tracking)
	trackingHdl := trackinghandler.NewTrackingHandler(sessionSvc, ingestSvc)

	// Analytics: cached daily rollups.
	aggregateRepo := analyticsadapter.NewPostgresAggregateRepository(pool)
	aggregator := analyticsservice.NewAggregator(aggregateRepo, redisCache, cfg.Tracking.AggregateCacheTTL())
	analyticsHdl := analyticshandler.NewAnalyticsHandler(aggregator)

	// Sync: background reconciliation against the dispatch system of record.
	syncRepo := syncadapter.NewPostgresSyncRepository(pool)
	dispatch := syncadapter.NewDispatchAdapter(cfg.Sync)
	reconciler := syncservice.NewReconciler(syncRepo, dispatch, cfg.Sync)
	syncHdl := synchandler.NewSyncHandler(reconciler)

	if cfg.Sync.URL != "" {
		if err := dispatch.HealthCheck(ctx); err != nil {
			l.Warn("Dispatch API unreachable, sync will retry", zap.Error(err))
		}
		go reconciler.Run(ctx)
	} else {
		l.Info("SYNC_URL not set, reconciler disabled")
	}

	srv := server.New(cfg)

	srv.App.Post("/v1/tracking/sessions", trackingHdl.StartSession)
	srv.App.Get("/v1/tracking/sessions", trackingHdl.ListSessions)
	srv.App.Get("/v1/tracking/sessions/:id", trackingHdl.GetSession)
	srv.App.Post("/v1/tracking/sessions/:id/stop", trackingHdl.StopSession)
	srv.App.Post("/v1/tracking/sessions/:id/pause", trackingHdl.PauseSession)
	srv.App.Post("/v1/tracking/sessions/:id/resume", trackingHdl.ResumeSession)
	srv.App.Post("/v1/tracking/sessions/:id/coordinates", trackingHdl.IngestCoordinate)
	srv.App.Post("/v1/tracking/sessions/:id/coordinates/batch", trackingHdl.IngestBatch)

	srv.App.Get("/v1/analytics/daily", analyticsHdl.GetDaily)
	srv.App.Get("/v1/sync/stats", syncHdl.GetStats)

	if err := srv.Run(); err != nil {
		l.Fatal("Server failed to start", zap.Error(err))
	}
}
