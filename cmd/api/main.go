package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"github.com/jalai-llc/bundongsan/internal/cache"
	"github.com/jalai-llc/bundongsan/internal/catalog"
	"github.com/jalai-llc/bundongsan/internal/config"
	"github.com/jalai-llc/bundongsan/internal/geo"
	"github.com/jalai-llc/bundongsan/internal/handler"
	"github.com/jalai-llc/bundongsan/internal/integrations/ratefeed"
	"github.com/jalai-llc/bundongsan/internal/middleware"
	"github.com/jalai-llc/bundongsan/internal/monitoring"
	"github.com/jalai-llc/bundongsan/internal/repository"
	"github.com/jalai-llc/bundongsan/internal/scheduler"
	"github.com/jalai-llc/bundongsan/internal/service"
	"github.com/jalai-llc/bundongsan/internal/utils/email"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	logLevel, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database
	db, err := sql.Open("postgres", cfg.DBConn)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}
	repo := repository.NewRepository(db)
	if err := repo.Migrate(ctx); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := monitoring.NewMetrics("bundongsan", registry)

	opts := []service.Option{service.WithMetrics(metrics)}

	// Ranked view cache
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer client.Close()
		viewCache := cache.NewRedisViewCache(client, cfg.CacheTTL)
		if err := viewCache.Ping(ctx); err != nil {
			logger.Warnf("Redis unavailable, using in-memory view cache: %v", err)
		} else {
			opts = append(opts, service.WithViewCache(viewCache))
		}
	}

	// Reference data
	if cfg.CoordinatesPath != "" {
		idx, err := geo.LoadIndex(cfg.CoordinatesPath)
		if err != nil {
			logger.Fatalf("Failed to load coordinates: %v", err)
		}
		logger.Infof("Loaded %d zipcode coordinates", idx.Len())
		opts = append(opts, service.WithGeoIndex(idx))
	}
	if seed, err := catalog.LoadSeed(cfg.SeedCatalogPath); err != nil {
		logger.Warnf("Seed catalog not loaded: %v", err)
	} else {
		logger.Infof("Loaded %d seed records", len(seed))
		opts = append(opts, service.WithSeedCatalog(seed))
	}

	// Integrations
	if cfg.SMTPEnabled() {
		opts = append(opts, service.WithMailer(email.NewSender(cfg, logger)))
	}
	if cfg.RateFeedURL != "" {
		opts = append(opts, service.WithRateSource(ratefeed.NewClient(cfg.RateFeedURL, logger)))
	}

	// Initialize layers
	svc := service.NewService(repo, logger, cfg, opts...)
	h := handler.NewHandler(svc, logger, metrics)

	// Background jobs
	jobs := scheduler.New(svc, logger, 5*time.Minute)
	if cfg.RateFeedURL != "" {
		if err := jobs.ScheduleRateRefresh(cfg.RateSchedule); err != nil {
			logger.Fatalf("Failed to schedule rate refresh: %v", err)
		}
	}
	if cfg.SMTPEnabled() {
		if err := jobs.ScheduleDigests(cfg.DigestSchedule); err != nil {
			logger.Fatalf("Failed to schedule digests: %v", err)
		}
	}
	jobs.Start()

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				limiter.Cleanup()
			}
		}
	}()

	// Setup router
	r := handler.NewRouter(h, cfg)
	corsHandler := cors.New(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	})

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      corsHandler.Handler(limiter.RateLimit(r)),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	go func() {
		logger.Infof("Starting server on %s", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Server shutdown failed: %v", err)
	}
	jobs.Stop(shutdownCtx)
}
