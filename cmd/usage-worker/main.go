package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/speccom/fieldproof-backend/internal/nodes"
	"github.com/speccom/fieldproof-backend/internal/usage"
	"github.com/speccom/fieldproof-backend/pkg/config"
	"github.com/speccom/fieldproof-backend/pkg/db"
	"github.com/speccom/fieldproof-backend/pkg/logger"
	"github.com/speccom/fieldproof-backend/pkg/metrics"
	"github.com/speccom/fieldproof-backend/pkg/migrate"
	"github.com/speccom/fieldproof-backend/pkg/pubsub"
	"github.com/speccom/fieldproof-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "usage-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "usage-worker"

	logg = logger.New(logger.Options{
		ServiceName: "usage-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	pubsubClient, err := pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap pubsub", err)
		os.Exit(1)
	}
	defer func() {
		if err := pubsubClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing pubsub client", err)
		}
	}()

	registry := prometheus.NewRegistry()
	workerMetrics := metrics.NewUsageWorkerMetrics(registry)

	consumer, err := usage.NewConsumer(usage.ConsumerParams{
		Repo:         usage.NewRepository(dbClient.DB()),
		State:        nodes.NewRepository(dbClient.DB()),
		Tx:           dbClient,
		Subscription: pubsubClient.UsageSubscription(),
		Cache:        redisClient,
		Metrics:      workerMetrics,
		Logger:       logg,
		SnapshotTTL:  cfg.Proof.SnapshotTTL,
		ThresholdPct: cfg.Usage.AlertThresholdPct,
		ThresholdAbs: cfg.Usage.AlertThresholdAbs,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create usage consumer", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": "usage-worker",
	})

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	metricsServer := &http.Server{
		Addr:    ":" + cfg.Worker.MetricsPort,
		Handler: metricsMux,
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "metrics server stopped unexpectedly", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Worker.ShutdownGracePeriod)
		defer cancel()
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "error shutting down metrics server", err)
		}
	}()

	logg.Info(ctx, "starting usage worker")

	if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "usage worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "usage worker shutting down gracefully")
}
