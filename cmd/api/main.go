package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/speccom/fieldproof-backend/api/routes"
	"github.com/speccom/fieldproof-backend/internal/backfill"
	"github.com/speccom/fieldproof-backend/internal/billing"
	"github.com/speccom/fieldproof-backend/internal/nodes"
	"github.com/speccom/fieldproof-backend/internal/usage"
	"github.com/speccom/fieldproof-backend/pkg/config"
	"github.com/speccom/fieldproof-backend/pkg/db"
	"github.com/speccom/fieldproof-backend/pkg/logger"
	"github.com/speccom/fieldproof-backend/pkg/migrate"
	"github.com/speccom/fieldproof-backend/pkg/pubsub"
	"github.com/speccom/fieldproof-backend/pkg/redis"
	"github.com/speccom/fieldproof-backend/pkg/storage/gcs"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
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

	gcsClient, err := gcs.NewClient(context.Background(), cfg.GCS, cfg.GCP, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap object storage", err)
		os.Exit(1)
	}
	defer func() {
		if err := gcsClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing object storage", err)
		}
	}()

	pubsubClient, err := pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap pubsub", err)
		os.Exit(1)
	}
	defer func() {
		if err := pubsubClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing pubsub", err)
		}
	}()

	nodesService, err := nodes.NewService(
		nodes.NewRepository(dbClient.DB()),
		dbClient,
		gcsClient,
		gcsClient.DefaultBucket(),
		cfg.GCS.DownloadURLExpiry,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create nodes service", err)
		os.Exit(1)
	}

	usagePublisher, err := usage.NewPublisher(pubsubClient.UsagePublisher())
	if err != nil {
		logg.Error(context.Background(), "failed to create usage publisher", err)
		os.Exit(1)
	}

	usageService, err := usage.NewService(
		usage.NewRepository(dbClient.DB()),
		dbClient,
		gcsClient,
		gcsClient.DefaultBucket(),
		redisClient,
		usagePublisher,
		logg,
		cfg.Usage,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create usage service", err)
		os.Exit(1)
	}

	billingService, err := billing.NewService(
		billing.NewRepository(dbClient.DB()),
		dbClient,
		cfg.Billing,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create billing service", err)
		os.Exit(1)
	}

	backfillService, err := backfill.NewService(
		backfill.NewRepository(dbClient.DB()),
		dbClient,
		gcsClient,
		gcsClient.DefaultBucket(),
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create backfill service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			gcsClient,
			pubsubClient,
			nodesService,
			usageService,
			billingService,
			backfillService,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
