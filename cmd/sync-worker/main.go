package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/bildin8/postergram-juice-sub000/internal/catalog"
	"github.com/bildin8/postergram-juice-sub000/internal/consumption"
	"github.com/bildin8/postergram-juice-sub000/internal/cron"
	"github.com/bildin8/postergram-juice-sub000/internal/ledger"
	"github.com/bildin8/postergram-juice-sub000/internal/notifications"
	"github.com/bildin8/postergram-juice-sub000/internal/par"
	"github.com/bildin8/postergram-juice-sub000/internal/sync"
	"github.com/bildin8/postergram-juice-sub000/pkg/chatbot"
	"github.com/bildin8/postergram-juice-sub000/pkg/config"
	"github.com/bildin8/postergram-juice-sub000/pkg/db"
	"github.com/bildin8/postergram-juice-sub000/pkg/logger"
	"github.com/bildin8/postergram-juice-sub000/pkg/metrics"
	"github.com/bildin8/postergram-juice-sub000/pkg/migrate"
	"github.com/bildin8/postergram-juice-sub000/pkg/poster"
	"github.com/bildin8/postergram-juice-sub000/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "sync-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}
	cfg.Service.Kind = "sync-worker"

	logg = logger.New(logger.Options{
		ServiceName: "sync-worker",
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

	posterClient, err := poster.NewClient(context.Background(), cfg.Poster, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create poster client", err)
		os.Exit(1)
	}

	var sender notifications.Sender
	if cfg.ChatBot.BotToken != "" {
		sender, err = chatbot.NewClient(context.Background(), cfg.ChatBot, logg)
	} else {
		sender, err = chatbot.NewNoopSender(logg)
	}
	if err != nil {
		logg.Error(context.Background(), "failed to create chat bot sender", err)
		os.Exit(1)
	}

	ledgerService, err := ledger.NewService(ledger.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create ledger service", err)
		os.Exit(1)
	}

	consumptionRepo, err := consumption.NewRepository(dbClient.DB())
	if err != nil {
		logg.Error(context.Background(), "failed to create consumption repository", err)
		os.Exit(1)
	}
	consumptionService, err := consumption.NewService(posterClient, catalog.NewRepository(dbClient.DB()), ledgerService, consumptionRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create consumption service", err)
		os.Exit(1)
	}

	parService, err := par.NewService(posterClient, ledgerService, cfg.Par, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create par service", err)
		os.Exit(1)
	}

	notificationsRepo, err := notifications.NewRepository(dbClient.DB())
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications repository", err)
		os.Exit(1)
	}
	notificationsService, err := notifications.NewService(notificationsRepo, sender, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
		os.Exit(1)
	}

	checkpoints, err := sync.NewCheckpointStore(dbClient.DB())
	if err != nil {
		logg.Error(context.Background(), "failed to create checkpoint store", err)
		os.Exit(1)
	}
	feedSyncJob, err := sync.NewFeedSyncJob(consumptionService, checkpoints, cfg.Sync.BackfillMax, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create feed sync job", err)
		os.Exit(1)
	}
	stockAlertJob, err := sync.NewStockAlertJob(parService, notificationsService, checkpoints, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create stock alert job", err)
		os.Exit(1)
	}

	metricsCollector := metrics.NewCronJobMetrics(prometheus.DefaultRegisterer)
	lock, err := cron.NewRedisLock(redisClient, redisClient.LockKey(lockScope(cfg.App.Env)), cfg.Sync.LockTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create worker lock", err)
		os.Exit(1)
	}

	registry := cron.NewRegistry(feedSyncJob, stockAlertJob)
	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: registry,
		Lock:     lock,
		Metrics:  metricsCollector,
		Interval: cfg.Sync.Interval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create worker service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
	})
	logg.Info(ctx, "starting sync worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "sync worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "sync worker shutting down gracefully")
}

func lockScope(env string) string {
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf("sync-worker:%s", env)
}
