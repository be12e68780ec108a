package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/bildin8/postergram-juice-sub000/api/routes"
	"github.com/bildin8/postergram-juice-sub000/internal/catalog"
	"github.com/bildin8/postergram-juice-sub000/internal/consumption"
	"github.com/bildin8/postergram-juice-sub000/internal/ledger"
	"github.com/bildin8/postergram-juice-sub000/internal/notifications"
	"github.com/bildin8/postergram-juice-sub000/internal/par"
	"github.com/bildin8/postergram-juice-sub000/internal/receipts"
	"github.com/bildin8/postergram-juice-sub000/internal/reconciliation"
	"github.com/bildin8/postergram-juice-sub000/internal/stocksessions"
	"github.com/bildin8/postergram-juice-sub000/internal/sync"
	"github.com/bildin8/postergram-juice-sub000/pkg/chatbot"
	"github.com/bildin8/postergram-juice-sub000/pkg/config"
	"github.com/bildin8/postergram-juice-sub000/pkg/db"
	"github.com/bildin8/postergram-juice-sub000/pkg/logger"
	"github.com/bildin8/postergram-juice-sub000/pkg/migrate"
	"github.com/bildin8/postergram-juice-sub000/pkg/poster"
	"github.com/bildin8/postergram-juice-sub000/pkg/redis"
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
	cfg.Service.Kind = "api"

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

	catalogRepo := catalog.NewRepository(dbClient.DB())
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
	consumptionService, err := consumption.NewService(posterClient, catalogRepo, ledgerService, consumptionRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create consumption service", err)
		os.Exit(1)
	}

	parService, err := par.NewService(posterClient, ledgerService, cfg.Par, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create par service", err)
		os.Exit(1)
	}

	receiptsRepo, err := receipts.NewRepository(dbClient.DB())
	if err != nil {
		logg.Error(context.Background(), "failed to create receipts repository", err)
		os.Exit(1)
	}
	receiptsService, err := receipts.NewService(receiptsRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create receipts service", err)
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

	sessionsRepo, err := stocksessions.NewRepository(dbClient.DB())
	if err != nil {
		logg.Error(context.Background(), "failed to create stock sessions repository", err)
		os.Exit(1)
	}
	reconciliationRepo, err := reconciliation.NewRepository(dbClient.DB())
	if err != nil {
		logg.Error(context.Background(), "failed to create reconciliation repository", err)
		os.Exit(1)
	}
	reconciliationService, err := reconciliation.NewService(sessionsRepo, receiptsService, notificationsService, reconciliationRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create reconciliation service", err)
		os.Exit(1)
	}
	sessionsService, err := stocksessions.NewService(sessionsRepo, reconciliationService, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create stock sessions service", err)
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

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:         cfg,
			Logger:         logg,
			DBPinger:       dbClient,
			RedisPinger:    redisClient,
			Consumption:    consumptionService,
			Par:            parService,
			StockSessions:  sessionsService,
			Receipts:       receiptsService,
			Reconciliation: reconciliationService,
			FeedSync:       feedSyncJob,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
