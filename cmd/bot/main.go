package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ddx2r/vk-telegram-bot-sub000/internal/api"
	"github.com/ddx2r/vk-telegram-bot-sub000/internal/application/factories/infrastructure"
	"github.com/ddx2r/vk-telegram-bot-sub000/internal/attach"
	"github.com/ddx2r/vk-telegram-bot-sub000/internal/audit"
	"github.com/ddx2r/vk-telegram-bot-sub000/internal/config"
	"github.com/ddx2r/vk-telegram-bot-sub000/internal/dedup"
	"github.com/ddx2r/vk-telegram-bot-sub000/internal/delivery"
	"github.com/ddx2r/vk-telegram-bot-sub000/internal/dispatch"
	"github.com/ddx2r/vk-telegram-bot-sub000/internal/format"
	"github.com/ddx2r/vk-telegram-bot-sub000/internal/infrastructure/postgres"
	"github.com/ddx2r/vk-telegram-bot-sub000/internal/telegram"
	"github.com/ddx2r/vk-telegram-bot-sub000/internal/toggles"
	"github.com/ddx2r/vk-telegram-bot-sub000/internal/vk"
)

func main() {
	// Initialize structured JSON logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.New()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	infraFactory := infrastructure.NewFactory(cfg)
	defer infraFactory.Close()

	// Redis backs the long-horizon dedup guard and the toggle snapshot.
	redisClient, err := infraFactory.Redis(ctx)
	if err != nil {
		logger.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}

	// Postgres mirrors the audit stream.
	pgPool, err := infraFactory.Postgres(ctx)
	if err != nil {
		logger.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}

	// Toggle / target state, restored from the last snapshot.
	toggleStore := toggles.New(redisClient, cfg.Telegram.ChatID, logger)
	if err := toggleStore.Load(ctx); err != nil {
		logger.Warn("failed to restore toggle snapshot, using defaults", "error", err)
	}

	// Outbound collaborators.
	vkClient := vk.NewClient(vk.Config{
		Token:   cfg.VK.Token,
		Version: cfg.VK.Version,
		APIBase: cfg.VK.APIBase,
	})
	tgClient := telegram.NewClient(telegram.Config{
		Token:   cfg.Telegram.Token,
		APIBase: cfg.Telegram.APIBase,
	})

	// Pipeline.
	deliverer := delivery.NewDeliverer(tgClient, cfg.Telegram.DebugChatID, logger)
	transcoder := attach.NewTranscoder(tgClient, vkClient, logger)
	formatter := format.New(vkClient, transcoder)

	auditor := audit.NewRecorder(logger,
		audit.NewKafkaSink(infraFactory.KafkaProducer()),
		postgres.NewAuditRepository(pgPool),
	)

	dispatcher := dispatch.New(
		dedup.NewCache(cfg.Dedup.EventTTL),
		dedup.NewGuard(redisClient, cfg.Dedup.PostTTL),
		toggleStore,
		formatter,
		deliverer,
		auditor,
		logger,
	)

	handlers := api.NewHandlers(dispatcher, toggleStore, api.CallbackConfig{
		Confirmation: cfg.VK.Confirmation,
		Secret:       cfg.VK.Secret,
	}, logger)

	srv := &http.Server{
		Addr:    ":" + cfg.HTTP.Port,
		Handler: api.NewRouter(handlers),
	}

	go func() {
		logger.Info("Server starting", "port", cfg.HTTP.Port, "group_id", cfg.VK.GroupID)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("listen failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	// Let in-flight deliveries finish their retry cycle before exiting;
	// aborting mid-attempt risks partial or duplicate sends on restart.
	drainCtx, drainCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer drainCancel()
	handlers.Drain(drainCtx)
	auditor.Close()

	logger.Info("Server exiting")
}
