package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/line-menu-bot/internal/api/http"
	"github.com/spec-kit/line-menu-bot/internal/api/http/handlers"
	"github.com/spec-kit/line-menu-bot/internal/auth"
	"github.com/spec-kit/line-menu-bot/internal/config"
	"github.com/spec-kit/line-menu-bot/internal/events"
	"github.com/spec-kit/line-menu-bot/internal/line"
	"github.com/spec-kit/line-menu-bot/internal/observability"
	"github.com/spec-kit/line-menu-bot/internal/persistence"
	"github.com/spec-kit/line-menu-bot/internal/repository"
	"github.com/spec-kit/line-menu-bot/internal/service"
	"github.com/spec-kit/line-menu-bot/internal/storage"
	"github.com/spec-kit/line-menu-bot/internal/transcode"
	"github.com/spec-kit/line-menu-bot/internal/worker"
)

var migrationsDir string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the webhook server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&migrationsDir, "migrations", persistence.DefaultMigrationsDir, "Directory of .sql migrations for the reply log")
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return fmt.Errorf("failed to connect postgres: %w", err)
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations && pg.Enabled() {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), migrationsDir, logger); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	replyLogRepo := repository.NewReplyLogRepository(pg.PoolHandle())
	webhookEventRepo := repository.NewWebhookEventRepository(redis.Client, cfg.Redis.EventTTL())

	lineClient, err := line.NewClient(line.ClientConfig{
		ChannelToken:   cfg.Line.ChannelToken,
		APITimeout:     cfg.App.RequestTimeout(),
		ContentTimeout: cfg.Line.ContentTimeout(),
	})
	if err != nil {
		return fmt.Errorf("failed to init messaging client: %w", err)
	}

	store, err := storage.NewContentStore(cfg.Content.DownloadDir, cfg.App.PublicBaseURL, logger)
	if err != nil {
		return fmt.Errorf("failed to prepare download dir: %w", err)
	}
	defer func() {
		if err := store.Cleanup(); err != nil {
			logger.Warn("failed to remove download dir", zap.Error(err))
		}
	}()

	metrics := observability.NewMetrics()
	transcoder := transcode.NewTranscoder(transcode.ExecRunner{}, cfg.Content.ConvertCommand, cfg.Content.PreviewWidth, logger)
	images := service.NewImagePipeline(lineClient, store, transcoder, logger)
	replies := service.NewReplyDispatcher(service.ReplyDispatcherDependencies{
		Client:           lineClient,
		MaxMessages:      cfg.Line.MaxMessagesPerReply,
		RepliesPerSecond: cfg.Line.RepliesPerSecond,
		ReplyLogs:        replyLogRepo,
		Metrics:          metrics,
		Logger:           logger,
	})
	intents := service.NewIntentEngine()

	bot := service.NewBotService(service.BotDependencies{
		Intents:  intents,
		Profiles: lineClient,
		Replies:  replies,
		Images:   images,
		Logger:   logger,
	})
	router := events.NewRouter(logger, metrics)
	bot.RegisterHandlers(router)

	adminService := service.NewAdminService(cfg.Auth, service.AdminDependencies{
		Intents:   intents,
		ReplyLogs: replyLogRepo,
		Metrics:   metrics,
	})
	authMiddleware := auth.NewAuthMiddleware(adminService.TokenManager())

	if cfg.App.PublicBaseURL == "" && !cfg.App.IsDevelopment() {
		logger.Warn("APP_PUBLIC_BASE_URL not set; image URIs follow the webhook request's scheme and host")
	}

	app := fiber.New(httptransport.FiberConfig(cfg.App))
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Pinger{
			"postgres": pg,
			"redis":    redis,
		}),
		Webhook:        handlers.NewWebhookHandler(cfg.Line.ChannelSecret, router, webhookEventRepo, logger),
		Admin:          handlers.NewAdminHandler(adminService),
		AuthMiddleware: authMiddleware,
		ContentDir:     store.Dir(),
	})

	sweeperDone := worker.StartContentSweeper(ctx, store, cfg.Content.TTL(), cfg.Content.SweepInterval(), logger)

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	cancel()
	<-sweeperDone
	return app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
