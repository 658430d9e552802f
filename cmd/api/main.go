package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/support-desk/internal/api/http"
	"github.com/spec-kit/support-desk/internal/api/http/handlers"
	"github.com/spec-kit/support-desk/internal/auth"
	"github.com/spec-kit/support-desk/internal/config"
	"github.com/spec-kit/support-desk/internal/events"
	"github.com/spec-kit/support-desk/internal/observability"
	"github.com/spec-kit/support-desk/internal/persistence"
	"github.com/spec-kit/support-desk/internal/realtime"
	"github.com/spec-kit/support-desk/internal/repository"
	"github.com/spec-kit/support-desk/internal/service"
	"github.com/spec-kit/support-desk/internal/storage"
	"github.com/spec-kit/support-desk/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	store, err := storage.NewS3Store(ctx, cfg.Storage)
	if err != nil {
		logger.Fatal("failed to init object store", zap.Error(err))
	}

	pool := pg.PoolHandle()
	profileRepo := repository.NewProfileRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	commentRepo := repository.NewCommentRepository(pool)
	attachmentRepo := repository.NewAttachmentRepository(pool)
	fieldDefRepo := repository.NewFieldDefinitionRepository(pool)
	tagRepo := repository.NewTagRepository(pool)
	templateRepo := repository.NewTemplateRepository(pool)
	settingsRepo := repository.NewSettingsRepository(pool)
	eventRepo := repository.NewTicketEventRepository(pool)
	archiveRepo := repository.NewArchiveRepository(pool)
	analyticsRepo := repository.NewAnalyticsRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()
	bridge := realtime.NewBridge(redis.Client, logger)
	bridge.Register(dispatcher)

	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	authMiddleware := auth.NewAuthMiddleware(tokenManager, profileRepo)

	settingsService := service.NewSettingsService(settingsRepo)
	fieldsService := service.NewFieldsService(fieldDefRepo)
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo: ticketRepo,
		AuditRepo:  eventRepo,
		Settings:   settingsService,
		Fields:     fieldsService,
		Dispatcher: dispatcher,
	})
	viewService := service.NewViewService(ticketRepo, commentRepo, attachmentRepo, profileRepo)
	commentService := service.NewCommentService(commentRepo, ticketRepo, dispatcher)
	attachmentService := service.NewAttachmentService(attachmentRepo, ticketRepo, store, dispatcher, logger)
	tagService := service.NewTagService(tagRepo)
	templateService := service.NewTemplateService(templateRepo)
	analyticsService := service.NewAnalyticsService(analyticsRepo)
	archiveService := service.NewArchiveService(archiveRepo, logger)
	authService := service.NewAuthService(profileRepo, tokenManager, cfg.Auth)
	notificationService := service.NewNotificationService(ticketRepo, profileRepo, settingsService, logger, cfg.Notification)

	notificationWorker := worker.StartNotificationWorker(ctx, dispatcher, notificationService, logger)
	defer notificationWorker.Stop()

	hub := realtime.NewHub(cfg.Realtime.Addr(), redis.Client, tokenManager, profileRepo, viewService, logger)
	hub.Start(ctx)
	defer hub.Stop()

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: true,
	})
	metrics := observability.NewMetrics()
	observability.StartMetricsReporter(ctx, logger, metrics, time.Minute)
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService),
		Tickets:        handlers.NewTicketsHandler(ticketService, viewService),
		Comments:       handlers.NewCommentsHandler(commentService),
		Attachments:    handlers.NewAttachmentsHandler(attachmentService),
		Templates:      handlers.NewTemplatesHandler(templateService),
		Analytics:      handlers.NewAnalyticsHandler(analyticsService),
		Admin: handlers.NewAdminHandler(handlers.AdminDependencies{
			Fields:   fieldsService,
			Tags:     tagService,
			Settings: settingsService,
			Accounts: authService,
			Archive:  archiveService,
		}),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		logger.Info("api server started", zap.String("addr", cfg.App.Addr()))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
