package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/platformhq/support-service/internal/api/http"
	"github.com/platformhq/support-service/internal/api/http/handlers"
	"github.com/platformhq/support-service/internal/auth"
	"github.com/platformhq/support-service/internal/config"
	"github.com/platformhq/support-service/internal/events"
	"github.com/platformhq/support-service/internal/observability"
	"github.com/platformhq/support-service/internal/persistence"
	"github.com/platformhq/support-service/internal/repository"
	"github.com/platformhq/support-service/internal/service"
	"github.com/platformhq/support-service/internal/worker"
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

	slaPolicy, err := service.NewSlaPolicyFromConfig(cfg.Sla)
	if err != nil {
		logger.Fatal("invalid sla configuration", zap.Error(err))
	}

	pool := pg.PoolHandle()
	ticketRepo := repository.NewTicketRepository(pool)
	messageRepo := repository.NewTicketMessageRepository(pool)
	historyRepo := repository.NewStatusHistoryRepository(pool)
	cannedRepo := repository.NewCannedResponseRepository(pool)
	agentRepo := repository.NewAgentRepository(pool)
	sequenceAllocator := repository.NewSequenceAllocator(pool)

	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()

	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:  ticketRepo,
		MessageRepo: messageRepo,
		HistoryRepo: historyRepo,
		CannedRepo:  cannedRepo,
		Sequence:    sequenceAllocator,
		SlaPolicy:   slaPolicy,
		Dispatcher:  dispatcher,
	})

	analyticsService := service.NewAnalyticsService(service.AnalyticsDependencies{
		TicketRepo:  ticketRepo,
		MessageRepo: messageRepo,
		SlaPolicy:   slaPolicy,
		Cache:       redis.Client,
		CacheTTL:    cfg.Analytics.CacheTTL(),
		Logger:      logger,
	})
	analyticsService.RegisterCacheInvalidation(dispatcher)

	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	autoCloseJob := worker.NewAutoCloseJob(worker.AutoCloseDependencies{
		TicketRepo:  ticketRepo,
		MessageRepo: messageRepo,
		Closer:      ticketService,
		Logger:      logger,
		Metrics:     metrics,
		Config:      cfg.AutoClose,
	})
	go autoCloseJob.Start(ctx)

	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	agentService := service.NewAgentService(cfg.Auth, agentRepo, tokenManager)
	authMiddleware := auth.NewAuthMiddleware(tokenManager, agentRepo)

	app := fiber.New(fiber.Config{DisableStartupMessage: cfg.App.Env == "production"})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:          handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Tickets:         handlers.NewTicketsHandler(ticketService),
		CannedResponses: handlers.NewCannedResponsesHandler(ticketService),
		Analytics:       handlers.NewAnalyticsHandler(analyticsService),
		Agents:          handlers.NewAgentsHandler(agentService),
		AuthMiddleware:  authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)
	cancel()

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
