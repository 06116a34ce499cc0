package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/content-crm/internal/api/http"
	"github.com/spec-kit/content-crm/internal/api/http/handlers"
	"github.com/spec-kit/content-crm/internal/auth"
	"github.com/spec-kit/content-crm/internal/config"
	"github.com/spec-kit/content-crm/internal/events"
	"github.com/spec-kit/content-crm/internal/observability"
	"github.com/spec-kit/content-crm/internal/persistence"
	"github.com/spec-kit/content-crm/internal/repository"
	"github.com/spec-kit/content-crm/internal/service"
	"github.com/spec-kit/content-crm/internal/worker"
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

	rdb := persistence.NewRedis(cfg.Redis, logger)
	defer rdb.Close()

	pool := pg.PoolHandle()
	ticketRepo := repository.NewTicketRepository(pool)
	memberRepo := repository.NewMemberRepository(pool)
	clientRepo := repository.NewClientRepository(pool)
	contentRepo := repository.NewContentRepository(pool)
	timelineRepo := repository.NewTimelineRepository(pool)
	workflowStore := repository.NewWorkflowStore(pool)
	pendingStore := repository.NewPendingTransitionStore(rdb.Client)

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		MemberRepo: memberRepo,
	})
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:   ticketRepo,
		MemberRepo:   memberRepo,
		ClientRepo:   clientRepo,
		ContentRepo:  contentRepo,
		TimelineRepo: timelineRepo,
		Dispatcher:   dispatcher,
		Logger:       logger,
	})
	workflowService := service.NewWorkflowService(service.WorkflowDependencies{
		TicketRepo:   ticketRepo,
		MemberRepo:   memberRepo,
		ClientRepo:   clientRepo,
		ContentRepo:  contentRepo,
		TimelineRepo: timelineRepo,
		Store:        workflowStore,
		PendingStore: pendingStore,
		Dispatcher:   dispatcher,
		Metrics:      metrics,
		Logger:       logger,
	})
	notificationService := service.NewNotificationService(dispatcher, logger, metrics, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), memberRepo)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(pool, rdb.Client, metrics),
		Auth:           handlers.NewAuthHandler(authService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Workflow:       handlers.NewWorkflowHandler(workflowService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
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
