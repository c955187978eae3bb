package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/helpdeskhq/helpdesk-service/internal/api/http"
	"github.com/helpdeskhq/helpdesk-service/internal/api/http/handlers"
	"github.com/helpdeskhq/helpdesk-service/internal/auth"
	"github.com/helpdeskhq/helpdesk-service/internal/config"
	"github.com/helpdeskhq/helpdesk-service/internal/events"
	"github.com/helpdeskhq/helpdesk-service/internal/observability"
	"github.com/helpdeskhq/helpdesk-service/internal/persistence"
	"github.com/helpdeskhq/helpdesk-service/internal/repository"
	"github.com/helpdeskhq/helpdesk-service/internal/service"
	"github.com/helpdeskhq/helpdesk-service/internal/worker"
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

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	ticketRepo := repository.NewTicketRepository(pool)
	commentRepo := repository.NewCommentRepository(pool)
	attachmentRepo := repository.NewAttachmentRepository(pool)
	catalogRepo := repository.NewServiceCatalogRepository(pool)
	userRepo := repository.NewUserRepository(pool)
	approvalRepo := repository.NewApprovalRepository(pool)
	taskRepo := repository.NewTaskRepository(pool)
	vendorRepo := repository.NewVendorAssignmentRepository(pool)
	historyRepo := repository.NewTicketHistoryRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()
	publisher := events.NewRedisPublisher(redis.Client(), cfg.Events.RedisChannel, logger)

	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartEventWorkers(dispatcher, notificationService, publisher)

	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:     ticketRepo,
		CommentRepo:    commentRepo,
		AttachmentRepo: attachmentRepo,
		CatalogRepo:    catalogRepo,
		UserRepo:       userRepo,
		ApprovalRepo:   approvalRepo,
		TaskRepo:       taskRepo,
		VendorRepo:     vendorRepo,
		HistoryRepo:    historyRepo,
		Dispatcher:     dispatcher,
	})
	claimService := service.NewClaimService(service.ClaimDependencies{
		TicketRepo:    ticketRepo,
		UserRepo:      userRepo,
		CatalogRepo:   catalogRepo,
		ApprovalRepo:  approvalRepo,
		HistoryRepo:   historyRepo,
		Dispatcher:    dispatcher,
		TicketService: ticketService,
	})
	approvalService := service.NewApprovalService(service.ApprovalDependencies{
		TicketRepo:   ticketRepo,
		UserRepo:     userRepo,
		CatalogRepo:  catalogRepo,
		ApprovalRepo: approvalRepo,
		HistoryRepo:  historyRepo,
		Dispatcher:   dispatcher,
	})
	taskService := service.NewTaskService(service.TaskDependencies{
		TaskRepo:     taskRepo,
		TicketRepo:   ticketRepo,
		UserRepo:     userRepo,
		CatalogRepo:  catalogRepo,
		ApprovalRepo: approvalRepo,
	})
	authService := service.NewAuthService(cfg.Auth, userRepo)
	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo)

	metrics := observability.NewMetrics()

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: cfg.App.Env == "production",
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Auth:      authMiddleware,
		AuthH:     handlers.NewAuthHandler(authService),
		Tickets:   handlers.NewTicketsHandler(ticketService, claimService),
		Bulk:      handlers.NewBulkHandler(claimService),
		Approvals: handlers.NewApprovalsHandler(ticketService, approvalService),
		Tasks:     handlers.NewTasksHandler(taskService),
		Health:    handlers.NewHealthHandler(pg, redis, metrics, cfg.App.Version),
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
