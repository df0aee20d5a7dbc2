package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/stuurdean/municipality-dashboards/internal/api/http"
	"github.com/stuurdean/municipality-dashboards/internal/api/http/handlers"
	"github.com/stuurdean/municipality-dashboards/internal/auth"
	"github.com/stuurdean/municipality-dashboards/internal/config"
	"github.com/stuurdean/municipality-dashboards/internal/events"
	"github.com/stuurdean/municipality-dashboards/internal/ml"
	"github.com/stuurdean/municipality-dashboards/internal/observability"
	"github.com/stuurdean/municipality-dashboards/internal/persistence"
	"github.com/stuurdean/municipality-dashboards/internal/repository"
	"github.com/stuurdean/municipality-dashboards/internal/service"
	"github.com/stuurdean/municipality-dashboards/internal/worker"
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
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger, cfg.Postgres.MigrationsDir); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	pool := pg.PoolHandle()
	reportRepo := repository.NewReportRepository(pool)
	commentRepo := repository.NewCommentRepository(pool)
	historyRepo := repository.NewStatusHistoryRepository(pool)
	userRepo := repository.NewUserRepository(pool)

	directoryService := service.NewDirectoryService(userRepo)
	reportService := service.NewReportService(service.ReportDependencies{
		ReportRepo:  reportRepo,
		CommentRepo: commentRepo,
		HistoryRepo: historyRepo,
		Dispatcher:  dispatcher,
	})
	assignmentService := service.NewAssignmentService(service.AssignmentDependencies{
		ReportRepo: reportRepo,
		Directory:  directoryService,
		Dispatcher: dispatcher,
	})
	analyticsService := service.NewAnalyticsService(service.AnalyticsDependencies{
		ReportRepo: reportRepo,
		UserRepo:   userRepo,
		Cache:      redis.Client,
		CacheTTL:   cfg.Analytics.CacheTTL(),
		Logger:     logger,
		Metrics:    metrics,
	})
	exportService := service.NewExportService(reportRepo, directoryService)

	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	if cfg.ML.Enabled {
		classifier := ml.NewHTTPClassifier(cfg.ML, logger)
		mlWorker := worker.NewMLWorker(cfg.ML, reportRepo, classifier, dispatcher, logger, metrics)
		go mlWorker.Start(ctx)
	}

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	authMiddleware := auth.NewAuthMiddleware(tokens, userRepo)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Reports:        handlers.NewReportsHandler(reportService, assignmentService),
		Employees:      handlers.NewEmployeesHandler(directoryService, assignmentService),
		Analytics:      handlers.NewAnalyticsHandler(analyticsService),
		Export:         handlers.NewExportHandler(exportService),
		AuthMiddleware: authMiddleware,
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
