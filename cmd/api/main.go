package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/rental-service/internal/api/http"
	"github.com/spec-kit/rental-service/internal/api/http/handlers"
	"github.com/spec-kit/rental-service/internal/auth"
	"github.com/spec-kit/rental-service/internal/config"
	"github.com/spec-kit/rental-service/internal/events"
	"github.com/spec-kit/rental-service/internal/observability"
	"github.com/spec-kit/rental-service/internal/persistence"
	"github.com/spec-kit/rental-service/internal/repository"
	"github.com/spec-kit/rental-service/internal/service"
	"github.com/spec-kit/rental-service/internal/storage"
	"github.com/spec-kit/rental-service/internal/worker"
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

	metrics := observability.NewMetrics(cfg.App.Name)
	store := repository.NewStore(pg.PoolHandle())
	dispatcher := events.NewInMemoryDispatcher()
	documents := storage.NewLocalDocumentStore(cfg.Documents, logger)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	sessions := auth.NewSessionRegistry(redis.Client, tokens.TTL())

	authService := service.NewAuthService(service.AuthServiceDependencies{
		Store:      store,
		Tokens:     tokens,
		Sessions:   sessions,
		BcryptCost: cfg.Auth.BcryptCost,
		Logger:     logger,
	})
	verificationService := service.NewVerificationService(service.VerificationDependencies{
		Store:      store,
		Documents:  documents,
		Sessions:   sessions,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	propertyService := service.NewPropertyService(service.PropertyDependencies{Store: store, Logger: logger})
	applicationService := service.NewApplicationService(service.ApplicationDependencies{
		Store:      store,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	bookingService := service.NewBookingService(service.BookingDependencies{Store: store, Logger: logger})
	billService := service.NewBillService(service.BillDependencies{Store: store, Logger: logger})
	feedService := service.NewFeedService(service.FeedDependencies{
		Store:                 store,
		Markers:               service.NewRedisFeedMarkers(redis.Client),
		Logger:                logger,
		LeaseExpiryWindowDays: cfg.Feed.LeaseExpiryWindowDays,
	})
	notificationService := service.NewNotificationService(service.NotificationDependencies{
		Store:      store,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	worker.StartNotificationWorker(notificationService)

	authMiddleware := auth.NewAuthMiddleware(tokens, sessions, store.Users(), logger)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Users:          handlers.NewUsersHandler(authService, verificationService),
		Properties:     handlers.NewPropertiesHandler(propertyService),
		Applications:   handlers.NewApplicationsHandler(applicationService),
		Bookings:       handlers.NewBookingsHandler(bookingService),
		Bills:          handlers.NewBillsHandler(billService),
		Feed:           handlers.NewFeedHandler(feedService),
		Admin:          handlers.NewAdminHandler(verificationService),
		AuthMiddleware: authMiddleware,
		Metrics:        metrics,
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
