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

	httptransport "github.com/lcs-staffing/admin-console/internal/api/http"
	"github.com/lcs-staffing/admin-console/internal/api/http/handlers"
	"github.com/lcs-staffing/admin-console/internal/auth"
	"github.com/lcs-staffing/admin-console/internal/config"
	"github.com/lcs-staffing/admin-console/internal/events"
	"github.com/lcs-staffing/admin-console/internal/geocode"
	"github.com/lcs-staffing/admin-console/internal/identity"
	"github.com/lcs-staffing/admin-console/internal/notify"
	"github.com/lcs-staffing/admin-console/internal/observability"
	"github.com/lcs-staffing/admin-console/internal/persistence"
	"github.com/lcs-staffing/admin-console/internal/repository"
	"github.com/lcs-staffing/admin-console/internal/service"
	"github.com/lcs-staffing/admin-console/internal/storage"
	"github.com/lcs-staffing/admin-console/internal/worker"
	"github.com/lcs-staffing/admin-console/migrations"
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

	metrics := observability.NewMetrics()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.Pool(), migrations.FS, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis, err := persistence.NewRedis(ctx, cfg.Redis, logger)
	if err != nil {
		logger.Fatal("failed to connect redis", zap.Error(err))
	}
	defer redis.Close()

	pool := pg.Pool()
	jobRepo := repository.NewJobRepository(pool)
	adminRepo := repository.NewAdminRepository(pool)
	credentialRepo := repository.NewCredentialRepository(pool)
	resetRepo := repository.NewPasswordResetRepository(pool)
	loginRepo := repository.NewLoginRepository(pool)

	relay := events.NewRedisRelay(redis.Client, cfg.Redis.EventsChannel, events.NewInMemoryDispatcher(logger), logger)
	go func() {
		if err := relay.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Error("event relay stopped", zap.Error(err))
		}
	}()

	var (
		mailer  service.MailSender
		webhook service.EventPoster
	)
	if cfg.Notification.MailEnabled() {
		mailer = notify.NewSMTPMailer(cfg.Notification, logger)
	} else {
		logger.Warn("mail relay not configured; password reset emails will fail")
	}
	if cfg.Notification.WebhookURL != "" {
		webhook = notify.NewWebhook(cfg.Notification)
	}
	notificationService := service.NewNotificationService(relay, mailer, webhook, logger)
	notificationService.RegisterHandlers()
	defer notificationService.Unregister()

	provider := identity.NewLocalProvider(cfg.Auth, identity.Dependencies{
		Credentials: credentialRepo,
		Resets:      resetRepo,
		Revocations: identity.NewRedisRevocationStore(redis.Client),
		Mailer:      notificationService,
	}, logger)
	gate := auth.NewGate(provider, adminRepo, metrics, logger)

	var (
		assets      service.AssetStore
		storagePing handlers.Pinger
	)
	if cfg.Storage.Enabled() {
		store, err := storage.NewS3Store(cfg.Storage, logger)
		if err != nil {
			logger.Fatal("failed to init object storage", zap.Error(err))
		}
		manager := storage.NewAssetManager(store, metrics, logger)
		assets, storagePing = manager, manager
	} else {
		logger.Warn("object storage not configured; job images will not be saved")
	}

	var geocoder geocode.Geocoder
	if cfg.Geocoding.Enabled() {
		geocoder = geocode.NewClient(cfg.Geocoding, logger)
	} else {
		logger.Warn("geocoding not configured; job coordinates will not be resolved")
	}

	jobService := service.NewJobService(service.JobDependencies{
		JobRepo:        jobRepo,
		Admins:         adminRepo,
		Assets:         assets,
		Geocoder:       geocoder,
		Dispatcher:     relay,
		Metrics:        metrics,
		Logger:         logger,
		RequireAddress: cfg.Jobs.RequireAddress,
	})
	jobFeed := service.NewJobFeed(jobRepo, relay, logger)
	defer jobFeed.Close()

	rosterService := service.NewRosterService(adminRepo, provider, logger)
	if err := rosterService.EnsureSuperAdmin(ctx, cfg.Auth.SuperAdminPassword); err != nil {
		logger.Warn("super admin bootstrap failed", zap.Error(err))
	}

	authService := service.NewAuthService(service.AuthDependencies{
		Provider:  provider,
		Gate:      gate,
		LoginRepo: loginRepo,
		AdminRepo: adminRepo,
		Logger:    logger,
	})

	maintenance := worker.NewMaintenance(resetRepo, cfg.Maintenance.ResetPurgeCron, logger)
	if err := maintenance.Start(ctx); err != nil {
		logger.Fatal("failed to start maintenance", zap.Error(err))
	}
	defer maintenance.Stop()

	app := fiber.New(fiber.Config{
		AppName:   cfg.App.Name,
		BodyLimit: cfg.Storage.BodyLimit(),
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	healthHandler := handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Pinger{
		"postgres": pg,
		"redis":    redis,
		"storage":  storagePing,
	})

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         healthHandler,
		Auth:           handlers.NewAuthHandler(authService),
		Jobs:           handlers.NewJobsHandler(jobService, jobFeed, gate, cfg.Storage.MaxUploadBytes),
		Admins:         handlers.NewAdminsHandler(rosterService),
		AuthMiddleware: auth.NewMiddleware(gate),
		Metrics:        metrics,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
