package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/random"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "stockbridge/docs"
	"stockbridge/internal/backend"
	"stockbridge/internal/caching"
	"stockbridge/internal/config"
	"stockbridge/internal/handlers"
	"stockbridge/internal/jobs"
	"stockbridge/internal/jobs/background"
	"stockbridge/internal/middleware"
	"stockbridge/internal/repositories"
	"stockbridge/internal/services"
	"stockbridge/internal/sessions"
	"stockbridge/pkg/database"
)

const version = "1.0.0"

// @title stockbridge API
// @version 1.0
// @description Stock transfer workflow service in front of the inventory REST backend.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	_ = godotenv.Load()

	if os.Getenv("APP_ENV") == "development" && os.Getenv("JWT_SECRET") == "" && os.Getenv("JWKS_URL") == "" {
		jwtSecret := random.String(32) // Generate random secret for development
		os.Setenv("JWT_SECRET", jwtSecret)
		log.Printf("WARNING: Using generated JWT secret: %s", jwtSecret)
	}

	configFile := os.Getenv("CONFIG_FILE")
	if configFile == "" {
		configFile = "config.toml"
	}
	cfg, err := config.Load(configFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	// Upstream inventory API
	client := backend.NewClient(cfg.Backend.BaseURL, cfg.BackendTimeout())

	// Redis: notification mirror, dashboard cache, in-flight guards, alert de-duplication
	cacheService := caching.NewRedisCacheService(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	defer cacheService.Close()

	// MinIO: waybill and receiving document archive
	var documents services.DocumentArchiver
	objectStore, err := services.NewObjectStore(services.MinioConfig{
		Endpoint:  cfg.Minio.Endpoint,
		AccessKey: cfg.Minio.AccessKey,
		SecretKey: cfg.Minio.SecretKey,
		UseSSL:    cfg.Minio.UseSSL,
		Bucket:    cfg.Minio.Bucket,
	})
	if err != nil {
		log.Printf("WARN: MinIO unavailable, documents will not be archived: %v", err)
		objectStore = nil
	} else {
		if err := objectStore.EnsureBucket(ctx); err != nil {
			log.Printf("WARN: failed to ensure bucket %s: %v", cfg.Minio.Bucket, err)
		}
		documents = services.NewDocumentService(objectStore, cfg.DocumentURLExpiry())
	}

	// Postgres: command journal
	var dbPinger handlers.Pinger
	var journal services.CommandLogService
	if cfg.Database.URL != "" {
		pool, err := database.NewPool(ctx, cfg.Database.URL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer database.ClosePool(pool)

		if err := database.Migrate(ctx, pool); err != nil {
			log.Fatalf("Failed to migrate database: %v", err)
		}
		dbPinger = pool
		journal = services.NewCommandLogService(repositories.NewCommandLogRepo(pool))
	} else {
		log.Printf("WARN: DATABASE_URL not set, command journal disabled")
	}

	// Background scheduler
	jobScheduler, err := background.NewJobScheduler()
	if err != nil {
		log.Fatalf("Failed to create job scheduler: %v", err)
	}
	if err := jobScheduler.Start(); err != nil {
		log.Fatalf("Failed to start job scheduler: %v", err)
	}

	registry := sessions.NewRegistry(client, cacheService, jobScheduler, cfg.UnreadInterval())

	// Workflow services
	stockAlerts := services.NewStockAlertService(cacheService, cfg.StockAlertTTL())
	refresher := services.NewRefresher(client, cacheService, stockAlerts)
	warehouseService := services.NewWarehouseService(client, documents, cacheService)
	reviewService := services.NewReviewService(client)
	approvalService := services.NewApprovalService(client, reviewService, warehouseService, cacheService)
	transferService := services.NewTransferService(client, refresher, cacheService)

	inventoryAlerts := jobs.NewInventoryAlertService(registry, client, stockAlerts)
	if err := jobs.RegisterJobs(jobScheduler, inventoryAlerts, registry, cfg.StockSweepInterval(), cfg.SessionIdle()); err != nil {
		log.Fatalf("Failed to register background jobs: %v", err)
	}

	// Middlewares
	jwtMiddleware, err := middleware.NewJWTMiddleware(cfg.Auth.Secret, cfg.Auth.JWKSURL)
	if err != nil {
		log.Fatalf("Failed to configure JWT verification: %v", err)
	}
	defer jwtMiddleware.Close()

	sessionMiddleware := middleware.NewSessionMiddleware(registry)
	journalMiddleware := middleware.NewJournalMiddleware(journal)
	versionMiddleware := middleware.NewVersionMiddleware("stockbridge")

	// Handlers
	h := &handlers.Handlers{
		Transfers:     handlers.NewTransferHandlers(transferService),
		Reviews:       handlers.NewReviewHandlers(reviewService, approvalService),
		Warehouse:     handlers.NewWarehouseHandlers(warehouseService),
		Dashboard:     handlers.NewDashboardHandlers(refresher),
		Notifications: handlers.NewNotificationHandlers(),
		Reports:       handlers.NewReportHandlers(refresher),
		Reference:     handlers.NewReferenceHandlers(client),
	}
	if journal != nil {
		h.Journal = handlers.NewJournalHandlers(journal)
	}
	healthHandlers := handlers.NewHealthHandlers(dbPinger, cacheService, objectStore, jobScheduler, registry, version)

	// Echo instance
	e := echo.New()
	e.HideBanner = true

	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.RemoveTrailingSlash())
	e.Use(echoMiddleware.RequestID())
	e.Use(middleware.RequestContext())
	e.Use(versionMiddleware.APIVersionResolver())

	healthHandlers.RegisterHealth(e)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	v1 := e.Group("/v1", versionMiddleware.VersionHeader("v1"), jwtMiddleware.Handler(), sessionMiddleware.RequireSession())
	h.Register(v1, journalMiddleware)

	go func() {
		log.Printf("Starting stockbridge %s on :%s", version, cfg.Server.Port)
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	stop, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()
	<-stop.Done()

	log.Printf("Shutting down")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownSeconds)*time.Second)
	defer cancelShutdown()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("WARN: HTTP shutdown: %v", err)
	}
	registry.CloseAll()
	if err := jobScheduler.Stop(); err != nil {
		log.Printf("WARN: scheduler shutdown: %v", err)
	}
}
