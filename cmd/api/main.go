package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/hall-booking-api/api/swagger"
	"github.com/noah-isme/hall-booking-api/internal/handler"
	"github.com/noah-isme/hall-booking-api/internal/middleware"
	"github.com/noah-isme/hall-booking-api/internal/repository"
	"github.com/noah-isme/hall-booking-api/internal/router"
	"github.com/noah-isme/hall-booking-api/internal/service"
	"github.com/noah-isme/hall-booking-api/pkg/broker"
	"github.com/noah-isme/hall-booking-api/pkg/cache"
	"github.com/noah-isme/hall-booking-api/pkg/config"
	"github.com/noah-isme/hall-booking-api/pkg/database"
	"github.com/noah-isme/hall-booking-api/pkg/jobs"
	"github.com/noah-isme/hall-booking-api/pkg/logger"
	"github.com/noah-isme/hall-booking-api/pkg/mail"
	corsmiddleware "github.com/noah-isme/hall-booking-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/hall-booking-api/pkg/middleware/requestid"
	"github.com/noah-isme/hall-booking-api/pkg/storage"
)

// @title Hall Booking API
// @version 1.0.0
// @description Multi-institution hall booking with approval, design, photography and press release workflows.
// @BasePath /api
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if err := run(cfg, logr); err != nil {
		logr.Fatal("server failed", zap.Error(err))
	}
}

func run(cfg *config.Config, logr *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer db.Close()

	rdb, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, continuing without cache and rate limiting", zap.Error(err))
		rdb = nil
	}
	if rdb != nil {
		defer rdb.Close()
	}

	uploadStore, err := storage.NewLocalStorage(cfg.Uploads.Dir)
	if err != nil {
		return fmt.Errorf("init upload storage: %w", err)
	}
	exportStore, err := storage.NewLocalStorage(cfg.Exports.Dir)
	if err != nil {
		return fmt.Errorf("init export storage: %w", err)
	}

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	users := repository.NewUserRepository(db)
	institutions := repository.NewInstitutionRepository(db)
	departments := repository.NewDepartmentRepository(db)
	halls := repository.NewHallRepository(db)
	bookings := repository.NewBookingRepository(db)
	pressReleases := repository.NewPressReleaseRepository(db)
	settings := repository.NewSettingRepository(db)
	audits := repository.NewAuditRepository(db)
	cacheRepo := repository.NewCacheRepository(rdb)

	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Dashboard.CacheTTL, logr, cfg.Dashboard.CacheEnabled && rdb != nil)
	settingSvc := service.NewSettingService(settings, audits, logr)
	authSvc := service.NewAuthService(service.AuthServiceParams{
		Users:        users,
		Departments:  departments,
		Registration: settingSvc,
		Audit:        audits,
		Validator:    validate,
		Logger:       logr,
		Config: service.AuthConfig{
			AccessTokenSecret: cfg.JWT.Secret,
			AccessTokenExpiry: cfg.JWT.Expiration,
			Issuer:            cfg.JWT.Issuer,
		},
	})
	uploadSvc := service.NewUploadService(uploadStore, service.UploadConfig{
		PublicPath:   cfg.Uploads.PublicPath,
		MaxFileSize:  cfg.Uploads.MaxFileSizeBytes,
		AllowedMIMEs: cfg.Uploads.AllowedMIMEs,
		Parallelism:  cfg.Uploads.Parallelism,
		MaxFiles:     cfg.Uploads.MaxFilesPerBatch,
	}, metricsSvc, logr).WithLimits(settingSvc)

	bookingParams := service.BookingServiceParams{
		Repo:        bookings,
		Halls:       halls,
		Departments: departments,
		Audit:       audits,
		Cache:       cacheSvc,
		Metrics:     metricsSvc,
		Files:       uploadSvc,
		Validator:   validate,
		Logger:      logr,
	}

	var queue *jobs.Queue
	if cfg.Events.Enabled || cfg.Mail.Enabled {
		queue = jobs.NewQueue("booking-events", jobs.QueueConfig{
			Workers:    cfg.Events.Workers,
			MaxRetries: cfg.Events.MaxRetries,
			Logger:     logr,
		})
		var publisher broker.Publisher = broker.NopPublisher{}
		if cfg.Events.Enabled {
			publisher = broker.NewRabbitPublisher(cfg.Events.RabbitMQURL, cfg.Events.Queue, logr)
		}
		defer publisher.Close() //nolint:errcheck
		var mailer mail.Sender = mail.NopSender{}
		if cfg.Mail.Enabled {
			mailer = mail.NewSendGridSender(cfg.Mail.APIKey, cfg.Mail.FromName, cfg.Mail.FromAddress)
		}
		bookingParams.Notifier = service.NewBookingNotifier(queue, publisher, mailer, metricsSvc, logr)
		queue.Start(ctx)
		defer queue.Stop()
	}

	bookingSvc := service.NewBookingService(bookingParams)
	exportSvc := service.NewExportService(bookings, exportStore,
		storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL),
		service.ExportConfig{APIPrefix: cfg.APIPrefix, ResultTTL: cfg.Exports.SignedURLTTL}, logr)
	go exportSvc.RunCleanup(ctx, cfg.Exports.CleanupInterval)

	pressSvc := service.NewPressReleaseService(pressReleases, bookings, uploadSvc, audits, cacheSvc, validate, logr,
		service.PressReleaseServiceConfig{MaxPhotos: cfg.PressReleases.MaxPhotos})
	dashboardSvc := service.NewDashboardService(service.DashboardServiceParams{
		Bookings:      bookings,
		Halls:         halls,
		Departments:   departments,
		Users:         users,
		PressReleases: pressReleases,
		Cache:         cacheSvc,
		Logger:        logr,
		Config:        service.DashboardServiceConfig{CacheTTL: cfg.Dashboard.CacheTTL},
	})

	checks := map[string]handler.Pinger{"postgres": db.PingContext}
	if rdb != nil {
		checks["redis"] = cacheRepo.Ping
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.MaxMultipartMemory = 32 << 20
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))
	r.Use(middleware.WithResponseMeta())

	var limiter redis.Scripter
	if rdb != nil {
		limiter = rdb
	}
	router.Register(r, router.Handlers{
		Auth:          handler.NewAuthHandler(authSvc),
		Institutions:  handler.NewInstitutionHandler(service.NewInstitutionService(institutions, validate, logr)),
		Departments:   handler.NewDepartmentHandler(service.NewDepartmentService(departments, validate, logr)),
		Halls:         handler.NewHallHandler(service.NewHallService(halls, validate, logr), service.NewAvailabilityService(bookings, halls, logr)),
		Users:         handler.NewUserHandler(service.NewUserService(users, departments, audits, validate, logr)),
		Bookings:      handler.NewBookingHandler(bookingSvc, exportSvc),
		Exports:       handler.NewExportHandler(exportSvc),
		PressReleases: handler.NewPressReleaseHandler(pressSvc, service.NewNotificationService(bookings, cfg.PressReleases.DueAfterDays, logr)),
		Settings:      handler.NewSettingHandler(settingSvc),
		Dashboard:     handler.NewDashboardHandler(dashboardSvc, metricsSvc),
		Uploads:       handler.NewUploadHandler(uploadSvc),
		Metrics:       handler.NewMetricsHandler(metricsSvc.Handler(), checks),
	}, router.Options{
		APIPrefix:        cfg.APIPrefix,
		UploadsDir:       uploadStore.Root(),
		UploadsPublicDir: cfg.Uploads.PublicPath,
		Tokens:           authSvc,
		RateLimit:        middleware.RateLimit(cfg.RateLimit, limiter, logr),
	})

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
