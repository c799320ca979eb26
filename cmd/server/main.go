package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	_ "github.com/shopbot/backend/docs"
	catalogapp "github.com/shopbot/backend/internal/application/catalog"
	feedbackapp "github.com/shopbot/backend/internal/application/feedback"
	identityapp "github.com/shopbot/backend/internal/application/identity"
	reportapp "github.com/shopbot/backend/internal/application/report"
	tradeapp "github.com/shopbot/backend/internal/application/trade"
	"github.com/shopbot/backend/internal/domain/notification"
	"github.com/shopbot/backend/internal/infrastructure/auth"
	"github.com/shopbot/backend/internal/infrastructure/cache"
	"github.com/shopbot/backend/internal/infrastructure/config"
	"github.com/shopbot/backend/internal/infrastructure/event"
	"github.com/shopbot/backend/internal/infrastructure/inventory"
	"github.com/shopbot/backend/internal/infrastructure/logger"
	"github.com/shopbot/backend/internal/infrastructure/persistence"
	"github.com/shopbot/backend/internal/infrastructure/scheduler"
	"github.com/shopbot/backend/internal/infrastructure/telemetry"
	"github.com/shopbot/backend/internal/interfaces/http/handler"
	"github.com/shopbot/backend/internal/interfaces/http/middleware"
	"github.com/shopbot/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

const shutdownTimeout = 30 * time.Second

//go:generate swag init -g main.go -d ./,../../internal/interfaces/http/handler,../../internal/application,../../internal/interfaces/http/dto -o ../../docs

//	@title			Shop Bot Admin API
//	@version		1.0
//	@description	Management API for the chat shop: orders, catalog, users, feedback and statistics.

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		logger.Sync(log)
	}()

	log.Info("Starting shop backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Telemetry
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	meter := meterProvider.Meter(cfg.Telemetry.ServiceName)
	logsProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.Enabled && cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize logger provider", zap.Error(err))
	}
	log = logsProvider.Bridge(log)

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully", zap.String("driver", cfg.Database.Driver))

	dbObserver, err := telemetry.NewDBObserver(dbObserverConfig(cfg), meter, log)
	if err != nil {
		log.Fatal("Failed to create database observer", zap.Error(err))
	}
	if err := dbObserver.Register(db.DB); err != nil {
		log.Fatal("Failed to register database observer", zap.Error(err))
	}
	if sqlDB, err := db.DB.DB(); err == nil {
		dbObserver.StartPoolStats(ctx, sqlDB)
	}

	if cfg.Database.AutoMigrate {
		if err := db.AutoMigrate(ctx); err != nil {
			log.Fatal("Failed to migrate database schema", zap.Error(err))
		}
		log.Info("Database schema migrated")
	}

	// Redis is optional; without it locks and token revocation stay in process
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to redis", zap.Error(err), zap.String("addr", cfg.Redis.Addr()))
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Error("Error closing redis client", zap.Error(err))
			}
		}()
		log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))
	}
	runLock := cache.NewRunLock(redisClient, log)
	blacklist := auth.NewTokenBlacklist(redisClient, log)

	notifiers := []notification.Notifier{event.NewLogNotifier(log)}
	if redisClient != nil {
		notifiers = append(notifiers, event.NewRedisStreamNotifier(redisClient, event.DefaultStream, log))
	}
	notifier := event.NewFanoutNotifier(log, notifiers...)

	// Repositories
	categoryRepo := persistence.NewGormCategoryRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	cartRepo := persistence.NewGormCartRepository(db.DB)
	feedbackRepo := persistence.NewGormFeedbackRepository(db.DB)
	statisticsRepo := persistence.NewGormStatisticsRepository(db.DB)

	// Services
	orderService := tradeapp.NewOrderService(orderRepo, userRepo, tradeapp.ShopDetails{
		Address1:     cfg.Shop.Address1,
		Address2:     cfg.Shop.Address2,
		PaymentPhone: cfg.Shop.PaymentPhone,
		PaymentBank:  cfg.Shop.PaymentBank,
	}, log)
	orderService.SetNotifier(notifier)
	cartService := tradeapp.NewCartService(cartRepo, userRepo, cfg.Cart.AbandonAfter, log)
	cartService.SetNotifier(notifier)

	shopMetrics, err := telemetry.NewShopMetrics(telemetry.ShopMetricsConfig{
		Meter:    meter,
		Logger:   log,
		Provider: tradeapp.NewBacklog(orderService, cartService),
	})
	if err != nil {
		log.Fatal("Failed to create shop metrics", zap.Error(err))
	}
	orderService.SetMetrics(shopMetrics)
	cartService.SetMetrics(shopMetrics)
	shopMetrics.Start(ctx)

	var productSource catalogapp.ProductSource
	inventoryClient, err := inventory.NewClient(inventory.FromAppConfig(cfg.Inventory), log)
	switch {
	case err == nil:
		productSource = inventoryClient
	case cfg.Sync.Enabled:
		log.Fatal("Failed to create inventory client", zap.Error(err))
	default:
		log.Warn("Inventory client not configured, manual sync runs will report nothing to do", zap.Error(err))
		productSource = emptySource{}
	}

	catalogService := catalogapp.NewCatalogService(categoryRepo, productRepo, log)
	syncService := catalogapp.NewSyncService(catalogapp.SyncServiceConfig{
		Source:     productSource,
		Products:   productRepo,
		Categories: categoryRepo,
		Lock:       runLock,
		LockTTL:    cfg.Sync.LockTTL,
		Metrics:    shopMetrics,
		Logger:     log,
	})
	userService := identityapp.NewUserService(userRepo, log)
	feedbackService := feedbackapp.NewService(feedbackRepo, userRepo, log)
	statisticsService := reportapp.NewStatisticsService(statisticsRepo, log)

	authenticator, err := auth.NewAdminAuthenticator(cfg.Auth.Admins)
	if err != nil {
		log.Fatal("Failed to load admin credentials", zap.Error(err))
	}
	authService := identityapp.NewAuthService(authenticator, auth.NewJWTService(cfg.JWT), blacklist, log)

	// Background jobs
	var (
		sched    *scheduler.Scheduler
		triggers []*scheduler.IntervalTrigger
	)
	schedCfg := scheduler.FromAppConfig(cfg.Scheduler)
	if schedCfg.Enabled {
		sched, err = scheduler.NewScheduler(schedCfg, scheduler.Tasks{
			scheduler.JobCatalogSync: func(ctx context.Context) error {
				_, err := syncService.Run(ctx)
				if errors.Is(err, catalogapp.ErrSyncInProgress) {
					log.Info("Catalog sync skipped, another run holds the lock")
					return nil
				}
				return err
			},
			scheduler.JobCartReminders: func(ctx context.Context) error {
				_, err := cartService.RemindAbandoned(ctx)
				return err
			},
		}, log)
		if err != nil {
			log.Fatal("Failed to create scheduler", zap.Error(err))
		}
		if err := sched.SetMeter(meter); err != nil {
			log.Warn("Scheduler metrics unavailable", zap.Error(err))
		}
		if err := sched.Start(ctx); err != nil {
			log.Fatal("Failed to start scheduler", zap.Error(err))
		}

		triggerCfgs := []scheduler.TriggerConfig{{
			Job:      scheduler.JobCartReminders,
			Interval: cfg.Cart.ReminderInterval,
		}}
		if cfg.Sync.Enabled {
			triggerCfgs = append(triggerCfgs, scheduler.TriggerConfig{
				Job:          scheduler.JobCatalogSync,
				Interval:     cfg.Sync.Interval,
				RunOnStartup: cfg.Sync.RunOnStartup,
			})
		}
		for _, tc := range triggerCfgs {
			trigger, err := scheduler.NewIntervalTrigger(tc, sched, log)
			if err != nil {
				log.Fatal("Failed to create job trigger", zap.Error(err))
			}
			if err := trigger.Start(ctx); err != nil {
				log.Fatal("Failed to start job trigger", zap.Error(err))
			}
			triggers = append(triggers, trigger)
		}
	}

	// HTTP
	healthChecks := map[string]handler.HealthCheck{
		"database": db.Ping,
	}
	if redisClient != nil {
		healthChecks["redis"] = func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}
	}

	engine, err := router.NewEngine(router.EngineConfig{
		Logger:           log,
		Authenticator:    authService,
		MaxBodySize:      cfg.HTTP.MaxBodySize,
		CORSAllowOrigins: cfg.HTTP.CORSAllowOrigins,
		TrustedProxies:   cfg.HTTP.TrustedProxies,
		Tracing: middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     cfg.Telemetry.Enabled,
		},
		Swagger: middleware.SwaggerConfig{
			Enabled:     cfg.Swagger.Enabled,
			RequireAuth: cfg.Swagger.RequireAuth,
			AllowedIPs:  cfg.Swagger.AllowedIPs,
		},
	}, router.Handlers{
		Health:     handler.NewHealthHandler(healthChecks),
		Auth:       handler.NewAuthHandler(authService),
		Orders:     handler.NewOrderHandler(orderService),
		Catalog:    handler.NewCatalogHandler(catalogService),
		Users:      handler.NewUserHandler(userService, orderService),
		Feedback:   handler.NewFeedbackHandler(feedbackService),
		Statistics: handler.NewStatisticsHandler(statisticsService),
		Sync:       handler.NewSyncHandler(syncService),
		Carts:      handler.NewCartHandler(cartService),
	})
	if err != nil {
		log.Fatal("Failed to build HTTP engine", zap.Error(err))
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	for _, t := range triggers {
		if err := t.Stop(shutdownCtx); err != nil {
			log.Warn("Error stopping job trigger", zap.Error(err))
		}
	}
	if sched != nil {
		if err := sched.Stop(shutdownCtx); err != nil {
			log.Warn("Error stopping scheduler", zap.Error(err))
		}
	}
	shopMetrics.Stop()
	dbObserver.Stop()
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Error shutting down meter provider", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Error shutting down tracer provider", zap.Error(err))
	}

	log.Info("Server exited gracefully")
	if err := logsProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Error shutting down logger provider", zap.Error(err))
	}
}

// dbObserverConfig maps the database driver and telemetry settings onto the
// query observer configuration
func dbObserverConfig(cfg *config.Config) telemetry.DBConfig {
	obs := telemetry.DefaultDBConfig()
	obs.TracingEnabled = cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled
	obs.LogFullSQL = cfg.App.Env == "development"
	if cfg.Telemetry.DBSlowQueryThresh > 0 {
		obs.SlowQueryThresh = cfg.Telemetry.DBSlowQueryThresh
	}
	switch cfg.Database.Driver {
	case "mysql":
		obs.DBSystem = "mysql"
	case "sqlite":
		obs.DBSystem = "sqlite"
	}
	return obs
}

// emptySource stands in for the inventory client when it is not configured
type emptySource struct{}

func (emptySource) ListProducts(context.Context) []inventory.Product { return nil }

func (emptySource) Locations() []inventory.Location { return nil }
