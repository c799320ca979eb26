package router

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/shopbot/backend/internal/infrastructure/logger"
	"github.com/shopbot/backend/internal/interfaces/http/handler"
	"github.com/shopbot/backend/internal/interfaces/http/middleware"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// Handlers groups every admin API handler
type Handlers struct {
	Health     *handler.HealthHandler
	Auth       *handler.AuthHandler
	Orders     *handler.OrderHandler
	Catalog    *handler.CatalogHandler
	Users      *handler.UserHandler
	Feedback   *handler.FeedbackHandler
	Statistics *handler.StatisticsHandler
	Sync       *handler.SyncHandler
	Carts      *handler.CartHandler
}

// EngineConfig configures the admin HTTP engine
type EngineConfig struct {
	Logger           *zap.Logger
	Authenticator    middleware.TokenAuthenticator
	MaxBodySize      int64
	CORSAllowOrigins []string
	TrustedProxies   []string
	Tracing          middleware.TracingConfig
	Swagger          middleware.SwaggerConfig
}

// NewEngine builds the gin engine with the middleware chain and every route
func NewEngine(cfg EngineConfig, h Handlers) (*gin.Engine, error) {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Authenticator == nil {
		return nil, fmt.Errorf("router: authenticator is required")
	}

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, fmt.Errorf("router: invalid trusted proxies: %w", err)
	}

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowOrigins = cfg.CORSAllowOrigins

	engine.Use(
		middleware.RequestID(),
		logger.Recovery(cfg.Logger),
		logger.GinMiddleware(cfg.Logger),
		middleware.TracingWithConfig(cfg.Tracing),
		middleware.Secure(),
		middleware.CORSWithConfig(corsCfg),
		middleware.BodyLimit(cfg.MaxBodySize),
	)
	middleware.SetupValidator()

	engine.GET("/health", h.Health.Health)

	requireAdmin := middleware.AdminAuth(cfg.Authenticator, cfg.Logger)

	engine.GET("/swagger/*any",
		middleware.SwaggerProtection(cfg.Swagger, requireAdmin),
		ginSwagger.WrapHandler(swaggerFiles.Handler),
	)

	authGroup := NewDomainGroup("auth", "/auth")
	authGroup.POST("/login", h.Auth.Login)
	authGroup.POST("/refresh", h.Auth.Refresh)
	authGroup.POST("/logout", requireAdmin, h.Auth.Logout)
	authGroup.GET("/me", requireAdmin, h.Auth.Me)

	admin := NewDomainGroup("admin", "/admin").Use(requireAdmin)

	admin.Group("orders", "/orders").
		GET("", h.Orders.List).
		GET("/pending", h.Orders.Pending).
		GET("/:id", h.Orders.Get).
		PUT("/:id/status", h.Orders.UpdateStatus).
		POST("/:id/confirm", h.Orders.Confirm)

	admin.Group("products", "/products").
		GET("", h.Catalog.ListProducts).
		GET("/:id", h.Catalog.GetProduct).
		PATCH("/:id", h.Catalog.UpdateProduct).
		PUT("/:id/stock", h.Catalog.UpdateStock).
		DELETE("/:id", h.Catalog.DeleteProduct)

	admin.Group("categories", "/categories").
		GET("", h.Catalog.ListCategories).
		POST("", h.Catalog.CreateCategory).
		GET("/:id", h.Catalog.GetCategory).
		GET("/:id/path", h.Catalog.CategoryPath).
		PUT("/:id", h.Catalog.UpdateCategory).
		DELETE("/:id", h.Catalog.DeleteCategory)

	admin.Group("users", "/users").
		GET("", h.Users.List).
		GET("/:external_id", h.Users.Get).
		PATCH("/:external_id", h.Users.UpdateProfile).
		GET("/:external_id/orders", h.Users.Orders)

	admin.Group("feedback", "/feedback").
		GET("", h.Feedback.List).
		PUT("/:id/status", h.Feedback.UpdateStatus)

	admin.GET("/statistics", h.Statistics.Statistics)

	admin.Group("sync", "/sync").
		POST("", h.Sync.Run).
		GET("", h.Sync.Last)

	admin.Group("carts", "/carts").
		GET("/abandoned", h.Carts.Abandoned).
		POST("/remind", h.Carts.Remind)

	NewRouter(engine).Register(authGroup).Register(admin).Setup()
	return engine, nil
}
