package router

import (
	"fmt"
	"log/slog"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/polkiloo/youwow/internal/config"
	"github.com/polkiloo/youwow/internal/metrics"
	"github.com/polkiloo/youwow/internal/ratelimit"
	"github.com/polkiloo/youwow/internal/server/http/handlers"
	"github.com/polkiloo/youwow/internal/server/http/middleware"
)

// Module provides the gin engine serving the public, webhook and admin API.
var Module = fx.Provide(Setup)

// Params collects router dependencies.
type Params struct {
	fx.In

	Facade  handlers.GiftFacade
	Limiter ratelimit.Limiter
	Metrics *metrics.Metrics
	Config  *config.Config
	Logger  *slog.Logger
}

// Setup configures gin router with handlers and middleware. Client
// addresses come from X-Forwarded-For only when the peer is a configured
// trusted proxy; they feed the FreeKassa allowlist and the trigger limit.
func Setup(p Params) (*gin.Engine, error) {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	if err := engine.SetTrustedProxies(p.Config.TrustedProxies); err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(p.Logger))
	engine.Use(middleware.DecompressRequest(middleware.MaxRequestBody))
	engine.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))

	authHandler := handlers.NewAuthHandler(p.Facade)
	orderHandler := handlers.NewOrderHandler(p.Facade)
	paymentHandler := handlers.NewPaymentHandler(p.Facade, p.Logger)
	adminHandler := handlers.NewAdminHandler(p.Facade, p.Logger)
	healthHandler := handlers.NewHealthHandler(p.Facade)

	engine.GET("/healthz", healthHandler.Check)
	engine.GET("/metrics", gin.WrapH(p.Metrics.Handler()))

	api := engine.Group("/api")
	api.GET("/service-options", orderHandler.ServiceOptions)
	api.POST("/orders", orderHandler.Create)
	api.GET("/orders/:id", orderHandler.Get)
	api.POST("/orders/:id/verify-payment", orderHandler.VerifyPayment)
	api.POST("/payments", paymentHandler.Create)
	api.POST("/process",
		middleware.RateLimit(p.Limiter, "process", ratelimit.Rule{
			Limit:  p.Config.TriggerRateLimit,
			Window: p.Config.TriggerRateWindow,
		}, p.Logger),
		orderHandler.Process,
	)

	webhooks := api.Group("/webhooks")
	webhooks.POST("/oneplat", paymentHandler.OnePlat)
	webhooks.POST("/freekassa", paymentHandler.FreeKassa)
	webhooks.POST("/yookassa", paymentHandler.YooKassa)

	admin := api.Group("/admin")
	admin.POST("/login", authHandler.Login)

	adminAuth := admin.Group("")
	adminAuth.Use(middleware.AuthRequired(p.Facade))
	adminAuth.GET("/partners", adminHandler.Partners)
	adminAuth.POST("/partners", adminHandler.CreatePartner)
	adminAuth.GET("/partners/:id", adminHandler.Partner)
	adminAuth.PUT("/partners/:id", adminHandler.UpdatePartner)
	adminAuth.PATCH("/partners/:id/status", adminHandler.SetPartnerStatus)
	adminAuth.GET("/partners/:id/stats", adminHandler.Stats)
	adminAuth.GET("/partners/:id/conversions", adminHandler.Conversions)
	adminAuth.GET("/partners/:id/payouts", adminHandler.Payouts)
	adminAuth.POST("/partners/:id/payouts", adminHandler.CreatePayout)
	adminAuth.GET("/service-options", adminHandler.ServiceOptions)
	adminAuth.PUT("/service-options/:type", adminHandler.SetServiceOption)

	return engine, nil
}
