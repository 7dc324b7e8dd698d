package handler

import (
	"tokensale-platform/internal/adapter/http/dto"
	"tokensale-platform/internal/adapter/http/middleware"
	redisStore "tokensale-platform/internal/adapter/storage/redis"
	"tokensale-platform/internal/core/ports"
	"tokensale-platform/pkg/metrics"
	"tokensale-platform/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Version is the service version banner, overridable at build time.
var Version = "dev"

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	AccountSvc     ports.AccountService
	StakingSvc     ports.StakingService
	AdminSvc       ports.AdminService
	ContentSvc     ports.ContentService
	ConfigSvc      ports.ConfigService
	NewsletterSvc  ports.NewsletterService
	SessionSvc     ports.SessionTokenService
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	Metrics        *metrics.Metrics // nil = metrics disabled
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Middleware())
	}

	// Health check (deep — verifies PostgreSQL + Redis)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))
	if deps.Metrics != nil {
		r.GET("/metrics", deps.Metrics.Handler())
	}

	// Rate limit rules
	rules := middleware.DefaultRateLimitRules()

	// Helper: return rate limiter middleware if store is available, else noop.
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	api := r.Group("/api")

	api.GET("/status", func(c *gin.Context) {
		response.OK(c, dto.StatusResponse{
			Service: "tokensale-platform",
			Version: Version,
			Status:  "operational",
		})
	})

	sessionAuth := middleware.SessionAuth(deps.SessionSvc, deps.Logger)

	// --- Wallet authentication ---
	authHandler := NewAuthHandler(deps.AccountSvc)
	auth := api.Group("/auth")
	{
		auth.POST("/connect", rl("connect"), authHandler.Connect)
		auth.GET("/verify", authHandler.Verify)
		auth.POST("/disconnect", sessionAuth, authHandler.Disconnect)
		auth.PUT("/profile", sessionAuth, authHandler.UpdateProfile)
	}

	// --- Token balances and staking ---
	tokenHandler := NewTokenHandler(deps.StakingSvc, deps.AccountSvc)
	tokens := api.Group("/tokens")
	{
		tokens.GET("/balance", sessionAuth, tokenHandler.Balance)
		tokens.GET("/staked", sessionAuth, tokenHandler.Staked)
		tokens.GET("/percentage", sessionAuth, tokenHandler.Percentage)
		tokens.GET("/transactions", sessionAuth, tokenHandler.Transactions)
		tokens.POST("/stake", sessionAuth, rl("stake"), tokenHandler.Stake)
		tokens.POST("/unstake", sessionAuth, rl("stake"), tokenHandler.Unstake)
		tokens.POST("/buy", sessionAuth, rl("buy"), tokenHandler.Buy)
		tokens.POST("/affiliate", rl("affiliate"), tokenHandler.Affiliate)
	}

	// --- Content store (public reads, admin writes) ---
	contentHandler := NewContentHandler(deps.ContentSvc)
	content := api.Group("/content")
	{
		content.GET("/translations", contentHandler.Translations)
		content.GET("/:page/:language", contentHandler.GetPage)
		content.POST("/admin/update", sessionAuth, rl("admin"), contentHandler.Update)
	}

	// --- System configuration ---
	configHandler := NewConfigHandler(deps.ConfigSvc)
	configs := api.Group("/config")
	{
		configs.GET("/get", configHandler.GetPublic)
		configs.POST("/admin/update", sessionAuth, rl("admin"), configHandler.Update)
	}

	// --- Newsletter ---
	newsletterHandler := NewNewsletterHandler(deps.NewsletterSvc)
	newsletter := api.Group("/newsletter")
	{
		newsletter.POST("/subscribe", rl("newsletter"), newsletterHandler.Subscribe)
		newsletter.POST("/unsubscribe", rl("newsletter"), newsletterHandler.Unsubscribe)
		newsletter.GET("/admin/list", sessionAuth, rl("admin"), newsletterHandler.List)
	}

	// --- Admin reporting ---
	adminHandler := NewAdminHandler(deps.AdminSvc)
	admin := api.Group("/admin", sessionAuth, rl("admin"))
	{
		admin.GET("/dashboard", adminHandler.Dashboard)
		admin.GET("/stats", adminHandler.Stats)
		admin.GET("/users", adminHandler.Users)
	}

	return r
}
