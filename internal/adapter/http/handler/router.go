package handler

import (
	"economy-ledger/internal/adapter/http/middleware"
	redisStorage "economy-ledger/internal/adapter/storage/redis"
	"economy-ledger/internal/core/ports"
	"economy-ledger/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	Economy        *service.Economy
	HealthCheckers []ports.HealthChecker
	RateLimits     *redisStorage.RateLimitStore // nil = rate limiting disabled
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Health check (deep — verifies the configured store backend)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	economyHandler := NewEconomyHandler(deps.Economy)

	rules := middleware.DefaultRateLimitRules()
	limit := func(group string) gin.HandlerFunc {
		if deps.RateLimits == nil {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimits, group, rules[group], deps.Logger)
	}

	v1 := r.Group("/api/v1")

	currencies := v1.Group("/currencies", limit("queries"))
	{
		currencies.GET("", economyHandler.ListCurrencies)
		currencies.GET("/primary", economyHandler.PrimaryCurrency)
		currencies.GET("/:currency/leaderboard", economyHandler.Leaderboard)
	}

	accounts := v1.Group("/accounts")
	{
		accounts.GET("/:currency/:owner", limit("queries"), economyHandler.GetAccount)
		accounts.PUT("/:currency/:owner", limit("mutations"), economyHandler.CreateAccount)
		accounts.DELETE("/:currency/:owner", limit("mutations"), economyHandler.DeleteAccount)

		mutations := accounts.Group("/:currency/:owner", limit("mutations"))
		mutations.POST("/deposit", economyHandler.Deposit)
		mutations.POST("/withdraw", economyHandler.Withdraw)
		mutations.POST("/set", economyHandler.Set)
		mutations.POST("/reset", economyHandler.Reset)
	}

	v1.POST("/transfers", limit("transfers"), economyHandler.Transfer)

	return r
}
