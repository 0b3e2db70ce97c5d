package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/sunday/internal/infra/config"
)

// NewRouter wires up the HTTP handlers and returns a configured server.
func NewRouter(cfg *config.Config, handler *Handler, tokens TokenValidator) *http.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(
		gin.Recovery(),
		requestID(),
		requestLogger(handler.logger),
		corsMiddleware(cfg.HTTP.CORSOrigins),
		errorHandlingMiddleware(handler.logger),
	)

	router.GET("/healthz", handler.Health)

	api := router.Group("/api/v1")
	api.Use(rateLimitMiddleware(cfg.HTTP.RateLimit, handler.logger))
	{
		api.POST("/exposure/compute", handler.Compute)
		api.GET("/conditions", handler.Conditions)
		api.POST("/profiles", handler.CreateProfile)
		api.POST("/profiles/token", handler.IssueToken)
	}

	me := api.Group("/me")
	me.Use(authMiddleware(tokens))
	{
		me.GET("", handler.Me)
		me.PUT("", handler.UpdateMe)
		me.POST("/estimate", handler.Estimate)
		me.POST("/sessions", handler.StartSession)
		me.GET("/sessions/current", handler.SessionStatus)
		me.PUT("/sessions/current/conditions", handler.UpdateSessionConditions)
		me.DELETE("/sessions/current", handler.StopSession)
		me.GET("/totals", handler.DailyTotal)
	}

	return &http.Server{
		Addr:           cfg.HTTP.Address,
		Handler:        withRetry(router, cfg.HTTP.Retry, handler.logger),
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("http request", "method", c.Request.Method, "path", c.Request.URL.Path, "status", c.Writer.Status(), "latency_ms", latency.Milliseconds(), "request_id", c.GetString(requestIDKey))
	}
}
