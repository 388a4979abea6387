package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resumefit/internal/analyses"
	"resumefit/internal/generations"
	"resumefit/internal/services/health"
	"resumefit/internal/shared/config"
	"resumefit/internal/shared/metrics"
	"resumefit/internal/shared/server/middleware"
	"resumefit/internal/shared/server/respond"
)

const (
	rateGroupAnalyze  = "ANALYZE"
	rateGroupGenerate = "GENERATE"
)

// RouterDeps groups the handlers and shared services used by the router.
type RouterDeps struct {
	Config            config.Config
	AnalysisHandler   *analyses.Handler
	GenerationHandler *generations.Handler
	Health            *health.Service
	// Limiter backs the rate limit middleware; nil uses an in-process limiter.
	Limiter middleware.Limiter
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		metrics.GinMiddleware(),
	)

	limit := middleware.RateLimit(middleware.RateLimitConfig{
		Rules: map[string]middleware.RateLimitRule{
			rateGroupAnalyze:  middleware.PerMinute(deps.Config.RateLimitAnalyzePerMin),
			rateGroupGenerate: middleware.PerMinute(deps.Config.RateLimitGeneratePerMin),
		},
		GroupFor: rateGroupFor,
		Limiter:  deps.Limiter,
	})

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		if deps.Health == nil {
			respond.JSON(c, http.StatusOK, gin.H{"ok": true})
			return
		}
		status, ok := deps.Health.Status(c.Request.Context())
		code := http.StatusOK
		if !ok {
			code = http.StatusServiceUnavailable
		}
		respond.JSON(c, code, status)
	})
	if deps.AnalysisHandler != nil {
		deps.AnalysisHandler.RegisterRoutes(api, limit)
	}
	if deps.GenerationHandler != nil {
		deps.GenerationHandler.RegisterRoutes(api, limit)
	}

	return r
}

func rateGroupFor(c *gin.Context) string {
	if c.Request.Method != http.MethodPost {
		return ""
	}
	switch c.FullPath() {
	case "/api/v1/analyses":
		return rateGroupAnalyze
	case "/api/v1/generations":
		return rateGroupGenerate
	default:
		return ""
	}
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
