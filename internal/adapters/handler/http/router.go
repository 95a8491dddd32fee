package http

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/comitanigiacomo/kanso-streak-engine/docs"
	"github.com/comitanigiacomo/kanso-streak-engine/internal/adapters/handler/http/middleware"
)

type RouterDependencies struct {
	AuthHandler    *AuthHandler
	HabitHandler   *HabitHandler
	TrackerHandler *TrackerHandler
	KPIHandler     *KPIHandler
	Tokens         middleware.TokenValidator
	Logger         *zap.Logger

	// DB and Redis are optional; a nil value reports "disabled" on /health.
	DB    *sqlx.DB
	Redis *redis.Client

	RateLimit  int
	RateWindow time.Duration
	StartTime  time.Time
}

const (
	statusConnected   = "connected"
	statusUnreachable = "unreachable"
	statusDisabled    = "disabled"
)

func NewRouter(deps RouterDependencies) *gin.Engine {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(logger))

	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"POST", "GET", "OPTIONS", "PUT", "DELETE"},
		AllowHeaders:    []string{"Content-Type", "Content-Length", "Accept-Encoding", "X-CSRF-Token", "Authorization"},
		MaxAge:          12 * time.Hour,
	}))

	if deps.Redis != nil && deps.RateLimit > 0 {
		router.Use(middleware.RateLimiterMiddleware(deps.Redis, deps.RateLimit, deps.RateWindow, logger))
	}

	router.GET("/health", func(c *gin.Context) {
		ctx := c.Request.Context()

		dbStatus := statusDisabled
		if deps.DB != nil {
			dbStatus = statusConnected
			if err := deps.DB.PingContext(ctx); err != nil {
				dbStatus = statusUnreachable
			}
		}

		redisStatus := statusDisabled
		if deps.Redis != nil {
			redisStatus = statusConnected
			if err := deps.Redis.Ping(ctx).Err(); err != nil {
				redisStatus = statusUnreachable
			}
		}

		statusCode := http.StatusOK
		if dbStatus == statusUnreachable || redisStatus == statusUnreachable {
			statusCode = http.StatusServiceUnavailable
		}

		c.JSON(statusCode, gin.H{
			"status":   "ok",
			"database": dbStatus,
			"redis":    redisStatus,
			"uptime":   time.Since(deps.StartTime).String(),
		})
	})

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	apiV1 := router.Group("/api/v1")

	deps.AuthHandler.RegisterRoutes(apiV1)

	protected := apiV1.Group("")
	protected.Use(middleware.AuthMiddleware(deps.Tokens))
	{
		deps.HabitHandler.RegisterRoutes(protected)
		deps.TrackerHandler.RegisterRoutes(protected)
		deps.KPIHandler.RegisterRoutes(protected)
	}

	return router
}
