package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cloudapp/webapp/config"
	"github.com/cloudapp/webapp/controllers"
	"github.com/cloudapp/webapp/middleware"
	"github.com/cloudapp/webapp/repository"
	"github.com/cloudapp/webapp/storage"
	"github.com/cloudapp/webapp/utils"
)

// Deps are the shared handles built once at startup and injected into every handler.
type Deps struct {
	Config     config.AppConfig
	Repository *repository.Repository
	Storage    storage.Storage
	Logger     *zap.Logger
	Metrics    *utils.Metrics
}

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(deps Deps) *gin.Engine {
	cfg := deps.Config
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.RedirectTrailingSlash = false
	r.Use(middleware.Ginzap(deps.Logger))
	r.Use(middleware.RecoveryWithZap(deps.Logger))

	corsCfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Content-Type"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 0 || (len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*") {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))
	r.Use(middleware.Metrics(deps.Metrics))
	r.Use(middleware.RateLimitMiddleware(cfg.RateLimitPerMinute))

	healthController := controllers.NewHealthController(deps.Repository.HealthChecks, deps.Metrics, deps.Logger)
	fileController := controllers.NewFileController(deps.Repository.Files, deps.Storage,
		cfg.BucketName, cfg.S3UserSegment, deps.Metrics, deps.Logger)

	wrap := func(h controllers.HandlerFunc) gin.HandlerFunc {
		return controllers.Wrap(deps.Logger, h)
	}

	r.GET("/healthz", middleware.NoCache(), wrap(healthController.Check))

	files := r.Group("/v1/file")
	files.POST("", wrap(fileController.Upload))
	files.GET("/:file_id", wrap(fileController.Get))
	files.DELETE("/:file_id", wrap(fileController.Delete))

	r.NoRoute(func(ctx *gin.Context) {
		utils.Empty(ctx, http.StatusNotFound)
	})
	r.NoMethod(func(ctx *gin.Context) {
		if ctx.Request.URL.Path == "/healthz" {
			middleware.SetNoCacheHeaders(ctx)
		}
		utils.Empty(ctx, http.StatusMethodNotAllowed)
	})

	return r
}
