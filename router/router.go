package router

import (
	"FileVault/config"
	"FileVault/internal/handler"
	"FileVault/internal/metrics"
	"FileVault/utils"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// InitRouter builds API routes.
func InitRouter(cfg config.Config, files *handler.FileHandler, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(utils.RequestLogger(logger))
	r.Use(metrics.Middleware())
	r.Use(utils.CORSMiddleware(cfg.CORSOrigins))

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		api.GET("/health", files.Health)

		auth := api.Group("")
		if cfg.AuthDisabled {
			logger.Warn("authentication disabled")
		} else {
			auth.Use(utils.AuthMiddleware(cfg.JWTSecret))
		}

		upload := utils.RateLimitMiddleware(utils.NewRateLimiter(cfg.UploadRate, cfg.UploadBurst))

		file := auth.Group("/files")
		{
			file.GET("", files.List)
			file.POST("", upload, files.Upload)
			file.GET("/storage_savings", files.StorageSavings)
			file.GET("/verify", files.Verify)
			file.GET("/:id", files.Get)
			file.GET("/:id/download", files.Download)
			file.GET("/:id/download/", files.Download)
			file.DELETE("/:id", files.Delete)
		}
	}
	return r
}
