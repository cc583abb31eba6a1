package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/buytoro/config"
	"github.com/oksasatya/buytoro/internal/interface/middleware"
	"github.com/oksasatya/buytoro/pkg/response"
	"github.com/oksasatya/buytoro/pkg/validation"
)

// NewEngine builds the Gin engine with the global middleware: recovery
// with a JSON 500, request id, real IP, CORS, the optional access log and
// a JSON 404 for unknown routes.
func NewEngine(cfg *config.Config, logger *logrus.Logger) *gin.Engine {
	validation.Init()

	r := gin.New()
	r.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		if logger != nil {
			logger.WithFields(logrus.Fields{
				"panic":      recovered,
				"path":       c.Request.URL.Path,
				"request_id": c.GetString(middleware.CtxRequestIDKey),
			}).Error("panic recovered")
		}
		response.Abort(c, http.StatusInternalServerError, "internal server error", nil)
	}))
	r.Use(middleware.RequestID())
	r.Use(middleware.RealIP())
	if origins := cfg.CORSOrigins(); len(origins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     origins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderRequestID, "Idempotency-Key"},
			ExposeHeaders:    []string{"Content-Length", middleware.HeaderRequestID, "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}
	if cfg.HTTPLogEnabled && logger != nil {
		r.Use(middleware.RequestLogger(logger))
	}

	r.NoRoute(func(c *gin.Context) {
		response.Error[any](c, http.StatusNotFound, "not found - "+c.Request.URL.Path, nil)
	})
	r.GET("/healthz", func(c *gin.Context) {
		response.Success[any](c, http.StatusOK, gin.H{"status": "ok"}, "healthy", nil)
	})
	return r
}
