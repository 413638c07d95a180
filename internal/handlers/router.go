package handlers

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/jobtrail/jobtrail/internal/auth"
	"github.com/jobtrail/jobtrail/internal/config"
	"github.com/jobtrail/jobtrail/internal/middleware"
	"github.com/jobtrail/jobtrail/internal/services"
)

// maxBodyBytes caps JSON request bodies at 10 KB.
const maxBodyBytes = 10 << 10

// NewRouter assembles the gin engine: CORS for the configured client
// origin, edge rate limiting, panic recovery, the health check, and the
// bearer-authenticated applications routes.
func NewRouter(cfg *config.Config, provider auth.Provider, svc *services.ApplicationService, db *gorm.DB, log *logrus.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.CustomRecovery(func(c *gin.Context, _ interface{}) {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong!"})
	}))

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowOrigins = []string{cfg.ClientOrigin}
	corsCfg.AllowCredentials = true
	corsCfg.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	corsCfg.AllowMethods = []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"}
	r.Use(cors.New(corsCfg))

	limiter := middleware.NewRateLimiter(cfg.RateLimitWindow, cfg.RateLimitMax)
	r.Use(limiter.Handler())

	r.GET("/health", HealthCheck(db))
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "API is running")
	})

	appHandler := NewApplicationHandler(svc)
	api := r.Group("/api/applications")
	api.Use(limitBody(maxBodyBytes))
	api.Use(middleware.RequireAuth(provider, log))
	{
		api.POST("", appHandler.Create)
		api.GET("", appHandler.List)
		api.PATCH("/:id", appHandler.Update)
		api.DELETE("/:id", appHandler.Delete)
	}

	return r
}

func limitBody(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		}
		c.Next()
	}
}

// HealthCheck reports whether the database connection is reachable.
func HealthCheck(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db != nil {
			sqlDB, err := db.DB()
			if err == nil {
				err = sqlDB.PingContext(c.Request.Context())
			}
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"status": "Error", "db": "Disconnected"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "OK", "db": "Connected"})
	}
}
