package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nebari-dev/registrar/internal/api/handlers"
	"github.com/nebari-dev/registrar/internal/api/middleware"
	"github.com/nebari-dev/registrar/internal/config"
	"github.com/nebari-dev/registrar/internal/events"
	"github.com/nebari-dev/registrar/internal/service"
	"github.com/nebari-dev/registrar/internal/web"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

// NewRouter creates and configures the Gin router for the kind served by svc
func NewRouter(cfg *config.Config, db *gorm.DB, svc *service.ResourceService, broker events.Broker) (*gin.Engine, error) {
	// Set Gin mode
	if cfg.Server.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	kind := svc.Kind()
	router := gin.New()

	tmpl, err := web.Templates()
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	router.SetHTMLTemplate(tmpl)

	// Middleware
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(loggingMiddleware(kind.Plural))
	router.Use(corsMiddleware(cfg.Server.CORSOrigins))
	router.Use(middleware.Metrics(kind.Plural))

	// System endpoints
	infoHandler := handlers.NewInfoHandler(db, kind.Plural)
	router.GET("/healthz", handlers.Healthz)
	router.GET("/readyz", infoHandler.Readyz)
	router.GET("/info", infoHandler.GetInfo)
	router.GET("/version", handlers.GetVersion(kind.Plural))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Resource endpoints
	h := handlers.NewResourceHandler(svc, broker)
	router.GET("/"+kind.Singular+"/ping", h.Ping)
	router.GET("/"+kind.Singular+"/events", h.Events)
	records := router.Group("/" + kind.Plural)
	{
		records.POST("", h.Create)
		records.GET("", h.List)
		records.GET("/:id", h.Get)
	}

	// HTML page
	router.GET("/", h.Index)
	router.POST("/", h.Submit)

	// Swagger documentation
	router.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	slog.Info("API router initialized", "service", kind.Plural, "mode", cfg.Server.Mode)
	return router, nil
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(service string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		slog.Info("HTTP request",
			"service", service,
			"method", method,
			"path", path,
			"status", status,
			"latency", latency.String(),
			"ip", c.ClientIP(),
			"request_id", middleware.GetRequestID(c),
		)
	}
}

// corsMiddleware adds CORS headers for the configured origins. "*" allows any.
func corsMiddleware(origins []string) gin.HandlerFunc {
	allowAll := len(origins) == 0 || slices.Contains(origins, "*")
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		switch {
		case allowAll:
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		case origin != "" && slices.Contains(origins, origin):
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Add("Vary", "Origin")
		}
		c.Writer.Header().Set("Access-Control-Allow-Headers", strings.Join([]string{"Content-Type", middleware.RequestIDHeader}, ", "))
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Expose-Headers", middleware.RequestIDHeader)

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
