package api

import (
	"embed"
	"fmt"
	"html/template"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lysyi3m/shopify-rss/app/metrics"
)

//go:embed templates/*.html
var templatesFS embed.FS

// NewServer creates a new HTTP server with all routes configured
func NewServer(handler *Handler, m *metrics.Metrics) *gin.Engine {
	// Release mode unless GIN_MODE says otherwise
	if os.Getenv(gin.EnvGinMode) == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	r.Use(requestIDMiddleware())

	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(param gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\" %s\n",
				param.ClientIP,
				param.TimeStamp.Format(time.RFC3339),
				param.Method,
				param.Path,
				param.Request.Proto,
				param.StatusCode,
				param.Latency,
				param.Request.UserAgent(),
				param.ErrorMessage,
				param.Keys[requestIDKey],
			)
		},
		SkipPaths: []string{"/health", "/metrics"},
	}))

	// Metrics wrap Recovery so recovered panics are counted as 500s.
	if m != nil {
		r.Use(metricsMiddleware(m))
	}

	r.Use(gin.Recovery())

	r.Use(corsMiddleware())

	r.SetHTMLTemplate(template.Must(template.ParseFS(templatesFS, "templates/*.html")))

	setupRoutes(r, handler, m)

	return r
}

// setupRoutes configures all the application routes
func setupRoutes(r *gin.Engine, handler *Handler, m *metrics.Metrics) {
	r.GET("/", handler.GetIndex)

	// Feed endpoints
	r.GET("/rss", handler.GetRSS)
	r.GET("/rss/pinterest", handler.GetPinterestRSS)

	r.GET("/api/products/count", handler.GetProductCount)

	// Health and status endpoints
	r.GET("/health", handler.GetHealth)
	if m != nil {
		r.GET("/metrics", gin.WrapH(m.Handler()))
	}

	// Favicon handler (return 204 to avoid 404s)
	r.GET("/favicon.ico", func(c *gin.Context) {
		c.Status(204)
	})

	r.NoRoute(handler.NotFound)
}
