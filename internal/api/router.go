package api

import (
	"mime"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mjohnson025/mtga-deck-builder/internal/api/handlers"
	"github.com/mjohnson025/mtga-deck-builder/internal/api/response"
)

// localOrigins are allowed when neither allow-all nor explicit origins are set.
var localOrigins = []string{"http://localhost:*", "http://127.0.0.1:*", "https://localhost:*"}

// NewRouter builds the gin engine with middleware and all routes.
func NewRouter(cfg *Config, deps Deps) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true

	r.Use(gin.Recovery())
	r.Use(requestLogger(cfg.Logger))
	r.Use(cors.New(corsConfig(cfg)))
	r.Use(contentTypeMiddleware())

	handlers.NewHealthHandler(cfg.ServiceName, cfg.Version, deps.Catalog).RegisterRoutes(r)

	v1 := r.Group("/api/v1")
	handlers.NewDeckHandler(deps.Catalog, deps.Collection, deps.Builder, cfg.Logger).RegisterRoutes(v1)
	if deps.Meta != nil {
		handlers.NewMetaHandler(deps.Meta).RegisterRoutes(v1)
	}

	return r
}

func corsConfig(cfg *Config) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposeHeaders: []string{"X-Request-ID"},
		MaxAge:        5 * time.Minute,
	}

	switch {
	case cfg.AllowAllOrigins:
		c.AllowAllOrigins = true
	case len(cfg.AllowedOrigins) > 0:
		c.AllowOrigins = cfg.AllowedOrigins
		c.AllowWildcard = true
	default:
		c.AllowOrigins = localOrigins
		c.AllowWildcard = true
	}
	return c
}

// requestLogger logs each request at info, or warn for server errors.
func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		if c.Writer.Status() >= http.StatusInternalServerError {
			logger.Warn("request", fields...)
		} else {
			logger.Info("request", fields...)
		}
	}
}

// contentTypeMiddleware rejects request bodies that are neither JSON nor plain text.
func contentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost || c.Request.ContentLength == 0 {
			c.Next()
			return
		}

		mediaType, _, err := mime.ParseMediaType(c.GetHeader("Content-Type"))
		if err != nil || (mediaType != "application/json" && mediaType != "text/plain") {
			response.Error(c, http.StatusUnsupportedMediaType,
				errUnsupportedMediaType)
			return
		}
		c.Next()
	}
}
