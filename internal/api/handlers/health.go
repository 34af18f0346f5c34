package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthResponse is the body of the health endpoint.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Service   string    `json:"service"`
	Version   string    `json:"version"`
	Cards     int       `json:"cards"`
}

// HealthHandler reports liveness and catalog size.
type HealthHandler struct {
	serviceName string
	version     string
	catalog     Catalog
}

// NewHealthHandler creates a health handler.
func NewHealthHandler(serviceName, version string, catalog Catalog) *HealthHandler {
	return &HealthHandler{
		serviceName: serviceName,
		version:     version,
		catalog:     catalog,
	}
}

// HealthCheck handles GET /health.
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	cards := 0
	if h.catalog != nil {
		cards = h.catalog.Len()
	}

	c.JSON(http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Service:   h.serviceName,
		Version:   h.version,
		Cards:     cards,
	})
}

// RegisterRoutes registers the health routes.
func (h *HealthHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/health", h.HealthCheck)
}
