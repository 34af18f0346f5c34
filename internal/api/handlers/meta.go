package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/mjohnson025/mtga-deck-builder/internal/api/response"
	"github.com/mjohnson025/mtga-deck-builder/internal/meta"
)

// MetaService returns advisory top decks. *meta.Service satisfies it.
type MetaService interface {
	TopDecks(ctx context.Context, format string) *meta.Advisory
}

// MetaHandler serves the meta advisory.
type MetaHandler struct {
	service MetaService
}

// NewMetaHandler creates a meta handler.
func NewMetaHandler(service MetaService) *MetaHandler {
	return &MetaHandler{service: service}
}

// RegisterRoutes registers the meta routes on an /api/v1 group.
func (h *MetaHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/meta/:format", h.TopDecks)
}

// TopDecks handles GET /api/v1/meta/:format. The advisory never fails; an
// unavailable meta is an empty deck list with warnings.
func (h *MetaHandler) TopDecks(c *gin.Context) {
	response.Success(c, h.service.TopDecks(c.Request.Context(), c.Param("format")))
}
