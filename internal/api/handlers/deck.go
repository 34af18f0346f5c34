// Package handlers implements the HTTP API endpoints.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mjohnson025/mtga-deck-builder/internal/api/response"
	"github.com/mjohnson025/mtga-deck-builder/internal/collection"
	"github.com/mjohnson025/mtga-deck-builder/internal/deckbuilder"
	"github.com/mjohnson025/mtga-deck-builder/internal/mtga/cards"
	"github.com/mjohnson025/mtga-deck-builder/internal/mtga/deckexport"
	"github.com/mjohnson025/mtga-deck-builder/internal/mtga/deckimport"
)

// maxDeckText bounds the parse endpoint's request body.
const maxDeckText = 1 << 20

// OriginRequest marks owned cards supplied in the request body.
const OriginRequest collection.Origin = "request"

// Catalog is the card pool served by the API. *cards.Database satisfies it.
type Catalog interface {
	All() []cards.Record
	Lookup(name string) (cards.Record, bool)
	Len() int
}

// CollectionLoader supplies the owned cards when a request carries none.
type CollectionLoader interface {
	Load(ctx context.Context) (*collection.Collection, error)
}

// BuildRequest is the body of POST /api/v1/decks/build.
type BuildRequest struct {
	Keywords []string       `json:"keywords"`
	Colors   []string       `json:"colors"`
	Format   string         `json:"format"`
	Owned    map[string]int `json:"owned,omitempty"`
}

// BuildResponse is the data of a successful build.
type BuildResponse struct {
	*deckbuilder.Result
	Export             string            `json:"export"`
	Collection         collection.Origin `json:"collection"`
	CollectionWarnings []string          `json:"collection_warnings,omitempty"`
}

// ParseResponse is the data of a successful parse.
type ParseResponse struct {
	Name      string         `json:"name,omitempty"`
	Format    string         `json:"format,omitempty"`
	Cards     map[string]int `json:"cards"`
	Sideboard map[string]int `json:"sideboard,omitempty"`
	Total     int            `json:"total"`
	Warnings  []string       `json:"warnings,omitempty"`
}

// DeckHandler serves deck building and parsing.
type DeckHandler struct {
	catalog    Catalog
	collection CollectionLoader
	builder    *deckbuilder.Builder
	logger     *zap.Logger
}

// NewDeckHandler creates a deck handler. loader may be nil, in which case
// builds without an owned map treat every card as unowned.
func NewDeckHandler(catalog Catalog, loader CollectionLoader, builder *deckbuilder.Builder, logger *zap.Logger) *DeckHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DeckHandler{
		catalog:    catalog,
		collection: loader,
		builder:    builder,
		logger:     logger,
	}
}

// RegisterRoutes registers the deck routes on an /api/v1 group.
func (h *DeckHandler) RegisterRoutes(r gin.IRouter) {
	decks := r.Group("/decks")
	decks.POST("/build", h.Build)
	decks.POST("/parse", h.Parse)
}

// Build handles POST /api/v1/decks/build.
func (h *DeckHandler) Build(c *gin.Context) {
	var req BuildRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, fmt.Errorf("invalid request body: %w", err))
		return
	}

	spec := deckbuilder.FilterSpec{
		Keywords: req.Keywords,
		Format:   req.Format,
	}
	for _, name := range req.Colors {
		color, ok := cards.ParseColor(name)
		if !ok {
			response.BadRequest(c, fmt.Errorf("unknown color %q", name))
			return
		}
		spec.Colors = append(spec.Colors, color)
	}
	if err := spec.Validate(); err != nil {
		response.BadRequest(c, err)
		return
	}

	resp := &BuildResponse{Collection: collection.OriginEmpty}
	owned := deckbuilder.Owned(req.Owned)
	switch {
	case req.Owned != nil:
		resp.Collection = OriginRequest
	case h.collection != nil:
		coll, err := h.collection.Load(c.Request.Context())
		if err != nil {
			h.logger.Error("failed to load collection", zap.Error(err))
			response.InternalError(c, err)
			return
		}
		owned = coll.Owned
		resp.Collection = coll.Origin
		resp.CollectionWarnings = coll.Warnings
	}

	result, err := h.builder.Build(h.catalog.All(), owned, spec)
	if err != nil {
		if errors.Is(err, deckbuilder.ErrEmptyCatalog) {
			response.ServiceUnavailable(c, err)
			return
		}
		response.BadRequest(c, err)
		return
	}
	resp.Result = result

	export, err := deckexport.Export(result.Deck, &deckexport.ExportOptions{
		Format:      deckexport.FormatPlainText,
		Suggestions: result.Suggestions,
	})
	if err != nil {
		response.InternalError(c, err)
		return
	}
	resp.Export = export.Content

	h.logger.Debug("deck built",
		zap.Strings("keywords", spec.Keywords),
		zap.Int("filtered", result.FilteredCount),
		zap.Int("suggestions", len(result.Suggestions)),
		zap.String("collection", string(resp.Collection)),
	)

	response.Success(c, resp)
}

// Parse handles POST /api/v1/decks/parse. The body is deck text in any of the
// supported export formats.
func (h *DeckHandler) Parse(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxDeckText+1))
	if err != nil {
		response.BadRequest(c, fmt.Errorf("read body: %w", err))
		return
	}
	if len(body) > maxDeckText {
		response.BadRequest(c, fmt.Errorf("deck text exceeds %d bytes", maxDeckText))
		return
	}
	if strings.TrimSpace(string(body)) == "" {
		response.BadRequest(c, errors.New("empty deck text"))
		return
	}

	var lookup deckimport.CardLookup
	if h.catalog != nil {
		lookup = h.catalog
	}
	deck, err := deckimport.NewParser(lookup).Parse(string(body))
	if err != nil {
		response.UnprocessableEntity(c, err)
		return
	}

	resp := ParseResponse{
		Name:     deck.Name,
		Format:   deck.Format,
		Cards:    deck.Counts(),
		Total:    deck.Total(),
		Warnings: deck.Warnings,
	}
	if len(deck.Sideboard) > 0 {
		resp.Sideboard = make(map[string]int, len(deck.Sideboard))
		for _, card := range deck.Sideboard {
			resp.Sideboard[card.Name] += card.Quantity
		}
	}

	response.Success(c, resp)
}
