package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipe-hub/backend/internal/model"
	"github.com/pageza/recipe-hub/backend/internal/service"
)

// RecipeParser turns a recipe page URL into a recipe.
type RecipeParser interface {
	Parse(ctx context.Context, url string) (model.Recipe, error)
}

type parseRequest struct {
	URL  string `json:"url"`
	Save bool   `json:"save"`
}

// ParseHandler serves recipe parsing. Parsed recipes are only added to the
// collection when the request asks for it.
type ParseHandler struct {
	parser   RecipeParser
	sessions *service.Sessions
	limit    gin.HandlerFunc
}

// NewParseHandler creates a handler. limit may be nil to disable per-user
// rate limiting.
func NewParseHandler(parser RecipeParser, sessions *service.Sessions, limit gin.HandlerFunc) *ParseHandler {
	return &ParseHandler{parser: parser, sessions: sessions, limit: limit}
}

func (h *ParseHandler) RegisterRoutes(router *gin.RouterGroup) {
	handlers := []gin.HandlerFunc{}
	if h.limit != nil {
		handlers = append(handlers, h.limit)
	}
	handlers = append(handlers, h.Parse)
	router.POST("/parse", handlers...)
}

func (h *ParseHandler) Parse(c *gin.Context) {
	var req parseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	recipe, err := h.parser.Parse(c.Request.Context(), req.URL)
	if err != nil {
		respondError(c, err)
		return
	}

	if !req.Save {
		c.JSON(http.StatusOK, gin.H{"recipe": recipe, "saved": false})
		return
	}

	rs, err := h.sessions.For(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	saved, err := rs.Add(c.Request.Context(), recipe)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"recipe": saved, "saved": true})
}
