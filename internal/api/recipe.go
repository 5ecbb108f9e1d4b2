package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipe-hub/backend/internal/logging"
	"github.com/pageza/recipe-hub/backend/internal/service"
)

// RecipeHandler serves the caller's recipe collection.
type RecipeHandler struct {
	sessions *service.Sessions
	exporter service.IExportService
	log      logging.Logger
}

// NewRecipeHandler creates a handler. exporter may be nil when export storage
// is not configured.
func NewRecipeHandler(sessions *service.Sessions, exporter service.IExportService, log logging.Logger) *RecipeHandler {
	return &RecipeHandler{
		sessions: sessions,
		exporter: exporter,
		log:      log.With("component", "recipe_handler"),
	}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	recipes := router.Group("/recipes")
	{
		recipes.GET("", h.ListRecipes)
		recipes.POST("", h.CreateRecipe)
		recipes.POST("/refresh", h.RefreshRecipes)
		recipes.POST("/export", h.ExportRecipes)
		recipes.GET("/:id", h.GetRecipe)
		recipes.PATCH("/:id", h.UpdateRecipe)
		recipes.DELETE("/:id", h.DeleteRecipe)
	}
}

func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	rs, err := h.sessions.For(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	result, err := rs.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *RecipeHandler) RefreshRecipes(c *gin.Context) {
	rs, err := h.sessions.For(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	result, err := rs.Refresh(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	var payload map[string]any
	if err := c.ShouldBindJSON(&payload); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	rs, err := h.sessions.For(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	recipe, err := rs.Add(c.Request.Context(), payload)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, recipe)
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	rs, err := h.sessions.For(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	recipe, err := rs.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if recipe == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
		return
	}
	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	var fields map[string]any
	if err := c.ShouldBindJSON(&fields); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	rs, err := h.sessions.For(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	recipe, err := rs.Update(c.Request.Context(), c.Param("id"), fields)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	rs, err := h.sessions.For(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if err := rs.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ExportRecipes uploads the caller's collection and returns a share link.
func (h *RecipeHandler) ExportRecipes(c *gin.Context) {
	if h.exporter == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "export storage is not configured"})
		return
	}

	rs, err := h.sessions.For(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	result, err := rs.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	export, err := h.exporter.Export(c.Request.Context(), result.Recipes)
	if err != nil {
		h.log.Error(c.Request.Context(), "export failed", "error", err)
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, export)
}
