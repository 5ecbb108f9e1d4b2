package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pageza/recipe-hub/backend/internal/auth"
	"github.com/pageza/recipe-hub/backend/internal/model"
)

type ProfileStore interface {
	GetProfile(ctx context.Context, id uuid.UUID) (*model.UserProfile, error)
	SaveProfile(ctx context.Context, update model.ProfileUpdate, email string) (model.UserProfile, error)
}

type ProfileHandler struct {
	profiles ProfileStore
}

func NewProfileHandler(profiles ProfileStore) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

func (h *ProfileHandler) RegisterRoutes(router *gin.RouterGroup) {
	profile := router.Group("/profile")
	{
		profile.GET("", h.GetProfile)
		profile.PUT("", h.UpdateProfile)
	}
}

// GetProfile returns the caller's profile. A caller who never saved one gets
// an empty profile carrying only their id.
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	uid, ok := auth.UserFromContext(c.Request.Context())
	if !ok {
		respondError(c, model.ErrNotAuthenticated)
		return
	}

	profile, err := h.profiles.GetProfile(c.Request.Context(), uid)
	if err != nil {
		respondError(c, err)
		return
	}
	if profile == nil {
		profile = &model.UserProfile{ID: uid}
	}
	c.JSON(http.StatusOK, profile)
}

func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	var update model.ProfileUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	profile, err := h.profiles.SaveProfile(c.Request.Context(), update, c.GetString("email"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}
