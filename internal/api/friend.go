package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pageza/recipe-hub/backend/internal/model"
	"github.com/pageza/recipe-hub/backend/internal/service"
)

// FriendActions are the friendship writes plus the request listing.
type FriendActions interface {
	ListRequests(ctx context.Context) (model.FriendRequests, error)
	SendRequest(ctx context.Context, friendID uuid.UUID) (model.Friendship, error)
	Accept(ctx context.Context, friendshipID uuid.UUID) (model.Friendship, error)
	Decline(ctx context.Context, friendshipID uuid.UUID) error
	Cancel(ctx context.Context, friendshipID uuid.UUID) error
	Unfriend(ctx context.Context, friendID uuid.UUID) error
}

type FriendHandler struct {
	friends service.IFriendService
	actions FriendActions
}

func NewFriendHandler(friends service.IFriendService, actions FriendActions) *FriendHandler {
	return &FriendHandler{friends: friends, actions: actions}
}

func (h *FriendHandler) RegisterRoutes(router *gin.RouterGroup) {
	friends := router.Group("/friends")
	{
		friends.GET("", h.Overview)
		friends.GET("/search", h.Search)
		friends.GET("/requests", h.ListRequests)
		friends.POST("/requests", h.SendRequest)
		friends.POST("/requests/:id/accept", h.AcceptRequest)
		friends.POST("/requests/:id/decline", h.DeclineRequest)
		friends.DELETE("/requests/:id", h.CancelRequest)
		friends.DELETE("/:id", h.RemoveFriend)
		friends.GET("/:id/recipes", h.FriendRecipes)
	}
}

// Overview returns friends and pending requests together.
func (h *FriendHandler) Overview(c *gin.Context) {
	overview, err := h.friends.Overview(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, overview)
}

func (h *FriendHandler) Search(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		c.JSON(http.StatusOK, gin.H{"users": []model.UserProfile{}})
		return
	}

	users, err := h.friends.FindPeople(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

func (h *FriendHandler) ListRequests(c *gin.Context) {
	requests, err := h.actions.ListRequests(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, requests)
}

type sendRequestBody struct {
	FriendID uuid.UUID `json:"friend_id"`
}

func (h *FriendHandler) SendRequest(c *gin.Context) {
	var body sendRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	friendship, err := h.actions.SendRequest(c.Request.Context(), body.FriendID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, friendship)
}

func (h *FriendHandler) AcceptRequest(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	friendship, err := h.actions.Accept(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, friendship)
}

func (h *FriendHandler) DeclineRequest(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.actions.Decline(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *FriendHandler) CancelRequest(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.actions.Cancel(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RemoveFriend ends the friendship with the user in the path.
func (h *FriendHandler) RemoveFriend(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.actions.Unfriend(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *FriendHandler) FriendRecipes(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	collection, err := h.friends.FriendCollection(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, collection)
}
