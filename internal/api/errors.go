package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipe-hub/backend/internal/model"
	"github.com/pageza/recipe-hub/backend/internal/parser"
)

// respondError writes the JSON error body and status that matches err.
func respondError(c *gin.Context, err error) {
	status, body := errorResponse(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(status, body)
}

func errorResponse(err error) (int, gin.H) {
	var (
		schemaErr *model.SchemaError
		parseErr  *parser.Error
		storeErr  *model.StoreError
	)

	switch {
	case errors.Is(err, parser.ErrURLRequired):
		return http.StatusBadRequest, gin.H{"error": err.Error()}
	case errors.As(err, &parseErr):
		return http.StatusUnprocessableEntity, gin.H{"error": parseErr.Message}
	case errors.Is(err, parser.ErrInvalidRecipe):
		return http.StatusUnprocessableEntity, gin.H{"error": parser.ErrInvalidRecipe.Error()}
	case errors.Is(err, parser.ErrUnreachable):
		return http.StatusBadGateway, gin.H{"error": parser.ErrUnreachable.Error()}
	case errors.As(err, &schemaErr):
		return http.StatusBadRequest, gin.H{"error": schemaErr.Error(), "field": schemaErr.Field}
	case errors.Is(err, model.ErrNotAuthenticated):
		return http.StatusUnauthorized, gin.H{"error": model.ErrNotAuthenticated.Error()}
	case errors.Is(err, model.ErrNotFriends):
		return http.StatusForbidden, gin.H{"error": model.ErrNotFriends.Error()}
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound, gin.H{"error": err.Error()}
	case errors.Is(err, model.ErrFriendshipExists):
		return http.StatusConflict, gin.H{"error": model.ErrFriendshipExists.Error()}
	case errors.Is(err, model.ErrInvalidRequest):
		return http.StatusBadRequest, gin.H{"error": model.ErrInvalidRequest.Error()}
	case errors.As(err, &storeErr):
		return http.StatusBadGateway, gin.H{"error": "database error during " + storeErr.Op}
	default:
		return http.StatusInternalServerError, gin.H{"error": "internal server error"}
	}
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": msg})
}
