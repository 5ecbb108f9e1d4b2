package router

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/pageza/recipe-hub/backend/internal/api"
	"github.com/pageza/recipe-hub/backend/internal/auth"
	"github.com/pageza/recipe-hub/backend/internal/localcache"
	"github.com/pageza/recipe-hub/backend/internal/logging"
	"github.com/pageza/recipe-hub/backend/internal/mocks"
	"github.com/pageza/recipe-hub/backend/internal/service"
)

func newTestRouter(health api.Pinger) *gin.Engine {
	gin.SetMode(gin.TestMode)
	log := logging.Nop()
	sessions := service.NewSessions(service.ModeLocal, nil, localcache.NewMemoryBackend(0).Session("test"), "", auth.ContextProvider{}, log)
	friends := service.NewFriendService(new(mocks.MockFriendGraph), new(mocks.MockFriendRecipes), auth.ContextProvider{}, log)

	return SetupRouter(Handlers{
		Recipes: api.NewRecipeHandler(sessions, nil, log),
		Parse:   api.NewParseHandler(nil, sessions, nil),
		Profile: api.NewProfileHandler(nil),
		Friends: api.NewFriendHandler(friends, nil),
	}, Options{
		CORSOrigins: []string{"http://localhost:5173"},
		Validator:   auth.NewTokenValidator("0123456789abcdef0123456789abcdef"),
		Health:      health,
		Log:         log,
	})
}

func TestSetupRouter_Health(t *testing.T) {
	tests := []struct {
		name   string
		health api.Pinger
		want   int
	}{
		{"no pinger", nil, http.StatusOK},
		{"database up", func(context.Context) error { return nil }, http.StatusOK},
		{"database down", func(context.Context) error { return errors.New("down") }, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			newTestRouter(tt.health).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestSetupRouter_ProtectsAPI(t *testing.T) {
	r := newTestRouter(nil)
	for _, path := range []string{"/api/v1/recipes", "/api/v1/profile", "/api/v1/friends"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

func TestSetupRouter_CORSPreflight(t *testing.T) {
	r := newTestRouter(nil)
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/recipes", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
}
