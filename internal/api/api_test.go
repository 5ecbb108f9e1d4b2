package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/pageza/recipe-hub/backend/internal/auth"
	"github.com/pageza/recipe-hub/backend/internal/localcache"
	"github.com/pageza/recipe-hub/backend/internal/logging"
	"github.com/pageza/recipe-hub/backend/internal/middleware"
	"github.com/pageza/recipe-hub/backend/internal/model"
	"github.com/pageza/recipe-hub/backend/internal/repository"
	"github.com/pageza/recipe-hub/backend/internal/service"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeParser returns a fixed recipe or error.
type fakeParser struct {
	recipe model.Recipe
	err    error
	calls  []string
}

func (p *fakeParser) Parse(_ context.Context, url string) (model.Recipe, error) {
	p.calls = append(p.calls, url)
	return p.recipe, p.err
}

// testEnv wires the handlers against an in-memory sqlite database the way
// the router does in production.
type testEnv struct {
	router    *gin.Engine
	db        *gorm.DB
	tokens    *auth.TokenValidator
	friends   *repository.FriendRepository
	parser    *fakeParser
	exporter  service.IExportService
	sessions  *service.Sessions
}

type envOption func(*testEnv)

func withExporter(e service.IExportService) envOption {
	return func(env *testEnv) { env.exporter = e }
}

func newTestEnv(t *testing.T, mode service.Mode, opts ...envOption) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(repository.Tables()...))

	env := &testEnv{
		db:     db,
		tokens: auth.NewTokenValidator(testSecret),
		parser: &fakeParser{},
	}
	for _, opt := range opts {
		opt(env)
	}

	identity := auth.ContextProvider{}
	log := logging.Nop()
	env.friends = repository.NewFriendRepository(db, identity, 0, log)
	recipes := repository.NewRecipeRepository(db, identity, env.friends, log)

	var remote service.RecipeStore
	if mode == service.ModeDatabase {
		remote = recipes
	}
	env.sessions = service.NewSessions(mode, remote, localcache.NewMemoryBackend(0).Session("api"), "", identity, log)
	t.Cleanup(env.sessions.Close)

	r := gin.New()
	r.Use(middleware.ErrorHandler(log))
	r.GET("/health", HealthCheck(func(ctx context.Context) error { return sqlDB.PingContext(ctx) }))
	v1 := r.Group("/api/v1")
	v1.Use(middleware.AuthMiddleware(env.tokens))

	NewRecipeHandler(env.sessions, env.exporter, log).RegisterRoutes(v1)
	NewParseHandler(env.parser, env.sessions, nil).RegisterRoutes(v1)
	NewProfileHandler(env.friends).RegisterRoutes(v1)
	NewFriendHandler(service.NewFriendService(env.friends, recipes, identity, log), env.friends).RegisterRoutes(v1)

	env.router = r
	return env
}

// user creates an identity with a profile and returns its id and token.
func (e *testEnv) user(t *testing.T, name string) (uuid.UUID, string) {
	t.Helper()
	id := uuid.New()
	email := name + "@example.com"
	token, err := e.tokens.GenerateToken(id, email, time.Hour)
	require.NoError(t, err)
	_, err = e.friends.SaveProfile(auth.WithUser(context.Background(), id), model.ProfileUpdate{DisplayName: &name}, email)
	require.NoError(t, err)
	return id, token
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func sampleBody(title string) map[string]any {
	return map[string]any{
		"title":        title,
		"ingredients":  []string{"flour", "water", "salt"},
		"instructions": "Mix.\nBake.",
		"prep_time":    "15",
		"success":      true,
	}
}
