package router

import (
	"github.com/gin-gonic/gin"

	"github.com/pageza/recipe-hub/backend/internal/api"
	"github.com/pageza/recipe-hub/backend/internal/logging"
	"github.com/pageza/recipe-hub/backend/internal/middleware"
)

// Handlers groups the route owners mounted under /api/v1.
type Handlers struct {
	Recipes *api.RecipeHandler
	Parse   *api.ParseHandler
	Profile *api.ProfileHandler
	Friends *api.FriendHandler
}

// Options configures the engine.
type Options struct {
	CORSOrigins []string
	Validator   middleware.TokenValidator
	Health      api.Pinger
	Log         logging.Logger
}

// SetupRouter configures the application routes
func SetupRouter(h Handlers, opts Options) *gin.Engine {
	router := gin.New()
	router.Use(middleware.ErrorHandler(opts.Log))
	router.Use(middleware.RequestLogger(opts.Log))
	router.Use(middleware.CORS(opts.CORSOrigins))

	// Health check endpoint (no auth required)
	router.GET("/health", api.HealthCheck(opts.Health))

	// Protected routes
	v1 := router.Group("/api/v1")
	v1.Use(middleware.AuthMiddleware(opts.Validator))
	{
		h.Recipes.RegisterRoutes(v1)
		h.Parse.RegisterRoutes(v1)
		h.Profile.RegisterRoutes(v1)
		h.Friends.RegisterRoutes(v1)
	}

	return router
}
