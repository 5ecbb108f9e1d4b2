package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/pageza/recipe-hub/backend/config"
	"github.com/pageza/recipe-hub/backend/internal/api"
	"github.com/pageza/recipe-hub/backend/internal/auth"
	"github.com/pageza/recipe-hub/backend/internal/database"
	"github.com/pageza/recipe-hub/backend/internal/localcache"
	"github.com/pageza/recipe-hub/backend/internal/logging"
	"github.com/pageza/recipe-hub/backend/internal/middleware"
	"github.com/pageza/recipe-hub/backend/internal/parser"
	"github.com/pageza/recipe-hub/backend/internal/repository"
	"github.com/pageza/recipe-hub/backend/internal/router"
	"github.com/pageza/recipe-hub/backend/internal/server"
	"github.com/pageza/recipe-hub/backend/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "recipe-hub: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	log := logging.New(cfg.Environment.String(), cfg.Debug)
	if cfg.Environment.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	log.Info(ctx, "configuration loaded", "environment", cfg.Environment.String(), "storage_mode", cfg.StorageMode)

	mode, err := service.ParseMode(cfg.StorageMode)
	if err != nil {
		return err
	}

	db, err := database.Open(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = database.Close(db) }()
	if err := database.Migrate(ctx, db, log); err != nil {
		return err
	}

	var redisClient *redis.Client
	if cfg.RedisConfigured() {
		redisClient, err = database.NewRedisClient(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer redisClient.Close()
	} else {
		log.Warn(ctx, "Redis not configured; using in-process cache and no parse rate limit")
	}

	handlers, sessions, err := buildHandlers(ctx, cfg, mode, db, redisClient, log)
	if err != nil {
		return err
	}
	defer sessions.Close()

	engine := router.SetupRouter(handlers, router.Options{
		CORSOrigins: cfg.CORSOrigins,
		Validator:   auth.NewTokenValidator(cfg.JWTSecret),
		Health:      func(ctx context.Context) error { return database.HealthCheck(ctx, db) },
		Log:         log,
	})

	if err := server.New(cfg, engine, log).Run(ctx); err != nil {
		return err
	}
	log.Info(context.Background(), "server stopped")
	return nil
}

func buildHandlers(ctx context.Context, cfg *config.Config, mode service.Mode, db *gorm.DB, redisClient *redis.Client, log logging.Logger) (router.Handlers, *service.Sessions, error) {
	identity := auth.ContextProvider{}

	friends := repository.NewFriendRepository(db, identity, cfg.SearchLimit, log)
	recipes := repository.NewRecipeRepository(db, identity, friends, log)

	var store localcache.Store
	if redisClient != nil {
		origin, _ := os.Hostname()
		store = localcache.NewRedisStore(redisClient, "recipe-hub", origin+"-"+uuid.NewString(), cfg.CacheMaxBytes)
	} else {
		store = localcache.NewMemoryBackend(cfg.CacheMaxBytes).Session("server")
	}
	sessions := service.NewSessions(mode, recipes, store, cfg.CacheKey, identity, log)

	var exporter service.IExportService
	if cfg.S3Bucket != "" {
		s3Store, err := config.NewS3Config(ctx, cfg)
		if err != nil {
			return router.Handlers{}, nil, err
		}
		exporter = service.NewExportService(s3Store, identity, cfg.ExportURLExpiry, log)
	}

	var parseLimit gin.HandlerFunc
	if redisClient != nil {
		parseLimit = middleware.NewParseRateLimiter(redisClient, cfg.ParseRateLimit, log).RateLimitMiddleware()
	}
	client := parser.NewClient(cfg.ParserURL, cfg.ParserTimeout, cfg.ParserRatePerSecond, log)

	return router.Handlers{
		Recipes: api.NewRecipeHandler(sessions, exporter, log),
		Parse:   api.NewParseHandler(client, sessions, parseLimit),
		Profile: api.NewProfileHandler(friends),
		Friends: api.NewFriendHandler(service.NewFriendService(friends, recipes, identity, log), friends),
	}, sessions, nil
}
