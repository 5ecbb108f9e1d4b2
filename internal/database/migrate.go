package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pageza/recipe-hub/backend/internal/database/migrations"
	"github.com/pageza/recipe-hub/backend/internal/logging"
	"github.com/pageza/recipe-hub/backend/internal/repository"
	"github.com/pressly/goose/v3"
	"gorm.io/gorm"
)

// Migrate brings the schema up to date. Postgres runs the embedded goose
// migrations; other drivers use gorm auto-migration.
func Migrate(ctx context.Context, db *gorm.DB, log logging.Logger) error {
	if db.Dialector.Name() == "postgres" {
		sqlDB, err := db.DB()
		if err != nil {
			return fmt.Errorf("failed to get database handle: %w", err)
		}
		return MigrateUp(ctx, sqlDB)
	}

	log.Info(ctx, "using GORM auto-migration", "dialect", db.Dialector.Name())
	if err := db.WithContext(ctx).AutoMigrate(repository.Tables()...); err != nil {
		return fmt.Errorf("failed to auto-migrate schema: %w", err)
	}
	return nil
}

// MigrateUp applies all pending postgres migrations.
func MigrateUp(ctx context.Context, db *sql.DB) error {
	if err := setupGoose(); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// MigrateDown rolls back the most recent postgres migration.
func MigrateDown(ctx context.Context, db *sql.DB) error {
	if err := setupGoose(); err != nil {
		return err
	}
	if err := goose.DownContext(ctx, db, "."); err != nil {
		return fmt.Errorf("failed to roll back migration: %w", err)
	}
	return nil
}

func setupGoose() error {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}
	return nil
}
