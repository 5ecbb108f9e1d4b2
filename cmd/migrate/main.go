package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"

	_ "github.com/lib/pq"

	"github.com/pageza/recipe-hub/backend/config"
	"github.com/pageza/recipe-hub/backend/internal/database"
)

func main() {
	// Parse command line flags
	rollback := flag.Bool("rollback", false, "Rollback the last migration")
	flag.Parse()

	if err := run(*rollback); err != nil {
		fmt.Fprintf(os.Stderr, "migrate: %v\n", err)
		os.Exit(1)
	}
}

func run(rollback bool) error {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}
		if cfg.DBDriver != "postgres" {
			return fmt.Errorf("SQL migrations target postgres; %s schemas are auto-migrated by the API", cfg.DBDriver)
		}
		dsn = database.PostgresDSN(cfg)
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()
	if rollback {
		if err := database.MigrateDown(ctx, db); err != nil {
			return err
		}
		fmt.Println("Successfully rolled back the last migration.")
		return nil
	}

	if err := database.MigrateUp(ctx, db); err != nil {
		return err
	}
	fmt.Println("All migrations applied successfully.")
	return nil
}
