package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pageza/recipe-hub/backend/internal/auth"
	"github.com/pageza/recipe-hub/backend/internal/logging"
	"github.com/pageza/recipe-hub/backend/internal/model"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens an isolated in-memory sqlite database with the schema
// migrated. A single connection keeps the shared cache consistent across
// goroutines.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(Tables()...))
	return db
}

// stepClock returns a clock that advances one second per call.
func stepClock() func() time.Time {
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	n := 0
	return func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Second)
	}
}

type fixture struct {
	db      *gorm.DB
	recipes *RecipeRepository
	friends *FriendRepository
}

// newFixture wires both repositories to the context identity so a test can
// act as several users by switching contexts.
func newFixture(t *testing.T) fixture {
	t.Helper()
	db := newTestDB(t)
	friends := NewFriendRepository(db, auth.ContextProvider{}, 0, logging.Nop())
	friends.now = stepClock()
	recipes := NewRecipeRepository(db, auth.ContextProvider{}, friends, logging.Nop())
	recipes.now = stepClock()
	return fixture{db: db, recipes: recipes, friends: friends}
}

func (f fixture) user(t *testing.T, name string) (uuid.UUID, context.Context) {
	t.Helper()
	id := uuid.New()
	ctx := auth.WithUser(context.Background(), id)
	if name != "" {
		_, err := f.friends.SaveProfile(ctx, model.ProfileUpdate{DisplayName: &name}, "")
		require.NoError(t, err)
	}
	return id, ctx
}

func sampleRecipe(title string) model.Recipe {
	cook := 20.0
	return model.Recipe{
		Title:        title,
		Ingredients:  []string{"flour", "water"},
		Instructions: "Mix.\nBake.",
		PrepTime:     10,
		CookTime:     &cook,
		Image:        "https://example.com/" + title + ".jpg",
		Success:      true,
	}
}
