package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/pageza/recipe-hub/backend/config"
	"github.com/pageza/recipe-hub/backend/internal/auth"
	"github.com/pageza/recipe-hub/backend/internal/database"
	"github.com/pageza/recipe-hub/backend/internal/logging"
	"github.com/pageza/recipe-hub/backend/internal/model"
	"github.com/pageza/recipe-hub/backend/internal/repository"
)

type seedUser struct {
	id      uuid.UUID
	name    string
	email   string
	recipes []model.Recipe
}

// Fixed ids keep reruns idempotent and tokens stable across seeds.
var users = []seedUser{
	{
		id:    uuid.MustParse("5b0f4d1e-4c6a-4c0b-9a1e-1f3d2c6b7a01"),
		name:  "John Doe",
		email: "john.doe@example.com",
		recipes: []model.Recipe{
			{
				Title:        "Weeknight Tomato Pasta",
				Ingredients:  []string{"spaghetti", "canned tomatoes", "garlic", "olive oil", "basil"},
				Instructions: "Boil the pasta.\nSimmer tomatoes with garlic and oil.\nToss with basil.",
				PrepTime:     10,
				Success:      true,
			},
		},
	},
	{
		id:    uuid.MustParse("5b0f4d1e-4c6a-4c0b-9a1e-1f3d2c6b7a02"),
		name:  "Jane Smith",
		email: "jane.smith@example.com",
		recipes: []model.Recipe{
			{
				Title:        "Overnight Oats",
				Ingredients:  []string{"rolled oats", "milk", "chia seeds", "honey"},
				Instructions: "Stir everything together.\nRefrigerate overnight.",
				PrepTime:     5,
				Success:      true,
			},
			{
				Title:        "Red Lentil Soup",
				Ingredients:  []string{"red lentils", "onion", "carrot", "cumin", "stock"},
				Instructions: "Soften onion and carrot.\nAdd lentils, cumin and stock.\nSimmer 25 minutes and blend.",
				PrepTime:     15,
				Success:      true,
			},
		},
	},
	{
		id:    uuid.MustParse("5b0f4d1e-4c6a-4c0b-9a1e-1f3d2c6b7a03"),
		name:  "Bob Wilson",
		email: "bob.wilson@example.com",
	},
}

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "seed: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	log := logging.New(cfg.Environment.String(), cfg.Debug)

	db, err := database.Open(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = database.Close(db) }()
	if err := database.Migrate(ctx, db, log); err != nil {
		return err
	}

	identity := auth.ContextProvider{}
	friends := repository.NewFriendRepository(db, identity, cfg.SearchLimit, log)
	recipes := repository.NewRecipeRepository(db, identity, friends, log)
	tokens := auth.NewTokenValidator(cfg.JWTSecret)

	for _, u := range users {
		if err := seed(ctx, friends, recipes, u); err != nil {
			return fmt.Errorf("failed to seed %s: %w", u.email, err)
		}
	}

	// John and Jane are friends; Bob has a pending request to John.
	if err := befriend(ctx, friends, users[0].id, users[1].id, true); err != nil {
		return err
	}
	if err := befriend(ctx, friends, users[2].id, users[0].id, false); err != nil {
		return err
	}

	fmt.Println("Test users (tokens valid for 30 days):")
	for _, u := range users {
		token, err := tokens.GenerateToken(u.id, u.email, 30*24*time.Hour)
		if err != nil {
			return fmt.Errorf("failed to sign token: %w", err)
		}
		fmt.Printf("  %-12s %s\n  %s\n", u.name, u.email, token)
	}
	return nil
}

func seed(ctx context.Context, friends *repository.FriendRepository, recipes *repository.RecipeRepository, u seedUser) error {
	ctx = auth.WithUser(ctx, u.id)
	name := u.name
	if _, err := friends.SaveProfile(ctx, model.ProfileUpdate{DisplayName: &name}, u.email); err != nil {
		return err
	}

	existing, err := recipes.List(ctx)
	if err != nil {
		return err
	}
	titles := make(map[string]bool, len(existing))
	for _, r := range existing {
		titles[r.Title] = true
	}
	for _, r := range u.recipes {
		if titles[r.Title] {
			continue
		}
		if _, err := recipes.Create(ctx, r); err != nil {
			return err
		}
	}
	return nil
}

func befriend(ctx context.Context, friends *repository.FriendRepository, from, to uuid.UUID, accept bool) error {
	req, err := friends.SendRequest(auth.WithUser(ctx, from), to)
	if errors.Is(err, model.ErrFriendshipExists) {
		return nil
	}
	if err != nil {
		return err
	}
	if !accept {
		return nil
	}
	_, err = friends.Accept(auth.WithUser(ctx, to), req.ID)
	return err
}
