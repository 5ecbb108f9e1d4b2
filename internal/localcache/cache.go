package localcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/pageza/recipe-hub/backend/internal/logging"
	"github.com/pageza/recipe-hub/backend/internal/model"
)

// DefaultKey is the key the recipe list is stored under.
const DefaultKey = "recipe-hub-saved-recipes"

// RecipeCache stores the full recipe list as one JSON document. Reads never
// fail and writes are best effort: a corrupt or unavailable cache must not
// break the caller.
type RecipeCache struct {
	store Store
	key   string
	log   logging.Logger
}

// NewRecipeCache wraps store. A nil store behaves as permanently unavailable.
func NewRecipeCache(store Store, key string, log logging.Logger) *RecipeCache {
	if key == "" {
		key = DefaultKey
	}
	return &RecipeCache{
		store: store,
		key:   key,
		log:   log.With("component", "localcache", "key", key),
	}
}

func (c *RecipeCache) Key() string {
	return c.key
}

// Load returns the cached recipes, dropping entries that fail validation.
func (c *RecipeCache) Load(ctx context.Context) []model.Recipe {
	if c.store == nil {
		c.log.Warn(ctx, "local storage is not available")
		return []model.Recipe{}
	}

	raw, ok, err := c.store.Get(ctx, c.key)
	if err != nil {
		c.log.Error(ctx, "error loading recipes from local storage", "error", err)
		return []model.Recipe{}
	}
	if !ok {
		c.log.Debug(ctx, "no cached recipes found")
		return []model.Recipe{}
	}

	recipes, err := c.decode(ctx, raw)
	if err != nil {
		c.log.Warn(ctx, "invalid data format in local storage", "error", err)
		return []model.Recipe{}
	}
	return recipes
}

// Save replaces the cached list. Failures are logged and leave the previous
// contents untouched.
func (c *RecipeCache) Save(ctx context.Context, recipes []model.Recipe) {
	if c.store == nil {
		c.log.Warn(ctx, "local storage is not available")
		return
	}
	if recipes == nil {
		recipes = []model.Recipe{}
	}

	data, err := json.Marshal(recipes)
	if err != nil {
		c.log.Error(ctx, "failed to encode recipes for local storage", "error", err)
		return
	}

	if err := c.store.Set(ctx, c.key, string(data)); err != nil {
		if errors.Is(err, ErrQuotaExceeded) {
			c.log.Error(ctx, "local storage quota exceeded, unable to save recipes", "count", len(recipes), "bytes", len(data))
			return
		}
		c.log.Error(ctx, "error saving recipes to local storage", "error", err)
	}
}

func (c *RecipeCache) Clear(ctx context.Context) {
	if c.store == nil {
		return
	}
	if err := c.store.Remove(ctx, c.key); err != nil {
		c.log.Error(ctx, "error clearing recipes from local storage", "error", err)
	}
}

// Subscribe delivers the validated recipe list whenever another session
// replaces it. A removal delivers an empty list; undecodable payloads are
// skipped.
func (c *RecipeCache) Subscribe(ctx context.Context, fn func([]model.Recipe)) (func(), error) {
	if c.store == nil {
		return nil, ErrUnavailable
	}

	stop, err := c.store.Watch(ctx, c.key, func(ch Change) {
		if ch.Deleted {
			fn([]model.Recipe{})
			return
		}
		recipes, err := c.decode(ctx, ch.Value)
		if err != nil {
			c.log.Error(ctx, "error parsing storage change", "error", err)
			return
		}
		fn(recipes)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to watch local storage: %w", err)
	}
	return stop, nil
}

func (c *RecipeCache) decode(ctx context.Context, raw string) ([]model.Recipe, error) {
	var entries []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, err
	}

	recipes := make([]model.Recipe, 0, len(entries))
	for i, entry := range entries {
		r, err := model.Validate(entry)
		if err != nil {
			c.log.Warn(ctx, "dropping invalid cached recipe", "index", i, "error", err)
			continue
		}
		recipes = append(recipes, r)
	}
	return recipes, nil
}
