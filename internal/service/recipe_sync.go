package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/pageza/recipe-hub/backend/internal/localcache"
	"github.com/pageza/recipe-hub/backend/internal/logging"
	"github.com/pageza/recipe-hub/backend/internal/model"
)

// Mode selects where a RecipeSync keeps the collection.
type Mode string

const (
	// ModeDatabase uses the remote store and keeps the local cache as a
	// fallback copy.
	ModeDatabase Mode = "database"
	// ModeLocal keeps the collection in the local cache only.
	ModeLocal Mode = "local"
)

// ParseMode maps a configuration value onto a Mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeDatabase:
		return ModeDatabase, nil
	case ModeLocal:
		return ModeLocal, nil
	default:
		return "", fmt.Errorf("unknown storage mode %q", s)
	}
}

// ListResult is the outcome of a read. Degraded reads carry a
// human-readable warning instead of an error.
type ListResult struct {
	Recipes  []model.Recipe `json:"recipes"`
	Warning  string         `json:"warning,omitempty"`
	Degraded bool           `json:"degraded"`
}

// RecipeSync owns the in-memory recipe collection of one user and keeps it
// consistent with the configured backend.
type RecipeSync struct {
	mode   Mode
	remote RecipeStore
	cache  *localcache.RecipeCache
	log    logging.Logger

	mu      sync.RWMutex
	recipes []model.Recipe
	// gen increases on every read start and every write. A read may only
	// commit its result when no newer generation exists.
	gen uint64
	// persist serializes load-apply-save of the database mode fallback copy.
	persist sync.Mutex

	unsubscribe func()
}

var _ IRecipeSync = (*RecipeSync)(nil)

// NewRecipeSync builds a facade. In local mode the cached collection is
// loaded immediately and out-of-band cache writes replace the state.
func NewRecipeSync(ctx context.Context, mode Mode, remote RecipeStore, cache *localcache.RecipeCache, log logging.Logger) (*RecipeSync, error) {
	if cache == nil {
		return nil, errors.New("recipe cache is required")
	}
	if mode == ModeDatabase && remote == nil {
		return nil, errors.New("database mode requires a recipe store")
	}
	if mode != ModeDatabase && mode != ModeLocal {
		return nil, fmt.Errorf("unknown storage mode %q", mode)
	}

	s := &RecipeSync{
		mode:    mode,
		remote:  remote,
		cache:   cache,
		log:     log.With("component", "recipe_sync", "mode", string(mode)),
		recipes: []model.Recipe{},
	}

	if mode == ModeLocal {
		s.recipes = cache.Load(ctx)
		stop, err := cache.Subscribe(context.WithoutCancel(ctx), s.replace)
		if err != nil {
			s.log.Warn(ctx, "cross-session updates disabled", "error", err)
		} else {
			s.unsubscribe = stop
		}
	}
	return s, nil
}

func (s *RecipeSync) Mode() Mode {
	return s.mode
}

// List loads the collection. In database mode a remote failure falls back
// to the local copy and reports a warning rather than an error.
func (s *RecipeSync) List(ctx context.Context) (ListResult, error) {
	gen := s.beginRead()

	if s.mode == ModeLocal {
		recipes := s.cache.Load(ctx)
		s.commitRead(gen, recipes)
		return ListResult{Recipes: recipes}, nil
	}

	recipes, err := s.remote.List(ctx)
	if err != nil {
		if errors.Is(err, model.ErrNotAuthenticated) {
			return ListResult{}, err
		}
		s.log.Warn(ctx, "failed to fetch recipes from database, using local copy", "error", err)
		cached := s.cache.Load(ctx)
		s.commitRead(gen, cached)
		return ListResult{
			Recipes:  cached,
			Warning:  fmt.Sprintf("Could not reach the recipe database; loaded a local copy of %d recipes instead", len(cached)),
			Degraded: true,
		}, nil
	}

	s.persist.Lock()
	if s.commitRead(gen, recipes) {
		s.cache.Save(ctx, recipes)
	}
	s.persist.Unlock()
	return ListResult{Recipes: recipes}, nil
}

// Refresh reloads the collection from the backend.
func (s *RecipeSync) Refresh(ctx context.Context) (ListResult, error) {
	return s.List(ctx)
}

// Add validates input and stores it. In local mode a fresh id is assigned.
func (s *RecipeSync) Add(ctx context.Context, input any) (model.Recipe, error) {
	recipe, err := model.Validate(input)
	if err != nil {
		return model.Recipe{}, err
	}

	if s.mode == ModeLocal {
		recipe.ID = uuid.NewString()
	} else {
		recipe, err = s.remote.Create(ctx, recipe)
		if err != nil {
			return model.Recipe{}, err
		}
	}

	s.write(ctx, func(current []model.Recipe) ([]model.Recipe, error) {
		return upsert(current, recipe), nil
	})
	return recipe, nil
}

// Update applies a partial update to the recipe with id.
func (s *RecipeSync) Update(ctx context.Context, id string, fields map[string]any) (model.Recipe, error) {
	if s.mode == ModeDatabase {
		updated, err := s.remote.Update(ctx, id, fields)
		if err != nil {
			return model.Recipe{}, err
		}
		s.write(ctx, func(current []model.Recipe) ([]model.Recipe, error) {
			return upsert(current, updated), nil
		})
		return updated, nil
	}

	patch, err := model.ValidatePatch(fields)
	if err != nil {
		return model.Recipe{}, err
	}

	var updated model.Recipe
	err = s.write(ctx, func(current []model.Recipe) ([]model.Recipe, error) {
		i := indexOf(current, id)
		if i < 0 {
			return nil, fmt.Errorf("recipe %q: %w", id, model.ErrNotFound)
		}
		merged, err := current[i].Apply(patch)
		if err != nil {
			return nil, err
		}
		merged.ID = current[i].ID
		updated = merged
		return upsert(current, merged), nil
	})
	if err != nil {
		return model.Recipe{}, err
	}
	return updated, nil
}

// Delete removes the recipe with id. Unknown ids are ignored.
func (s *RecipeSync) Delete(ctx context.Context, id string) error {
	if s.mode == ModeDatabase {
		if err := s.remote.Delete(ctx, id); err != nil {
			return err
		}
	}
	s.write(ctx, func(current []model.Recipe) ([]model.Recipe, error) {
		i := indexOf(current, id)
		if i < 0 {
			return current, nil
		}
		next := make([]model.Recipe, 0, len(current)-1)
		next = append(next, current[:i]...)
		return append(next, current[i+1:]...), nil
	})
	return nil
}

// Get returns the recipe with id, or nil when it does not exist.
func (s *RecipeSync) Get(ctx context.Context, id string) (*model.Recipe, error) {
	if s.mode == ModeDatabase {
		return s.remote.GetByID(ctx, id)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := indexOf(s.recipes, id); i >= 0 {
		r := s.recipes[i]
		return &r, nil
	}
	return nil, nil
}

// Recipes returns a snapshot of the current collection.
func (s *RecipeSync) Recipes() []model.Recipe {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Recipe(nil), s.recipes...)
}

// Close stops listening for out-of-band cache changes.
func (s *RecipeSync) Close() {
	s.mu.Lock()
	stop := s.unsubscribe
	s.unsubscribe = nil
	s.mu.Unlock()
	if stop != nil {
		stop()
	}
}

func (s *RecipeSync) beginRead() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	return s.gen
}

// commitRead stores the result of the read started at gen unless a newer
// read or write has happened since.
func (s *RecipeSync) commitRead(gen uint64, recipes []model.Recipe) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		s.log.Debug(context.Background(), "discarding stale read", "generation", gen, "current", s.gen)
		return false
	}
	s.recipes = append([]model.Recipe(nil), recipes...)
	return true
}

// write applies fn to the current state and persists the result to the
// local cache. Persisting is best effort.
func (s *RecipeSync) write(ctx context.Context, fn func([]model.Recipe) ([]model.Recipe, error)) error {
	s.mu.Lock()
	next, err := fn(s.recipes)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.gen++
	s.recipes = next
	snapshot := append([]model.Recipe(nil), next...)
	s.mu.Unlock()

	if s.mode == ModeDatabase {
		s.persistFallback(ctx, fn)
		return nil
	}
	s.cache.Save(ctx, snapshot)
	return nil
}

// persistFallback applies fn to the cached copy rather than the in-memory
// state, which is empty until the first successful List of a session.
func (s *RecipeSync) persistFallback(ctx context.Context, fn func([]model.Recipe) ([]model.Recipe, error)) {
	s.persist.Lock()
	defer s.persist.Unlock()

	next, err := fn(s.cache.Load(ctx))
	if err != nil {
		s.log.Warn(ctx, "local copy not updated", "error", err)
		return
	}
	s.cache.Save(ctx, next)
}

// replace adopts a collection written by another session.
func (s *RecipeSync) replace(recipes []model.Recipe) {
	s.mu.Lock()
	s.gen++
	s.recipes = recipes
	s.mu.Unlock()
	s.log.Info(context.Background(), "recipes updated by another session", "count", len(recipes))
}

func indexOf(recipes []model.Recipe, id string) int {
	if id == "" {
		return -1
	}
	for i, r := range recipes {
		if r.ID == id {
			return i
		}
	}
	return -1
}

// upsert replaces the recipe with the same id in place, or prepends it.
func upsert(recipes []model.Recipe, r model.Recipe) []model.Recipe {
	next := make([]model.Recipe, 0, len(recipes)+1)
	if i := indexOf(recipes, r.ID); i >= 0 {
		next = append(next, recipes...)
		next[i] = r
		return next
	}
	next = append(next, r)
	return append(next, recipes...)
}
