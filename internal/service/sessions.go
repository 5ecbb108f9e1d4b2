package service

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/pageza/recipe-hub/backend/internal/auth"
	"github.com/pageza/recipe-hub/backend/internal/localcache"
	"github.com/pageza/recipe-hub/backend/internal/logging"
	"github.com/pageza/recipe-hub/backend/internal/model"
)

// Sessions hands out one RecipeSync per user. Each user's collection is
// cached under the base key suffixed with the user id.
type Sessions struct {
	mode     Mode
	remote   RecipeStore
	store    localcache.Store
	baseKey  string
	identity auth.Provider
	log      logging.Logger

	mu    sync.Mutex
	syncs map[uuid.UUID]*RecipeSync
}

func NewSessions(mode Mode, remote RecipeStore, store localcache.Store, baseKey string, identity auth.Provider, log logging.Logger) *Sessions {
	if baseKey == "" {
		baseKey = localcache.DefaultKey
	}
	return &Sessions{
		mode:     mode,
		remote:   remote,
		store:    store,
		baseKey:  baseKey,
		identity: identity,
		log:      log,
		syncs:    make(map[uuid.UUID]*RecipeSync),
	}
}

// For returns the RecipeSync of the caller, creating it on first use.
func (s *Sessions) For(ctx context.Context) (*RecipeSync, error) {
	if s.identity == nil {
		return nil, model.ErrNotAuthenticated
	}
	uid, ok := s.identity.CurrentUser(ctx)
	if !ok {
		return nil, model.ErrNotAuthenticated
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if rs, ok := s.syncs[uid]; ok {
		return rs, nil
	}

	cache := localcache.NewRecipeCache(s.store, s.baseKey+":"+uid.String(), s.log)
	rs, err := NewRecipeSync(ctx, s.mode, s.remote, cache, s.log.With("user_id", uid.String()))
	if err != nil {
		return nil, err
	}
	s.syncs[uid] = rs
	return rs, nil
}

// Close releases every RecipeSync.
func (s *Sessions) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, rs := range s.syncs {
		rs.Close()
		delete(s.syncs, id)
	}
}
