package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/pageza/recipe-hub/backend/internal/auth"
	"github.com/pageza/recipe-hub/backend/internal/localcache"
	"github.com/pageza/recipe-hub/backend/internal/logging"
	"github.com/pageza/recipe-hub/backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessions_OnePerUser(t *testing.T) {
	backend := localcache.NewMemoryBackend(0)
	sessions := NewSessions(ModeLocal, nil, backend.Session("server"), "", auth.ContextProvider{}, logging.Nop())
	defer sessions.Close()

	alice := auth.WithUser(context.Background(), uuid.New())
	bob := auth.WithUser(context.Background(), uuid.New())

	a1, err := sessions.For(alice)
	require.NoError(t, err)
	a2, err := sessions.For(alice)
	require.NoError(t, err)
	assert.Same(t, a1, a2)

	b, err := sessions.For(bob)
	require.NoError(t, err)
	assert.NotSame(t, a1, b)

	_, err = a1.Add(alice, testRecipe("", "Alice's"))
	require.NoError(t, err)

	res, err := b.List(bob)
	require.NoError(t, err)
	assert.Empty(t, res.Recipes, "collections are keyed per user")

	res, err = a1.List(alice)
	require.NoError(t, err)
	assert.Len(t, res.Recipes, 1)
}

func TestSessions_RequiresIdentity(t *testing.T) {
	sessions := NewSessions(ModeLocal, nil, localcache.NewMemoryBackend(0).Session("server"), "", auth.ContextProvider{}, logging.Nop())
	_, err := sessions.For(context.Background())
	assert.ErrorIs(t, err, model.ErrNotAuthenticated)

	none := NewSessions(ModeLocal, nil, nil, "", nil, logging.Nop())
	_, err = none.For(auth.WithUser(context.Background(), uuid.New()))
	assert.ErrorIs(t, err, model.ErrNotAuthenticated)
}

func TestSessions_PropagatesConstructionErrors(t *testing.T) {
	sessions := NewSessions(ModeDatabase, nil, localcache.NewMemoryBackend(0).Session("server"), "", auth.ContextProvider{}, logging.Nop())
	_, err := sessions.For(auth.WithUser(context.Background(), uuid.New()))
	assert.Error(t, err)
}
