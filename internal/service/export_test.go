package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pageza/recipe-hub/backend/internal/auth"
	"github.com/pageza/recipe-hub/backend/internal/logging"
	"github.com/pageza/recipe-hub/backend/internal/mocks"
	"github.com/pageza/recipe-hub/backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestExportService_Export(t *testing.T) {
	uid := uuid.New()
	ctx := auth.WithUser(context.Background(), uid)
	fixed := time.Date(2024, 3, 1, 8, 30, 0, 0, time.UTC)
	key := "exports/" + uid.String() + "/20240301T083000Z.json"

	var uploaded []byte
	store := new(mocks.MockObjectStore)
	store.On("PutObject", mock.Anything, key, mock.Anything, "application/json").
		Run(func(args mock.Arguments) { uploaded = args.Get(2).([]byte) }).
		Return(nil)
	store.On("PresignGet", mock.Anything, key, time.Hour).Return("https://bucket.example.com/signed", nil)

	svc := NewExportService(store, auth.ContextProvider{}, time.Hour, logging.Nop())
	svc.now = func() time.Time { return fixed }

	got, err := svc.Export(ctx, testRecipes(2))
	require.NoError(t, err)
	assert.Equal(t, key, got.Key)
	assert.Equal(t, "https://bucket.example.com/signed", got.URL)
	assert.Equal(t, 2, got.Count)
	assert.Equal(t, fixed.Add(time.Hour), got.ExpiresAt)

	var doc struct {
		UserID  string         `json:"user_id"`
		Recipes []model.Recipe `json:"recipes"`
	}
	require.NoError(t, json.Unmarshal(uploaded, &doc))
	assert.Equal(t, uid.String(), doc.UserID)
	assert.Equal(t, testRecipes(2), doc.Recipes)
	store.AssertExpectations(t)
}

func TestExportService_Errors(t *testing.T) {
	ctx := auth.WithUser(context.Background(), uuid.New())

	svc := NewExportService(new(mocks.MockObjectStore), auth.ContextProvider{}, 0, logging.Nop())
	_, err := svc.Export(context.Background(), nil)
	assert.ErrorIs(t, err, model.ErrNotAuthenticated)

	bad := testRecipe("x", "")
	_, err = svc.Export(ctx, []model.Recipe{bad})
	var schemaErr *model.SchemaError
	assert.ErrorAs(t, err, &schemaErr)

	store := new(mocks.MockObjectStore)
	store.On("PutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("access denied"))
	svc = NewExportService(store, auth.ContextProvider{}, 0, logging.Nop())
	_, err = svc.Export(ctx, testRecipes(1))
	assert.ErrorContains(t, err, "failed to upload export")
	store.AssertNotCalled(t, "PresignGet", mock.Anything, mock.Anything, mock.Anything)

	unconfigured := NewExportService(nil, auth.ContextProvider{}, 0, logging.Nop())
	_, err = unconfigured.Export(ctx, nil)
	assert.Error(t, err)
}
