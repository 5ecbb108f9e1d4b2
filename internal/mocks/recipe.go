package mocks

import (
	"context"

	"github.com/pageza/recipe-hub/backend/internal/model"
	"github.com/stretchr/testify/mock"
)

// MockRecipeStore is a mock implementation of the remote recipe store
type MockRecipeStore struct {
	mock.Mock
}

// List mocks the List method
func (m *MockRecipeStore) List(ctx context.Context) ([]model.Recipe, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Recipe), args.Error(1)
}

// Create mocks the Create method
func (m *MockRecipeStore) Create(ctx context.Context, recipe model.Recipe) (model.Recipe, error) {
	args := m.Called(ctx, recipe)
	return args.Get(0).(model.Recipe), args.Error(1)
}

// Update mocks the Update method
func (m *MockRecipeStore) Update(ctx context.Context, id string, fields map[string]any) (model.Recipe, error) {
	args := m.Called(ctx, id, fields)
	return args.Get(0).(model.Recipe), args.Error(1)
}

// Delete mocks the Delete method
func (m *MockRecipeStore) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// GetByID mocks the GetByID method
func (m *MockRecipeStore) GetByID(ctx context.Context, id string) (*model.Recipe, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Recipe), args.Error(1)
}
