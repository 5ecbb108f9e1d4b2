package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/pageza/recipe-hub/backend/internal/model"
	"github.com/stretchr/testify/mock"
)

// MockFriendGraph is a mock implementation of the friend graph reads
type MockFriendGraph struct {
	mock.Mock
}

func (m *MockFriendGraph) Search(ctx context.Context, query string) ([]model.UserProfile, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.UserProfile), args.Error(1)
}

func (m *MockFriendGraph) ListFriends(ctx context.Context) ([]model.UserProfile, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.UserProfile), args.Error(1)
}

func (m *MockFriendGraph) ListRequests(ctx context.Context) (model.FriendRequests, error) {
	args := m.Called(ctx)
	return args.Get(0).(model.FriendRequests), args.Error(1)
}

func (m *MockFriendGraph) GetProfile(ctx context.Context, id uuid.UUID) (*model.UserProfile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.UserProfile), args.Error(1)
}

// MockFriendRecipes is a mock implementation of friend collection reads
type MockFriendRecipes struct {
	mock.Mock
}

func (m *MockFriendRecipes) ListForFriend(ctx context.Context, friendID uuid.UUID) ([]model.Recipe, error) {
	args := m.Called(ctx, friendID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Recipe), args.Error(1)
}
