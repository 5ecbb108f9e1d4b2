package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pageza/recipe-hub/backend/internal/model"
)

// RecipeStore is the remote recipe persistence used in database mode.
type RecipeStore interface {
	List(ctx context.Context) ([]model.Recipe, error)
	Create(ctx context.Context, recipe model.Recipe) (model.Recipe, error)
	Update(ctx context.Context, id string, fields map[string]any) (model.Recipe, error)
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*model.Recipe, error)
}

// FriendRecipes reads the collection of a friend.
type FriendRecipes interface {
	ListForFriend(ctx context.Context, friendID uuid.UUID) ([]model.Recipe, error)
}

// FriendGraph is the read side of the friendship graph.
type FriendGraph interface {
	Search(ctx context.Context, query string) ([]model.UserProfile, error)
	ListFriends(ctx context.Context) ([]model.UserProfile, error)
	ListRequests(ctx context.Context) (model.FriendRequests, error)
	GetProfile(ctx context.Context, id uuid.UUID) (*model.UserProfile, error)
}

// ObjectStore uploads exported collections and hands out time-limited links.
type ObjectStore interface {
	PutObject(ctx context.Context, key string, body []byte, contentType string) error
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// IRecipeSync is the recipe collection facade consumed by the HTTP layer.
type IRecipeSync interface {
	List(ctx context.Context) (ListResult, error)
	Refresh(ctx context.Context) (ListResult, error)
	Add(ctx context.Context, input any) (model.Recipe, error)
	Update(ctx context.Context, id string, fields map[string]any) (model.Recipe, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*model.Recipe, error)
	Recipes() []model.Recipe
}

// IFriendService composes friend graph reads for the HTTP layer.
type IFriendService interface {
	FindPeople(ctx context.Context, query string) ([]model.UserProfile, error)
	Overview(ctx context.Context) (FriendsOverview, error)
	FriendCollection(ctx context.Context, friendID uuid.UUID) (FriendCollection, error)
}

// IExportService publishes a recipe collection.
type IExportService interface {
	Export(ctx context.Context, recipes []model.Recipe) (Export, error)
}
