package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pageza/recipe-hub/backend/internal/auth"
	"github.com/pageza/recipe-hub/backend/internal/logging"
	"github.com/pageza/recipe-hub/backend/internal/model"
	"gorm.io/gorm"
)

// FriendshipChecker reports whether two users share an accepted friendship.
type FriendshipChecker interface {
	AreFriends(ctx context.Context, a, b uuid.UUID) (bool, error)
}

// RecipeRepository persists recipes owned by the current identity. Every
// query is scoped to the caller, so rows of other users are invisible.
type RecipeRepository struct {
	db       *gorm.DB
	identity auth.Provider
	friends  FriendshipChecker
	log      logging.Logger
	now      func() time.Time
}

// NewRecipeRepository creates a repository. friends may be nil, in which
// case friend collections are never readable.
func NewRecipeRepository(db *gorm.DB, identity auth.Provider, friends FriendshipChecker, log logging.Logger) *RecipeRepository {
	return &RecipeRepository{
		db:       db,
		identity: identity,
		friends:  friends,
		log:      log.With("component", "recipe_repository"),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// List returns the caller's recipes, newest first. Rows that no longer
// validate are skipped.
func (r *RecipeRepository) List(ctx context.Context) ([]model.Recipe, error) {
	uid, err := currentUser(ctx, r.identity)
	if err != nil {
		return nil, err
	}
	return r.listFor(ctx, uid, "fetch recipes")
}

// Create validates recipe and inserts it for the caller. The returned recipe
// carries the server-assigned id.
func (r *RecipeRepository) Create(ctx context.Context, recipe model.Recipe) (model.Recipe, error) {
	uid, err := currentUser(ctx, r.identity)
	if err != nil {
		return model.Recipe{}, err
	}
	valid, err := model.Validate(recipe)
	if err != nil {
		return model.Recipe{}, err
	}

	row := newRecipeRow(uid, valid)
	row.CreatedAt = r.now()
	row.UpdatedAt = row.CreatedAt
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return model.Recipe{}, &model.StoreError{Op: "create recipe", Err: err}
	}

	created, err := model.Validate(row.fields())
	if err != nil {
		return model.Recipe{}, &model.StoreError{Op: "create recipe", Err: err}
	}
	return created, nil
}

// Update merges fields into the stored recipe and saves the result. The
// patch and the merged recipe are both validated before anything is written.
func (r *RecipeRepository) Update(ctx context.Context, id string, fields map[string]any) (model.Recipe, error) {
	uid, err := currentUser(ctx, r.identity)
	if err != nil {
		return model.Recipe{}, err
	}
	patch, err := model.ValidatePatch(fields)
	if err != nil {
		return model.Recipe{}, err
	}
	rid, ok := parseRowID(id)
	if !ok {
		return model.Recipe{}, fmt.Errorf("recipe %q: %w", id, model.ErrNotFound)
	}

	var row recipeRow
	err = r.db.WithContext(ctx).Where("id = ? AND user_id = ?", rid, uid).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Recipe{}, fmt.Errorf("recipe %q: %w", id, model.ErrNotFound)
	}
	if err != nil {
		return model.Recipe{}, &model.StoreError{Op: "update recipe", Err: err}
	}

	merged := row.fields()
	for k, v := range patch {
		if v == nil {
			delete(merged, k)
			continue
		}
		merged[k] = v
	}
	valid, err := model.Validate(merged)
	if err != nil {
		return model.Recipe{}, err
	}

	updated := newRecipeRow(uid, valid)
	updated.ID = row.ID
	updated.CreatedAt = row.CreatedAt
	updated.UpdatedAt = r.now()

	res := r.db.WithContext(ctx).Model(&recipeRow{}).
		Where("id = ? AND user_id = ?", rid, uid).
		Select("title", "ingredients", "instructions", "prep_time", "cook_time", "image", "success", "extra", "updated_at").
		Updates(&updated)
	if res.Error != nil {
		return model.Recipe{}, &model.StoreError{Op: "update recipe", Err: res.Error}
	}
	if res.RowsAffected == 0 {
		return model.Recipe{}, fmt.Errorf("recipe %q: %w", id, model.ErrNotFound)
	}

	out, err := model.Validate(updated.fields())
	if err != nil {
		return model.Recipe{}, &model.StoreError{Op: "update recipe", Err: err}
	}
	return out, nil
}

// Delete removes the caller's recipe. Deleting a missing id is not an error.
func (r *RecipeRepository) Delete(ctx context.Context, id string) error {
	uid, err := currentUser(ctx, r.identity)
	if err != nil {
		return err
	}
	rid, ok := parseRowID(id)
	if !ok {
		return nil
	}
	if err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", rid, uid).Delete(&recipeRow{}).Error; err != nil {
		return &model.StoreError{Op: "delete recipe", Err: err}
	}
	return nil
}

// GetByID returns the caller's recipe, or nil when it does not exist.
func (r *RecipeRepository) GetByID(ctx context.Context, id string) (*model.Recipe, error) {
	uid, err := currentUser(ctx, r.identity)
	if err != nil {
		return nil, err
	}
	rid, ok := parseRowID(id)
	if !ok {
		return nil, nil
	}

	var row recipeRow
	err = r.db.WithContext(ctx).Where("id = ? AND user_id = ?", rid, uid).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, &model.StoreError{Op: "fetch recipe", Err: err}
	}

	recipe, err := model.Validate(row.fields())
	if err != nil {
		return nil, &model.StoreError{Op: "fetch recipe", Err: fmt.Errorf("invalid recipe data received from database: %w", err)}
	}
	return &recipe, nil
}

// ListForFriend returns the recipes of friendID, provided the caller and
// friendID are accepted friends.
func (r *RecipeRepository) ListForFriend(ctx context.Context, friendID uuid.UUID) ([]model.Recipe, error) {
	uid, err := currentUser(ctx, r.identity)
	if err != nil {
		return nil, err
	}
	if r.friends == nil || friendID == uid {
		return nil, model.ErrNotFriends
	}
	ok, err := r.friends.AreFriends(ctx, uid, friendID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, model.ErrNotFriends
	}
	return r.listFor(ctx, friendID, "fetch friend recipes")
}

func (r *RecipeRepository) listFor(ctx context.Context, owner uuid.UUID, op string) ([]model.Recipe, error) {
	var rows []recipeRow
	if err := r.db.WithContext(ctx).Where("user_id = ?", owner).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, &model.StoreError{Op: op, Err: err}
	}

	recipes := make([]model.Recipe, 0, len(rows))
	for _, row := range rows {
		recipe, err := model.Validate(row.fields())
		if err != nil {
			r.log.Warn(ctx, "skipping invalid recipe row", "recipe_id", row.ID, "error", err)
			continue
		}
		recipes = append(recipes, recipe)
	}
	return recipes, nil
}

func currentUser(ctx context.Context, identity auth.Provider) (uuid.UUID, error) {
	if identity == nil {
		return uuid.Nil, model.ErrNotAuthenticated
	}
	uid, ok := identity.CurrentUser(ctx)
	if !ok || uid == uuid.Nil {
		return uuid.Nil, model.ErrNotAuthenticated
	}
	return uid, nil
}

func parseRowID(id string) (uuid.UUID, bool) {
	rid, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, false
	}
	return rid, true
}
