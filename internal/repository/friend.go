package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pageza/recipe-hub/backend/internal/auth"
	"github.com/pageza/recipe-hub/backend/internal/logging"
	"github.com/pageza/recipe-hub/backend/internal/model"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// DefaultSearchLimit caps profile search results.
const DefaultSearchLimit = 10

// FriendRepository manages profiles and the friendship graph for the
// current identity.
type FriendRepository struct {
	db          *gorm.DB
	identity    auth.Provider
	log         logging.Logger
	searchLimit int
	now         func() time.Time
}

var _ FriendshipChecker = (*FriendRepository)(nil)

// NewFriendRepository creates a repository. A non-positive searchLimit falls
// back to DefaultSearchLimit.
func NewFriendRepository(db *gorm.DB, identity auth.Provider, searchLimit int, log logging.Logger) *FriendRepository {
	if searchLimit <= 0 {
		searchLimit = DefaultSearchLimit
	}
	return &FriendRepository{
		db:          db,
		identity:    identity,
		log:         log.With("component", "friend_repository"),
		searchLimit: searchLimit,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Search finds profiles whose display name contains query, ignoring case.
// LIKE wildcards in query match literally. Emails are never included.
func (r *FriendRepository) Search(ctx context.Context, query string) ([]model.UserProfile, error) {
	if _, err := currentUser(ctx, r.identity); err != nil {
		return nil, err
	}
	q := strings.TrimSpace(query)
	if q == "" {
		return []model.UserProfile{}, nil
	}

	pattern := "%" + escapeLike(strings.ToLower(q)) + "%"
	var rows []profileRow
	err := r.db.WithContext(ctx).
		Select("id", "display_name", "avatar_url", "created_at").
		Where("LOWER(display_name) LIKE ? ESCAPE '!'", pattern).
		Order("display_name").
		Limit(r.searchLimit).
		Find(&rows).Error
	if err != nil {
		return nil, &model.StoreError{Op: "search users", Err: err}
	}

	profiles := make([]model.UserProfile, 0, len(rows))
	for _, row := range rows {
		p := row.toModel()
		p.Email = nil
		profiles = append(profiles, p)
	}
	return profiles, nil
}

// SendRequest creates a pending friendship from the caller to friendID.
func (r *FriendRepository) SendRequest(ctx context.Context, friendID uuid.UUID) (model.Friendship, error) {
	uid, err := currentUser(ctx, r.identity)
	if err != nil {
		return model.Friendship{}, err
	}
	if friendID == uuid.Nil || friendID == uid {
		return model.Friendship{}, model.ErrInvalidRequest
	}

	db := r.db.WithContext(ctx)
	var target profileRow
	err = db.Select("id").Where("id = ?", friendID).First(&target).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Friendship{}, fmt.Errorf("user %s: %w", friendID, model.ErrNotFound)
	}
	if err != nil {
		return model.Friendship{}, &model.StoreError{Op: "send friend request", Err: err}
	}

	var existing int64
	err = db.Model(&friendshipRow{}).
		Where("(user_id = ? AND friend_id = ?) OR (user_id = ? AND friend_id = ?)", uid, friendID, friendID, uid).
		Count(&existing).Error
	if err != nil {
		return model.Friendship{}, &model.StoreError{Op: "send friend request", Err: err}
	}
	if existing > 0 {
		return model.Friendship{}, model.ErrFriendshipExists
	}

	row := friendshipRow{
		UserID:    uid,
		FriendID:  friendID,
		Status:    model.FriendshipPending,
		CreatedAt: r.now(),
	}
	if err := db.Create(&row).Error; err != nil {
		// A concurrent request for the same pair lost the race to the unique index.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return model.Friendship{}, model.ErrFriendshipExists
		}
		return model.Friendship{}, &model.StoreError{Op: "send friend request", Err: err}
	}
	r.log.Info(ctx, "friend request sent", "friendship_id", row.ID, "from", uid, "to", friendID)
	return row.toModel(), nil
}

// Accept marks a pending request addressed to the caller as accepted.
func (r *FriendRepository) Accept(ctx context.Context, friendshipID uuid.UUID) (model.Friendship, error) {
	uid, err := currentUser(ctx, r.identity)
	if err != nil {
		return model.Friendship{}, err
	}

	db := r.db.WithContext(ctx)
	var row friendshipRow
	err = db.Where("id = ? AND friend_id = ? AND status = ?", friendshipID, uid, model.FriendshipPending).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Friendship{}, fmt.Errorf("friend request %s: %w", friendshipID, model.ErrNotFound)
	}
	if err != nil {
		return model.Friendship{}, &model.StoreError{Op: "accept friend request", Err: err}
	}

	now := r.now()
	res := db.Model(&friendshipRow{}).
		Where("id = ? AND status = ?", row.ID, model.FriendshipPending).
		Updates(map[string]any{"status": model.FriendshipAccepted, "accepted_at": now})
	if res.Error != nil {
		return model.Friendship{}, &model.StoreError{Op: "accept friend request", Err: res.Error}
	}
	if res.RowsAffected == 0 {
		return model.Friendship{}, fmt.Errorf("friend request %s: %w", friendshipID, model.ErrNotFound)
	}

	row.Status = model.FriendshipAccepted
	row.AcceptedAt = &now
	return row.toModel(), nil
}

// Decline deletes a pending request addressed to the caller.
func (r *FriendRepository) Decline(ctx context.Context, friendshipID uuid.UUID) error {
	uid, err := currentUser(ctx, r.identity)
	if err != nil {
		return err
	}
	return r.deleteWhere(ctx, "decline friend request", friendshipID,
		"id = ? AND friend_id = ? AND status = ?", friendshipID, uid, model.FriendshipPending)
}

// Cancel deletes a pending request the caller sent.
func (r *FriendRepository) Cancel(ctx context.Context, friendshipID uuid.UUID) error {
	uid, err := currentUser(ctx, r.identity)
	if err != nil {
		return err
	}
	return r.deleteWhere(ctx, "cancel friend request", friendshipID,
		"id = ? AND user_id = ? AND status = ?", friendshipID, uid, model.FriendshipPending)
}

// Remove ends an accepted friendship from either side.
func (r *FriendRepository) Remove(ctx context.Context, friendshipID uuid.UUID) error {
	uid, err := currentUser(ctx, r.identity)
	if err != nil {
		return err
	}
	return r.deleteWhere(ctx, "remove friend", friendshipID,
		"id = ? AND status = ? AND (user_id = ? OR friend_id = ?)", friendshipID, model.FriendshipAccepted, uid, uid)
}

// Unfriend ends the accepted friendship between the caller and friendID.
func (r *FriendRepository) Unfriend(ctx context.Context, friendID uuid.UUID) error {
	uid, err := currentUser(ctx, r.identity)
	if err != nil {
		return err
	}
	return r.deleteWhere(ctx, "remove friend", friendID,
		"status = ? AND ((user_id = ? AND friend_id = ?) OR (user_id = ? AND friend_id = ?))",
		model.FriendshipAccepted, uid, friendID, friendID, uid)
}

func (r *FriendRepository) deleteWhere(ctx context.Context, op string, id uuid.UUID, query string, args ...any) error {
	res := r.db.WithContext(ctx).Where(query, args...).Delete(&friendshipRow{})
	if res.Error != nil {
		return &model.StoreError{Op: op, Err: res.Error}
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("friendship %s: %w", id, model.ErrNotFound)
	}
	return nil
}

// ListFriends returns the profiles of everyone the caller is accepted
// friends with, in either direction.
func (r *FriendRepository) ListFriends(ctx context.Context) ([]model.UserProfile, error) {
	uid, err := currentUser(ctx, r.identity)
	if err != nil {
		return nil, err
	}

	var rows []friendshipRow
	err = r.db.WithContext(ctx).
		Preload("Requester").
		Preload("Recipient").
		Where("status = ? AND (user_id = ? OR friend_id = ?)", model.FriendshipAccepted, uid, uid).
		Order("accepted_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, &model.StoreError{Op: "fetch friends", Err: err}
	}

	friends := make([]model.UserProfile, 0, len(rows))
	for _, row := range rows {
		friends = append(friends, row.counterpart(uid))
	}
	return friends, nil
}

// ListRequests returns the caller's pending requests split by direction.
// Each entry carries the counterpart's profile.
func (r *FriendRepository) ListRequests(ctx context.Context) (model.FriendRequests, error) {
	uid, err := currentUser(ctx, r.identity)
	if err != nil {
		return model.FriendRequests{}, err
	}

	var incoming, outgoing []friendshipRow
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return r.db.WithContext(gctx).
			Preload("Requester").
			Where("friend_id = ? AND status = ?", uid, model.FriendshipPending).
			Order("created_at DESC").
			Find(&incoming).Error
	})
	g.Go(func() error {
		return r.db.WithContext(gctx).
			Preload("Recipient").
			Where("user_id = ? AND status = ?", uid, model.FriendshipPending).
			Order("created_at DESC").
			Find(&outgoing).Error
	})
	if err := g.Wait(); err != nil {
		return model.FriendRequests{}, &model.StoreError{Op: "fetch friend requests", Err: err}
	}

	return model.FriendRequests{
		Incoming: toRequests(incoming, uid),
		Outgoing: toRequests(outgoing, uid),
	}, nil
}

func toRequests(rows []friendshipRow, self uuid.UUID) []model.FriendRequest {
	out := make([]model.FriendRequest, 0, len(rows))
	for _, row := range rows {
		p := row.counterpart(self)
		out = append(out, model.FriendRequest{Friendship: row.toModel(), Profile: &p})
	}
	return out
}

// AreFriends reports whether a and b share an accepted friendship.
func (r *FriendRepository) AreFriends(ctx context.Context, a, b uuid.UUID) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&friendshipRow{}).
		Where("status = ? AND ((user_id = ? AND friend_id = ?) OR (user_id = ? AND friend_id = ?))",
			model.FriendshipAccepted, a, b, b, a).
		Count(&n).Error
	if err != nil {
		return false, &model.StoreError{Op: "check friendship", Err: err}
	}
	return n > 0, nil
}

// GetProfile returns the profile for id, or nil when none exists.
func (r *FriendRepository) GetProfile(ctx context.Context, id uuid.UUID) (*model.UserProfile, error) {
	if _, err := currentUser(ctx, r.identity); err != nil {
		return nil, err
	}

	var row profileRow
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, &model.StoreError{Op: "fetch profile", Err: err}
	}
	p := row.toModel()
	return &p, nil
}

// SaveProfile creates or updates the caller's own profile. email is recorded
// when non-empty; it comes from the identity token, never from the client.
func (r *FriendRepository) SaveProfile(ctx context.Context, update model.ProfileUpdate, email string) (model.UserProfile, error) {
	uid, err := currentUser(ctx, r.identity)
	if err != nil {
		return model.UserProfile{}, err
	}

	db := r.db.WithContext(ctx)
	var row profileRow
	err = db.Where("id = ?", uid).First(&row).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		row = profileRow{ID: uid, CreatedAt: r.now()}
	case err != nil:
		return model.UserProfile{}, &model.StoreError{Op: "save profile", Err: err}
	}

	if update.DisplayName != nil {
		row.DisplayName = trimmedOrNil(*update.DisplayName)
	}
	if update.AvatarURL != nil {
		row.AvatarURL = trimmedOrNil(*update.AvatarURL)
	}
	if email != "" {
		row.Email = &email
	}
	row.UpdatedAt = r.now()

	if err := db.Save(&row).Error; err != nil {
		return model.UserProfile{}, &model.StoreError{Op: "save profile", Err: err}
	}
	return row.toModel(), nil
}

func trimmedOrNil(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// escapeLike makes %, _ and the escape character itself match literally
// under ESCAPE '!'.
func escapeLike(s string) string {
	return strings.NewReplacer("!", "!!", "%", "!%", "_", "!_").Replace(s)
}
