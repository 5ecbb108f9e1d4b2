package repository

import (
	"time"

	"github.com/google/uuid"
	"github.com/pageza/recipe-hub/backend/internal/model"
	"gorm.io/gorm"
)

// reserved keys belong to table columns and never land in the extra column.
var reservedKeys = []string{"created_at", "updated_at", "user_id"}

type recipeRow struct {
	ID           uuid.UUID              `gorm:"type:varchar(36);primaryKey"`
	UserID       uuid.UUID              `gorm:"type:varchar(36);not null;index"`
	Title        string                 `gorm:"size:255;not null"`
	Ingredients  model.JSONBStringArray `gorm:"not null"`
	Instructions string                 `gorm:"type:text;not null"`
	PrepTime     float64                `gorm:"not null"`
	CookTime     *float64
	Image        *string `gorm:"type:text"`
	Success      bool    `gorm:"not null"`
	Extra        model.JSONBMap
	CreatedAt    time.Time `gorm:"index"`
	UpdatedAt    time.Time
}

func (recipeRow) TableName() string {
	return "recipes"
}

func (r *recipeRow) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// newRecipeRow maps a validated recipe onto a row owned by userID.
func newRecipeRow(userID uuid.UUID, r model.Recipe) recipeRow {
	row := recipeRow{
		UserID:       userID,
		Title:        r.Title,
		Ingredients:  model.JSONBStringArray(r.Ingredients),
		Instructions: r.Instructions,
		PrepTime:     r.PrepTime,
		CookTime:     r.CookTime,
		Success:      r.Success,
	}
	if r.Image != "" {
		img := r.Image
		row.Image = &img
	}
	if len(r.Extra) > 0 {
		extra := make(model.JSONBMap, len(r.Extra))
		for k, v := range r.Extra {
			extra[k] = v
		}
		for _, k := range reservedKeys {
			delete(extra, k)
		}
		if len(extra) > 0 {
			row.Extra = extra
		}
	}
	return row
}

// fields returns the row as a raw recipe field map. Timestamps are exposed
// as extra fields so clients can see them.
func (r recipeRow) fields() map[string]any {
	m := make(map[string]any, len(r.Extra)+10)
	for k, v := range r.Extra {
		m[k] = v
	}
	m["id"] = r.ID.String()
	m["title"] = r.Title
	m["ingredients"] = []string(r.Ingredients)
	m["instructions"] = r.Instructions
	m["prep_time"] = r.PrepTime
	if r.CookTime != nil {
		m["cook_time"] = *r.CookTime
	}
	if r.Image != nil {
		m["image"] = *r.Image
	}
	m["success"] = r.Success
	if !r.CreatedAt.IsZero() {
		m["created_at"] = r.CreatedAt.UTC().Format(time.RFC3339Nano)
	}
	if !r.UpdatedAt.IsZero() {
		m["updated_at"] = r.UpdatedAt.UTC().Format(time.RFC3339Nano)
	}
	return m
}

type profileRow struct {
	ID          uuid.UUID `gorm:"type:varchar(36);primaryKey"`
	DisplayName *string   `gorm:"size:100;index"`
	Email       *string   `gorm:"size:255"`
	AvatarURL   *string   `gorm:"size:512"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (profileRow) TableName() string {
	return "user_profiles"
}

func (p profileRow) toModel() model.UserProfile {
	return model.UserProfile{
		ID:          p.ID,
		DisplayName: p.DisplayName,
		Email:       p.Email,
		AvatarURL:   p.AvatarURL,
		CreatedAt:   p.CreatedAt,
	}
}

type friendshipRow struct {
	ID         uuid.UUID              `gorm:"type:varchar(36);primaryKey"`
	UserID     uuid.UUID              `gorm:"type:varchar(36);not null;uniqueIndex:idx_friendships_direction"`
	FriendID   uuid.UUID              `gorm:"type:varchar(36);not null;index;uniqueIndex:idx_friendships_direction"`
	Status     model.FriendshipStatus `gorm:"size:20;not null;index"`
	CreatedAt  time.Time
	AcceptedAt *time.Time

	Requester *profileRow `gorm:"foreignKey:UserID"`
	Recipient *profileRow `gorm:"foreignKey:FriendID"`
}

func (friendshipRow) TableName() string {
	return "friendships"
}

func (f *friendshipRow) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}

func (f friendshipRow) toModel() model.Friendship {
	return model.Friendship{
		ID:         f.ID,
		UserID:     f.UserID,
		FriendID:   f.FriendID,
		Status:     f.Status,
		CreatedAt:  f.CreatedAt,
		AcceptedAt: f.AcceptedAt,
	}
}

// counterpart returns the profile of the party that is not self, falling
// back to a bare profile when none has been saved yet.
func (f friendshipRow) counterpart(self uuid.UUID) model.UserProfile {
	other := f.FriendID
	p := f.Recipient
	if f.FriendID == self {
		other = f.UserID
		p = f.Requester
	}
	if p == nil {
		return model.UserProfile{ID: other}
	}
	return p.toModel()
}

// Tables lists the row types managed by this package, in creation order.
func Tables() []any {
	return []any{&profileRow{}, &recipeRow{}, &friendshipRow{}}
}
