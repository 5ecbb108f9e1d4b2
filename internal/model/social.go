package model

import (
	"time"

	"github.com/google/uuid"
)

type FriendshipStatus string

const (
	FriendshipPending  FriendshipStatus = "pending"
	FriendshipAccepted FriendshipStatus = "accepted"
	FriendshipBlocked  FriendshipStatus = "blocked"
)

// UserProfile is the public profile attached 1:1 to an authenticated identity.
type UserProfile struct {
	ID          uuid.UUID `json:"id"`
	DisplayName *string   `json:"display_name"`
	Email       *string   `json:"email"`
	AvatarURL   *string   `json:"avatar_url"`
	CreatedAt   time.Time `json:"created_at"`
}

// Friendship links a requester (UserID) to a recipient (FriendID).
type Friendship struct {
	ID         uuid.UUID        `json:"id"`
	UserID     uuid.UUID        `json:"user_id"`
	FriendID   uuid.UUID        `json:"friend_id"`
	Status     FriendshipStatus `json:"status"`
	CreatedAt  time.Time        `json:"created_at"`
	AcceptedAt *time.Time       `json:"accepted_at"`
}

// Other returns the party of the friendship that is not self.
func (f Friendship) Other(self uuid.UUID) uuid.UUID {
	if f.UserID == self {
		return f.FriendID
	}
	return f.UserID
}

// FriendRequest is a pending friendship enriched with the counterpart's profile.
type FriendRequest struct {
	Friendship
	Profile *UserProfile `json:"friend_profile,omitempty"`
}

// FriendRequests partitions pending friendships by direction relative to the caller.
type FriendRequests struct {
	Incoming []FriendRequest `json:"incoming"`
	Outgoing []FriendRequest `json:"outgoing"`
}

// ProfileUpdate carries the caller-editable profile fields.
type ProfileUpdate struct {
	DisplayName *string `json:"display_name"`
	AvatarURL   *string `json:"avatar_url"`
}
