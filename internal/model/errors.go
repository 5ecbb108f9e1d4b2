package model

import (
	"errors"
	"fmt"
)

var (
	ErrNotAuthenticated   = errors.New("user not authenticated")
	ErrNotFound           = errors.New("not found")
	ErrNotFriends         = errors.New("not friends with this user")
	ErrStorageUnavailable = errors.New("local storage unavailable")
	ErrFriendshipExists   = errors.New("friendship already exists")
	ErrInvalidRequest     = errors.New("invalid friend request")
)

// SchemaError reports the first field of a payload that failed recipe validation.
type SchemaError struct {
	Field  string
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("invalid recipe: %s: %s", e.Field, e.Reason)
}

// StoreError wraps a transport or constraint failure from the remote store.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("database error during %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
