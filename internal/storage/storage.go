package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/hongminglow/profile-auth/internal/models"
)

// ErrNotFound indicates a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a uniqueness conflict.
var ErrAlreadyExists = errors.New("record already exists")

// PersistenceError wraps a store-layer failure that is neither a conflict nor
// a missing record.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Wrap returns err unchanged when it is nil or one of the sentinel errors, and
// a *PersistenceError otherwise.
func Wrap(op string, err error) error {
	if err == nil || errors.Is(err, ErrNotFound) || errors.Is(err, ErrAlreadyExists) {
		return err
	}
	var pe *PersistenceError
	if errors.As(err, &pe) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}

// UserStore captures persistence operations needed by handlers.
type UserStore interface {
	// CreateUser inserts the user together with an empty profile.
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	FindByUsername(ctx context.Context, username string) (models.User, error)
	// FindByID returns the user with its profile loaded.
	FindByID(ctx context.Context, id int64) (models.User, error)
	// UpdateProfile overwrites every profile column; nil fields become NULL.
	UpdateProfile(ctx context.Context, userID int64, fields models.ProfileFields) error
	// DeleteUser removes the user and, by cascade, its profile.
	DeleteUser(ctx context.Context, id int64) error
	Ping(ctx context.Context) error
	Close()
}
