package storage

import (
	"context"

	"github.com/mcoot/edugames/internal/model"
)

// MutateFunc edits a user document in place. Returning an error aborts the write.
type MutateFunc func(user *model.User) error

// Storage defines the document store for User aggregates.
// Implementations return copies; mutating a returned user never changes stored state.
type Storage interface {
	// CreateUser inserts a new user. Returns model.ErrEmailTaken if the email is already indexed.
	CreateUser(ctx context.Context, user *model.User) error

	// GetUser looks up a user by ID. Returns model.ErrUserNotFound if absent.
	GetUser(ctx context.Context, id model.UserID) (*model.User, error)

	// GetUserByEmail looks up a user through the unique email index
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)

	// ListUsers returns every user ordered by creation time
	ListUsers(ctx context.Context) ([]*model.User, error)

	// UpdateUser atomically applies fn to the current document and persists the result.
	// The write only commits if no other write landed in between; conflicting writes
	// are retried and ErrConcurrentUpdate is returned once retries run out.
	// The email index follows the document when fn changes the email.
	UpdateUser(ctx context.Context, id model.UserID, fn MutateFunc) (*model.User, error)

	// DeleteUser removes a user and its embedded collections. Deleting a missing user is a no-op.
	DeleteUser(ctx context.Context, id model.UserID) error
}
