package user

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("user not found")

// Repository persists user accounts. CreateUser must insert the
// account and its profile row in one transaction so every user has
// exactly one profile from the moment it exists.
type Repository interface {
	CreateUser(ctx context.Context, u User) error
	GetUserByID(ctx context.Context, id uuid.UUID) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}
