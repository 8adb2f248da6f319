package port

import (
	"context"

	"github.com/arklim/task-platform-auth/internal/core/domain"
)

// UserFilter restricts List results.
type UserFilter struct {
	IsActive *bool
	Limit    int
	Offset   int
}

// UserRepository exposes persistence behavior for user identities.
//
// Create and Update surface repository.ConstraintViolationError when a
// uniqueness constraint on email or username is violated, and lookups return
// repository.ErrNotFound for missing rows.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) error
	Update(ctx context.Context, user domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByIdentifier(ctx context.Context, identifier string) (*domain.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	Deactivate(ctx context.Context, id string) error
	List(ctx context.Context, filter UserFilter) ([]domain.User, error)
}
