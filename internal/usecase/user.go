package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arklim/task-platform-auth/internal/core/domain"
	"github.com/arklim/task-platform-auth/internal/core/port"
	"github.com/arklim/task-platform-auth/internal/repository"
)

// UserService handles profile lifecycle operations for authenticated users.
type UserService struct {
	users  port.UserRepository
	events port.EventPublisher
	logger *zap.Logger
}

// NewUserService constructs UserService.
func NewUserService(users port.UserRepository, events port.EventPublisher, log *zap.Logger) *UserService {
	if log == nil {
		log = zap.NewNop()
	}
	return &UserService{users: users, events: events, logger: log}
}

// UpdateProfileInput carries optional profile changes. Nil fields are left untouched.
type UpdateProfileInput struct {
	Email    *string
	Username *string
}

// GetProfile returns the sanitized account for the given id.
func (s *UserService) GetProfile(ctx context.Context, userID string) (domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("lookup user: %w", err)
	}

	return user.Sanitized(), nil
}

// UpdateProfile applies email and username changes, enforcing the same
// normalization and uniqueness rules as registration.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, input UpdateProfileInput) (domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("lookup user: %w", err)
	}

	changed := false

	if input.Email != nil {
		email := domain.NormalizeEmail(*input.Email)
		if email == "" {
			return domain.User{}, ErrInvalidEmail
		}
		if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
			return domain.User{}, ErrInvalidEmail
		}
		if email != user.Email {
			if taken, err := s.users.ExistsByEmail(ctx, email); err != nil {
				return domain.User{}, fmt.Errorf("check email: %w", err)
			} else if taken {
				return domain.User{}, &DuplicateUserError{Field: "email"}
			}
			user.Email = email
			changed = true
		}
	}

	if input.Username != nil {
		username := domain.NormalizeUsername(*input.Username)
		if username == "" {
			return domain.User{}, ErrInvalidUsername
		}
		if username != user.Username {
			if taken, err := s.users.ExistsByUsername(ctx, username); err != nil {
				return domain.User{}, fmt.Errorf("check username: %w", err)
			} else if taken {
				return domain.User{}, &DuplicateUserError{Field: "username"}
			}
			user.Username = username
			changed = true
		}
	}

	if !changed {
		return user.Sanitized(), nil
	}

	user.UpdatedAt = time.Now().UTC()
	if err := s.users.Update(ctx, *user); err != nil {
		if field, ok := repository.IsConstraintViolation(err); ok {
			return domain.User{}, &DuplicateUserError{Field: field}
		}
		return domain.User{}, fmt.Errorf("update user: %w", err)
	}

	return user.Sanitized(), nil
}

// Deactivate logically deletes the account. Outstanding refresh tokens stay
// valid until they expire; access is cut off at the next access token check.
func (s *UserService) Deactivate(ctx context.Context, userID string) error {
	if err := s.users.Deactivate(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("deactivate user: %w", err)
	}

	s.publishDeactivated(ctx, userID)

	return nil
}

func (s *UserService) publishDeactivated(ctx context.Context, userID string) {
	if s.events == nil {
		return
	}

	event := domain.UserDeactivatedEvent{
		EventID:       uuid.NewString(),
		UserID:        userID,
		DeactivatedAt: time.Now().UTC(),
	}
	if err := s.events.PublishUserDeactivated(ctx, event); err != nil {
		s.logger.Warn("publish user deactivated event",
			zap.Error(err),
			zap.String("user_id", userID),
		)
	}
}
