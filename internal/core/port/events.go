package port

import (
	"context"

	"github.com/arklim/task-platform-auth/internal/core/domain"
)

// EventPublisher publishes authentication domain events to the message bus.
type EventPublisher interface {
	PublishUserRegistered(ctx context.Context, event domain.UserRegisteredEvent) error
	PublishUserLoggedIn(ctx context.Context, event domain.UserLoggedInEvent) error
	PublishUserDeactivated(ctx context.Context, event domain.UserDeactivatedEvent) error
}
