package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arklim/task-platform-auth/internal/core/domain"
	"github.com/arklim/task-platform-auth/internal/core/port"
	"github.com/arklim/task-platform-auth/internal/infra/logger"
	"github.com/arklim/task-platform-auth/internal/infra/security"
	"github.com/arklim/task-platform-auth/internal/repository"
)

// dummyPassword feeds the hasher when the identifier resolves to no account,
// keeping the failure path timing close to a real verification.
const dummyPassword = "correct horse battery staple"

// AuthService coordinates registration, login, and token flows.
type AuthService struct {
	users             port.UserRepository
	hasher            port.PasswordHasher
	tokens            *security.TokenService
	events            port.EventPublisher
	passwordValidator *security.PasswordValidator
	logger            *zap.Logger

	dummyHash string
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(
	users port.UserRepository,
	hasher port.PasswordHasher,
	tokens *security.TokenService,
	events port.EventPublisher,
	validator *security.PasswordValidator,
	log *zap.Logger,
) (*AuthService, error) {
	if users == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if hasher == nil {
		return nil, fmt.Errorf("password hasher is required")
	}
	if tokens == nil {
		return nil, fmt.Errorf("token service is required")
	}
	if validator == nil {
		validator = security.DefaultPasswordValidator()
	}
	if log == nil {
		log = zap.NewNop()
	}

	dummyHash, err := hasher.Hash(dummyPassword)
	if err != nil {
		return nil, fmt.Errorf("prime dummy hash: %w", err)
	}

	return &AuthService{
		users:             users,
		hasher:            hasher,
		tokens:            tokens,
		events:            events,
		passwordValidator: validator,
		logger:            log,
		dummyHash:         dummyHash,
	}, nil
}

// RegisterInput captures the payload for a registration request.
type RegisterInput struct {
	Email    string
	Username string
	Password string
}

// Register creates a new account and issues its first token pair.
//
// Email and username are case-normalized before any check, so accounts differ
// only in canonical form. Uniqueness is verified twice: a cheap pre-check for
// a friendly early failure, and the database constraint as the authoritative
// arbiter when two registrations race.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (domain.User, domain.TokenPair, error) {
	var zero domain.TokenPair

	email := domain.NormalizeEmail(input.Email)
	username := domain.NormalizeUsername(input.Username)

	if username == "" {
		return domain.User{}, zero, ErrInvalidUsername
	}
	if email == "" {
		return domain.User{}, zero, ErrInvalidEmail
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return domain.User{}, zero, ErrInvalidEmail
	}

	if err := s.passwordValidator.Validate(input.Password); err != nil {
		return domain.User{}, zero, fmt.Errorf("%w: %v", ErrPasswordPolicyViolation, err)
	}

	if taken, err := s.users.ExistsByEmail(ctx, email); err != nil {
		return domain.User{}, zero, fmt.Errorf("check email: %w", err)
	} else if taken {
		return domain.User{}, zero, &DuplicateUserError{Field: "email"}
	}
	if taken, err := s.users.ExistsByUsername(ctx, username); err != nil {
		return domain.User{}, zero, fmt.Errorf("check username: %w", err)
	} else if taken {
		return domain.User{}, zero, &DuplicateUserError{Field: "username"}
	}

	passwordHash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return domain.User{}, zero, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		Username:     username,
		PasswordHash: passwordHash,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if field, ok := repository.IsConstraintViolation(err); ok {
			return domain.User{}, zero, &DuplicateUserError{Field: field}
		}
		return domain.User{}, zero, fmt.Errorf("create user: %w", err)
	}

	pair, err := s.tokens.IssueTokenPair(user.ID)
	if err != nil {
		return domain.User{}, zero, fmt.Errorf("issue tokens: %w", err)
	}

	s.publishRegistered(ctx, user, now)

	return user.Sanitized(), pair, nil
}

// Login verifies credentials and issues a fresh token pair.
//
// Unknown identifiers, deactivated accounts, and wrong passwords all produce
// ErrInvalidCredentials. The hasher runs even when no account matches.
func (s *AuthService) Login(ctx context.Context, identifier, password string) (domain.User, domain.TokenPair, error) {
	var zero domain.TokenPair

	identifier = domain.NormalizeUsername(identifier)
	if identifier == "" || password == "" {
		return domain.User{}, zero, ErrInvalidCredentials
	}

	user, err := s.users.GetByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			_, _ = s.hasher.Verify(password, s.dummyHash)
			return domain.User{}, zero, ErrInvalidCredentials
		}
		return domain.User{}, zero, fmt.Errorf("lookup user: %w", err)
	}

	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		return domain.User{}, zero, fmt.Errorf("verify password: %w", err)
	}
	if !ok || !user.IsActive {
		return domain.User{}, zero, ErrInvalidCredentials
	}

	pair, err := s.tokens.IssueTokenPair(user.ID)
	if err != nil {
		return domain.User{}, zero, fmt.Errorf("issue tokens: %w", err)
	}

	s.publishLoggedIn(ctx, user.ID, identifier)

	return user.Sanitized(), pair, nil
}

// Refresh rotates a refresh token into a new token pair.
//
// The account's current status is not re-checked here; a deactivated user
// keeps refreshing until the refresh token expires. Deactivation flows that
// must cut access sooner have to wait out the refresh TTL.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (domain.TokenPair, error) {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return domain.TokenPair{}, ErrInvalidToken
	}

	pair, err := s.tokens.Refresh(refreshToken)
	if err != nil {
		if errors.Is(err, security.ErrInvalidToken) {
			return domain.TokenPair{}, ErrInvalidToken
		}
		return domain.TokenPair{}, fmt.Errorf("refresh tokens: %w", err)
	}

	return pair, nil
}

// ResolveAccessToken maps a bearer access token to the account it belongs to.
// Every failure mode collapses into ErrUnauthenticated.
func (s *AuthService) ResolveAccessToken(ctx context.Context, token string) (domain.User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.User{}, ErrUnauthenticated
	}

	userID, err := s.tokens.Subject(token, domain.TokenKindAccess)
	if err != nil {
		return domain.User{}, ErrUnauthenticated
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.User{}, ErrUnauthenticated
		}
		return domain.User{}, fmt.Errorf("lookup user: %w", err)
	}

	if !user.IsActive {
		return domain.User{}, ErrUnauthenticated
	}

	return user.Sanitized(), nil
}

// AccessTokenTTL exposes the configured access token lifetime for transport responses.
func (s *AuthService) AccessTokenTTL() time.Duration {
	return s.tokens.AccessTokenTTL()
}

func (s *AuthService) publishRegistered(ctx context.Context, user domain.User, at time.Time) {
	if s.events == nil {
		return
	}

	event := domain.UserRegisteredEvent{
		EventID:      uuid.NewString(),
		UserID:       user.ID,
		Username:     user.Username,
		Email:        user.Email,
		RegisteredAt: at,
	}
	if err := s.events.PublishUserRegistered(ctx, event); err != nil {
		s.logger.Warn("publish user registered event",
			zap.Error(err),
			zap.String("user_id", user.ID),
			zap.String("email", logger.MaskEmail(user.Email)),
		)
	}
}

func (s *AuthService) publishLoggedIn(ctx context.Context, userID, identifier string) {
	if s.events == nil {
		return
	}

	event := domain.UserLoggedInEvent{
		EventID:    uuid.NewString(),
		UserID:     userID,
		Identifier: identifier,
		LoggedInAt: time.Now().UTC(),
	}
	if err := s.events.PublishUserLoggedIn(ctx, event); err != nil {
		s.logger.Warn("publish user logged in event",
			zap.Error(err),
			zap.String("user_id", userID),
		)
	}
}
