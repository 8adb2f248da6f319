package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/arklim/task-platform-auth/internal/core/domain"
	"github.com/arklim/task-platform-auth/internal/core/port"
	"github.com/arklim/task-platform-auth/internal/infra/security"
	"github.com/arklim/task-platform-auth/internal/repository"
)

type memoryUserRepo struct {
	mu    sync.Mutex
	users map[string]domain.User

	createErr error
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{users: make(map[string]domain.User)}
}

func (r *memoryUserRepo) Create(_ context.Context, user domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.createErr != nil {
		return r.createErr
	}
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return &repository.ConstraintViolationError{Field: "email"}
		}
		if existing.Username == user.Username {
			return &repository.ConstraintViolationError{Field: "username"}
		}
	}
	r.users[user.ID] = user
	return nil
}

func (r *memoryUserRepo) Update(_ context.Context, user domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.ID]; !ok {
		return repository.ErrNotFound
	}
	for id, existing := range r.users {
		if id == user.ID {
			continue
		}
		if existing.Email == user.Email {
			return &repository.ConstraintViolationError{Field: "email"}
		}
		if existing.Username == user.Username {
			return &repository.ConstraintViolationError{Field: "username"}
		}
	}
	r.users[user.ID] = user
	return nil
}

func (r *memoryUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := user
	return &copied, nil
}

func (r *memoryUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findBy(func(u domain.User) bool { return u.Email == domain.NormalizeEmail(email) })
}

func (r *memoryUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.findBy(func(u domain.User) bool { return u.Username == domain.NormalizeUsername(username) })
}

func (r *memoryUserRepo) GetByIdentifier(ctx context.Context, identifier string) (*domain.User, error) {
	normalized := domain.NormalizeUsername(identifier)
	return r.findBy(func(u domain.User) bool {
		return u.Email == normalized || u.Username == normalized
	})
}

func (r *memoryUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (r *memoryUserRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	_, err := r.GetByUsername(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (r *memoryUserRepo) Deactivate(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.IsActive = false
	user.UpdatedAt = time.Now().UTC()
	r.users[id] = user
	return nil
}

func (r *memoryUserRepo) List(_ context.Context, filter port.UserFilter) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := make([]domain.User, 0, len(r.users))
	for _, user := range r.users {
		if filter.IsActive != nil && user.IsActive != *filter.IsActive {
			continue
		}
		result = append(result, user)
	}
	return result, nil
}

func (r *memoryUserRepo) findBy(match func(domain.User) bool) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, user := range r.users {
		if match(user) {
			copied := user
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

type recordingPublisher struct {
	mu          sync.Mutex
	registered  []domain.UserRegisteredEvent
	loggedIn    []domain.UserLoggedInEvent
	deactivated []domain.UserDeactivatedEvent
}

func (p *recordingPublisher) PublishUserRegistered(_ context.Context, event domain.UserRegisteredEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.registered = append(p.registered, event)
	return nil
}

func (p *recordingPublisher) PublishUserLoggedIn(_ context.Context, event domain.UserLoggedInEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.loggedIn = append(p.loggedIn, event)
	return nil
}

func (p *recordingPublisher) PublishUserDeactivated(_ context.Context, event domain.UserDeactivatedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.deactivated = append(p.deactivated, event)
	return nil
}

func testHasher(t *testing.T) *security.Argon2Hasher {
	t.Helper()

	hasher, err := security.NewArgon2Hasher(security.Argon2Config{
		Memory:      8 * 1024,
		Iterations:  1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	})
	if err != nil {
		t.Fatalf("NewArgon2Hasher returned error: %v", err)
	}
	return hasher
}

func testTokenService(t *testing.T) *security.TokenService {
	t.Helper()

	tokens, err := security.NewTokenService(security.TokenConfig{
		Secret:          []byte("unit-test-secret"),
		Issuer:          "task-platform-auth",
		AccessTokenTTL:  time.Minute,
		RefreshTokenTTL: time.Hour,
	})
	if err != nil {
		t.Fatalf("NewTokenService returned error: %v", err)
	}
	return tokens
}

func newTestAuthService(t *testing.T) (*AuthService, *memoryUserRepo, *recordingPublisher) {
	t.Helper()

	repo := newMemoryUserRepo()
	publisher := &recordingPublisher{}
	service, err := NewAuthService(repo, testHasher(t), testTokenService(t), publisher, nil, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("NewAuthService returned error: %v", err)
	}
	return service, repo, publisher
}

func registerTestUser(t *testing.T, service *AuthService) (domain.User, domain.TokenPair) {
	t.Helper()

	user, pair, err := service.Register(context.Background(), RegisterInput{
		Email:    "alice@example.com",
		Username: "Alice",
		Password: "tr4verse-BLUE-antelope",
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	return user, pair
}

func TestRegisterNormalizesAndIssuesTokens(t *testing.T) {
	service, repo, publisher := newTestAuthService(t)

	user, pair, err := service.Register(context.Background(), RegisterInput{
		Email:    "  Alice@Example.COM ",
		Username: " Alice ",
		Password: "tr4verse-BLUE-antelope",
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	if user.Email != "alice@example.com" {
		t.Fatalf("email not normalized: %q", user.Email)
	}
	if user.Username != "alice" {
		t.Fatalf("username not normalized: %q", user.Username)
	}
	if user.PasswordHash != "" {
		t.Fatal("password hash leaked in sanitized user")
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatal("expected a full token pair")
	}

	stored, err := repo.GetByID(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("stored user lookup failed: %v", err)
	}
	if !strings.HasPrefix(stored.PasswordHash, "argon2id$") {
		t.Fatalf("stored hash not argon2id encoded: %q", stored.PasswordHash)
	}
	if !stored.IsActive {
		t.Fatal("new account should be active")
	}

	if len(publisher.registered) != 1 {
		t.Fatalf("expected one registered event, got %d", len(publisher.registered))
	}
	if publisher.registered[0].UserID != user.ID {
		t.Fatalf("event user id mismatch: %s", publisher.registered[0].UserID)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	service, _, _ := newTestAuthService(t)
	registerTestUser(t, service)

	_, _, err := service.Register(context.Background(), RegisterInput{
		Email:    "ALICE@example.com",
		Username: "somebody-else",
		Password: "tr4verse-BLUE-antelope",
	})

	field, ok := IsDuplicateUser(err)
	if !ok {
		t.Fatalf("expected DuplicateUserError, got %v", err)
	}
	if field != "email" {
		t.Fatalf("expected email conflict, got %q", field)
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	service, _, _ := newTestAuthService(t)
	registerTestUser(t, service)

	_, _, err := service.Register(context.Background(), RegisterInput{
		Email:    "other@example.com",
		Username: "ALICE",
		Password: "tr4verse-BLUE-antelope",
	})

	field, ok := IsDuplicateUser(err)
	if !ok {
		t.Fatalf("expected DuplicateUserError, got %v", err)
	}
	if field != "username" {
		t.Fatalf("expected username conflict, got %q", field)
	}
}

func TestRegisterDuplicateRaceMapsConstraintViolation(t *testing.T) {
	service, repo, _ := newTestAuthService(t)

	// Pre-checks pass, the insert loses the race on the unique index.
	repo.createErr = &repository.ConstraintViolationError{Field: "email"}

	_, _, err := service.Register(context.Background(), RegisterInput{
		Email:    "alice@example.com",
		Username: "alice",
		Password: "tr4verse-BLUE-antelope",
	})

	field, ok := IsDuplicateUser(err)
	if !ok {
		t.Fatalf("expected DuplicateUserError, got %v", err)
	}
	if field != "email" {
		t.Fatalf("expected email conflict, got %q", field)
	}
}

func TestRegisterRejectsInvalidInput(t *testing.T) {
	service, _, _ := newTestAuthService(t)

	cases := []struct {
		name  string
		input RegisterInput
		want  error
	}{
		{"empty email", RegisterInput{Email: "", Username: "alice", Password: "tr4verse-BLUE-antelope"}, ErrInvalidEmail},
		{"not an address", RegisterInput{Email: "not-an-address", Username: "alice", Password: "tr4verse-BLUE-antelope"}, ErrInvalidEmail},
		{"empty username", RegisterInput{Email: "alice@example.com", Username: "   ", Password: "tr4verse-BLUE-antelope"}, ErrInvalidUsername},
		{"weak password", RegisterInput{Email: "alice@example.com", Username: "alice", Password: "password1"}, ErrPasswordPolicyViolation},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := service.Register(context.Background(), tc.input)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestLoginByEmailAndUsername(t *testing.T) {
	service, _, publisher := newTestAuthService(t)
	registered, _ := registerTestUser(t, service)

	for _, identifier := range []string{"alice@example.com", "alice", "  ALICE  "} {
		user, pair, err := service.Login(context.Background(), identifier, "tr4verse-BLUE-antelope")
		if err != nil {
			t.Fatalf("Login(%q) returned error: %v", identifier, err)
		}
		if user.ID != registered.ID {
			t.Fatalf("Login(%q) resolved wrong user: %s", identifier, user.ID)
		}
		if user.PasswordHash != "" {
			t.Fatal("password hash leaked in sanitized user")
		}
		if pair.AccessToken == "" || pair.RefreshToken == "" {
			t.Fatalf("Login(%q) returned incomplete token pair", identifier)
		}
	}

	if len(publisher.loggedIn) != 3 {
		t.Fatalf("expected three login events, got %d", len(publisher.loggedIn))
	}
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	service, repo, _ := newTestAuthService(t)
	registered, _ := registerTestUser(t, service)

	wrongPassword := func() error {
		_, _, err := service.Login(context.Background(), "alice", "not-the-password")
		return err
	}
	unknownUser := func() error {
		_, _, err := service.Login(context.Background(), "nobody@example.com", "tr4verse-BLUE-antelope")
		return err
	}
	inactiveUser := func() error {
		if err := repo.Deactivate(context.Background(), registered.ID); err != nil {
			t.Fatalf("deactivate failed: %v", err)
		}
		_, _, err := service.Login(context.Background(), "alice", "tr4verse-BLUE-antelope")
		return err
	}

	for name, attempt := range map[string]func() error{
		"wrong password": wrongPassword,
		"unknown user":   unknownUser,
		"inactive user":  inactiveUser,
	} {
		err := attempt()
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("%s: expected ErrInvalidCredentials, got %v", name, err)
		}
		if err.Error() != ErrInvalidCredentials.Error() {
			t.Fatalf("%s: error message differs: %q", name, err.Error())
		}
	}
}

func TestRefreshRotatesTokens(t *testing.T) {
	service, _, _ := newTestAuthService(t)
	registered, pair := registerTestUser(t, service)

	rotated, err := service.Refresh(context.Background(), pair.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh returned error: %v", err)
	}
	if rotated.AccessToken == "" || rotated.RefreshToken == "" {
		t.Fatal("expected a full rotated token pair")
	}

	user, err := service.ResolveAccessToken(context.Background(), rotated.AccessToken)
	if err != nil {
		t.Fatalf("ResolveAccessToken returned error: %v", err)
	}
	if user.ID != registered.ID {
		t.Fatalf("rotated token resolved wrong user: %s", user.ID)
	}
}

func TestRefreshRejectsBadTokens(t *testing.T) {
	service, _, _ := newTestAuthService(t)
	_, pair := registerTestUser(t, service)

	cases := map[string]string{
		"empty":        "",
		"garbage":      "definitely-not-a-jwt",
		"access token": pair.AccessToken,
	}

	for name, token := range cases {
		if _, err := service.Refresh(context.Background(), token); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("%s: expected ErrInvalidToken, got %v", name, err)
		}
	}
}

func TestRefreshDoesNotRecheckAccountStatus(t *testing.T) {
	service, repo, _ := newTestAuthService(t)
	registered, pair := registerTestUser(t, service)

	if err := repo.Deactivate(context.Background(), registered.ID); err != nil {
		t.Fatalf("deactivate failed: %v", err)
	}

	// Self-contained refresh tokens stay usable until expiry.
	if _, err := service.Refresh(context.Background(), pair.RefreshToken); err != nil {
		t.Fatalf("Refresh after deactivation returned error: %v", err)
	}
}

func TestResolveAccessToken(t *testing.T) {
	service, repo, _ := newTestAuthService(t)
	registered, pair := registerTestUser(t, service)

	user, err := service.ResolveAccessToken(context.Background(), pair.AccessToken)
	if err != nil {
		t.Fatalf("ResolveAccessToken returned error: %v", err)
	}
	if user.ID != registered.ID {
		t.Fatalf("resolved wrong user: %s", user.ID)
	}

	if _, err := service.ResolveAccessToken(context.Background(), pair.RefreshToken); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("refresh token accepted as access token: %v", err)
	}
	if _, err := service.ResolveAccessToken(context.Background(), "garbage"); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("garbage token: expected ErrUnauthenticated, got %v", err)
	}

	if err := repo.Deactivate(context.Background(), registered.ID); err != nil {
		t.Fatalf("deactivate failed: %v", err)
	}
	if _, err := service.ResolveAccessToken(context.Background(), pair.AccessToken); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("deactivated account: expected ErrUnauthenticated, got %v", err)
	}
}
