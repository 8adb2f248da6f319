package security

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	uuid "github.com/google/uuid"

	"github.com/arklim/task-platform-auth/internal/core/domain"
)

// ErrInvalidToken covers every verification failure: malformed structure,
// bad signature, expiry, and kind mismatch. Callers never learn which.
var ErrInvalidToken = errors.New("token: invalid or expired")

const (
	defaultAccessTokenTTL  = 15 * time.Minute
	defaultRefreshTokenTTL = 168 * time.Hour
)

// TokenConfig carries the signing material and lifetimes for issued tokens.
// The secret is loaded once at process start and treated as read-only.
type TokenConfig struct {
	Secret          []byte
	Issuer          string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

// TokenClaims augments registered claims with the subject id and kind discriminator.
type TokenClaims struct {
	UserID    string `json:"uid"`
	TokenKind string `json:"token_kind"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies self-contained HMAC-signed tokens.
// All operations are pure CPU; no storage is consulted.
type TokenService struct {
	cfg TokenConfig
	now func() time.Time
}

// TokenOption configures optional TokenService behaviour.
type TokenOption func(*TokenService)

// WithClock injects a custom clock, primarily for deterministic expiry tests.
func WithClock(now func() time.Time) TokenOption {
	return func(s *TokenService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewTokenService constructs a TokenService from explicit configuration.
func NewTokenService(cfg TokenConfig, opts ...TokenOption) (*TokenService, error) {
	if len(cfg.Secret) == 0 {
		return nil, fmt.Errorf("token: signing secret is required")
	}
	if strings.TrimSpace(cfg.Issuer) == "" {
		return nil, fmt.Errorf("token: issuer is required")
	}
	if cfg.AccessTokenTTL <= 0 {
		cfg.AccessTokenTTL = defaultAccessTokenTTL
	}
	if cfg.RefreshTokenTTL <= 0 {
		cfg.RefreshTokenTTL = defaultRefreshTokenTTL
	}

	svc := &TokenService{
		cfg: cfg,
		now: time.Now,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}

	return svc, nil
}

// AccessTokenTTL returns the configured access token lifetime.
func (s *TokenService) AccessTokenTTL() time.Duration {
	return s.cfg.AccessTokenTTL
}

// IssueAccessToken signs a short-lived token authorizing API calls for the user.
func (s *TokenService) IssueAccessToken(userID string) (string, error) {
	return s.issue(userID, domain.TokenKindAccess, s.cfg.AccessTokenTTL)
}

// IssueRefreshToken signs a longer-lived token usable only to mint new pairs.
func (s *TokenService) IssueRefreshToken(userID string) (string, error) {
	return s.issue(userID, domain.TokenKindRefresh, s.cfg.RefreshTokenTTL)
}

// IssueTokenPair issues a fresh access+refresh pair for the user.
func (s *TokenService) IssueTokenPair(userID string) (domain.TokenPair, error) {
	access, err := s.IssueAccessToken(userID)
	if err != nil {
		return domain.TokenPair{}, err
	}

	refresh, err := s.IssueRefreshToken(userID)
	if err != nil {
		return domain.TokenPair{}, err
	}

	return domain.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *TokenService) issue(userID string, kind domain.TokenKind, ttl time.Duration) (string, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", fmt.Errorf("token: user id is required")
	}

	now := s.now().UTC()
	claims := TokenClaims{
		UserID:    userID,
		TokenKind: string(kind),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    s.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.cfg.Secret)
	if err != nil {
		return "", fmt.Errorf("token: sign: %w", err)
	}

	return signed, nil
}

// Subject verifies signature, expiry, and kind, returning the embedded user id.
// An access token is never accepted where a refresh token is required, and
// vice versa.
func (s *TokenService) Subject(token string, kind domain.TokenKind) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrInvalidToken
	}

	claims := &TokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.cfg.Secret, nil
	},
		jwt.WithTimeFunc(s.now),
		jwt.WithIssuer(s.cfg.Issuer),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil || parsed == nil || !parsed.Valid {
		return "", ErrInvalidToken
	}

	if claims.TokenKind != string(kind) {
		return "", ErrInvalidToken
	}
	if strings.TrimSpace(claims.UserID) == "" {
		return "", ErrInvalidToken
	}

	return claims.UserID, nil
}

// Refresh verifies the provided refresh token and rotates it into a brand-new
// access+refresh pair for the same subject. Without a denylist the previous
// refresh token remains technically valid until its expiry.
func (s *TokenService) Refresh(refreshToken string) (domain.TokenPair, error) {
	userID, err := s.Subject(refreshToken, domain.TokenKindRefresh)
	if err != nil {
		return domain.TokenPair{}, err
	}

	return s.IssueTokenPair(userID)
}
