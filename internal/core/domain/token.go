package domain

// TokenKind discriminates between access and refresh tokens.
type TokenKind string

const (
	TokenKindAccess  TokenKind = "access"
	TokenKindRefresh TokenKind = "refresh"
)

// TokenPair bundles the signed access and refresh tokens issued together.
// Both are self-contained: subject, kind, issued-at, and expiry travel in the
// token itself, no server-side record exists.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}
