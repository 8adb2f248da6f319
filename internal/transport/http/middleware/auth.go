package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/arklim/task-platform-auth/internal/usecase"
)

// ErrorResponse matches the handlers.ErrorResponse structure
type ErrorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

// newErrorResponse creates an error response with trace ID
func newErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	return ErrorResponse{
		Error:   errorMsg,
		TraceID: GetTraceID(c),
	}
}

// bearerToken extracts the token from an Authorization header value. The
// second return is false when the header is absent or not a Bearer scheme.
func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}

	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}

	return token, true
}

// RequireAuth rejects requests that do not carry a valid access token and
// stores the resolved account on the context for downstream handlers.
func RequireAuth(authService *usecase.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				newErrorResponse(c, "missing or malformed authorization header"))
			return
		}

		user, err := authService.ResolveAccessToken(c.Request.Context(), token)
		if err != nil {
			// Infrastructure failures are not the caller's fault. Only a
			// rejected token reads as 401.
			if !errors.Is(err, usecase.ErrUnauthenticated) {
				c.Error(err)
				c.AbortWithStatusJSON(http.StatusServiceUnavailable,
					newErrorResponse(c, "unable to verify credentials"))
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				newErrorResponse(c, "invalid or expired access token"))
			return
		}

		SetCurrentUser(c, user)

		c.Next()
	}
}

// OptionalAuth resolves the access token when one is present but never fails
// the request. Missing, malformed, and invalid tokens all proceed anonymously.
func OptionalAuth(authService *usecase.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := bearerToken(c); ok {
			if user, err := authService.ResolveAccessToken(c.Request.Context(), token); err == nil {
				SetCurrentUser(c, user)
			}
		}

		c.Next()
	}
}
