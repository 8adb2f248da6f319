package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arklim/task-platform-auth/internal/usecase"
)

// ErrorCase maps a sentinel error to an HTTP status code and response message.
type ErrorCase struct {
	Err     error
	Status  int
	Message string
}

// RespondWithMappedError resolves the provided error against known cases or falls back to a generic response.
func RespondWithMappedError(c *gin.Context, err error, cases []ErrorCase, fallbackStatus int, fallbackMessage string) {
	if err == nil {
		c.Status(http.StatusOK)
		return
	}

	if respondDuplicateUser(c, err) {
		return
	}

	for _, cs := range cases {
		if cs.Err == nil {
			continue
		}
		if errors.Is(err, cs.Err) {
			c.JSON(cs.Status, NewErrorResponse(c, cs.Message))
			return
		}
	}

	c.JSON(fallbackStatus, NewErrorResponse(c, fallbackMessage))
}

// respondDuplicateUser writes a 409 naming the conflicting field when err is a
// uniqueness violation. Returns false for all other errors.
func respondDuplicateUser(c *gin.Context, err error) bool {
	field, ok := usecase.IsDuplicateUser(err)
	if !ok {
		return false
	}

	c.JSON(http.StatusConflict, NewErrorResponse(c, "user with this "+field+" already exists"))
	return true
}
