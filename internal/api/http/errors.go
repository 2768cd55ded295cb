package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/worklog-app/worklog-backend/internal/common"
	"github.com/worklog-app/worklog-backend/internal/logging"
)

// MessageResponse is the body of every non-validation error.
type MessageResponse struct {
	Message string `json:"message"`
}

type ValidationResponse struct {
	Errors []common.FieldError `json:"errors"`
}

// WriteError maps err onto a status code and a stable message. Unknown
// errors are logged and reported as a generic server error.
func WriteError(c *gin.Context, log logging.Logger, err error) {
	var ve *common.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, ValidationResponse{Errors: ve.Fields})
	case errors.Is(err, common.ErrNotFound):
		c.JSON(http.StatusNotFound, MessageResponse{Message: common.Message(err, "Not found")})
	case errors.Is(err, common.ErrConflict):
		c.JSON(http.StatusBadRequest, MessageResponse{Message: common.Message(err, "Conflict")})
	case errors.Is(err, common.ErrValidation):
		c.JSON(http.StatusBadRequest, MessageResponse{Message: common.Message(err, "Invalid request")})
	case errors.Is(err, common.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, MessageResponse{Message: common.Message(err, "Unauthorized")})
	case errors.Is(err, common.ErrUnavailable):
		c.JSON(http.StatusServiceUnavailable, MessageResponse{Message: common.Message(err, "Service unavailable")})
	default:
		if log == nil {
			log = logging.Nop{}
		}
		log.Error(c.Request.Context(), "request failed",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"error", err,
		)
		c.JSON(http.StatusInternalServerError, MessageResponse{Message: "Server error"})
	}
}
