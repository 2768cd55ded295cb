package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	httpapi "github.com/worklog-app/worklog-backend/internal/api/http"
	"github.com/worklog-app/worklog-backend/internal/auth"
)

// RegisterUser creates a password account and returns {token,user}.
func (h *Handler) RegisterUser(c *gin.Context) {
	var req credentialsRequest
	if err := httpapi.BindJSON(c, &req); err != nil {
		httpapi.WriteError(c, h.log, err)
		return
	}

	session, err := h.authService.Register(c.Request.Context(), req.toDomain())
	if err != nil {
		httpapi.WriteError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (h *Handler) Login(c *gin.Context) {
	var req credentialsRequest
	if err := httpapi.BindJSON(c, &req); err != nil {
		httpapi.WriteError(c, h.log, err)
		return
	}

	session, err := h.authService.Login(c.Request.Context(), req.toDomain())
	if err != nil {
		httpapi.WriteError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// GetUser returns the authenticated user's profile
func (h *Handler) GetUser(c *gin.Context) {
	user, err := h.authService.GetUser(c.Request.Context(), auth.UserID(c))
	if err != nil {
		httpapi.WriteError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
