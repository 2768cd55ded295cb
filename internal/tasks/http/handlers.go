package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	httpapi "github.com/worklog-app/worklog-backend/internal/api/http"
	"github.com/worklog-app/worklog-backend/internal/auth"
	"github.com/worklog-app/worklog-backend/internal/tasks/domain"
)

// list handles GET /tasks?project=<id>.
func (h *Handler) list(c *gin.Context) {
	f := domain.Filter{UserID: auth.UserID(c), ProjectID: c.Query("project")}

	items, err := h.svc.List(c.Request.Context(), f)
	if err != nil {
		httpapi.WriteError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) create(c *gin.Context) {
	var req taskReq
	if err := httpapi.BindJSON(c, &req); err != nil {
		httpapi.WriteError(c, h.log, err)
		return
	}

	t, err := h.svc.Create(c.Request.Context(), auth.UserID(c), req.toInput())
	if err != nil {
		httpapi.WriteError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *Handler) get(c *gin.Context) {
	t, err := h.svc.Get(c.Request.Context(), auth.UserID(c), c.Param("id"))
	if err != nil {
		httpapi.WriteError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *Handler) update(c *gin.Context) {
	var req taskReq
	if err := httpapi.BindJSON(c, &req); err != nil {
		httpapi.WriteError(c, h.log, err)
		return
	}

	t, err := h.svc.Update(c.Request.Context(), auth.UserID(c), c.Param("id"), req.toInput())
	if err != nil {
		httpapi.WriteError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), auth.UserID(c), c.Param("id")); err != nil {
		httpapi.WriteError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, httpapi.MessageResponse{Message: "Task removed"})
}
