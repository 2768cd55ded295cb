package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	httpapi "github.com/worklog-app/worklog-backend/internal/api/http"
	"github.com/worklog-app/worklog-backend/internal/auth"
	"github.com/worklog-app/worklog-backend/internal/timelogs/domain"
)

func (h *Handler) start(c *gin.Context) {
	var req startReq
	if err := httpapi.BindJSON(c, &req); err != nil {
		httpapi.WriteError(c, h.log, err)
		return
	}

	l, err := h.svc.Start(c.Request.Context(), auth.UserID(c), req.TaskID)
	if err != nil {
		httpapi.WriteError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, l)
}

func (h *Handler) stop(c *gin.Context) {
	l, err := h.svc.Stop(c.Request.Context(), auth.UserID(c))
	if err != nil {
		httpapi.WriteError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, l)
}

// current answers with the running log or JSON null.
func (h *Handler) current(c *gin.Context) {
	l, err := h.svc.Current(c.Request.Context(), auth.UserID(c))
	if err != nil {
		httpapi.WriteError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, l)
}

// list handles GET /timelogs?task=&project=&startDate=&endDate=.
// Unparseable dates drop the range filter instead of failing.
func (h *Handler) list(c *gin.Context) {
	f := h.filterFromQuery(c)

	logs, err := h.svc.List(c.Request.Context(), f)
	if err != nil {
		httpapi.WriteError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, logs)
}

func (h *Handler) create(c *gin.Context) {
	var req createReq
	if err := httpapi.BindJSON(c, &req); err != nil {
		httpapi.WriteError(c, h.log, err)
		return
	}

	l, err := h.svc.Create(c.Request.Context(), auth.UserID(c), req.toInput())
	if err != nil {
		httpapi.WriteError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, l)
}

func (h *Handler) update(c *gin.Context) {
	var req updateReq
	if err := httpapi.BindJSON(c, &req); err != nil {
		httpapi.WriteError(c, h.log, err)
		return
	}

	l, err := h.svc.Update(c.Request.Context(), auth.UserID(c), c.Param("id"), req.toEntry())
	if err != nil {
		httpapi.WriteError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, l)
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), auth.UserID(c), c.Param("id")); err != nil {
		httpapi.WriteError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, httpapi.MessageResponse{Message: "Time log removed"})
}

func (h *Handler) filterFromQuery(c *gin.Context) domain.Filter {
	from, to := domain.ParseRange(c.Query("startDate"), c.Query("endDate"), h.loc)
	return domain.Filter{
		UserID:    auth.UserID(c),
		TaskID:    c.Query("task"),
		ProjectID: c.Query("project"),
		From:      from,
		To:        to,
	}
}
