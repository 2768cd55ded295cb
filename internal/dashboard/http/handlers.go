package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	httpapi "github.com/worklog-app/worklog-backend/internal/api/http"
	"github.com/worklog-app/worklog-backend/internal/auth"
	"github.com/worklog-app/worklog-backend/internal/dashboard/service"
	"github.com/worklog-app/worklog-backend/internal/logging"
	"github.com/worklog-app/worklog-backend/internal/timelogs/domain"
)

// DashboardService is implemented by service.DashboardService.
type DashboardService interface {
	Summary(ctx context.Context, userID string) (*service.Summary, error)
	ProjectTotals(ctx context.Context, userID string, from, to *time.Time) ([]service.ProjectTotal, error)
	TaskTotals(ctx context.Context, userID string, from, to *time.Time) ([]service.TaskTotal, error)
	Weekly(ctx context.Context, userID string, weekStart *time.Time) ([]service.DaySummary, error)
}

type Handler struct {
	svc DashboardService
	loc *time.Location
	log logging.Logger
}

func New(svc DashboardService, loc *time.Location, log logging.Logger) *Handler {
	if loc == nil {
		loc = time.UTC
	}
	if log == nil {
		log = logging.Nop{}
	}
	return &Handler{svc: svc, loc: loc, log: log.With("component", "dashboard_http")}
}

// Register attaches dashboard routes to the given router group.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("/summary", h.summary)
	rg.GET("/projects", h.projects)
	rg.GET("/tasks", h.tasks)
	rg.GET("/weekly", h.weekly)
}

func (h *Handler) summary(c *gin.Context) {
	out, err := h.svc.Summary(c.Request.Context(), auth.UserID(c))
	if err != nil {
		httpapi.WriteError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// projects handles GET /dashboard/projects?startDate=&endDate=.
func (h *Handler) projects(c *gin.Context) {
	from, to := domain.ParseRange(c.Query("startDate"), c.Query("endDate"), h.loc)

	out, err := h.svc.ProjectTotals(c.Request.Context(), auth.UserID(c), from, to)
	if err != nil {
		httpapi.WriteError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) tasks(c *gin.Context) {
	from, to := domain.ParseRange(c.Query("startDate"), c.Query("endDate"), h.loc)

	out, err := h.svc.TaskTotals(c.Request.Context(), auth.UserID(c), from, to)
	if err != nil {
		httpapi.WriteError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// weekly handles GET /dashboard/weekly?weekStart=. Any day of the week selects it.
func (h *Handler) weekly(c *gin.Context) {
	var weekStart *time.Time
	if t, ok := domain.ParseDate(c.Query("weekStart"), h.loc); ok {
		weekStart = &t
	}

	out, err := h.svc.Weekly(c.Request.Context(), auth.UserID(c), weekStart)
	if err != nil {
		httpapi.WriteError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, out)
}
