package http

import (
	"context"

	"github.com/worklog-app/worklog-backend/internal/logging"
	"github.com/worklog-app/worklog-backend/internal/tasks/domain"
)

type TaskService interface {
	Create(ctx context.Context, userID string, in domain.Input) (*domain.Task, error)
	List(ctx context.Context, f domain.Filter) ([]domain.Task, error)
	Get(ctx context.Context, userID, id string) (*domain.Task, error)
	Update(ctx context.Context, userID, id string, in domain.Input) (*domain.Task, error)
	Delete(ctx context.Context, userID, id string) error
}

type Handler struct {
	svc TaskService
	log logging.Logger
}

func New(svc TaskService, log logging.Logger) *Handler {
	if log == nil {
		log = logging.Nop{}
	}
	return &Handler{svc: svc, log: log.With("component", "tasks_http")}
}

type taskReq struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Project     string `json:"project" binding:"required"`
}

func (r taskReq) toInput() domain.Input {
	return domain.Input{Name: r.Name, Description: r.Description, ProjectID: r.Project}
}
