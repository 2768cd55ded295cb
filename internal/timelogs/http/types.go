package http

import (
	"context"
	"time"

	"github.com/worklog-app/worklog-backend/internal/logging"
	"github.com/worklog-app/worklog-backend/internal/timelogs/domain"
	"github.com/worklog-app/worklog-backend/internal/timelogs/export"
	"github.com/worklog-app/worklog-backend/internal/timelogs/service"
)

// TimerService is implemented by service.TimerService.
type TimerService interface {
	Start(ctx context.Context, userID, taskID string) (*domain.TimeLog, error)
	Stop(ctx context.Context, userID string) (*domain.TimeLog, error)
	Current(ctx context.Context, userID string) (*domain.TimeLog, error)
	List(ctx context.Context, f domain.Filter) ([]domain.TimeLog, error)
	Create(ctx context.Context, userID string, in service.CreateInput) (*domain.TimeLog, error)
	Update(ctx context.Context, userID, id string, in domain.ManualEntry) (*domain.TimeLog, error)
	Delete(ctx context.Context, userID, id string) error
}

// EventSubscriber is implemented by repository.RedisTimerCache.
type EventSubscriber interface {
	Subscribe(ctx context.Context, userID string) (<-chan domain.Event, func() error, error)
}

// Archiver is implemented by export.Archiver.
type Archiver interface {
	Archive(ctx context.Context, userID string, f export.Format, body []byte) (*export.ArchiveResult, error)
}

// Handler bundles the dependencies for time log endpoints.
type Handler struct {
	svc      TimerService
	events   EventSubscriber
	archiver Archiver
	loc      *time.Location
	log      logging.Logger
	now      func() time.Time

	pollInterval time.Duration
	keepAlive    time.Duration
}

// New builds the handler. Streaming falls back to polling and archive
// export answers 503 until WithEvents and WithArchiver are called.
func New(svc TimerService, loc *time.Location, log logging.Logger) *Handler {
	if loc == nil {
		loc = time.UTC
	}
	if log == nil {
		log = logging.Nop{}
	}
	return &Handler{
		svc:          svc,
		loc:          loc,
		log:          log.With("component", "timelogs_http"),
		now:          time.Now,
		pollInterval: time.Second,
		keepAlive:    15 * time.Second,
	}
}

func (h *Handler) WithEvents(events EventSubscriber) *Handler {
	h.events = events
	return h
}

func (h *Handler) WithArchiver(a Archiver) *Handler {
	h.archiver = a
	return h
}

type startReq struct {
	TaskID string `json:"taskId" binding:"required"`
}

type createReq struct {
	TaskID      string     `json:"taskId" binding:"required"`
	StartTime   *time.Time `json:"startTime" binding:"required"`
	EndTime     *time.Time `json:"endTime"`
	Duration    *int       `json:"duration"`
	Description string     `json:"description"`
}

func (r createReq) toInput() service.CreateInput {
	return service.CreateInput{
		TaskID: r.TaskID,
		ManualEntry: domain.ManualEntry{
			StartTime:   *r.StartTime,
			EndTime:     r.EndTime,
			Duration:    r.Duration,
			Description: r.Description,
		},
	}
}

type updateReq struct {
	StartTime   *time.Time `json:"startTime" binding:"required"`
	EndTime     *time.Time `json:"endTime"`
	Duration    *int       `json:"duration"`
	Description string     `json:"description"`
}

func (r updateReq) toEntry() domain.ManualEntry {
	return domain.ManualEntry{
		StartTime:   *r.StartTime,
		EndTime:     r.EndTime,
		Duration:    r.Duration,
		Description: r.Description,
	}
}

type archiveReq struct {
	Format    string `json:"format"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}
