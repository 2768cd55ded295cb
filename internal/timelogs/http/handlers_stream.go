package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	httpapi "github.com/worklog-app/worklog-backend/internal/api/http"
	"github.com/worklog-app/worklog-backend/internal/auth"
	"github.com/worklog-app/worklog-backend/internal/timelogs/domain"
)

// stream pushes the user's timer changes using Server-Sent Events (SSE).
// Events come from Redis Pub/Sub when available, otherwise from polling Current.
func (h *Handler) stream(c *gin.Context) {
	userID := auth.UserID(c)
	ctx := c.Request.Context()

	current, err := h.svc.Current(ctx, userID)
	if err != nil {
		httpapi.WriteError(c, h.log, err)
		return
	}

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, httpapi.MessageResponse{Message: "Streaming unsupported"})
		return
	}

	// Set SSE headers
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no") // nginx: disable buffering
	c.Status(http.StatusOK)

	send := func(ev domain.Event) {
		if err := writeEvent(c.Writer, ev); err != nil {
			h.log.Warn(ctx, "stream write failed", "user_id", userID, "error", err)
			return
		}
		flusher.Flush()
	}

	send(domain.Event{Type: domain.EventInitial, UserID: userID, LogID: logID(current), TimeLog: current, At: h.now()})

	var events <-chan domain.Event
	if h.events != nil {
		ch, closeSub, err := h.events.Subscribe(ctx, userID)
		if err != nil {
			h.log.Warn(ctx, "timer event subscribe failed, polling instead", "user_id", userID, "error", err)
		} else {
			defer func() { _ = closeSub() }()
			events = ch
		}
	}

	var poll <-chan time.Time
	if events == nil {
		pollTicker := time.NewTicker(h.pollInterval)
		defer pollTicker.Stop()
		poll = pollTicker.C
	}

	keepAlive := time.NewTicker(h.keepAlive)
	defer keepAlive.Stop()

	last := current
	for {
		select {
		case <-ctx.Done():
			// Client disconnected
			return

		case <-keepAlive.C:
			fmt.Fprint(c.Writer, ": keep-alive\n\n")
			flusher.Flush()

		case ev, ok := <-events:
			if !ok {
				return
			}
			send(ev)

		case <-poll:
			next, err := h.svc.Current(ctx, userID)
			if err != nil {
				continue
			}
			for _, ev := range diffRunning(userID, last, next, h.now()) {
				send(ev)
			}
			last = next
		}
	}
}

// diffRunning derives timer events from two consecutive polls of the running log.
func diffRunning(userID string, prev, next *domain.TimeLog, at time.Time) []domain.Event {
	switch {
	case prev == nil && next == nil:
		return nil
	case prev == nil:
		return []domain.Event{{Type: domain.EventStarted, UserID: userID, LogID: next.ID, TimeLog: next, At: at}}
	case next == nil:
		return []domain.Event{{Type: domain.EventStopped, UserID: userID, LogID: prev.ID, At: at}}
	case prev.ID != next.ID:
		return []domain.Event{
			{Type: domain.EventStopped, UserID: userID, LogID: prev.ID, At: at},
			{Type: domain.EventStarted, UserID: userID, LogID: next.ID, TimeLog: next, At: at},
		}
	case next.UpdatedAt.After(prev.UpdatedAt):
		return []domain.Event{{Type: domain.EventUpdated, UserID: userID, LogID: next.ID, TimeLog: next, At: at}}
	default:
		return nil
	}
}

func writeEvent(w io.Writer, ev domain.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, data)
	return err
}

func logID(l *domain.TimeLog) string {
	if l == nil {
		return ""
	}
	return l.ID
}
