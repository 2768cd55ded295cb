package export

import (
	"encoding/json"
	"io"
	"time"

	"github.com/worklog-app/worklog-backend/internal/timelogs/domain"
)

type jsonEntry struct {
	ID                string  `json:"id"`
	Project           string  `json:"project"`
	Task              string  `json:"task"`
	StartTime         string  `json:"startTime"`
	EndTime           *string `json:"endTime"`
	Duration          int     `json:"duration"`
	FormattedDuration string  `json:"formattedDuration"`
	Description       string  `json:"description"`
	IsRunning         bool    `json:"isRunning"`
}

func WriteJSON(w io.Writer, logs []domain.TimeLog, loc *time.Location) error {
	out := make([]jsonEntry, 0, len(logs))
	for _, l := range logs {
		e := jsonEntry{
			ID:                l.ID,
			Project:           orUnknown(l.ProjectName()),
			Task:              orUnknown(l.TaskName()),
			StartTime:         l.StartTime.In(loc).Format(time.RFC3339),
			Duration:          l.Duration,
			FormattedDuration: l.FormattedDuration(),
			Description:       l.Description,
			IsRunning:         l.IsRunning,
		}
		if l.EndTime != nil {
			s := l.EndTime.In(loc).Format(time.RFC3339)
			e.EndTime = &s
		}
		out = append(out, e)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
