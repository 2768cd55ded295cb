package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/worklog-app/worklog-backend/internal/timelogs/domain"
)

var csvHeader = []string{"ID", "Project", "Task", "Start", "End", "Duration (min)", "Duration", "Description", "Running"}

func WriteCSV(w io.Writer, logs []domain.TimeLog, loc *time.Location) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, l := range logs {
		endStr := ""
		if l.EndTime != nil {
			endStr = l.EndTime.In(loc).Format(time.RFC3339)
		}
		row := []string{
			l.ID,
			orUnknown(l.ProjectName()),
			orUnknown(l.TaskName()),
			l.StartTime.In(loc).Format(time.RFC3339),
			endStr,
			strconv.Itoa(l.Duration),
			l.FormattedDuration(),
			l.Description,
			strconv.FormatBool(l.IsRunning),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}
