// Package export renders time logs as CSV or JSON and archives exports to S3.
package export

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/worklog-app/worklog-backend/internal/common"
	"github.com/worklog-app/worklog-backend/internal/timelogs/domain"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ParseFormat accepts "csv" and "json"; empty means csv.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", common.Invalid("format", "Format must be csv or json")
	}
}

func (f Format) ContentType() string {
	if f == FormatJSON {
		return "application/json"
	}
	return "text/csv"
}

func (f Format) Extension() string {
	return string(f)
}

// Filename names a download produced at the given instant.
func (f Format) Filename(at time.Time) string {
	return fmt.Sprintf("timelogs-%s.%s", at.Format("20060102-150405"), f.Extension())
}

// Render writes logs in format f using loc for human-readable timestamps.
func Render(f Format, logs []domain.TimeLog, loc *time.Location) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch f {
	case FormatJSON:
		err = WriteJSON(&buf, logs, loc)
	default:
		err = WriteCSV(&buf, logs, loc)
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
