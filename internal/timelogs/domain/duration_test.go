package domain

import (
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		minutes int
		want    string
	}{
		{0, "0:00"},
		{-5, "0:00"},
		{1, "0:01"},
		{59, "0:59"},
		{60, "1:00"},
		{90, "1:30"},
		{605, "10:05"},
		{1440, "24:00"},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, FormatDuration(tc.minutes), "minutes=%d", tc.minutes)
	}
}

func TestFormatDuration_RoundTrips(t *testing.T) {
	pattern := regexp.MustCompile(`^\d+:\d{2}$`)

	for m := 0; m <= 3000; m++ {
		s := FormatDuration(m)
		require.Regexp(t, pattern, s)

		parts := strings.SplitN(s, ":", 2)
		h, err := strconv.Atoi(parts[0])
		require.NoError(t, err)
		mm, err := strconv.Atoi(parts[1])
		require.NoError(t, err)

		assert.Less(t, mm, 60)
		assert.Equal(t, m, h*60+mm)
	}
}

func TestComputeDurationMinutes(t *testing.T) {
	start := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		end  time.Time
		want int
	}{
		{"same instant", start, 0},
		{"29 seconds rounds down", start.Add(29 * time.Second), 0},
		{"30 seconds rounds up", start.Add(30 * time.Second), 1},
		{"one hour", start.Add(time.Hour), 60},
		{"90 minutes 29 seconds", start.Add(90*time.Minute + 29*time.Second), 90},
		{"90 minutes 31 seconds", start.Add(90*time.Minute + 31*time.Second), 91},
		{"end before start", start.Add(-time.Hour), 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ComputeDurationMinutes(start, tc.end))
		})
	}
}

func TestTimeLogStop(t *testing.T) {
	start := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	end := start.Add(45*time.Minute + 10*time.Second)
	l := &TimeLog{StartTime: start, IsRunning: true}

	l.Stop(end)

	assert.False(t, l.IsRunning)
	require.NotNil(t, l.EndTime)
	assert.True(t, l.EndTime.Equal(end))
	assert.Equal(t, ComputeDurationMinutes(start, end), l.Duration)
	assert.Equal(t, "0:45", l.FormattedDuration())
}

func TestSumDurations(t *testing.T) {
	assert.Equal(t, 0, SumDurations(nil))
	assert.Equal(t, 75, SumDurations([]TimeLog{{Duration: 30}, {Duration: 45}}))
}
