package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartOfWeek_Sunday(t *testing.T) {
	wed := time.Date(2024, 3, 6, 15, 30, 0, 0, time.UTC)

	start := StartOfWeek(wed, time.UTC)
	assert.Equal(t, time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Sunday, start.Weekday())

	end := EndOfWeek(wed, time.UTC)
	assert.Equal(t, time.Date(2024, 3, 9, 23, 59, 59, int(999*time.Millisecond), time.UTC), end)

	sunday := time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, sunday, StartOfWeek(sunday, time.UTC))
}

func TestStartOfDay_UsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*3600)
	instant := time.Date(2024, 3, 4, 22, 0, 0, 0, time.UTC)

	got := StartOfDay(instant, loc)
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, loc), got)
}

func TestParseDate(t *testing.T) {
	got, ok := ParseDate("2024-03-04", time.UTC)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), got)

	got, ok = ParseDate("2024-03-04T10:15:00Z", time.UTC)
	require.True(t, ok)
	assert.Equal(t, 10, got.Hour())

	_, ok = ParseDate("yesterday", time.UTC)
	assert.False(t, ok)
	_, ok = ParseDate("", time.UTC)
	assert.False(t, ok)
}

func TestParseRange(t *testing.T) {
	from, to := ParseRange("2024-03-01", "2024-03-07", time.UTC)
	require.NotNil(t, from)
	require.NotNil(t, to)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), *from)
	assert.Equal(t, time.Date(2024, 3, 7, 23, 59, 59, int(999*time.Millisecond), time.UTC), *to)

	from, to = ParseRange("2024-03-01", "garbage", time.UTC)
	assert.Nil(t, from)
	assert.Nil(t, to)

	from, to = ParseRange("2024-03-01", "", time.UTC)
	assert.Nil(t, from)
	assert.Nil(t, to)
}
