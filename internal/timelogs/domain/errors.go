package domain

import "github.com/worklog-app/worklog-backend/internal/common"

var (
	ErrTimerAlreadyRunning = common.Conflict("Another timer is already running")
	ErrNoRunningTimer      = common.Conflict("No running timer found")
	ErrTaskNotFound        = common.NotFound("Task not found")
	ErrTimeLogNotFound     = common.NotFound("Time log not found")
)
