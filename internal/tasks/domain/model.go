package domain

import (
	"strings"
	"time"

	"github.com/worklog-app/worklog-backend/internal/common"
)

type ProjectRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Task belongs to one project of the same user.
type Task struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user"`
	Project     ProjectRef `json:"project"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// Input carries the editable fields of a task.
type Input struct {
	Name        string
	Description string
	ProjectID   string
}

var ErrTaskNotFound = common.NotFound("Task not found")

func (in Input) Validate() error {
	ve := &common.ValidationError{}
	if strings.TrimSpace(in.Name) == "" {
		ve.Add("name", "Task name is required")
	}
	if strings.TrimSpace(in.ProjectID) == "" {
		ve.Add("project", "Project is required")
	}
	return ve.OrNil()
}

// Apply copies in onto t. A blank description keeps the current one.
func (in Input) Apply(t *Task, project ProjectRef) {
	t.Name = strings.TrimSpace(in.Name)
	if d := strings.TrimSpace(in.Description); d != "" {
		t.Description = d
	}
	t.Project = project
}

// Filter narrows a task listing. ProjectID is optional.
type Filter struct {
	UserID    string
	ProjectID string
}
