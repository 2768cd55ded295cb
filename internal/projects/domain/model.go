package domain

import (
	"strings"
	"time"

	"github.com/worklog-app/worklog-backend/internal/common"
)

// Project groups tasks for a single user.
type Project struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Input carries the editable fields of a project.
type Input struct {
	Name        string
	Description string
}

var ErrProjectNotFound = common.NotFound("Project not found")

func (in Input) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return common.Invalid("name", "Project name is required")
	}
	return nil
}

// Apply copies in onto p. A blank description keeps the current one.
func (in Input) Apply(p *Project) {
	p.Name = strings.TrimSpace(in.Name)
	if d := strings.TrimSpace(in.Description); d != "" {
		p.Description = d
	}
}
