package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/worklog-app/worklog-backend/internal/common"
	projectdomain "github.com/worklog-app/worklog-backend/internal/projects/domain"
	projectrepo "github.com/worklog-app/worklog-backend/internal/projects/repository"
	"github.com/worklog-app/worklog-backend/internal/tasks/domain"
	"github.com/worklog-app/worklog-backend/internal/tasks/repository"
)

type fixture struct {
	svc      *TaskService
	projects *projectrepo.MemoryRepository
}

func newFixture() fixture {
	projects := projectrepo.NewMemoryRepository()
	return fixture{
		svc:      NewTaskService(repository.NewMemoryRepository(), projects, nil),
		projects: projects,
	}
}

func (f fixture) project(t *testing.T, userID, name string) *projectdomain.Project {
	t.Helper()
	p := &projectdomain.Project{UserID: userID, Name: name}
	require.NoError(t, f.projects.Create(context.Background(), p))
	return p
}

func TestTaskService_CreateExpandsProject(t *testing.T) {
	f := newFixture()
	p := f.project(t, "u1", "Website")

	task, err := f.svc.Create(context.Background(), "u1", domain.Input{Name: "Design", ProjectID: p.ID})
	require.NoError(t, err)
	assert.Equal(t, domain.ProjectRef{ID: p.ID, Name: "Website"}, task.Project)
}

func TestTaskService_ProjectMustBeOwned(t *testing.T) {
	f := newFixture()
	foreign := f.project(t, "someone-else", "Theirs")

	_, err := f.svc.Create(context.Background(), "u1", domain.Input{Name: "Design", ProjectID: foreign.ID})
	assert.ErrorIs(t, err, projectdomain.ErrProjectNotFound)

	_, err = f.svc.Create(context.Background(), "u1", domain.Input{Name: "Design", ProjectID: "garbage"})
	assert.ErrorIs(t, err, projectdomain.ErrProjectNotFound)
}

func TestTaskService_ListFiltersByProject(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	a := f.project(t, "u1", "A")
	b := f.project(t, "u1", "B")

	_, err := f.svc.Create(ctx, "u1", domain.Input{Name: "a1", ProjectID: a.ID})
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, "u1", domain.Input{Name: "b1", ProjectID: b.ID})
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, "u1", domain.Input{Name: "a2", ProjectID: a.ID})
	require.NoError(t, err)

	all, err := f.svc.List(ctx, domain.Filter{UserID: "u1"})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "a2", all[0].Name, "newest first")

	onlyA, err := f.svc.List(ctx, domain.Filter{UserID: "u1", ProjectID: a.ID})
	require.NoError(t, err)
	assert.Len(t, onlyA, 2)

	none, err := f.svc.List(ctx, domain.Filter{UserID: "u1", ProjectID: "not-a-uuid"})
	require.NoError(t, err)
	assert.Empty(t, none)
	assert.NotNil(t, none)
}

func TestTaskService_Update(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	a := f.project(t, "u1", "A")
	b := f.project(t, "u1", "B")

	task, err := f.svc.Create(ctx, "u1", domain.Input{Name: "Design", Description: "mockups", ProjectID: a.ID})
	require.NoError(t, err)

	moved, err := f.svc.Update(ctx, "u1", task.ID, domain.Input{Name: "Design", ProjectID: b.ID})
	require.NoError(t, err)
	assert.Equal(t, "B", moved.Project.Name)
	assert.Equal(t, "mockups", moved.Description)

	_, err = f.svc.Update(ctx, "u2", task.ID, domain.Input{Name: "x", ProjectID: b.ID})
	assert.ErrorIs(t, err, domain.ErrTaskNotFound, "task checked before project")

	_, err = f.svc.Update(ctx, "u1", task.ID, domain.Input{Name: ""})
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestTaskService_Delete(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	p := f.project(t, "u1", "A")

	task, err := f.svc.Create(ctx, "u1", domain.Input{Name: "Design", ProjectID: p.ID})
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.Delete(ctx, "u2", task.ID), domain.ErrTaskNotFound)
	require.NoError(t, f.svc.Delete(ctx, "u1", task.ID))

	_, err = f.svc.Get(ctx, "u1", task.ID)
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
}
