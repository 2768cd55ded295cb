package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/worklog-app/worklog-backend/internal/common"
	"github.com/worklog-app/worklog-backend/internal/projects/domain"
	"github.com/worklog-app/worklog-backend/internal/projects/repository"
)

func TestProjectService_CRUD(t *testing.T) {
	ctx := context.Background()
	s := NewProjectService(repository.NewMemoryRepository(), nil)

	first, err := s.Create(ctx, "u1", domain.Input{Name: "Website", Description: "client work"})
	require.NoError(t, err)
	second, err := s.Create(ctx, "u1", domain.Input{Name: "Internal"})
	require.NoError(t, err)

	list, err := s.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID, "newest first")
	assert.Equal(t, first.ID, list[1].ID)

	updated, err := s.Update(ctx, "u1", first.ID, domain.Input{Name: "Website v2"})
	require.NoError(t, err)
	assert.Equal(t, "Website v2", updated.Name)
	assert.Equal(t, "client work", updated.Description)

	require.NoError(t, s.Delete(ctx, "u1", first.ID))
	_, err = s.Get(ctx, "u1", first.ID)
	assert.ErrorIs(t, err, domain.ErrProjectNotFound)
}

func TestProjectService_NameRequired(t *testing.T) {
	s := NewProjectService(repository.NewMemoryRepository(), nil)

	_, err := s.Create(context.Background(), "u1", domain.Input{Name: ""})
	var ve *common.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "name", ve.Fields[0].Field)
}

func TestProjectService_OwnershipScoping(t *testing.T) {
	ctx := context.Background()
	s := NewProjectService(repository.NewMemoryRepository(), nil)

	p, err := s.Create(ctx, "owner", domain.Input{Name: "Secret"})
	require.NoError(t, err)

	_, err = s.Get(ctx, "intruder", p.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)

	_, err = s.Update(ctx, "intruder", p.ID, domain.Input{Name: "Mine"})
	assert.ErrorIs(t, err, common.ErrNotFound)

	assert.ErrorIs(t, s.Delete(ctx, "intruder", p.ID), common.ErrNotFound)

	list, err := s.List(ctx, "intruder")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestProjectService_MalformedIDIsNotFound(t *testing.T) {
	s := NewProjectService(repository.NewMemoryRepository(), nil)

	_, err := s.Get(context.Background(), "u1", "not-a-uuid")
	assert.ErrorIs(t, err, domain.ErrProjectNotFound)
	assert.ErrorIs(t, s.Delete(context.Background(), "u1", "not-a-uuid"), domain.ErrProjectNotFound)
}
