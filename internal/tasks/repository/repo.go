package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	projectdomain "github.com/worklog-app/worklog-backend/internal/projects/domain"
	"github.com/worklog-app/worklog-backend/internal/tasks/domain"
)

const pgForeignKeyViolation = "23503"

const selectTask = `
SELECT t.id::text, t.user_id::text, p.id::text, p.name, t.name, t.description, t.created_at, t.updated_at
FROM tasks t
JOIN projects p ON p.id = t.project_id`

// TaskRepository provides persistence operations for tasks
type TaskRepository struct {
	pool *pgxpool.Pool
}

func NewTaskRepository(pool *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{pool: pool}
}

func scanTask(row pgx.Row) (*domain.Task, error) {
	var t domain.Task
	err := row.Scan(&t.ID, &t.UserID, &t.Project.ID, &t.Project.Name, &t.Name, &t.Description, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TaskRepository) Create(ctx context.Context, t *domain.Task) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}

	const q = `
INSERT INTO tasks (id, user_id, project_id, name, description)
VALUES ($1, $2, $3, $4, $5)
RETURNING created_at, updated_at`

	err := r.pool.QueryRow(ctx, q, t.ID, t.UserID, t.Project.ID, t.Name, t.Description).Scan(&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return mapWriteError(err, "create task")
	}
	return nil
}

// List returns the user's tasks, newest first, optionally narrowed to one project.
func (r *TaskRepository) List(ctx context.Context, f domain.Filter) ([]domain.Task, error) {
	q := selectTask + ` WHERE t.user_id = $1`
	args := []any{f.UserID}
	if f.ProjectID != "" {
		q += ` AND t.project_id = $2`
		args = append(args, f.ProjectID)
	}
	q += ` ORDER BY t.created_at DESC`

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Task, 0, 16)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *TaskRepository) Get(ctx context.Context, userID, id string) (*domain.Task, error) {
	t, err := scanTask(r.pool.QueryRow(ctx, selectTask+` WHERE t.id = $1 AND t.user_id = $2`, id, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrTaskNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load task: %w", err)
	}
	return t, nil
}

func (r *TaskRepository) Update(ctx context.Context, t *domain.Task) error {
	const q = `
UPDATE tasks
SET name = $3, description = $4, project_id = $5, updated_at = now()
WHERE id = $1 AND user_id = $2
RETURNING updated_at`

	err := r.pool.QueryRow(ctx, q, t.ID, t.UserID, t.Name, t.Description, t.Project.ID).Scan(&t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrTaskNotFound
	}
	if err != nil {
		return mapWriteError(err, "update task")
	}
	return nil
}

// Delete removes the task and, through ON DELETE CASCADE, its time logs.
func (r *TaskRepository) Delete(ctx context.Context, userID, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (r *TaskRepository) CountByUser(ctx context.Context, userID string) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM tasks WHERE user_id = $1`, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count tasks: %w", err)
	}
	return n, nil
}

// mapWriteError turns a foreign key failure into ErrProjectNotFound. That happens when
// the project is deleted between the ownership check and the write.
func mapWriteError(err error, op string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
		return projectdomain.ErrProjectNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
