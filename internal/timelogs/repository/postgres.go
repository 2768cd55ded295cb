package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/worklog-app/worklog-backend/internal/timelogs/domain"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	runningIndexName      = "time_logs_one_running_per_user"
)

const selectTimeLog = `
SELECT l.id::text, l.user_id::text, l.task_id::text, l.start_time, l.end_time, l.duration,
       l.description, l.is_running, l.created_at, l.updated_at,
       t.name, p.id::text, p.name
FROM time_logs l
JOIN tasks t ON t.id = l.task_id
JOIN projects p ON p.id = t.project_id`

// TimeLogRepository persists time logs in Postgres.
type TimeLogRepository struct {
	pool *pgxpool.Pool
}

func NewTimeLogRepository(pool *pgxpool.Pool) *TimeLogRepository {
	return &TimeLogRepository{pool: pool}
}

func scanTimeLog(row pgx.Row) (*domain.TimeLog, error) {
	var (
		l   domain.TimeLog
		ref domain.TaskRef
	)
	err := row.Scan(
		&l.ID, &l.UserID, &l.TaskID, &l.StartTime, &l.EndTime, &l.Duration,
		&l.Description, &l.IsRunning, &l.CreatedAt, &l.UpdatedAt,
		&ref.Name, &ref.Project.ID, &ref.Project.Name,
	)
	if err != nil {
		return nil, err
	}
	ref.ID = l.TaskID
	l.Task = &ref
	return &l, nil
}

// TaskRef loads the task summary when the task belongs to userID.
func (r *TimeLogRepository) TaskRef(ctx context.Context, userID, taskID string) (*domain.TaskRef, error) {
	const q = `
SELECT t.id::text, t.name, p.id::text, p.name
FROM tasks t
JOIN projects p ON p.id = t.project_id
WHERE t.id = $1 AND t.user_id = $2`

	var ref domain.TaskRef
	err := r.pool.QueryRow(ctx, q, taskID, userID).Scan(&ref.ID, &ref.Name, &ref.Project.ID, &ref.Project.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrTaskNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load task: %w", err)
	}
	return &ref, nil
}

// Insert stores l. Inserting a second running log for the same user fails
// with ErrTimerAlreadyRunning through the partial unique index.
func (r *TimeLogRepository) Insert(ctx context.Context, l *domain.TimeLog) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}

	const q = `
INSERT INTO time_logs (id, user_id, task_id, start_time, end_time, duration, description, is_running)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING created_at, updated_at`

	err := r.pool.QueryRow(ctx, q,
		l.ID, l.UserID, l.TaskID, l.StartTime, l.EndTime, l.Duration, l.Description, l.IsRunning,
	).Scan(&l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return mapWriteError(err)
	}
	return nil
}

// Running returns the user's running log, or nil when the timer is idle.
func (r *TimeLogRepository) Running(ctx context.Context, userID string) (*domain.TimeLog, error) {
	l, err := scanTimeLog(r.pool.QueryRow(ctx, selectTimeLog+` WHERE l.user_id = $1 AND l.is_running`, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load running log: %w", err)
	}
	return l, nil
}

// StopRunning locks the user's running log and finalizes it at the given instant.
func (r *TimeLogRepository) StopRunning(ctx context.Context, userID string, at time.Time) (*domain.TimeLog, error) {
	var stopped *domain.TimeLog

	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		l, err := scanTimeLog(tx.QueryRow(ctx, selectTimeLog+` WHERE l.user_id = $1 AND l.is_running FOR UPDATE OF l`, userID))
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNoRunningTimer
		}
		if err != nil {
			return err
		}

		l.Stop(at)

		const q = `
UPDATE time_logs
SET end_time = $3, duration = $4, is_running = false, updated_at = now()
WHERE id = $1 AND user_id = $2
RETURNING updated_at`
		if err := tx.QueryRow(ctx, q, l.ID, userID, l.EndTime, l.Duration).Scan(&l.UpdatedAt); err != nil {
			return err
		}
		stopped = l
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrNoRunningTimer) {
			return nil, err
		}
		return nil, fmt.Errorf("stop running log: %w", err)
	}
	return stopped, nil
}

func (r *TimeLogRepository) Get(ctx context.Context, userID, id string) (*domain.TimeLog, error) {
	l, err := scanTimeLog(r.pool.QueryRow(ctx, selectTimeLog+` WHERE l.id = $1 AND l.user_id = $2`, id, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrTimeLogNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load time log: %w", err)
	}
	return l, nil
}

// Update writes the editable fields of l, scoped by id and owner.
func (r *TimeLogRepository) Update(ctx context.Context, l *domain.TimeLog) error {
	const q = `
UPDATE time_logs
SET start_time = $3, end_time = $4, duration = $5, description = $6, is_running = $7, updated_at = now()
WHERE id = $1 AND user_id = $2
RETURNING updated_at`

	err := r.pool.QueryRow(ctx, q,
		l.ID, l.UserID, l.StartTime, l.EndTime, l.Duration, l.Description, l.IsRunning,
	).Scan(&l.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrTimeLogNotFound
	}
	if err != nil {
		return mapWriteError(err)
	}
	return nil
}

func (r *TimeLogRepository) Delete(ctx context.Context, userID, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM time_logs WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete time log: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTimeLogNotFound
	}
	return nil
}

// Find returns the logs matching f, newest start time first.
func (r *TimeLogRepository) Find(ctx context.Context, f domain.Filter) ([]domain.TimeLog, error) {
	q, args := buildFindQuery(f)

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("find time logs: %w", err)
	}
	defer rows.Close()

	out := make([]domain.TimeLog, 0, 32)
	for rows.Next() {
		l, err := scanTimeLog(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListRunning returns every running log across all users.
func (r *TimeLogRepository) ListRunning(ctx context.Context) ([]domain.TimeLog, error) {
	rows, err := r.pool.Query(ctx, selectTimeLog+` WHERE l.is_running ORDER BY l.start_time`)
	if err != nil {
		return nil, fmt.Errorf("list running logs: %w", err)
	}
	defer rows.Close()

	var out []domain.TimeLog
	for rows.Next() {
		l, err := scanTimeLog(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *l)
	}
	return out, rows.Err()
}

func buildFindQuery(f domain.Filter) (string, []any) {
	var (
		sb   strings.Builder
		args = []any{f.UserID}
	)
	sb.WriteString(selectTimeLog)
	sb.WriteString(` WHERE l.user_id = $1`)

	add := func(cond string, v any) {
		args = append(args, v)
		fmt.Fprintf(&sb, cond, len(args))
	}

	if f.TaskID != "" {
		add(` AND l.task_id = $%d`, f.TaskID)
	}
	if f.ProjectID != "" {
		add(` AND t.project_id = $%d`, f.ProjectID)
	}
	if f.From != nil {
		add(` AND l.start_time >= $%d`, *f.From)
	}
	if f.To != nil {
		add(` AND l.start_time <= $%d`, *f.To)
	}
	if f.ExcludeRunning {
		sb.WriteString(` AND NOT l.is_running`)
	}
	sb.WriteString(` ORDER BY l.start_time DESC`)
	if f.Limit > 0 {
		add(` LIMIT $%d`, f.Limit)
	}
	return sb.String(), args
}

func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == pgUniqueViolation && pgErr.ConstraintName == runningIndexName:
			return domain.ErrTimerAlreadyRunning
		case pgErr.Code == pgForeignKeyViolation:
			return domain.ErrTaskNotFound
		}
	}
	return fmt.Errorf("write time log: %w", err)
}
