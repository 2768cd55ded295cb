package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/worklog-app/worklog-backend/internal/auth/domain"
)

const pqUniqueViolation = "23505"

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

const selectUser = `
	SELECT id::text, email, password_hash, firebase_uid, created_at, updated_at
	FROM users
`

func scanUser(row *sql.Row) (*domain.User, error) {
	var user domain.User
	var firebaseUID sql.NullString

	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&firebaseUID,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	if firebaseUID.Valid {
		user.FirebaseUID = &firebaseUID.String
	}
	return &user, nil
}

// GetByID retrieves a user by primary key
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrUserNotFound
	}
	return scanUser(r.db.QueryRowContext(ctx, selectUser+`WHERE id = $1`, id))
}

// GetByEmail retrieves a user by email, compared case-insensitively
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return scanUser(r.db.QueryRowContext(ctx, selectUser+`WHERE lower(email) = lower($1)`, email))
}

// Create inserts a password user. A duplicate email yields ErrEmailTaken.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}

	query := `
		INSERT INTO users (id, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRowContext(ctx, query, user.ID, user.Email, user.PasswordHash).
		Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			return domain.ErrEmailTaken
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// UpsertFirebase creates or updates a user keyed by Firebase UID (useful for syncing from Firebase)
func (r *UserRepository) UpsertFirebase(ctx context.Context, ident domain.FirebaseIdentity) (*domain.User, error) {
	query := `
		INSERT INTO users (id, email, firebase_uid)
		VALUES ($1, $2, $3)
		ON CONFLICT (firebase_uid) DO UPDATE
		SET email = EXCLUDED.email,
		    updated_at = NOW()
		RETURNING id::text, email, password_hash, firebase_uid, created_at, updated_at
	`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, uuid.NewString(), ident.Email, ident.UID))
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			return nil, domain.ErrEmailTaken
		}
		return nil, fmt.Errorf("upsert firebase user: %w", err)
	}
	return user, nil
}
