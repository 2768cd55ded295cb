package http

import (
	"context"

	"github.com/worklog-app/worklog-backend/internal/auth/domain"
	"github.com/worklog-app/worklog-backend/internal/auth/service"
	"github.com/worklog-app/worklog-backend/internal/logging"
)

// AuthService is the part of service.AuthService the handlers call.
type AuthService interface {
	Register(ctx context.Context, in domain.Credentials) (*service.Session, error)
	Login(ctx context.Context, in domain.Credentials) (*service.Session, error)
	GetUser(ctx context.Context, id string) (*domain.User, error)
}

type Handler struct {
	authService AuthService
	log         logging.Logger
}

func New(authService AuthService, log logging.Logger) *Handler {
	if log == nil {
		log = logging.Nop{}
	}
	return &Handler{
		authService: authService,
		log:         log.With("component", "auth_http"),
	}
}

type credentialsRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (r credentialsRequest) toDomain() domain.Credentials {
	return domain.Credentials{Email: r.Email, Password: r.Password}
}
