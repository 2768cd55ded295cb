package service

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/worklog-app/worklog-backend/internal/auth/domain"
	"github.com/worklog-app/worklog-backend/internal/common"
	"github.com/worklog-app/worklog-backend/internal/logging"
)

const minPasswordLength = 6

// UserStore is the persistence the auth service needs.
type UserStore interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) error
	UpsertFirebase(ctx context.Context, ident domain.FirebaseIdentity) (*domain.User, error)
}

// TokenIssuer signs access tokens for a user id.
type TokenIssuer interface {
	Issue(userID string) (string, error)
}

// Session is returned by register and login.
type Session struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

type AuthService struct {
	users      UserStore
	tokens     TokenIssuer
	log        logging.Logger
	bcryptCost int
}

func NewAuthService(users UserStore, tokens TokenIssuer, log logging.Logger) *AuthService {
	if log == nil {
		log = logging.Nop{}
	}
	return &AuthService{
		users:      users,
		tokens:     tokens,
		log:        log.With("component", "auth"),
		bcryptCost: bcrypt.DefaultCost,
	}
}

// Register creates a password account and signs the caller in.
func (s *AuthService) Register(ctx context.Context, in domain.Credentials) (*Session, error) {
	email := normalizeEmail(in.Email)
	if len(in.Password) < minPasswordLength {
		return nil, common.Invalid("password", "Please enter a password with 6 or more characters")
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{Email: email, PasswordHash: string(hash)}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.log.Info(ctx, "user registered", "user_id", user.ID)
	return s.session(user)
}

// Login checks the password. Unknown email and wrong password are indistinguishable.
func (s *AuthService) Login(ctx context.Context, in domain.Credentials) (*Session, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(in.Email))
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if user.PasswordHash == "" {
		return nil, domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	return s.session(user)
}

func (s *AuthService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}

// SyncFirebaseUser makes sure a local account exists for a verified Firebase identity.
func (s *AuthService) SyncFirebaseUser(ctx context.Context, ident domain.FirebaseIdentity) (*domain.User, error) {
	if ident.Email == "" {
		// Firebase allows accounts without email (phone, anonymous)
		ident.Email = ident.UID + "@firebase.local"
	}
	ident.Email = normalizeEmail(ident.Email)
	return s.users.UpsertFirebase(ctx, ident)
}

func (s *AuthService) session(user *domain.User) (*Session, error) {
	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, User: user}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
