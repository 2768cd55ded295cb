package domain

import (
	"time"

	"github.com/worklog-app/worklog-backend/internal/common"
)

// User is an account. Accounts registered with a password have a hash;
// accounts synced from Firebase have a FirebaseUID instead.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FirebaseUID  *string   `json:"firebaseUid,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Credentials is the body of register and login.
type Credentials struct {
	Email    string
	Password string
}

// FirebaseIdentity is what a verified Firebase ID token tells us about the caller.
type FirebaseIdentity struct {
	UID   string
	Email string
}

var (
	ErrUserNotFound       = common.NotFound("User not found")
	ErrInvalidCredentials = common.Unauthorized("Invalid credentials")
	ErrEmailTaken         = common.Invalid("email", "User already exists")
)
