package auth

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	CtxUserID      = "user_id"
	CtxFirebaseUID = "firebase_uid"
	CtxEmail       = "email"
)

// SetUser stores the authenticated local user id on the Gin context.
// This is called by the JWT and Firebase middlewares.
func SetUser(c *gin.Context, userID string) {
	c.Set(CtxUserID, userID)
}

// UserID returns the authenticated local user id, or "" on public routes.
func UserID(c *gin.Context) string {
	return strings.TrimSpace(c.GetString(CtxUserID))
}

// UserFirebaseUID extracts the Firebase UID from the Gin context.
// Only set when the API runs with Firebase authentication.
func UserFirebaseUID(c *gin.Context) string {
	return strings.TrimSpace(c.GetString(CtxFirebaseUID))
}
