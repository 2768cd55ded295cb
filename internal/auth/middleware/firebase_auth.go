package middleware

import (
	"context"
	"net/http"
	"strings"

	firebaseauth "firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"

	"github.com/worklog-app/worklog-backend/internal/auth"
	"github.com/worklog-app/worklog-backend/internal/auth/domain"
	"github.com/worklog-app/worklog-backend/internal/logging"
)

// IDTokenVerifier is satisfied by *firebase.google.com/go/v4/auth.Client.
type IDTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*firebaseauth.Token, error)
}

// FirebaseUserSyncer maps a verified Firebase identity onto a local account.
type FirebaseUserSyncer interface {
	SyncFirebaseUser(ctx context.Context, ident domain.FirebaseIdentity) (*domain.User, error)
}

// FirebaseAuthMiddleware validates Firebase ID tokens and resolves the local user id.
func FirebaseAuthMiddleware(verifier IDTokenVerifier, users FirebaseUserSyncer, log logging.Logger) gin.HandlerFunc {
	if log == nil {
		log = logging.Nop{}
	}
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			abortUnauthorized(c, "No token, authorization denied")
			return
		}

		ctx := c.Request.Context()
		decodedToken, err := verifier.VerifyIDToken(ctx, token)
		if err != nil {
			abortUnauthorized(c, "Token is not valid")
			return
		}

		ident := domain.FirebaseIdentity{UID: decodedToken.UID}
		if email, ok := decodedToken.Claims["email"].(string); ok {
			ident.Email = email
		}

		user, err := users.SyncFirebaseUser(ctx, ident)
		if err != nil {
			log.Error(ctx, "firebase user sync failed", "firebase_uid", ident.UID, "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
			return
		}

		c.Set(auth.CtxFirebaseUID, ident.UID)
		c.Set(auth.CtxEmail, user.Email)
		auth.SetUser(c, user.ID)
		c.Next()
	}
}

// extractToken reads a Bearer token from Authorization, falling back to x-auth-token.
func extractToken(c *gin.Context) string {
	bearerToken := c.GetHeader("Authorization")
	if len(bearerToken) > 7 && strings.EqualFold(bearerToken[:7], "Bearer ") {
		return strings.TrimSpace(bearerToken[7:])
	}
	return strings.TrimSpace(c.GetHeader("x-auth-token"))
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": msg})
}
