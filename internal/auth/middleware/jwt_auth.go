package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/worklog-app/worklog-backend/internal/auth"
)

// TokenParser resolves an access token to a user id.
type TokenParser interface {
	Parse(raw string) (string, error)
}

// JWTAuthMiddleware validates API access tokens issued at login.
func JWTAuthMiddleware(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			abortUnauthorized(c, "No token, authorization denied")
			return
		}

		userID, err := tokens.Parse(token)
		if err != nil {
			abortUnauthorized(c, "Token is not valid")
			return
		}

		auth.SetUser(c, userID)
		c.Next()
	}
}
