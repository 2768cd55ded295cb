package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	firebaseauth "firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/worklog-app/worklog-backend/internal/auth"
	"github.com/worklog-app/worklog-backend/internal/auth/domain"
)

func protectedRouter(mw gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", mw, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"userId": auth.UserID(c), "firebaseUid": auth.UserFirebaseUID(c)})
	})
	return r
}

func get(r http.Handler, header, value string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if header != "" {
		req.Header.Set(header, value)
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestJWTAuthMiddleware(t *testing.T) {
	tokens := auth.NewTokenManager("s3cret", time.Hour)
	tok, err := tokens.Issue("user-1")
	require.NoError(t, err)
	r := protectedRouter(JWTAuthMiddleware(tokens))

	t.Run("bearer header", func(t *testing.T) {
		rr := get(r, "Authorization", "Bearer "+tok)
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"userId":"user-1","firebaseUid":""}`, rr.Body.String())
	})

	t.Run("x-auth-token header", func(t *testing.T) {
		rr := get(r, "x-auth-token", tok)
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("missing token", func(t *testing.T) {
		rr := get(r, "", "")
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.JSONEq(t, `{"message":"No token, authorization denied"}`, rr.Body.String())
	})

	t.Run("bad token", func(t *testing.T) {
		rr := get(r, "Authorization", "Bearer garbage")
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.JSONEq(t, `{"message":"Token is not valid"}`, rr.Body.String())
	})
}

type stubVerifier struct {
	token *firebaseauth.Token
	err   error
}

func (s stubVerifier) VerifyIDToken(context.Context, string) (*firebaseauth.Token, error) {
	return s.token, s.err
}

type stubSyncer struct {
	got domain.FirebaseIdentity
	err error
}

func (s *stubSyncer) SyncFirebaseUser(_ context.Context, ident domain.FirebaseIdentity) (*domain.User, error) {
	s.got = ident
	if s.err != nil {
		return nil, s.err
	}
	return &domain.User{ID: "local-1", Email: ident.Email}, nil
}

func TestFirebaseAuthMiddleware(t *testing.T) {
	verified := &firebaseauth.Token{UID: "fb-1", Claims: map[string]interface{}{"email": "ada@example.com"}}

	t.Run("resolves local user", func(t *testing.T) {
		syncer := &stubSyncer{}
		r := protectedRouter(FirebaseAuthMiddleware(stubVerifier{token: verified}, syncer, nil))

		rr := get(r, "Authorization", "Bearer id-token")
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"userId":"local-1","firebaseUid":"fb-1"}`, rr.Body.String())
		assert.Equal(t, domain.FirebaseIdentity{UID: "fb-1", Email: "ada@example.com"}, syncer.got)
	})

	t.Run("invalid token", func(t *testing.T) {
		r := protectedRouter(FirebaseAuthMiddleware(stubVerifier{err: errors.New("expired")}, &stubSyncer{}, nil))

		rr := get(r, "Authorization", "Bearer id-token")
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("sync failure", func(t *testing.T) {
		r := protectedRouter(FirebaseAuthMiddleware(stubVerifier{token: verified}, &stubSyncer{err: errors.New("db down")}, nil))

		rr := get(r, "Authorization", "Bearer id-token")
		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.JSONEq(t, `{"message":"Server error"}`, rr.Body.String())
	})
}
