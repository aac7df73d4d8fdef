package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"wavenote-api/internal/models"
	"wavenote-api/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func requestContext(setup func(r *http.Request)) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	setup(c.Request)
	return c
}

func TestTokenFromRequest(t *testing.T) {
	testCases := []struct {
		name  string
		setup func(r *http.Request)
		want  string
	}{
		{
			name:  "bearer header",
			setup: func(r *http.Request) { r.Header.Set("Authorization", "Bearer abc.def") },
			want:  "abc.def",
		},
		{
			name: "cookie fallback",
			setup: func(r *http.Request) {
				r.AddCookie(&http.Cookie{Name: TokenCookieName, Value: "from-cookie"})
			},
			want: "from-cookie",
		},
		{
			name: "header wins over cookie",
			setup: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer from-header")
				r.AddCookie(&http.Cookie{Name: TokenCookieName, Value: "from-cookie"})
			},
			want: "from-header",
		},
		{
			name:  "other scheme ignored",
			setup: func(r *http.Request) { r.Header.Set("Authorization", "Basic dXNlcjpwYXNz") },
			want:  "",
		},
		{
			name:  "nothing",
			setup: func(r *http.Request) {},
			want:  "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, TokenFromRequest(requestContext(tc.setup)))
		})
	}
}

func TestCurrentUserID_Unset(t *testing.T) {
	c := requestContext(func(r *http.Request) {})
	assert.Equal(t, "00000000-0000-0000-0000-000000000000", CurrentUserID(c).String())
	assert.Nil(t, CurrentUser(c))
}

// sessionStub resolves one known token and fails every lookup with err.
type sessionStub struct {
	service.AuthService
	token string
	user  *models.User
	err   error
}

func (s sessionStub) CurrentUser(ctx context.Context, token string) (*models.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	if token == "" || token != s.token {
		return nil, service.ErrUnauthenticated
	}
	return s.user, nil
}

func serveWith(handler gin.HandlerFunc, token string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/page", handler, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": CurrentUserID(c)})
	})

	req := httptest.NewRequest(http.MethodGet, "/page", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestOptionalAuth(t *testing.T) {
	user := &models.User{ID: uuid.New(), Email: "ada@example.com"}
	auth := sessionStub{token: "good", user: user}

	rr := serveWith(OptionalAuth(auth), "good")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), user.ID.String())

	rr = serveWith(OptionalAuth(auth), "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), uuid.Nil.String())

	rr = serveWith(OptionalAuth(auth), "stale")
	assert.Equal(t, http.StatusOK, rr.Code, "an invalid token is an anonymous visit")

	down := sessionStub{err: errors.New("redis: connection refused")}
	rr = serveWith(OptionalAuth(down), "good")
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, rr.Body.String(), "connection refused")
}

func TestAuthMiddleware(t *testing.T) {
	user := &models.User{ID: uuid.New(), Email: "ada@example.com"}
	auth := sessionStub{token: "good", user: user}

	assert.Equal(t, http.StatusOK, serveWith(AuthMiddleware(auth), "good").Code)
	assert.Equal(t, http.StatusUnauthorized, serveWith(AuthMiddleware(auth), "").Code)
	assert.Equal(t, http.StatusUnauthorized, serveWith(AuthMiddleware(auth), "stale").Code)

	down := sessionStub{err: errors.New("redis: connection refused")}
	assert.Equal(t, http.StatusInternalServerError, serveWith(AuthMiddleware(down), "good").Code)
}
