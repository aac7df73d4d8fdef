package middleware

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"wavenote-api/internal/models"
	"wavenote-api/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	TokenCookieName = "wavenote_token"

	ContextUserID = "userID"
	ContextUser   = "user"
	ContextToken  = "token"
)

// TokenFromRequest reads a bearer token from the Authorization header,
// falling back to the session cookie.
func TokenFromRequest(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if cookie, err := c.Cookie(TokenCookieName); err == nil {
		return cookie
	}
	return ""
}

func resolveUser(c *gin.Context, auth service.AuthService) (*models.User, error) {
	token := TokenFromRequest(c)
	user, err := auth.CurrentUser(c.Request.Context(), token)
	if err != nil {
		return nil, err
	}
	c.Set(ContextUserID, user.ID)
	c.Set(ContextUser, user)
	c.Set(ContextToken, token)
	return user, nil
}

// AuthMiddleware rejects requests without a valid, unrevoked token.
func AuthMiddleware(auth service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := resolveUser(c, auth); err != nil {
			if errors.Is(err, service.ErrUnauthenticated) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Next()
	}
}

// OptionalAuth attaches the user when the request carries a valid token
// and lets anonymous requests through. A failing user or token store is a
// 500, not an anonymous visit.
func OptionalAuth(auth service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := resolveUser(c, auth); err != nil && !errors.Is(err, service.ErrUnauthenticated) {
			log.Printf("Session lookup failed on %s: %v", c.Request.URL.Path, err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Next()
	}
}

// CurrentUserID is uuid.Nil when no user was attached to the request.
func CurrentUserID(c *gin.Context) uuid.UUID {
	if v, ok := c.Get(ContextUserID); ok {
		if id, ok := v.(uuid.UUID); ok {
			return id
		}
	}
	return uuid.Nil
}

func CurrentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(ContextUser); ok {
		if user, ok := v.(*models.User); ok {
			return user
		}
	}
	return nil
}
