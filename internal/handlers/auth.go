package handlers

import (
	"net/http"
	"time"

	"wavenote-api/internal/middleware"
	"wavenote-api/internal/models"
	"wavenote-api/internal/service"

	"github.com/gin-gonic/gin"
)

// AuthHandler handles sign-up, login and logout
type AuthHandler struct {
	auth         service.AuthService
	cookieMaxAge int
	secureCookie bool
}

func NewAuthHandler(auth service.AuthService, sessionTTL time.Duration, secureCookie bool) *AuthHandler {
	return &AuthHandler{
		auth:         auth,
		cookieMaxAge: int(sessionTTL / time.Second),
		secureCookie: secureCookie,
	}
}

func (h *AuthHandler) bindCredentials(c *gin.Context) (models.CredentialsRequest, bool) {
	var req models.CredentialsRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return req, false
	}
	return req, true
}

func (h *AuthHandler) respondSession(c *gin.Context, status int, user *models.User, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.TokenCookieName, token, h.cookieMaxAge, "/", "", h.secureCookie, true)
	c.JSON(status, models.AuthResponse{User: user, Token: token})
}

// @Summary Sign up
// @Router /auth/signup [post]
func (h *AuthHandler) SignUp(c *gin.Context) {
	req, ok := h.bindCredentials(c)
	if !ok {
		return
	}

	user, token, err := h.auth.SignUp(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	h.respondSession(c, http.StatusCreated, user, token)
}

// @Summary Log in
// @Router /auth/login [post]
func (h *AuthHandler) LogIn(c *gin.Context) {
	req, ok := h.bindCredentials(c)
	if !ok {
		return
	}

	user, token, err := h.auth.LogIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	h.respondSession(c, http.StatusOK, user, token)
}

// @Summary Log out
// @Router /auth/logout [post]
func (h *AuthHandler) LogOut(c *gin.Context) {
	token := c.GetString(middleware.ContextToken)
	if err := h.auth.LogOut(c.Request.Context(), token); err != nil {
		respondError(c, err)
		return
	}

	c.SetCookie(middleware.TokenCookieName, "", -1, "/", "", h.secureCookie, true)
	c.Status(http.StatusNoContent)
}

// @Summary Current user
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"user": middleware.CurrentUser(c)})
}
