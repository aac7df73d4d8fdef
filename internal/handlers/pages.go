package handlers

import (
	"net/http"

	"wavenote-api/internal/dashboard"
	"wavenote-api/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	PathDashboard = "/dashboard"
	PathSignUp    = "/signup"
	PathLogin     = "/login"
)

// PagesHandler is the navigation table: which page a visitor lands on
// given whether they hold a session.
type PagesHandler struct {
	dashboards *dashboard.Registry
}

func NewPagesHandler(dashboards *dashboard.Registry) *PagesHandler {
	return &PagesHandler{dashboards: dashboards}
}

// Root sends visitors to sign-up, the default page.
func (h *PagesHandler) Root(c *gin.Context) {
	c.Redirect(http.StatusTemporaryRedirect, PathSignUp)
}

func (h *PagesHandler) SignUp(c *gin.Context) {
	h.authPage(c, "signup", PathLogin)
}

func (h *PagesHandler) Login(c *gin.Context) {
	h.authPage(c, "login", PathSignUp)
}

func (h *PagesHandler) authPage(c *gin.Context, page, alternate string) {
	if middleware.CurrentUserID(c) != uuid.Nil {
		c.Redirect(http.StatusSeeOther, PathDashboard)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"page":      page,
		"submit_to": "/auth/" + page,
		"alternate": alternate,
	})
}

func (h *PagesHandler) Dashboard(c *gin.Context) {
	userID := middleware.CurrentUserID(c)
	if userID == uuid.Nil {
		c.Redirect(http.StatusSeeOther, PathLogin)
		return
	}

	d, err := h.dashboards.For(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"page":      "dashboard",
		"user":      middleware.CurrentUser(c),
		"dashboard": d.View(),
	})
}
