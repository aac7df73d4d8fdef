package handlers

import (
	"context"
	"net/http"

	"wavenote-api/internal/dashboard"
	"wavenote-api/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// DashboardHandler exposes the server-held task board and its dialog.
type DashboardHandler struct {
	dashboards *dashboard.Registry
}

func NewDashboardHandler(dashboards *dashboard.Registry) *DashboardHandler {
	return &DashboardHandler{dashboards: dashboards}
}

type dashboardAction func(*dashboard.Dashboard, context.Context, uuid.UUID) (dashboard.View, error)

type fieldChangeRequest struct {
	Name  string `json:"name" binding:"required"`
	Value string `json:"value"`
}

func (h *DashboardHandler) board(c *gin.Context) (*dashboard.Dashboard, bool) {
	d, err := h.dashboards.For(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return d, true
}

// GET /api/dashboard
func (h *DashboardHandler) Get(c *gin.Context) {
	d, ok := h.board(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, d.View())
}

// POST /api/dashboard/refresh
func (h *DashboardHandler) Refresh(c *gin.Context) {
	d, ok := h.board(c)
	if !ok {
		return
	}
	if err := d.Refresh(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d.View())
}

// POST /api/dashboard/dialog/add
func (h *DashboardHandler) OpenForAdd(c *gin.Context) {
	d, ok := h.board(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, d.OpenForAdd())
}

// POST /api/dashboard/dialog/edit/:id
func (h *DashboardHandler) OpenForEdit(c *gin.Context) {
	id, ok := parseTaskID(c)
	if !ok {
		return
	}
	d, ok := h.board(c)
	if !ok {
		return
	}
	view, err := d.OpenForEdit(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// POST /api/dashboard/dialog/close
func (h *DashboardHandler) Close(c *gin.Context) {
	d, ok := h.board(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, d.CloseDialog())
}

// PATCH /api/dashboard/dialog/field
func (h *DashboardHandler) ChangeField(c *gin.Context) {
	var req fieldChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	d, ok := h.board(c)
	if !ok {
		return
	}
	view, err := d.ChangeField(req.Name, req.Value)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// POST /api/dashboard/dialog/submit
// A rejected form is still a 200: the messages live in the dialog state.
func (h *DashboardHandler) Submit(c *gin.Context) {
	d, ok := h.board(c)
	if !ok {
		return
	}
	result, err := d.Submit(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"saved":     result.Saved,
		"dashboard": result.View,
	})
}

// POST /api/dashboard/tasks/:id/toggle
func (h *DashboardHandler) Toggle(c *gin.Context) {
	h.mutate(c, (*dashboard.Dashboard).Toggle)
}

// POST /api/dashboard/tasks/:id/duplicate
func (h *DashboardHandler) Duplicate(c *gin.Context) {
	h.mutate(c, (*dashboard.Dashboard).Duplicate)
}

// DELETE /api/dashboard/tasks/:id
func (h *DashboardHandler) Delete(c *gin.Context) {
	h.mutate(c, (*dashboard.Dashboard).Delete)
}

func (h *DashboardHandler) mutate(c *gin.Context, action dashboardAction) {
	id, ok := parseTaskID(c)
	if !ok {
		return
	}
	d, ok := h.board(c)
	if !ok {
		return
	}
	view, err := action(d, c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}
