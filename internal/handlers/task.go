package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"wavenote-api/internal/dashboard"
	"wavenote-api/internal/metrics"
	"wavenote-api/internal/middleware"
	"wavenote-api/internal/models"
	"wavenote-api/internal/service"
	"wavenote-api/internal/validation"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TaskHandler handles HTTP requests for tasks
type TaskHandler struct {
	taskService service.TaskService
	dashboards  *dashboard.Registry
	clock       dashboard.Clock
	loc         *time.Location
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(taskService service.TaskService, dashboards *dashboard.Registry, clock dashboard.Clock, loc *time.Location) *TaskHandler {
	if clock == nil {
		clock = dashboard.RealClock{}
	}
	if loc == nil {
		loc = time.Local
	}
	return &TaskHandler{
		taskService: taskService,
		dashboards:  dashboards,
		clock:       clock,
		loc:         loc,
	}
}

// changed reloads the list of the user's dashboard so it includes this
// write. An open dialog survives; the write itself already succeeded, so a
// failed reload is only logged.
func (h *TaskHandler) changed(ctx context.Context, userID uuid.UUID) {
	if h.dashboards == nil {
		return
	}
	if err := h.dashboards.Refresh(ctx, userID); err != nil {
		log.Printf("Dashboard reload for %s failed: %v", userID, err)
	}
}

// bindForm validates the raw form. On failure it writes a 422 carrying the
// same messages the dialog shows and returns false.
func (h *TaskHandler) bindForm(c *gin.Context) (models.TaskFields, bool) {
	var form models.TaskForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return models.TaskFields{}, false
	}

	deadline, dateErr, fieldErr := validation.ValidateForm(form.Date, form.Time, form.Title, form.Description, h.clock.Now(), h.loc)
	if dateErr != "" || fieldErr != "" {
		reason := "missing_fields"
		if dateErr != "" {
			reason = "deadline"
		}
		metrics.FormRejections.WithLabelValues(reason).Inc()
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": fieldErr, "date_error": dateErr})
		return models.TaskFields{}, false
	}

	return models.TaskFields{
		Title:       form.Title,
		Description: form.Description,
		Deadline:    deadline,
	}, true
}

// @Summary List tasks
// @Description All of the user's tasks in store order, plus the completed/uncompleted split
// @Tags tasks
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /tasks [get]
func (h *TaskHandler) GetTasks(c *gin.Context) {
	userID := middleware.CurrentUserID(c)

	tasks, err := h.taskService.ListTasks(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	if tasks == nil {
		tasks = []models.Task{}
	}

	lists := service.SplitTaskLists(tasks)
	c.JSON(http.StatusOK, gin.H{
		"tasks":       tasks,
		"uncompleted": lists.Uncompleted,
		"completed":   lists.Completed,
	})
}

// @Summary Create a new task
// @Tags tasks
// @Accept json
// @Produce json
// @Param request body models.TaskForm true "Task form"
// @Success 201 {object} models.Task
// @Router /tasks [post]
func (h *TaskHandler) CreateTask(c *gin.Context) {
	userID := middleware.CurrentUserID(c)

	fields, ok := h.bindForm(c)
	if !ok {
		return
	}

	task, err := h.taskService.CreateTask(c.Request.Context(), userID, fields)
	if err != nil {
		respondError(c, err)
		return
	}

	h.changed(c.Request.Context(), userID)
	c.JSON(http.StatusCreated, task)
}

// @Summary Get a single task
// @Tags tasks
// @Produce json
// @Param id path string true "Task ID"
// @Success 200 {object} models.Task
// @Router /tasks/{id} [get]
func (h *TaskHandler) GetTask(c *gin.Context) {
	userID := middleware.CurrentUserID(c)
	id, ok := parseTaskID(c)
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

// @Summary Update a task
// @Description Overwrites title, description and deadline; completion is kept
// @Tags tasks
// @Accept json
// @Produce json
// @Param id path string true "Task ID"
// @Param request body models.TaskForm true "Task form"
// @Success 200 {object} models.Task
// @Router /tasks/{id} [put]
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	userID := middleware.CurrentUserID(c)
	id, ok := parseTaskID(c)
	if !ok {
		return
	}

	fields, ok := h.bindForm(c)
	if !ok {
		return
	}

	task, err := h.taskService.UpdateTask(c.Request.Context(), userID, id, fields)
	if err != nil {
		respondError(c, err)
		return
	}

	h.changed(c.Request.Context(), userID)
	c.JSON(http.StatusOK, task)
}

// @Summary Toggle completion
// @Tags tasks
// @Produce json
// @Param id path string true "Task ID"
// @Success 200 {object} models.Task
// @Router /tasks/{id}/toggle [post]
func (h *TaskHandler) ToggleTask(c *gin.Context) {
	userID := middleware.CurrentUserID(c)
	id, ok := parseTaskID(c)
	if !ok {
		return
	}

	task, err := h.taskService.ToggleCompletion(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, err)
		return
	}

	h.changed(c.Request.Context(), userID)
	c.JSON(http.StatusOK, task)
}

// @Summary Duplicate a task
// @Tags tasks
// @Produce json
// @Param id path string true "Task ID"
// @Success 201 {object} models.Task
// @Router /tasks/{id}/duplicate [post]
func (h *TaskHandler) DuplicateTask(c *gin.Context) {
	userID := middleware.CurrentUserID(c)
	id, ok := parseTaskID(c)
	if !ok {
		return
	}

	task, err := h.taskService.DuplicateTask(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, err)
		return
	}

	h.changed(c.Request.Context(), userID)
	c.JSON(http.StatusCreated, task)
}

// @Summary Delete a task
// @Tags tasks
// @Param id path string true "Task ID"
// @Success 204 "No Content"
// @Router /tasks/{id} [delete]
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	userID := middleware.CurrentUserID(c)
	id, ok := parseTaskID(c)
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(c.Request.Context(), userID, id); err != nil {
		respondError(c, err)
		return
	}

	h.changed(c.Request.Context(), userID)
	c.Status(http.StatusNoContent)
}
