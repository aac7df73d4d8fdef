package handlers

import (
	"time"

	"wavenote-api/internal/dashboard"
	"wavenote-api/internal/middleware"
	"wavenote-api/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type RouterDeps struct {
	Auth       service.AuthService
	Tasks      service.TaskService
	Dashboards *dashboard.Registry
	Clock      dashboard.Clock
	Location   *time.Location
	SessionTTL time.Duration
	Secure     bool
	// Probes reported by /health, keyed by service name.
	HealthChecks map[string]HealthCheck
	// Extra middleware applied to every route, e.g. rate limiting.
	Middleware []gin.HandlerFunc
}

func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.Metrics())
	router.Use(deps.Middleware...)

	authHandler := NewAuthHandler(deps.Auth, deps.SessionTTL, deps.Secure)
	taskHandler := NewTaskHandler(deps.Tasks, deps.Dashboards, deps.Clock, deps.Location)
	dashboardHandler := NewDashboardHandler(deps.Dashboards)
	pagesHandler := NewPagesHandler(deps.Dashboards)
	healthHandler := NewHealthHandler(deps.HealthChecks)

	// Public routes
	router.GET("/health", healthHandler.Check)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.POST("/auth/signup", authHandler.SignUp)
	router.POST("/auth/login", authHandler.LogIn)

	// Navigation
	pages := router.Group("/")
	pages.Use(middleware.OptionalAuth(deps.Auth))
	{
		pages.GET("/", pagesHandler.Root)
		pages.GET(PathSignUp, pagesHandler.SignUp)
		pages.GET(PathLogin, pagesHandler.Login)
		pages.GET(PathDashboard, pagesHandler.Dashboard)
	}

	requireAuth := middleware.AuthMiddleware(deps.Auth)

	session := router.Group("/auth")
	session.Use(requireAuth)
	{
		session.POST("/logout", authHandler.LogOut)
		session.GET("/me", authHandler.Me)
	}

	api := router.Group("/api")
	api.Use(requireAuth)
	{
		api.GET("/tasks", taskHandler.GetTasks)
		api.POST("/tasks", taskHandler.CreateTask)
		api.GET("/tasks/:id", taskHandler.GetTask)
		api.PUT("/tasks/:id", taskHandler.UpdateTask)
		api.DELETE("/tasks/:id", taskHandler.DeleteTask)
		api.POST("/tasks/:id/toggle", taskHandler.ToggleTask)
		api.POST("/tasks/:id/duplicate", taskHandler.DuplicateTask)

		api.GET("/dashboard", dashboardHandler.Get)
		api.POST("/dashboard/refresh", dashboardHandler.Refresh)
		api.POST("/dashboard/dialog/add", dashboardHandler.OpenForAdd)
		api.POST("/dashboard/dialog/edit/:id", dashboardHandler.OpenForEdit)
		api.POST("/dashboard/dialog/close", dashboardHandler.Close)
		api.PATCH("/dashboard/dialog/field", dashboardHandler.ChangeField)
		api.POST("/dashboard/dialog/submit", dashboardHandler.Submit)
		api.POST("/dashboard/tasks/:id/toggle", dashboardHandler.Toggle)
		api.POST("/dashboard/tasks/:id/duplicate", dashboardHandler.Duplicate)
		api.DELETE("/dashboard/tasks/:id", dashboardHandler.Delete)
	}

	return router
}
