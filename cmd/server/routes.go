package main

import (
	"github.com/gin-gonic/gin"

	"github.com/mkhalaf/tasktrail/internal/middleware"
	"github.com/mkhalaf/tasktrail/pkg/logger"
)

func registerRoutes(r *gin.Engine, app *appServices) {
	r.RedirectTrailingSlash = false

	r.Use(logger.GinLogger(), logger.GinRecovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.CORS())

	r.GET("/health", app.health.CheckHealth)

	// Login and refresh are brute-forceable, so they get a tight limiter.
	authPublic := r.Group("/api/auth")
	authPublic.Use(middleware.RateLimit(app.cfg.Server.AuthRateLimit, app.cfg.Server.AuthRateBurst))
	{
		authPublic.POST("/login", app.auth.Login)
		authPublic.POST("/register", app.auth.Register)
		authPublic.POST("/refresh", app.auth.Refresh)
		authPublic.GET("/config", app.auth.GetAuthConfig)
	}

	api := r.Group("/api")
	api.Use(middleware.AuthRequired())
	api.Use(middleware.AuditLog())
	{
		api.GET("/auth/me", app.auth.GetCurrentUser)
		api.POST("/auth/logout", app.auth.Logout)
		api.POST("/auth/change-password", app.auth.ChangePassword)

		api.GET("/projects", app.project.List)
		api.GET("/projects/:project", app.project.GetByID)

		api.GET("/projects/:project/users", app.membership.List)

		api.GET("/tasks", app.task.List)
		api.GET("/tasks/:task", app.task.GetByID)
		api.GET("/my-project-tasks", app.task.MyProjectTasks)
		api.POST("/tasks", app.task.Create)
		api.PUT("/tasks/:task", app.task.Update)
		api.PATCH("/tasks/:task/status", app.task.UpdateStatus)
		api.DELETE("/tasks/:task", app.task.Delete)
		api.POST("/tasks/:task/restore", app.task.Restore)

		api.GET("/tasks/:task/notes", app.note.ListForTask)
		api.GET("/notes", app.note.List)
		api.POST("/notes", app.note.Create)
		api.PUT("/notes/:note", app.note.Update)
		api.DELETE("/notes/:note", app.note.Delete)
		api.POST("/notes/:note/restore", app.note.Restore)
	}

	// Project, user and membership mutations are administrative.
	admin := api.Group("")
	admin.Use(middleware.AdminRequired())
	{
		admin.POST("/projects", app.project.Create)
		admin.PUT("/projects/:project", app.project.Update)
		admin.DELETE("/projects/:project", app.project.Delete)
		admin.POST("/projects/:project/restore", app.project.Restore)

		admin.POST("/projects/:project/users", app.membership.Attach)
		admin.DELETE("/projects/:project/users/:user", app.membership.Detach)
		admin.PUT("/projects/:project/users/:user", app.membership.UpdateRole)

		admin.GET("/users", app.user.List)
		admin.GET("/users/:user", app.user.GetByID)
		admin.POST("/users", app.user.Create)
		admin.PUT("/users/:user", app.user.Update)
		admin.DELETE("/users/:user", app.user.Delete)
		admin.POST("/users/:user/restore", app.user.Restore)

		admin.GET("/system-logs", app.systemLog.List)
		admin.GET("/system-logs/modules", app.systemLog.GetModules)
	}
}
