package main

import (
	"github.com/robfig/cron/v3"

	"github.com/mkhalaf/tasktrail/internal/config"
	"github.com/mkhalaf/tasktrail/internal/handlers"
	"github.com/mkhalaf/tasktrail/internal/models"
	"github.com/mkhalaf/tasktrail/internal/services"
	"github.com/mkhalaf/tasktrail/pkg/logger"
)

// appServices bundles everything the router needs plus the background
// jobs that must be stopped on shutdown.
type appServices struct {
	cfg *config.Config

	auth       *handlers.AuthHandler
	user       *handlers.UserHandler
	project    *handlers.ProjectHandler
	membership *handlers.MembershipHandler
	task       *handlers.TaskHandler
	note       *handlers.NoteHandler
	systemLog  *handlers.SystemLogHandler
	health     *handlers.HealthHandler

	logCleanup *cron.Cron
}

func bootstrap(cfg *config.Config) (*appServices, error) {
	db := models.GetDB()

	services.InitSystemLogger(db)

	app := &appServices{
		cfg:        cfg,
		auth:       handlers.NewAuthHandler(db, cfg),
		user:       handlers.NewUserHandler(db),
		project:    handlers.NewProjectHandler(db),
		membership: handlers.NewMembershipHandler(db),
		task:       handlers.NewTaskHandler(db),
		note:       handlers.NewNoteHandler(db),
		systemLog:  handlers.NewSystemLogHandler(db),
		health:     handlers.NewHealthHandler(),
	}

	if err := app.auth.CreateAdminIfNotExists(); err != nil {
		return nil, err
	}

	app.logCleanup = services.StartLogCleanupScheduler(db, cfg.Log.RetentionDays)

	return app, nil
}

func (a *appServices) shutdown() {
	if a.logCleanup != nil {
		a.logCleanup.Stop()
	}
	logger.Infof("Application shut down")
}
