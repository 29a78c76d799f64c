package main

import (
	"flag"

	"github.com/gin-gonic/gin"

	"github.com/mkhalaf/tasktrail/internal/config"
	"github.com/mkhalaf/tasktrail/internal/models"
	"github.com/mkhalaf/tasktrail/internal/utils"
	"github.com/mkhalaf/tasktrail/pkg/logger"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.Log.Level)

	utils.SetJWTSecret(cfg.JWT.Secret)

	if err := models.InitDB(&cfg.Database); err != nil {
		logger.Fatalf("Failed to initialize database: %v", err)
	}
	if err := models.AutoMigrate(); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}

	app, err := bootstrap(cfg)
	if err != nil {
		logger.Fatalf("Failed to bootstrap application: %v", err)
	}
	defer app.shutdown()

	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	registerRoutes(r, app)

	addr := cfg.Server.Host + ":" + cfg.Server.Port
	logger.Infof("Server listening on %s", addr)
	if err := r.Run(addr); err != nil {
		logger.Fatalf("Server exited: %v", err)
	}
}
