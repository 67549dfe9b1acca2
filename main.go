package main

import (
	"log"

	"github.com/open-prompts/awsome-prompt/config"
	"github.com/open-prompts/awsome-prompt/internal/api"
	"github.com/open-prompts/awsome-prompt/internal/database"
	"github.com/open-prompts/awsome-prompt/internal/models"
	"github.com/open-prompts/awsome-prompt/pkg/logger"
)

// @title awsome-prompt API
// @version 1.0
// @description Backend for versioned, shareable prompt templates.

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	err = logger.InitLogger(&logger.Config{
		Level:      cfg.LogLevel,
		Filename:   cfg.LogFilename,
		MaxSize:    cfg.LogMaxSize,
		MaxBackups: cfg.LogMaxBackups,
		MaxAge:     cfg.LogMaxAge,
		Compress:   cfg.LogCompress,
	})
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync()

	router, err := api.NewRouter()
	if err != nil {
		log.Fatalf("failed to create router: %v", err)
	}

	// Migrate the schema
	err = database.DB.AutoMigrate(
		&models.User{},
		&models.Template{},
		&models.TemplateVersion{},
		&models.Prompt{},
		&models.TemplateLike{},
		&models.TemplateFavorite{},
	)
	if err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	if err := router.Run(cfg.ServerAddr); err != nil {
		log.Fatalf("failed to run server: %v", err)
	}
}
