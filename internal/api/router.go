package api

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/open-prompts/awsome-prompt/config"
	"github.com/open-prompts/awsome-prompt/internal/api/v1/auth"
	"github.com/open-prompts/awsome-prompt/internal/api/v1/prompt"
	"github.com/open-prompts/awsome-prompt/internal/api/v1/stats"
	"github.com/open-prompts/awsome-prompt/internal/api/v1/template"
	"github.com/open-prompts/awsome-prompt/internal/database"
	"github.com/open-prompts/awsome-prompt/internal/middleware"
)

func NewRouter() (*gin.Engine, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	_, err = database.Connect(cfg.DSN())
	if err != nil {
		return nil, err
	}

	err = database.ConnectRedis(cfg)
	if err != nil {
		return nil, err
	}

	router := gin.New()
	router.Use(middleware.Logger(), gin.Recovery())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173", "http://localhost:8080"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// API v1
	v1 := router.Group("/api/v1")
	{
		auth.RegisterRoutes(v1)
		template.RegisterRoutes(v1)
		prompt.RegisterRoutes(v1)
		stats.RegisterRoutes(v1)
	}

	return router, nil
}
