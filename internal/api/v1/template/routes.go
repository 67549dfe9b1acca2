package template

import (
	"github.com/gin-gonic/gin"

	"github.com/open-prompts/awsome-prompt/internal/middleware"
)

func RegisterRoutes(router *gin.RouterGroup) {
	templates := router.Group("/templates")

	templates.GET("", middleware.OptionalAuthMiddleware(), List)
	templates.GET("/:id", middleware.OptionalAuthMiddleware(), Get)
	templates.GET("/:id/versions", middleware.OptionalAuthMiddleware(), ListVersions)

	templates.POST("", middleware.AuthMiddleware(), Create)
	templates.PUT("/:id", middleware.AuthMiddleware(), Update)
	templates.DELETE("/:id", middleware.AuthMiddleware(), Delete)
	templates.POST("/:id/like", middleware.AuthMiddleware(), Like)
	templates.POST("/:id/favorite", middleware.AuthMiddleware(), Favorite)
}
