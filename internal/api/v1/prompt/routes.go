package prompt

import (
	"github.com/gin-gonic/gin"

	"github.com/open-prompts/awsome-prompt/internal/middleware"
)

func RegisterRoutes(router *gin.RouterGroup) {
	prompts := router.Group("/prompts")

	prompts.GET("", List)
	prompts.GET("/:id", Get)

	prompts.POST("", middleware.AuthMiddleware(), Create)
	prompts.DELETE("/:id", middleware.AuthMiddleware(), Delete)
}
