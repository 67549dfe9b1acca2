package stats

import (
	"github.com/gin-gonic/gin"

	"github.com/open-prompts/awsome-prompt/internal/middleware"
)

func RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/categories", middleware.OptionalAuthMiddleware(), Categories)
	router.GET("/tags", middleware.OptionalAuthMiddleware(), Tags)
}
