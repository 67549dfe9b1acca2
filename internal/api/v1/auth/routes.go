package auth

import (
	"github.com/gin-gonic/gin"

	"github.com/open-prompts/awsome-prompt/internal/middleware"
)

func RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/register", Register)
	router.POST("/login", Login)
	router.POST("/logout", middleware.AuthMiddleware(), Logout)
	router.GET("/profile", middleware.AuthMiddleware(), GetProfile)
	router.PUT("/profile", middleware.AuthMiddleware(), UpdateProfile)
}
