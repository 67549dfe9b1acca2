package auth

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/open-prompts/awsome-prompt/internal/api/v1/common/respond"
	"github.com/open-prompts/awsome-prompt/internal/middleware"
	"github.com/open-prompts/awsome-prompt/internal/services"
	"github.com/open-prompts/awsome-prompt/internal/utils"
)

type RegisterInput struct {
	ID          string `json:"id"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=6"`
	DisplayName string `json:"display_name"`
}

// Register godoc
// @Summary Register a new account
// @Tags auth
// @Accept  json
// @Produce  json
// @Param   input  body  RegisterInput  true  "Register Input"
// @Success 200 {object} map[string]string
// @Failure 400 {object} utils.Response
// @Failure 409 {object} utils.Response
// @Router /register [post]
func Register(c *gin.Context) {
	var input RegisterInput
	if !utils.BindAndValidate(c, &input) {
		return
	}

	user, err := services.RegisterUser(services.RegisterInput{
		ID:          input.ID,
		Email:       input.Email,
		Password:    input.Password,
		DisplayName: input.DisplayName,
	})
	if err != nil {
		respond.Error(c, err)
		return
	}

	token, err := utils.GenerateToken(user.ID)
	if err != nil {
		respond.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":    user.ID,
		"token": token,
	})
}

type LoginInput struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login godoc
// @Summary Log in with email (or id) and password
// @Tags auth
// @Accept  json
// @Produce  json
// @Param   input  body  LoginInput  true  "Login Input"
// @Success 200 {object} map[string]string
// @Failure 401 {object} utils.Response
// @Router /login [post]
func Login(c *gin.Context) {
	var input LoginInput
	if !utils.BindAndValidate(c, &input) {
		return
	}

	user, err := services.LoginUser(input.Email, input.Password)
	if err != nil {
		respond.Error(c, err)
		return
	}

	token, err := utils.GenerateToken(user.ID)
	if err != nil {
		respond.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":           user.ID,
		"token":        token,
		"display_name": user.DisplayName,
		"avatar":       user.Avatar,
	})
}

// Logout godoc
// @Summary Revoke the current token
// @Tags auth
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} map[string]string
// @Failure 401 {object} utils.Response
// @Router /logout [post]
func Logout(c *gin.Context) {
	tokenString, err := utils.ExtractToken(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utils.NewErrorResponse(http.StatusUnauthorized, err.Error()))
		return
	}

	remaining := 72 * time.Hour // max token life, if expiry can't be read
	if claims, err := utils.ValidateToken(tokenString); err == nil {
		if exp, ok := claims["exp"].(float64); ok {
			remaining = time.Until(time.Unix(int64(exp), 0))
		}
	}

	if err := services.AddToDenylist(tokenString, remaining); err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to revoke token"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// GetProfile godoc
// @Summary Current user's profile
// @Tags auth
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} map[string]string
// @Router /profile [get]
func GetProfile(c *gin.Context) {
	user, err := services.FindUserByID(middleware.CallerID(c))
	if err != nil {
		respond.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":           user.ID,
		"email":        user.Email,
		"display_name": user.DisplayName,
		"avatar":       user.Avatar,
	})
}

type UpdateProfileInput struct {
	DisplayName *string `json:"display_name"`
	Avatar      *string `json:"avatar"`
	Password    *string `json:"password"`
}

// UpdateProfile godoc
// @Summary Update display name, avatar or password
// @Tags auth
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   input  body  UpdateProfileInput  true  "Profile fields"
// @Success 200 {object} map[string]string
// @Router /profile [put]
func UpdateProfile(c *gin.Context) {
	var input UpdateProfileInput
	if !utils.BindAndValidate(c, &input) {
		return
	}

	user, err := services.UpdateProfile(middleware.CallerID(c), services.ProfileUpdate{
		DisplayName: input.DisplayName,
		Avatar:      input.Avatar,
		Password:    input.Password,
	})
	if err != nil {
		respond.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":           user.ID,
		"display_name": user.DisplayName,
		"avatar":       user.Avatar,
	})
}
