package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/open-prompts/awsome-prompt/internal/services"
	"github.com/open-prompts/awsome-prompt/internal/utils"
)

const (
	UserKey   = "user"
	UserIDKey = "user_id"
)

// AuthMiddleware rejects requests without a valid, non-revoked bearer token
// and puts the authenticated user on the context.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := utils.ExtractToken(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, utils.NewErrorResponse(http.StatusUnauthorized, err.Error()))
			c.Abort()
			return
		}

		isDenylisted, err := services.IsDenylisted(tokenString)
		if err != nil {
			c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to check token status"))
			c.Abort()
			return
		}
		if isDenylisted {
			c.JSON(http.StatusUnauthorized, utils.NewErrorResponse(http.StatusUnauthorized, "Token has been revoked"))
			c.Abort()
			return
		}

		claims, err := utils.ValidateToken(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, utils.NewErrorResponse(http.StatusUnauthorized, "Invalid or expired token"))
			c.Abort()
			return
		}

		userID, ok := claims["sub"].(string)
		if !ok || userID == "" {
			c.JSON(http.StatusUnauthorized, utils.NewErrorResponse(http.StatusUnauthorized, "Invalid user ID in token"))
			c.Abort()
			return
		}

		user, err := services.FindUserByID(userID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, utils.NewErrorResponse(http.StatusUnauthorized, "User not found"))
			c.Abort()
			return
		}

		c.Set(UserKey, user)
		c.Set(UserIDKey, user.ID)
		c.Next()
	}
}

// OptionalAuthMiddleware attaches the caller's identity when a valid bearer
// token is present. A missing, invalid or revoked token means anonymous, not
// a hard failure.
func OptionalAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := utils.ExtractToken(c)
		if err != nil {
			c.Next()
			return
		}

		if isDenylisted, err := services.IsDenylisted(tokenString); err != nil || isDenylisted {
			c.Next()
			return
		}

		claims, err := utils.ValidateToken(tokenString)
		if err != nil {
			c.Next()
			return
		}

		if userID, ok := claims["sub"].(string); ok && userID != "" {
			c.Set(UserIDKey, userID)
		}
		c.Next()
	}
}

// CallerID returns the authenticated user id, or "" for anonymous callers.
func CallerID(c *gin.Context) string {
	return c.GetString(UserIDKey)
}
