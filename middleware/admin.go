package middleware

import (
	"errors"
	"net/http"

	"economic/database"
	"economic/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// RequireUserRole must run after JWTAuth. It reloads the user so role
// changes apply before the caller's token expires.
func RequireUserRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var user models.User
		err := database.DB.Where("id = ?", GetCurrentUserID(c)).First(&user).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			abortUnauthorized(c, "401 Unauthorized: user not found")
			return
		}
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"statusCode": http.StatusInternalServerError,
				"message":    "loading user failed",
				"error":      "Internal Server Error",
			})
			return
		}
		if !user.HasRole(role) {
			abortForbidden(c)
			return
		}
		c.Set(ctxRolesKey, user.Roles)
		c.Next()
	}
}
