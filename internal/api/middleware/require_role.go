package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/lanbix/interview-backend/internal/models"
)

// RequireUserType gates a route group to the given account types. It
// assumes JWTAuth already ran.
func RequireUserType(allowed ...models.UserType) gin.HandlerFunc {
	allow := map[models.UserType]struct{}{}
	for _, a := range allowed {
		allow[a] = struct{}{}
	}

	return func(c *gin.Context) {
		v, _ := c.Get("user_type")
		s, _ := v.(string)
		ut := models.UserType(strings.TrimSpace(s))

		if _, ok := allow[ut]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"error":   "Forbidden",
			})
			return
		}
		c.Next()
	}
}

func RequireInterviewer() gin.HandlerFunc {
	return RequireUserType(models.UserInterviewer, models.UserAdmin)
}
