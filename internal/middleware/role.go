package middleware

import (
	"net/http"

	"github.com/franciscosanchezn/trattoria-api/internal/models"
	"github.com/gin-gonic/gin"
)

// RequireRole is a middleware that lets the request through only when the
// authenticated user has one of the given roles.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}

	return func(c *gin.Context) {
		// Get user info from context (set by BearerAuth middleware)
		userID, exists := c.Get(ContextUserID)
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				models.NewAPIError(models.ErrUnauthorized, "User not authenticated"))
			return
		}

		userRole := c.GetString(ContextUserRole)
		if userRole == "" {
			c.AbortWithStatusJSON(http.StatusForbidden,
				models.NewAPIError(models.ErrForbidden, "User role not found in token"))
			return
		}

		if !allowed[userRole] {
			c.AbortWithStatusJSON(http.StatusForbidden, models.NewAPIError(
				models.ErrForbidden,
				"Insufficient permissions",
				map[string]interface{}{
					"required_roles": roles,
					"user_role":      userRole,
					"user_id":        userID,
				},
			))
			return
		}

		c.Next()
	}
}
