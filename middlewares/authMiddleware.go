package middlewares

import (
	"net/http"

	"bitbucket.org/prajapati/wealth_backend/models"
	"github.com/gin-gonic/gin"
)

// RequireAuth rejects anonymous requests.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if IdentityFrom(c.Request.Context()) == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}

// RequireView lets through roles that can see the navigation item navKey.
func RequireView(navKey string) gin.HandlerFunc {
	item, ok := models.FindNavItem(navKey)
	if !ok {
		panic("unknown navigation item " + navKey)
	}
	return func(c *gin.Context) {
		access := AccessFrom(c.Request.Context())
		if access.Role == models.RoleNone {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		if !models.CanView(item, access.Role) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}

// RequireMutation guards create and update routes; RequireDelete guards
// delete routes.
func RequireMutation() gin.HandlerFunc {
	return requireAccess(models.Access.CanMutate)
}

func RequireDelete() gin.HandlerFunc {
	return requireAccess(models.Access.CanDelete)
}

func RequireAdmin() gin.HandlerFunc {
	return requireAccess(func(a models.Access) bool { return a.Role == models.RoleAdmin })
}

func requireAccess(allowed func(models.Access) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		access := AccessFrom(c.Request.Context())
		if access.Role == models.RoleNone {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		if !allowed(access) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}
