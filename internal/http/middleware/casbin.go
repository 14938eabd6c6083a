package middleware

import (
	"net/http"

	"github.com/casbin/casbin/v2"
	"github.com/gin-gonic/gin"
)

// CasbinMiddleware defines the interface for Casbin authorization middleware
type CasbinMiddleware interface {
	Enforce() gin.HandlerFunc
}

// CasbinMW enforces role-based access on parameterized routes.
type CasbinMW struct {
	enforcer *casbin.Enforcer
}

// NewCasbinMW creates a new CasbinMW instance
func NewCasbinMW(enforcer *casbin.Enforcer) *CasbinMW {
	return &CasbinMW{enforcer: enforcer}
}

// Enforce returns the Casbin authorization middleware
func (mw *CasbinMW) Enforce() gin.HandlerFunc {
	return gin.HandlerFunc(func(c *gin.Context) {
		_, subjectExists := c.Get("subject_id")
		role, roleExists := c.Get("subject_role")

		if !subjectExists || !roleExists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Subject or role not found in token"})
			c.Abort()
			return
		}

		// Use the parameterized route for keyMatch2 patterns.
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		allowed, err := mw.enforcer.Enforce("role_"+role.(string), path, c.Request.Method)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Authorization check failed"})
			c.Abort()
			return
		}
		if !allowed {
			c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
			c.Abort()
			return
		}

		c.Next()
	})
}
