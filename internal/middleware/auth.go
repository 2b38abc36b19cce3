package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"signin-service/internal/session"
)

// NotAuthenticated is the body of every 401 returned by the API gate.
var NotAuthenticated = gin.H{"error": "Not authenticated"}

// RequirePageAuth sends anonymous visitors to redirectTo. It reads the
// session loaded by session.Manager.Middleware.
func RequirePageAuth(redirectTo string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !session.Current(c).Authenticated() {
			c.Redirect(http.StatusFound, redirectTo)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAPIAuth answers anonymous API calls with 401 and a JSON error.
func RequireAPIAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !session.Current(c).Authenticated() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, NotAuthenticated)
			return
		}
		c.Next()
	}
}
