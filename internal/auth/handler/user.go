package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"signin-service/internal/middleware"
	"signin-service/internal/session"
)

// CurrentUser returns the session's identity record verbatim.
func (h *Handler) CurrentUser(c *gin.Context) {
	user, ok := session.UserFromContext(c.Request.Context())
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, middleware.NotAuthenticated)
		return
	}
	c.JSON(http.StatusOK, user)
}
