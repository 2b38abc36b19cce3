package middleware

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const UnexpectedErrorMessage = "An unexpected error occurred"

// Recovery turns panics into a generic 500 text response.
func Recovery(log *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, recovered any) {
		log.Error("Unhandled error",
			zap.Any("panic", recovered),
			zap.String("request_id", RequestID(c)),
			zap.String("path", c.Request.URL.Path),
		)
		c.String(http.StatusInternalServerError, UnexpectedErrorMessage)
		c.Abort()
	})
}

// Errors answers any error recorded with c.Error by a later handler that
// did not write a response itself.
func Errors(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		log.Error("Unhandled error",
			zap.Error(c.Errors.Last().Err),
			zap.String("request_id", RequestID(c)),
			zap.String("path", c.Request.URL.Path),
		)

		if !c.Writer.Written() {
			c.String(http.StatusInternalServerError, UnexpectedErrorMessage)
		}
	}
}
