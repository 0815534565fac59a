package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nikogura/smartresume/pkg/logging"
)

const requestIDHeader = "X-Request-ID"

// requestLogger tags each request with an ID, stores a request-scoped logger in
// the request context, and logs the outcome.
func requestLogger(base *logging.Logger) (h gin.HandlerFunc) {
	h = func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(requestIDHeader, id)

		log := base.With("request_id", id)
		c.Request = c.Request.WithContext(logging.IntoContext(c.Request.Context(), log))

		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		keyvals := []any{
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", status,
			"elapsed", time.Since(start),
		}

		switch {
		case status >= http.StatusInternalServerError:
			log.Warn("request failed", keyvals...)
		default:
			log.Info("request handled", keyvals...)
		}
	}
	return h
}

func recoverJSON(c *gin.Context, recovered any) {
	logging.FromContext(c.Request.Context(), nil).Error("panic in handler", "panic", recovered)
	c.AbortWithStatusJSON(http.StatusInternalServerError, failure("Internal server error", nil))
}
