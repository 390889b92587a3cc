package middleware

import (
	"time"

	"feedsync/internal/logger"

	"github.com/gin-gonic/gin"
)

// Logger writes one line per request through the service logger. Store
// scoped routes carry the store id as a field.
func Logger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		c.Next()

		fields := map[string]interface{}{
			"method":    c.Request.Method,
			"path":      path,
			"status":    c.Writer.Status(),
			"latency":   time.Since(start).String(),
			"client_ip": c.ClientIP(),
		}
		if storeID := c.Param("store_id"); storeID != "" {
			fields["store_id"] = storeID
		}

		entry := log.WithFields(fields)
		switch status := c.Writer.Status(); {
		case status >= 500:
			entry.Error("%s %s %d", c.Request.Method, path, status)
		case status >= 400:
			entry.Warn("%s %s %d", c.Request.Method, path, status)
		default:
			entry.Info("%s %s %d", c.Request.Method, path, status)
		}
	}
}
