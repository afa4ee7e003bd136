package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/pos-api/pkg/logger"
	"github.com/sirupsen/logrus"
)

// LoggerMiddleware creates a structured logging middleware
func LoggerMiddleware(log *logger.Logger) gin.HandlerFunc {
	entry := log.Component("http")
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)

		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path = path + "?" + raw
		}

		c.Next()

		fields := logrus.Fields{
			"request_id": requestID,
			"method":     c.Request.Method,
			"status":     c.Writer.Status(),
			"latency":    time.Since(start).String(),
			"client_ip":  c.ClientIP(),
			"path":       path,
		}
		if id, ok := c.Get(SubjectIDKey); ok {
			fields["subject_id"] = id
		}

		l := entry.WithFields(fields)
		for _, e := range c.Errors {
			l.WithError(e.Err).Error("request error")
		}

		switch status := c.Writer.Status(); {
		case status >= 500:
			l.Error("request")
		case status >= 400:
			l.Warn("request")
		default:
			l.Info("request")
		}
	}
}
