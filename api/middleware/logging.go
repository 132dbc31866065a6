package middleware

import (
	"time"

	"autoposter-api/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Context keys set by the middleware in this package
const (
	RequestIDKey = "request_id"
	LoggerKey    = "logger"
)

// RequestIDHeader carries the request id in and out of the API
const RequestIDHeader = "X-Request-ID"

func RequestLogging(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Reuse the caller's request ID when one is supplied
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" || len(requestID) > 64 {
			requestID = uuid.New().String()
		}
		c.Set(RequestIDKey, requestID)
		c.Header(RequestIDHeader, requestID)

		// Create logger with request ID
		reqLogger := log.WithRequestID(requestID)
		c.Set(LoggerKey, reqLogger)

		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		reqLogger.Debugw("Request started",
			"method", method,
			"path", path,
			"client_ip", c.ClientIP(),
		)

		c.Next()

		duration := time.Since(start)
		statusCode := c.Writer.Status()

		// The auth middleware may have replaced the logger with a user-scoped one
		LoggerFrom(c, log).Infow("Request completed",
			"method", method,
			"path", path,
			"status_code", statusCode,
			"duration_ms", duration.Milliseconds(),
		)
	}
}

// LoggerFrom returns the request-scoped logger, or fallback outside a logged request
func LoggerFrom(c *gin.Context, fallback *logger.Logger) *logger.Logger {
	if v, ok := c.Get(LoggerKey); ok {
		if l, ok := v.(*logger.Logger); ok {
			return l
		}
	}
	return fallback
}
