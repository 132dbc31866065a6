package handlers

import (
	"net/http"
	"strconv"

	"autoposter-api/api/middleware"
	"autoposter-api/internal/auth"
	"autoposter-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Fixed response texts shared by several handlers
const (
	msgUnauthorized   = "Unauthorized"
	msgInvalidBody    = "Invalid request body"
	msgTweetNotFound  = "Tweet not found"
	maxQueryListLimit = 500
)

// base carries what every handler needs
type base struct {
	logger *logger.Logger
}

// identity returns the caller, responding 401 when the auth middleware did not run
func (b base) identity(c *gin.Context) (auth.Identity, bool) {
	id, ok := auth.FromContext(c.Request.Context())
	if !ok || !id.UserID.IsValid() {
		c.JSON(http.StatusUnauthorized, gin.H{"message": msgUnauthorized})
		return auth.Identity{}, false
	}
	return id, true
}

// fail logs err with the request logger and responds with a fixed message
func (b base) fail(c *gin.Context, status int, message string, err error) {
	if err != nil {
		middleware.LoggerFrom(c, b.logger).Errorw(message,
			"path", c.FullPath(),
			"status_code", status,
			"error", err,
		)
	}
	c.JSON(status, gin.H{"message": message})
}

// bind decodes and validates the JSON body, responding 400 on failure
func (b base) bind(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		middleware.LoggerFrom(c, b.logger).Debugw("Rejected request body", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"message": msgInvalidBody})
		return false
	}
	return true
}

// queryInt parses a positive integer query parameter, returning def when it is
// absent, malformed or out of range
func queryInt(c *gin.Context, key string, def int) int {
	raw := c.Query(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 || n > maxQueryListLimit {
		return def
	}
	return n
}
