package handlers

import (
	"context"
	"net/http"
	"time"

	"autoposter-api/internal/database"
	"autoposter-api/internal/scheduler"
	"autoposter-api/pkg/logger"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	serviceName        = "autoposter-api"
	healthCheckTimeout = 2 * time.Second
)

type HealthHandler struct {
	db        *gorm.DB
	scheduler scheduler.Scheduler
	logger    *logger.Logger
}

// NewHealthHandler creates the liveness handler. sched may be nil when the
// scheduler is disabled.
func NewHealthHandler(db *gorm.DB, sched scheduler.Scheduler, logger *logger.Logger) *HealthHandler {
	return &HealthHandler{
		db:        db,
		scheduler: sched,
		logger:    logger,
	}
}

func (h *HealthHandler) Check(c *gin.Context) {
	status := "ok"
	statusCode := http.StatusOK

	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	// Check database connection
	if err := database.HealthCheck(ctx, h.db); err != nil {
		h.logger.Errorw("Database health check failed", "error", err)
		status = "error"
		statusCode = http.StatusServiceUnavailable
	}

	schedulerStatus := scheduler.Status{Jobs: []scheduler.JobStatus{}}
	if h.scheduler != nil {
		schedulerStatus = h.scheduler.Status()
	}

	c.JSON(statusCode, gin.H{
		"status":    status,
		"timestamp": time.Now().UTC(),
		"service":   serviceName,
		"scheduler": schedulerStatus,
	})
}
