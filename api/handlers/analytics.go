package handlers

import (
	"net/http"

	"autoposter-api/internal/autopost"
	"autoposter-api/internal/storage"
	"autoposter-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

// AnalyticsHandler serves engagement snapshots and the activity log
type AnalyticsHandler struct {
	base
	service autopost.Service
}

func NewAnalyticsHandler(service autopost.Service, logger *logger.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{base: base{logger: logger}, service: service}
}

func (h *AnalyticsHandler) Analytics(c *gin.Context) {
	identity, ok := h.identity(c)
	if !ok {
		return
	}

	days := queryInt(c, "days", autopost.DefaultAnalyticsDays)
	rows, err := h.service.Analytics(c.Request.Context(), identity.UserID, days)
	if err != nil {
		h.fail(c, http.StatusInternalServerError, "Failed to fetch analytics", err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (h *AnalyticsHandler) Activity(c *gin.Context) {
	identity, ok := h.identity(c)
	if !ok {
		return
	}

	limit := queryInt(c, "limit", storage.DefaultActivityLimit)
	entries, err := h.service.Activity(c.Request.Context(), identity.UserID, limit)
	if err != nil {
		h.fail(c, http.StatusInternalServerError, "Failed to fetch activity log", err)
		return
	}
	c.JSON(http.StatusOK, entries)
}
