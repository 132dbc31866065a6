package handlers

import (
	"net/http"

	"autoposter-api/internal/autopost"
	"autoposter-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	base
	service autopost.Service
}

func NewDashboardHandler(service autopost.Service, logger *logger.Logger) *DashboardHandler {
	return &DashboardHandler{base: base{logger: logger}, service: service}
}

func (h *DashboardHandler) Stats(c *gin.Context) {
	identity, ok := h.identity(c)
	if !ok {
		return
	}

	stats, err := h.service.Dashboard(c.Request.Context(), identity.UserID)
	if err != nil {
		h.fail(c, http.StatusInternalServerError, "Failed to fetch dashboard stats", err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
