package handlers

import (
	"net/http"

	"autoposter-api/internal/autopost"
	"autoposter-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

// SocialHandler reports on the connected platform account
type SocialHandler struct {
	base
	service autopost.Service
}

func NewSocialHandler(service autopost.Service, logger *logger.Logger) *SocialHandler {
	return &SocialHandler{base: base{logger: logger}, service: service}
}

func (h *SocialHandler) Status(c *gin.Context) {
	if _, ok := h.identity(c); !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"connected": h.service.SocialConnected(c.Request.Context())})
}

func (h *SocialHandler) Account(c *gin.Context) {
	if _, ok := h.identity(c); !ok {
		return
	}

	account, err := h.service.AccountMetrics(c.Request.Context())
	if err != nil {
		h.fail(c, http.StatusInternalServerError, "Failed to fetch account metrics", err)
		return
	}
	c.JSON(http.StatusOK, account)
}
