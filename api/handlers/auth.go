package handlers

import (
	"net/http"

	"autoposter-api/internal/autopost"
	"autoposter-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	base
	service autopost.Service
}

func NewAuthHandler(service autopost.Service, logger *logger.Logger) *AuthHandler {
	return &AuthHandler{base: base{logger: logger}, service: service}
}

// GetUser records the caller's latest identity claims and returns the stored user
func (h *AuthHandler) GetUser(c *gin.Context) {
	identity, ok := h.identity(c)
	if !ok {
		return
	}

	u, err := h.service.CurrentUser(c.Request.Context(), identity)
	if err != nil {
		h.fail(c, http.StatusInternalServerError, "Failed to fetch user", err)
		return
	}
	c.JSON(http.StatusOK, u)
}
