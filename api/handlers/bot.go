package handlers

import (
	"net/http"

	"autoposter-api/internal/autopost"
	"autoposter-api/internal/storage"
	"autoposter-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

// BotHandler serves the automation settings and the pause/resume switch
type BotHandler struct {
	base
	service autopost.Service
}

func NewBotHandler(service autopost.Service, logger *logger.Logger) *BotHandler {
	return &BotHandler{base: base{logger: logger}, service: service}
}

func (h *BotHandler) GetSettings(c *gin.Context) {
	identity, ok := h.identity(c)
	if !ok {
		return
	}

	settings, err := h.service.GetSettings(c.Request.Context(), identity.UserID)
	if err != nil {
		h.fail(c, http.StatusInternalServerError, "Failed to fetch bot settings", err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

func (h *BotHandler) UpdateSettings(c *gin.Context) {
	identity, ok := h.identity(c)
	if !ok {
		return
	}

	var patch storage.BotSettingsPatch
	if !h.bind(c, &patch) {
		return
	}

	settings, err := h.service.UpdateSettings(c.Request.Context(), identity.UserID, patch)
	if err != nil {
		h.fail(c, http.StatusInternalServerError, "Failed to update bot settings", err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

func (h *BotHandler) Pause(c *gin.Context) {
	identity, ok := h.identity(c)
	if !ok {
		return
	}

	if err := h.service.PauseBot(c.Request.Context(), identity.UserID); err != nil {
		h.fail(c, http.StatusInternalServerError, "Failed to pause bot", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Bot paused successfully"})
}

func (h *BotHandler) Resume(c *gin.Context) {
	identity, ok := h.identity(c)
	if !ok {
		return
	}

	if err := h.service.ResumeBot(c.Request.Context(), identity.UserID); err != nil {
		h.fail(c, http.StatusInternalServerError, "Failed to resume bot", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Bot resumed successfully"})
}
