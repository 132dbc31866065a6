package handlers

import (
	"errors"
	"net/http"

	"autoposter-api/internal/autopost"
	"autoposter-api/internal/common"
	"autoposter-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

// ContentHandler exposes the AI content helpers
type ContentHandler struct {
	base
	service autopost.Service
}

func NewContentHandler(service autopost.Service, logger *logger.Logger) *ContentHandler {
	return &ContentHandler{base: base{logger: logger}, service: service}
}

// Generate creates AI drafts. The body may be empty.
func (h *ContentHandler) Generate(c *gin.Context) {
	identity, ok := h.identity(c)
	if !ok {
		return
	}

	var req autopost.GenerateRequest
	if c.Request.ContentLength != 0 && !h.bind(c, &req) {
		return
	}

	drafts, err := h.service.GenerateDrafts(c.Request.Context(), identity.UserID, req)
	if err != nil {
		var validationErr common.ValidationError
		if errors.As(err, &validationErr) {
			h.fail(c, http.StatusBadRequest, msgInvalidBody, nil)
			return
		}
		h.fail(c, http.StatusInternalServerError, "Failed to generate content", err)
		return
	}
	c.JSON(http.StatusOK, drafts)
}

func (h *ContentHandler) Enhance(c *gin.Context) {
	if _, ok := h.identity(c); !ok {
		return
	}

	var req autopost.ContentRequest
	if !h.bind(c, &req) {
		return
	}

	enhanced, err := h.service.EnhanceContent(c.Request.Context(), req.Content)
	if err != nil {
		h.fail(c, http.StatusInternalServerError, "Failed to enhance content", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"content": enhanced})
}

func (h *ContentHandler) Hashtags(c *gin.Context) {
	if _, ok := h.identity(c); !ok {
		return
	}

	var req autopost.ContentRequest
	if !h.bind(c, &req) {
		return
	}

	tags, err := h.service.SuggestHashtags(c.Request.Context(), req.Content)
	if err != nil {
		h.fail(c, http.StatusInternalServerError, "Failed to generate hashtags", err)
		return
	}
	if tags == nil {
		tags = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"hashtags": tags})
}
