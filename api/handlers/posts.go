package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"autoposter-api/internal/autopost"
	"autoposter-api/internal/common"
	"autoposter-api/internal/storage"
	"autoposter-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

// PostsHandler serves the /tweets resource
type PostsHandler struct {
	base
	service autopost.Service
}

func NewPostsHandler(service autopost.Service, logger *logger.Logger) *PostsHandler {
	return &PostsHandler{base: base{logger: logger}, service: service}
}

func (h *PostsHandler) List(c *gin.Context) {
	identity, ok := h.identity(c)
	if !ok {
		return
	}

	limit := queryInt(c, "limit", storage.DefaultPostLimit)
	posts, err := h.service.ListPosts(c.Request.Context(), identity.UserID, limit)
	if err != nil {
		h.fail(c, http.StatusInternalServerError, "Failed to fetch tweets", err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

func (h *PostsHandler) ListScheduled(c *gin.Context) {
	identity, ok := h.identity(c)
	if !ok {
		return
	}

	posts, err := h.service.ListScheduledPosts(c.Request.Context(), identity.UserID)
	if err != nil {
		h.fail(c, http.StatusInternalServerError, "Failed to fetch scheduled tweets", err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

func (h *PostsHandler) Create(c *gin.Context) {
	identity, ok := h.identity(c)
	if !ok {
		return
	}

	var req autopost.CreatePostRequest
	if !h.bind(c, &req) {
		return
	}

	post, err := h.service.CreatePost(c.Request.Context(), identity.UserID, req)
	if err != nil {
		var validationErr common.ValidationError
		if errors.As(err, &validationErr) {
			h.fail(c, http.StatusBadRequest, msgInvalidBody, nil)
			return
		}
		h.fail(c, http.StatusInternalServerError, "Failed to create tweet", err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *PostsHandler) Delete(c *gin.Context) {
	identity, ok := h.identity(c)
	if !ok {
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		h.fail(c, http.StatusNotFound, msgTweetNotFound, nil)
		return
	}

	if err := h.service.DeletePost(c.Request.Context(), identity.UserID, uint(id)); err != nil {
		if storage.IsNotFoundError(err) {
			h.fail(c, http.StatusNotFound, msgTweetNotFound, nil)
			return
		}
		h.fail(c, http.StatusInternalServerError, "Failed to delete tweet", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Tweet deleted successfully"})
}
