package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/jeanmiCORNEC/linkforge/internal/services"

	"github.com/gin-gonic/gin"
)

type createLinkRequest struct {
	Title          string `json:"title" binding:"required"`
	DestinationURL string `json:"destination_url" binding:"required"`
	SourceID       *uint  `json:"source_id"`
}

func (h *Handler) CreateLink(c *gin.Context) {
	var req createLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	if u, err := url.ParseRequestURI(req.DestinationURL); err != nil || u.Scheme == "" || u.Host == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid destination URL"})
		return
	}

	tracked, err := h.linkService.CreateLink(c.Request.Context(), services.CreateLinkDTO{
		UserID:         accountID(c),
		Title:          req.Title,
		DestinationURL: req.DestinationURL,
		SourceID:       req.SourceID,
	})
	if err != nil {
		h.logger.Error("Failed to create link", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create link"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"tracked_link": tracked,
		"short_url":    h.cfg.PublicBaseURL + "/l/" + tracked.ShortCode,
	})
}

func (h *Handler) ToggleLink(c *gin.Context) {
	linkID, ok := pathID(c)
	if !ok {
		return
	}

	link, err := h.linkService.ToggleLink(c.Request.Context(), accountID(c), linkID)
	if err != nil {
		if errors.Is(err, services.ErrLinkNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Link not found"})
			return
		}
		h.logger.Error("Failed to toggle link", "link_id", linkID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to toggle link"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"link": link})
}

func (h *Handler) DeleteLink(c *gin.Context) {
	linkID, ok := pathID(c)
	if !ok {
		return
	}

	err := h.linkService.DeleteLink(c.Request.Context(), accountID(c), linkID)
	if err != nil {
		if errors.Is(err, services.ErrLinkNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Link not found"})
			return
		}
		h.logger.Error("Failed to delete link", "link_id", linkID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete link"})
		return
	}

	c.Status(http.StatusNoContent)
}

// pathID parses the :id path parameter, replying 400 itself on garbage.
func pathID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return 0, false
	}
	return uint(id), true
}
