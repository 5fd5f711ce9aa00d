package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/jeanmiCORNEC/linkforge/internal/services"

	"github.com/gin-gonic/gin"
)

// HandleRedirect is the hot path: resolve, decide whether the visit is worth
// logging, enqueue enrichment, redirect. The visitor never waits on click
// persistence or geolocation.
func (h *Handler) HandleRedirect(c *gin.Context) {
	code := c.Param("code")

	resolved, err := h.resolver.Resolve(c.Request.Context(), code)
	if err != nil {
		if errors.Is(err, services.ErrLinkNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Link not found"})
			return
		}
		h.logger.Error("Resolve failed", "code", code, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		return
	}

	ip := c.ClientIP()
	ua := c.Request.UserAgent()

	// The cooldown marker is written before Submit so a double-tap cannot
	// enqueue twice even if both requests race past this point together.
	if h.resolver.Admit(c.Request.Context(), resolved.TrackedLinkID, ip, ua) {
		h.enrichment.Submit(services.ClickTask{
			TrackedLinkID: resolved.TrackedLinkID,
			IP:            ip,
			UserAgent:     ua,
			Referrer:      c.Request.Referer(),
			OccurredAt:    time.Now(),
		})
	}

	dest := services.MergeQueryParams(resolved.DestinationURL, c.Request.URL.Query())
	c.Redirect(http.StatusFound, dest)
}

// HandleQRCode renders a QR PNG pointing at the public short URL of a code.
// Only resolvable codes get a QR, so dead links cannot be laundered into
// printed material.
func (h *Handler) HandleQRCode(c *gin.Context) {
	code := c.Param("code")

	if _, err := h.resolver.Resolve(c.Request.Context(), code); err != nil {
		if errors.Is(err, services.ErrLinkNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Link not found"})
			return
		}
		h.logger.Error("Resolve failed", "code", code, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		return
	}

	png, err := services.GenerateQRCode(h.cfg.PublicBaseURL+"/l/"+code, 256)
	if err != nil {
		h.logger.Error("QR generation failed", "code", code, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate QR code"})
		return
	}

	c.Data(http.StatusOK, "image/png", png)
}
