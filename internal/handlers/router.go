package handlers

import (
	"github.com/jeanmiCORNEC/linkforge/internal/services"

	"github.com/gin-gonic/gin"
)

func (h *Handler) SetupRouter(rateLimiter *services.IPRateLimiter) *gin.Engine {
	r := gin.Default()

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "healthy"})
	})

	// Public redirect surface. Rate limited; everything else on it must stay
	// cheap enough for campaign traffic spikes.
	public := r.Group("/l")
	if rateLimiter != nil {
		public.Use(h.RateLimitMiddleware(rateLimiter))
	}
	{
		public.GET("/:code", h.HandleRedirect)
		public.GET("/:code/qr", h.HandleQRCode)
	}

	// Gateway-scoped API.
	api := r.Group("/api/v1")
	api.Use(h.AccountScoped())
	{
		api.POST("/links", h.CreateLink)
		api.POST("/links/:id/toggle", h.ToggleLink)
		api.DELETE("/links/:id", h.DeleteLink)
		api.GET("/links/:id/analytics", h.LinkAnalytics)

		api.GET("/sources/:id/analytics", h.SourceAnalytics)
		api.GET("/campaigns/:id/analytics", h.CampaignAnalytics)
		api.GET("/analytics", h.AccountAnalytics)

		api.POST("/conversions", h.UpsertConversion)
		api.PATCH("/conversions/:id/status", h.UpdateConversionStatus)

		api.GET("/exports/reconciled", h.ExportReconciled)
	}

	return r
}
