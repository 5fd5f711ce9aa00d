package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jeanmiCORNEC/linkforge/internal/analytics"
	"github.com/jeanmiCORNEC/linkforge/internal/repository"

	"github.com/gin-gonic/gin"
)

const rawLogLimit = 100

var allInsights = []string{
	analytics.InsightSources,
	analytics.InsightLinks,
	analytics.InsightDays,
	analytics.InsightHeatmap,
}

func (h *Handler) LinkAnalytics(c *gin.Context) {
	linkID, ok := pathID(c)
	if !ok {
		return
	}
	h.serveAnalytics(c, repository.ClickScope{UserID: accountID(c), LinkID: linkID})
}

func (h *Handler) SourceAnalytics(c *gin.Context) {
	sourceID, ok := pathID(c)
	if !ok {
		return
	}
	h.serveAnalytics(c, repository.ClickScope{UserID: accountID(c), SourceID: sourceID})
}

func (h *Handler) CampaignAnalytics(c *gin.Context) {
	campaignID, ok := pathID(c)
	if !ok {
		return
	}
	h.serveAnalytics(c, repository.ClickScope{UserID: accountID(c), CampaignID: campaignID})
}

func (h *Handler) AccountAnalytics(c *gin.Context) {
	h.serveAnalytics(c, repository.ClickScope{UserID: accountID(c)})
}

func (h *Handler) serveAnalytics(c *gin.Context, scope repository.ClickScope) {
	fs := accountFeatures(c)
	days := queryDays(c)

	stats, err := h.analyticsService.Stats(c.Request.Context(), scope, days, queryInsights(c), fs)
	if err != nil {
		h.logger.Error("Analytics query failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute analytics"})
		return
	}

	resp := gin.H{"stats": stats}

	// The raw click log rides along on explicit request only; it can dwarf
	// the aggregate payload.
	if fs.RawLog && c.Query("raw") == "true" {
		now := time.Now()
		rows, err := repository.ClickRows(h.db, scope, now.AddDate(0, 0, -analytics.ClampDays(days)), now)
		if err != nil {
			h.logger.Error("Raw click fetch failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch clicks"})
			return
		}
		if len(rows) > rawLogLimit {
			rows = rows[len(rows)-rawLogLimit:]
		}
		resp["clicks"] = rows
	}

	c.JSON(http.StatusOK, resp)
}

func queryDays(c *gin.Context) int {
	days, err := strconv.Atoi(c.DefaultQuery("days", "7"))
	if err != nil {
		return analytics.DefaultDays
	}
	return analytics.ClampDays(days)
}

// queryInsights parses the comma-separated insights parameter; absence means
// everything, subject to plan gating downstream.
func queryInsights(c *gin.Context) []string {
	raw := c.Query("insights")
	if raw == "" {
		return allInsights
	}

	out := make([]string, 0, 4)
	for _, name := range strings.Split(raw, ",") {
		name = strings.TrimSpace(name)
		if name != "" {
			out = append(out, name)
		}
	}
	return out
}
