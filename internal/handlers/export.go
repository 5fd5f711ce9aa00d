package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/jeanmiCORNEC/linkforge/internal/repository"

	"github.com/gin-gonic/gin"
)

const exportDefaultDays = 30

// ExportReconciled returns the click-to-conversion audit rows for a date
// range. Plans without export access get a flat 403; the data exists either
// way, the capability is what is being sold.
func (h *Handler) ExportReconciled(c *gin.Context) {
	fs := accountFeatures(c)
	if !fs.Exports {
		c.JSON(http.StatusForbidden, gin.H{"error": "Exports are not available on this plan"})
		return
	}

	since, until, ok := exportRange(c)
	if !ok {
		return
	}

	scope := repository.ClickScope{UserID: accountID(c)}
	if linkID, ok := queryID(c, "link_id"); ok {
		scope.LinkID = linkID
	}
	if sourceID, ok := queryID(c, "source_id"); ok {
		scope.SourceID = sourceID
	}

	rows, err := h.analyticsService.ReconciledRows(c.Request.Context(), scope, since, until)
	if err != nil {
		h.logger.Error("Reconciliation export failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build export"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"since": since.Format("2006-01-02"),
		"until": until.Format("2006-01-02"),
		"total": len(rows),
		"rows":  rows,
	})
}

// exportRange parses since/until (YYYY-MM-DD, inclusive), defaulting to the
// trailing 30 days. The until day is extended to its last instant.
func exportRange(c *gin.Context) (time.Time, time.Time, bool) {
	now := time.Now()
	since := now.AddDate(0, 0, -exportDefaultDays)
	until := now

	if raw := c.Query("since"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid since date"})
			return time.Time{}, time.Time{}, false
		}
		since = parsed
	}

	if raw := c.Query("until"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid until date"})
			return time.Time{}, time.Time{}, false
		}
		until = parsed.Add(24*time.Hour - time.Nanosecond)
	}

	if until.Before(since) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "until precedes since"})
		return time.Time{}, time.Time{}, false
	}

	return since, until, true
}

func queryID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Query(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
