package handlers

import (
	"errors"
	"net/http"

	"github.com/jeanmiCORNEC/linkforge/internal/services"

	"github.com/gin-gonic/gin"
)

type upsertConversionRequest struct {
	TrackedLinkID uint    `json:"tracked_link_id"`
	OrderID       string  `json:"order_id" binding:"required"`
	Status        string  `json:"status"`
	Currency      string  `json:"currency"`
	Revenue       float64 `json:"revenue"`
	Commission    float64 `json:"commission"`
	VisitorHash   string  `json:"visitor_hash"`
}

// UpsertConversion ingests a conversion event. Replays of the same order id
// for the account update the stored row, so postback retries are harmless.
func (h *Handler) UpsertConversion(c *gin.Context) {
	var req upsertConversionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	conversion, err := h.conversionService.Upsert(c.Request.Context(), services.UpsertConversionDTO{
		UserID:        accountID(c),
		TrackedLinkID: req.TrackedLinkID,
		OrderID:       req.OrderID,
		Status:        req.Status,
		Currency:      req.Currency,
		Revenue:       req.Revenue,
		Commission:    req.Commission,
		VisitorHash:   req.VisitorHash,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"conversion": conversion})
}

type updateConversionStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *Handler) UpdateConversionStatus(c *gin.Context) {
	conversionID, ok := pathID(c)
	if !ok {
		return
	}

	var req updateConversionStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	conversion, err := h.conversionService.UpdateStatus(c.Request.Context(), accountID(c), conversionID, req.Status)
	if err != nil {
		if errors.Is(err, services.ErrConversionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Conversion not found"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"conversion": conversion})
}
