package handlers

import (
	"net/http"
	"strconv"

	"github.com/jeanmiCORNEC/linkforge/internal/features"
	"github.com/jeanmiCORNEC/linkforge/internal/services"

	"github.com/gin-gonic/gin"
)

const (
	headerAccountID   = "X-Account-ID"
	headerAccountPlan = "X-Account-Plan"

	ctxAccountID = "account_id"
	ctxFeatures  = "features"
)

// AccountScoped trusts the upstream gateway to authenticate and forward the
// account identity and plan as headers. Everything downstream reads the
// resolved id and capability set from the request context.
func (h *Handler) AccountScoped() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(headerAccountID)
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id == 0 {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid account"})
			c.Abort()
			return
		}

		c.Set(ctxAccountID, uint(id))
		c.Set(ctxFeatures, features.ForPlan(c.GetHeader(headerAccountPlan)))
		c.Next()
	}
}

func (h *Handler) RateLimitMiddleware(limiter *services.IPRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		l := limiter.GetLimiter(ip)
		if !l.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Rate limit exceeded. Please try again later.",
			})
			return
		}
		c.Next()
	}
}

func accountID(c *gin.Context) uint {
	return c.GetUint(ctxAccountID)
}

func accountFeatures(c *gin.Context) features.Scope {
	if v, ok := c.Get(ctxFeatures); ok {
		if fs, ok := v.(features.Scope); ok {
			return fs
		}
	}
	return features.Scope{}
}
