package services

import (
	"context"
	"testing"
	"time"

	"github.com/jeanmiCORNEC/linkforge/internal/analytics"
	"github.com/jeanmiCORNEC/linkforge/internal/features"
	"github.com/jeanmiCORNEC/linkforge/internal/models"
	"github.com/jeanmiCORNEC/linkforge/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedClicks(t *testing.T, db *gorm.DB, now time.Time) models.TrackedLink {
	t.Helper()

	_, tracked := seedTrackedLink(t, db, true)

	for i, age := range []time.Duration{2 * time.Hour, 26 * time.Hour, 10 * 24 * time.Hour} {
		click := models.Click{
			TrackedLinkID: tracked.ID,
			IPAddress:     "203.0.113.9",
			VisitorHash:   VisitorHash("203.0.113.9", uaDesktop),
			Device:        "desktop",
			Browser:       "Chrome",
			CreatedAt:     now.Add(-age),
		}
		if i == 1 {
			click.VisitorHash = VisitorHash("203.0.113.10", uaDesktop)
		}
		require.NoError(t, db.Create(&click).Error)
	}

	return tracked
}

func TestAnalyticsService_Stats(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	allFeatures := features.ForPlan("pro")

	t.Run("windowed totals and deltas", func(t *testing.T) {
		db := newTestDB(t)
		seedClicks(t, db, now)

		svc := NewAnalyticsService(db)
		svc.now = func() time.Time { return now }

		resp, err := svc.Stats(ctx, repository.ClickScope{UserID: 1}, 7, nil, allFeatures)
		require.NoError(t, err)

		// Two clicks inside the 7-day window, the 10-day-old one only feeds
		// the previous window.
		assert.Equal(t, 2, resp.TotalClicks)
		assert.Equal(t, 2, resp.UniqueVisitors)
		assert.Equal(t, 100, resp.Delta.TotalClicks)
		assert.Equal(t, 2, resp.Devices["desktop"])
	})

	t.Run("free plan gets no deltas, heatmap or top lists", func(t *testing.T) {
		db := newTestDB(t)
		seedClicks(t, db, now)

		svc := NewAnalyticsService(db)
		svc.now = func() time.Time { return now }

		resp, err := svc.Stats(ctx, repository.ClickScope{UserID: 1}, 7,
			[]string{analytics.InsightSources, analytics.InsightHeatmap, analytics.InsightDays},
			features.ForPlan("free"))
		require.NoError(t, err)

		assert.Equal(t, analytics.Delta{}, resp.Delta)
		assert.Nil(t, resp.TopSources)
		assert.Nil(t, resp.TopDays)
		assert.Nil(t, resp.HourlyHeatmap)
		assert.Nil(t, resp.Conversions)
		// Base stats are always available.
		assert.Equal(t, 2, resp.TotalClicks)
	})

	t.Run("pro plan gets requested insights and conversions", func(t *testing.T) {
		db := newTestDB(t)
		tracked := seedClicks(t, db, now)

		conv := models.Conversion{
			UserID:        1,
			TrackedLinkID: tracked.ID,
			OrderID:       "ORD-1",
			Status:        "approved",
			Revenue:       80,
			Commission:    8,
			CreatedAt:     now.Add(-time.Hour),
		}
		require.NoError(t, db.Create(&conv).Error)

		svc := NewAnalyticsService(db)
		svc.now = func() time.Time { return now }

		resp, err := svc.Stats(ctx, repository.ClickScope{UserID: 1}, 7,
			[]string{analytics.InsightDays, analytics.InsightHeatmap}, allFeatures)
		require.NoError(t, err)

		assert.NotEmpty(t, resp.TopDays)
		assert.NotEmpty(t, resp.HourlyHeatmap)

		require.NotNil(t, resp.Conversions)
		assert.Equal(t, 1, resp.Conversions.Total)
		assert.Equal(t, float64(80), resp.Conversions.Revenue)
	})

	t.Run("scope excludes other owners", func(t *testing.T) {
		db := newTestDB(t)
		seedClicks(t, db, now)

		svc := NewAnalyticsService(db)
		svc.now = func() time.Time { return now }

		resp, err := svc.Stats(ctx, repository.ClickScope{UserID: 99}, 7, nil, allFeatures)
		require.NoError(t, err)
		assert.Zero(t, resp.TotalClicks)
	})
}

func TestAnalyticsService_ReconciledRows(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	db := newTestDB(t)
	tracked := seedClicks(t, db, now)

	conv := models.Conversion{
		UserID:        1,
		TrackedLinkID: tracked.ID,
		OrderID:       "ORD-1",
		Status:        "approved",
		Revenue:       80,
		CreatedAt:     now.Add(-time.Hour),
	}
	require.NoError(t, db.Create(&conv).Error)

	svc := NewAnalyticsService(db)
	svc.now = func() time.Time { return now }

	rows, err := svc.ReconciledRows(ctx, repository.ClickScope{UserID: 1},
		now.AddDate(0, 0, -7), now)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	matched := 0
	for _, row := range rows {
		if row.Status == analytics.StatusClickOnly {
			assert.Empty(t, row.OrderID)
		} else {
			matched++
			assert.Equal(t, "ORD-1", row.OrderID)
		}
	}
	assert.Equal(t, 1, matched)
}
