package repository

import (
	"testing"
	"time"

	"github.com/jeanmiCORNEC/linkforge/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))
	return db
}

type fixture struct {
	campaign models.Campaign
	source   models.Source
	link     models.Link
	tracked  models.TrackedLink
}

func seed(t *testing.T, db *gorm.DB, userID uint, key string) fixture {
	t.Helper()

	f := fixture{}

	f.campaign = models.Campaign{UserID: userID, Name: "Summer", Status: "active"}
	require.NoError(t, db.Create(&f.campaign).Error)

	f.source = models.Source{UserID: userID, CampaignID: &f.campaign.ID, Name: "Newsletter", Platform: "email"}
	require.NoError(t, db.Create(&f.source).Error)

	f.link = models.Link{UserID: userID, Title: "Promo", DestinationURL: "https://example.com", Slug: "slug-" + key, IsActive: true}
	require.NoError(t, db.Create(&f.link).Error)

	f.tracked = models.TrackedLink{UserID: userID, LinkID: f.link.ID, SourceID: &f.source.ID, TrackingKey: key, ShortCode: "sc-" + key}
	require.NoError(t, db.Create(&f.tracked).Error)

	return f
}

func TestClickRows(t *testing.T) {
	db := setupDB(t)
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	mine := seed(t, db, 1, "key-mine")
	other := seed(t, db, 2, "key-other")

	for i, tl := range []models.TrackedLink{mine.tracked, mine.tracked, other.tracked} {
		click := models.Click{
			TrackedLinkID: tl.ID,
			IPAddress:     "203.0.113.9",
			VisitorHash:   "hash",
			Device:        "mobile",
			Browser:       "Chrome",
			Country:       "DE",
			CreatedAt:     now.Add(-time.Duration(i+1) * time.Hour),
		}
		require.NoError(t, db.Create(&click).Error)
	}

	t.Run("denormalizes link, source and campaign", func(t *testing.T) {
		rows, err := ClickRows(db, ClickScope{UserID: 1}, now.AddDate(0, 0, -1), now)
		require.NoError(t, err)
		require.Len(t, rows, 2)

		row := rows[0]
		assert.Equal(t, mine.tracked.ID, row.TrackedLinkID)
		assert.Equal(t, "key-mine", row.TrackingKey)
		assert.Equal(t, mine.link.ID, row.LinkID)
		assert.Equal(t, "Promo", row.LinkTitle)
		assert.Equal(t, mine.source.ID, row.SourceID)
		assert.Equal(t, "Newsletter", row.SourceName)
		assert.Equal(t, "email", row.SourcePlatform)
		assert.Equal(t, mine.campaign.ID, row.CampaignID)
		assert.Equal(t, "Summer", row.CampaignName)

		// Ascending by click time.
		assert.True(t, rows[0].ClickedAt.Before(rows[1].ClickedAt) || rows[0].ClickedAt.Equal(rows[1].ClickedAt))
	})

	t.Run("window bounds exclude old clicks", func(t *testing.T) {
		rows, err := ClickRows(db, ClickScope{UserID: 1}, now.Add(-90*time.Minute), now)
		require.NoError(t, err)
		assert.Len(t, rows, 1)
	})

	t.Run("scope by link, source and campaign", func(t *testing.T) {
		since, until := now.AddDate(0, 0, -1), now

		rows, err := ClickRows(db, ClickScope{UserID: 1, LinkID: mine.link.ID}, since, until)
		require.NoError(t, err)
		assert.Len(t, rows, 2)

		rows, err = ClickRows(db, ClickScope{UserID: 1, SourceID: mine.source.ID}, since, until)
		require.NoError(t, err)
		assert.Len(t, rows, 2)

		rows, err = ClickRows(db, ClickScope{UserID: 1, CampaignID: mine.campaign.ID}, since, until)
		require.NoError(t, err)
		assert.Len(t, rows, 2)

		rows, err = ClickRows(db, ClickScope{UserID: 1, LinkID: other.link.ID}, since, until)
		require.NoError(t, err)
		assert.Empty(t, rows)
	})
}

func TestConversionRows(t *testing.T) {
	db := setupDB(t)
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	mine := seed(t, db, 1, "key-mine")
	seed(t, db, 2, "key-other")

	conv := models.Conversion{
		UserID:        1,
		TrackedLinkID: mine.tracked.ID,
		OrderID:       "ORD-1",
		Status:        "approved",
		Revenue:       100,
		Commission:    10,
		CreatedAt:     now.Add(-time.Hour),
	}
	require.NoError(t, db.Create(&conv).Error)

	orphan := models.Conversion{
		UserID:    1,
		OrderID:   "ORD-2",
		Status:    "pending",
		CreatedAt: now.Add(-2 * time.Hour),
	}
	require.NoError(t, db.Create(&orphan).Error)

	t.Run("account scope includes unattributed conversions", func(t *testing.T) {
		rows, err := ConversionRows(db, ClickScope{UserID: 1}, now.AddDate(0, 0, -1), now)
		require.NoError(t, err)
		assert.Len(t, rows, 2)
	})

	t.Run("link scope drops the orphan", func(t *testing.T) {
		rows, err := ConversionRows(db, ClickScope{UserID: 1, LinkID: mine.link.ID}, now.AddDate(0, 0, -1), now)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "ORD-1", rows[0].OrderID)
	})

	t.Run("other account invisible", func(t *testing.T) {
		rows, err := ConversionRows(db, ClickScope{UserID: 3}, now.AddDate(0, 0, -1), now)
		require.NoError(t, err)
		assert.Empty(t, rows)
	})
}
