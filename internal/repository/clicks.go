package repository

import (
	"time"

	"github.com/jeanmiCORNEC/linkforge/internal/analytics"

	"gorm.io/gorm"
)

// ClickScope narrows click/conversion fetches to one owner and optionally one
// link, source or campaign. Zero fields mean "no filter"; scoping is resolved
// here so the analytics engine only ever sees flat rows.
type ClickScope struct {
	UserID     uint
	LinkID     uint
	SourceID   uint
	CampaignID uint
}

// ClickRows fetches the denormalized click rows for a scope within
// [since, until], ascending by click time.
func ClickRows(db *gorm.DB, scope ClickScope, since, until time.Time) ([]analytics.ClickRow, error) {
	query := db.Table("clicks").
		Select(`clicks.id as click_id,
			clicks.tracked_link_id,
			tracked_links.tracking_key,
			clicks.ip_address,
			clicks.visitor_hash,
			clicks.device,
			clicks.browser,
			clicks.os,
			clicks.country,
			clicks.city,
			clicks.referrer,
			clicks.created_at as clicked_at,
			links.id as link_id,
			links.title as link_title,
			links.destination_url as link_destination,
			sources.id as source_id,
			sources.name as source_name,
			sources.platform as source_platform,
			campaigns.id as campaign_id,
			campaigns.name as campaign_name`).
		Joins("JOIN tracked_links ON tracked_links.id = clicks.tracked_link_id").
		Joins("LEFT JOIN links ON links.id = tracked_links.link_id").
		Joins("LEFT JOIN sources ON sources.id = tracked_links.source_id").
		Joins("LEFT JOIN campaigns ON campaigns.id = sources.campaign_id").
		Where("clicks.created_at >= ? AND clicks.created_at <= ?", since, until)

	query = applyScope(query, scope)

	var rows []analytics.ClickRow
	if err := query.Order("clicks.created_at asc").Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ConversionRows fetches the conversion side of a scope within [since, until].
func ConversionRows(db *gorm.DB, scope ClickScope, since, until time.Time) ([]analytics.ConversionRow, error) {
	query := db.Table("conversions").
		Select(`conversions.id as conversion_id,
			conversions.tracked_link_id,
			conversions.order_id,
			conversions.status,
			conversions.currency,
			conversions.revenue,
			conversions.commission,
			conversions.visitor_hash,
			conversions.created_at`).
		Joins("LEFT JOIN tracked_links ON tracked_links.id = conversions.tracked_link_id").
		Joins("LEFT JOIN sources ON sources.id = tracked_links.source_id").
		Where("conversions.created_at >= ? AND conversions.created_at <= ?", since, until)

	if scope.UserID != 0 {
		query = query.Where("conversions.user_id = ?", scope.UserID)
	}
	if scope.LinkID != 0 {
		query = query.Where("tracked_links.link_id = ?", scope.LinkID)
	}
	if scope.SourceID != 0 {
		query = query.Where("tracked_links.source_id = ?", scope.SourceID)
	}
	if scope.CampaignID != 0 {
		query = query.Where("sources.campaign_id = ?", scope.CampaignID)
	}

	var rows []analytics.ConversionRow
	if err := query.Order("conversions.created_at asc").Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func applyScope(query *gorm.DB, scope ClickScope) *gorm.DB {
	if scope.UserID != 0 {
		query = query.Where("tracked_links.user_id = ?", scope.UserID)
	}
	if scope.LinkID != 0 {
		query = query.Where("tracked_links.link_id = ?", scope.LinkID)
	}
	if scope.SourceID != 0 {
		query = query.Where("tracked_links.source_id = ?", scope.SourceID)
	}
	if scope.CampaignID != 0 {
		query = query.Where("sources.campaign_id = ?", scope.CampaignID)
	}
	return query
}
