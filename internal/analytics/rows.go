package analytics

import (
	"time"
)

// ClickRow is one click event, already scoped and denormalized by the caller
// (see repository.ClickRows). The engine never touches the database.
type ClickRow struct {
	ClickID         uint      `json:"click_id"`
	TrackedLinkID   uint      `json:"tracked_link_id"`
	TrackingKey     string    `json:"tracking_key"`
	IPAddress       string    `json:"ip_address"`
	VisitorHash     string    `json:"visitor_hash"`
	Device          string    `json:"device"`
	Browser         string    `json:"browser"`
	OS              string    `json:"os"`
	Country         string    `json:"country"`
	City            string    `json:"city"`
	Referrer        string    `json:"referrer"`
	ClickedAt       time.Time `json:"clicked_at"`
	LinkID          uint      `json:"link_id"`
	LinkTitle       string    `json:"link_title"`
	LinkDestination string    `json:"link_destination"`
	SourceID        uint      `json:"source_id"`
	SourceName      string    `json:"source_name"`
	SourcePlatform  string    `json:"source_platform"`
	CampaignID      uint      `json:"campaign_id"`
	CampaignName    string    `json:"campaign_name"`
}

// ConversionRow is the conversion-side input of the reconciler.
type ConversionRow struct {
	ConversionID  uint      `json:"conversion_id"`
	TrackedLinkID uint      `json:"tracked_link_id"`
	OrderID       string    `json:"order_id"`
	Status        string    `json:"status"`
	Currency      string    `json:"currency"`
	Revenue       float64   `json:"revenue"`
	Commission    float64   `json:"commission"`
	VisitorHash   string    `json:"visitor_hash"`
	CreatedAt     time.Time `json:"created_at"`
}
