package models

import (
	"time"
)

// ConversionStatuses is the set of states a conversion can move through.
var ConversionStatuses = []string{"pending", "approved", "rejected", "void"}

// Conversion is an owner-scoped revenue event. OrderID is unique per owner
// and serves as the idempotent upsert key; a conversion may arrive before or
// after the click it will eventually be matched with.
type Conversion struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uint      `gorm:"not null;uniqueIndex:idx_conversions_user_order" json:"user_id"`
	TrackedLinkID uint      `gorm:"index" json:"tracked_link_id"`
	OrderID       string    `gorm:"size:64;not null;uniqueIndex:idx_conversions_user_order" json:"order_id"`
	Status        string    `gorm:"size:16;default:'pending'" json:"status"`
	Currency      string    `gorm:"size:3" json:"currency"`
	Revenue       float64   `gorm:"type:decimal(10,2)" json:"revenue"`
	Commission    float64   `gorm:"type:decimal(10,2)" json:"commission"`
	VisitorHash   string    `gorm:"size:64;index" json:"visitor_hash,omitempty"`
	CreatedAt     time.Time `gorm:"default:CURRENT_TIMESTAMP;index" json:"created_at"`
}

// ValidConversionStatus reports whether s is one of the allowed states.
func ValidConversionStatus(s string) bool {
	for _, status := range ConversionStatuses {
		if s == status {
			return true
		}
	}
	return false
}
