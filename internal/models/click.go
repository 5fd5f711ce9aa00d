package models

import (
	"time"
)

// Click is an append-only visit event. Rows are never updated or deleted
// once written.
type Click struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	TrackedLinkID uint      `gorm:"not null;index" json:"tracked_link_id"`
	IPAddress     string    `gorm:"size:45" json:"ip_address,omitempty"`
	UserAgent     string    `gorm:"size:512" json:"user_agent,omitempty"`
	Referrer      string    `gorm:"size:512" json:"referrer,omitempty"`
	Device        string    `gorm:"size:20" json:"device"`
	Browser       string    `gorm:"size:50" json:"browser"`
	OS            string    `gorm:"size:100" json:"os"`
	VisitorHash   string    `gorm:"size:64;index" json:"visitor_hash"`
	Country       string    `gorm:"size:100" json:"country"`
	City          string    `gorm:"size:100" json:"city"`
	CreatedAt     time.Time `gorm:"default:CURRENT_TIMESTAMP;index" json:"created_at"`
}
