package models

import (
	"time"
)

// TrackedLink binds an owner, a destination link and an optional source to
// the public-facing codes. TrackingKey is assigned at creation; ShortCode is
// derived from the row id right after insert and never changes afterwards.
type TrackedLink struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	LinkID      uint      `gorm:"not null;index" json:"link_id"`
	SourceID    *uint     `gorm:"index" json:"source_id,omitempty"`
	TrackingKey string    `gorm:"uniqueIndex;not null;size:32" json:"tracking_key"`
	ShortCode   string    `gorm:"uniqueIndex;size:20" json:"short_code"`
	CreatedAt   time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`

	Link   *Link   `gorm:"foreignKey:LinkID" json:"link,omitempty"`
	Source *Source `gorm:"foreignKey:SourceID" json:"source,omitempty"`

	Clicks []Click `gorm:"foreignKey:TrackedLinkID" json:"clicks,omitempty"`
}
