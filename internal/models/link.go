package models

import (
	"time"

	"gorm.io/gorm"
)

type Link struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	UserID         uint           `gorm:"not null;index" json:"user_id"`
	Title          string         `gorm:"size:255;not null" json:"title"`
	DestinationURL string         `gorm:"not null;type:text" json:"destination_url"`
	Slug           string         `gorm:"size:36;uniqueIndex" json:"slug"`
	IsActive       bool           `gorm:"default:true;index" json:"is_active"`
	CreatedAt      time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`

	TrackedLinks []TrackedLink `gorm:"foreignKey:LinkID" json:"tracked_links,omitempty"`
}
