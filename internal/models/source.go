package models

import (
	"time"
)

type Source struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;index" json:"user_id"`
	CampaignID *uint     `gorm:"index" json:"campaign_id,omitempty"`
	Name       string    `gorm:"size:255;not null" json:"name"`
	Platform   string    `gorm:"size:100" json:"platform"`
	CreatedAt  time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`

	Campaign *Campaign `gorm:"foreignKey:CampaignID" json:"campaign,omitempty"`
}
