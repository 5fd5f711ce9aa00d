package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/jeanmiCORNEC/linkforge/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrConversionNotFound = errors.New("conversion not found")

type UpsertConversionDTO struct {
	UserID        uint
	TrackedLinkID uint
	OrderID       string
	Status        string
	Currency      string
	Revenue       float64
	Commission    float64
	VisitorHash   string
}

type ConversionService struct {
	db *gorm.DB
}

func NewConversionService(db *gorm.DB) *ConversionService {
	return &ConversionService{db: db}
}

// Upsert records a conversion idempotently on (user_id, order_id): replays of
// the same order update the row in place instead of duplicating it.
func (s *ConversionService) Upsert(ctx context.Context, dto UpsertConversionDTO) (*models.Conversion, error) {
	if dto.OrderID == "" {
		return nil, fmt.Errorf("order id is required")
	}

	status := dto.Status
	if status == "" {
		status = "pending"
	}
	if !models.ValidConversionStatus(status) {
		return nil, fmt.Errorf("invalid conversion status: %s", status)
	}

	conversion := models.Conversion{
		UserID:        dto.UserID,
		TrackedLinkID: dto.TrackedLinkID,
		OrderID:       dto.OrderID,
		Status:        status,
		Currency:      dto.Currency,
		Revenue:       dto.Revenue,
		Commission:    dto.Commission,
		VisitorHash:   dto.VisitorHash,
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "order_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"tracked_link_id", "status", "currency", "revenue", "commission", "visitor_hash",
		}),
	}).Create(&conversion).Error
	if err != nil {
		return nil, err
	}

	// Read back so replayed upserts return the canonical row id.
	var stored models.Conversion
	if err := s.db.Where("user_id = ? AND order_id = ?", dto.UserID, dto.OrderID).First(&stored).Error; err != nil {
		return nil, err
	}

	return &stored, nil
}

// UpdateStatus moves an owned conversion to one of the allowed states.
func (s *ConversionService) UpdateStatus(ctx context.Context, userID, conversionID uint, status string) (*models.Conversion, error) {
	if !models.ValidConversionStatus(status) {
		return nil, fmt.Errorf("invalid conversion status: %s", status)
	}

	var conversion models.Conversion
	err := s.db.Where("id = ? AND user_id = ?", conversionID, userID).First(&conversion).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrConversionNotFound
	}
	if err != nil {
		return nil, err
	}

	conversion.Status = status
	if err := s.db.WithContext(ctx).Save(&conversion).Error; err != nil {
		return nil, err
	}

	return &conversion, nil
}
