package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jeanmiCORNEC/linkforge/internal/models"
	"github.com/jeanmiCORNEC/linkforge/pkg/shortcode"
	"github.com/jeanmiCORNEC/linkforge/pkg/utils"

	"gorm.io/gorm"
)

const trackingKeyLength = 10

type CreateLinkDTO struct {
	UserID         uint
	Title          string
	DestinationURL string
	SourceID       *uint
}

// LinkService owns the tracked-link lifecycle. Every mutation of a link goes
// through here so the resolve cache is invalidated for all affected codes.
type LinkService struct {
	db       *gorm.DB
	resolver *ResolverService
	logger   *slog.Logger
}

func NewLinkService(db *gorm.DB, resolver *ResolverService, logger *slog.Logger) *LinkService {
	return &LinkService{
		db:       db,
		resolver: resolver,
		logger:   logger,
	}
}

// CreateLink persists a link plus its default tracked link. The short code
// depends on the tracked link's own id, so creation is a two-step sequence
// inside one transaction: insert, read back the id, derive the code, patch.
func (s *LinkService) CreateLink(ctx context.Context, dto CreateLinkDTO) (*models.TrackedLink, error) {
	var tracked models.TrackedLink

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		link := models.Link{
			UserID:         dto.UserID,
			Title:          dto.Title,
			DestinationURL: dto.DestinationURL,
			Slug:           utils.GenerateSlug(),
			IsActive:       true,
		}
		if err := tx.Create(&link).Error; err != nil {
			return err
		}

		tracked = models.TrackedLink{
			UserID:      dto.UserID,
			LinkID:      link.ID,
			SourceID:    dto.SourceID,
			TrackingKey: utils.GenerateTrackingKey(trackingKeyLength),
		}
		if err := tx.Create(&tracked).Error; err != nil {
			return err
		}

		tracked.ShortCode = shortcode.Encode(int64(tracked.ID))
		if err := tx.Model(&models.TrackedLink{}).Where("id = ?", tracked.ID).
			Update("short_code", tracked.ShortCode).Error; err != nil {
			return err
		}

		tracked.Link = &link
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &tracked, nil
}

// ToggleLink flips the active flag and invalidates every code pointing at
// the link.
func (s *LinkService) ToggleLink(ctx context.Context, userID, linkID uint) (*models.Link, error) {
	link, err := s.ownedLink(userID, linkID)
	if err != nil {
		return nil, err
	}

	link.IsActive = !link.IsActive
	if err := s.db.WithContext(ctx).Save(link).Error; err != nil {
		return nil, err
	}

	s.invalidateLink(ctx, link.ID)
	return link, nil
}

// DeleteLink soft-deletes the link. Its tracked links stay in place so
// historical clicks keep their associations; the codes just stop resolving.
func (s *LinkService) DeleteLink(ctx context.Context, userID, linkID uint) error {
	link, err := s.ownedLink(userID, linkID)
	if err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Delete(link).Error; err != nil {
		return err
	}

	s.invalidateLink(ctx, link.ID)
	return nil
}

func (s *LinkService) ownedLink(userID, linkID uint) (*models.Link, error) {
	var link models.Link
	err := s.db.Where("id = ? AND user_id = ?", linkID, userID).First(&link).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrLinkNotFound
	}
	if err != nil {
		return nil, err
	}
	return &link, nil
}

func (s *LinkService) invalidateLink(ctx context.Context, linkID uint) {
	var trackedLinks []models.TrackedLink
	if err := s.db.Where("link_id = ?", linkID).Find(&trackedLinks).Error; err != nil {
		s.logger.Warn("Failed to load tracked links for invalidation", "link_id", linkID, "error", err)
		return
	}
	s.resolver.Invalidate(ctx, trackedLinks)
}
