package handlers

import (
	"log/slog"

	"github.com/jeanmiCORNEC/linkforge/internal/config"
	"github.com/jeanmiCORNEC/linkforge/internal/services"

	"gorm.io/gorm"
)

type Handler struct {
	cfg               config.Config
	logger            *slog.Logger
	db                *gorm.DB
	resolver          *services.ResolverService
	enrichment        *services.EnrichmentService
	analyticsService  *services.AnalyticsService
	linkService       *services.LinkService
	conversionService *services.ConversionService
}

func NewHandler(
	cfg config.Config,
	logger *slog.Logger,
	db *gorm.DB,
	resolver *services.ResolverService,
	enrichment *services.EnrichmentService,
	analyticsService *services.AnalyticsService,
	linkService *services.LinkService,
	conversionService *services.ConversionService,
) *Handler {
	return &Handler{
		cfg:               cfg,
		logger:            logger,
		db:                db,
		resolver:          resolver,
		enrichment:        enrichment,
		analyticsService:  analyticsService,
		linkService:       linkService,
		conversionService: conversionService,
	}
}
