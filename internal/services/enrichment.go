package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/jeanmiCORNEC/linkforge/internal/models"

	"github.com/mssola/user_agent"
	"gorm.io/gorm"
)

// ClickTask carries the raw identifying fields of an admitted visit from the
// redirect path to the async enrichment workers.
type ClickTask struct {
	TrackedLinkID uint
	IP            string
	UserAgent     string
	Referrer      string
	OccurredAt    time.Time
}

// EnrichmentService consumes click tasks asynchronously: device/browser/os
// classification, visitor fingerprint, geolocation, then one immutable Click
// row. Every stage is best-effort; a failed click is logged and dropped, it
// never blocks the redirect path.
type EnrichmentService struct {
	db      *gorm.DB
	logger  *slog.Logger
	geo     GeoLocator
	tasks   chan ClickTask
	workers int
}

func NewEnrichmentService(db *gorm.DB, logger *slog.Logger, geo GeoLocator, queueSize, workers int) *EnrichmentService {
	if queueSize <= 0 {
		queueSize = 1000
	}
	if workers <= 0 {
		workers = 1
	}
	return &EnrichmentService{
		db:      db,
		logger:  logger,
		geo:     geo,
		tasks:   make(chan ClickTask, queueSize),
		workers: workers,
	}
}

// Start drains the queue until ctx is cancelled.
func (s *EnrichmentService) Start(ctx context.Context) {
	s.logger.Info("Enrichment workers starting", "workers", s.workers)

	var wg sync.WaitGroup
	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case task := <-s.tasks:
					s.process(ctx, task)
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	wg.Wait()
	s.logger.Info("Enrichment workers stopped")
}

// Submit enqueues a task without ever blocking. A full queue drops the click
// with a log entry; the redirect already went out.
func (s *EnrichmentService) Submit(task ClickTask) {
	select {
	case s.tasks <- task:
	default:
		s.logger.Warn("Enrichment queue full, dropping click", "tracked_link_id", task.TrackedLinkID)
	}
}

func (s *EnrichmentService) process(ctx context.Context, task ClickTask) {
	click := s.buildClick(ctx, task)

	if err := s.db.Create(&click).Error; err != nil {
		// Best-effort telemetry: no retry, no dead-letter.
		s.logger.Error("Failed to persist click", "tracked_link_id", task.TrackedLinkID, "error", err)
	}
}

func (s *EnrichmentService) buildClick(ctx context.Context, task ClickTask) models.Click {
	occurredAt := task.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now()
	}

	click := models.Click{
		TrackedLinkID: task.TrackedLinkID,
		IPAddress:     task.IP,
		UserAgent:     task.UserAgent,
		Referrer:      task.Referrer,
		Device:        ClassifyDevice(task.UserAgent),
		Browser:       ClassifyBrowser(task.UserAgent),
		OS:            parseOS(task.UserAgent),
		VisitorHash:   VisitorHash(task.IP, task.UserAgent),
		CreatedAt:     occurredAt,
	}

	loc := s.geo.Lookup(ctx, task.IP)
	if loc.CountryCode != "" {
		click.Country = loc.CountryCode
	} else {
		click.Country = loc.CountryName
	}
	click.City = loc.City

	return click
}

// ClassifyDevice buckets a user agent into mobile, tablet or desktop.
func ClassifyDevice(userAgent string) string {
	ua := strings.ToLower(userAgent)

	if strings.Contains(ua, "iphone") || (strings.Contains(ua, "android") && strings.Contains(ua, "mobile")) {
		return "mobile"
	}

	if strings.Contains(ua, "ipad") || strings.Contains(ua, "tablet") {
		return "tablet"
	}

	return "desktop"
}

// ClassifyBrowser picks the browser family. Evaluation order matters: many
// user agents carry several vendor tokens.
func ClassifyBrowser(userAgent string) string {
	ua := strings.ToLower(userAgent)

	if strings.Contains(ua, "chrome") {
		return "Chrome"
	}

	if strings.Contains(ua, "firefox") {
		return "Firefox"
	}

	if strings.Contains(ua, "safari") && !strings.Contains(ua, "chrome") {
		return "Safari"
	}

	if strings.Contains(ua, "edg") {
		return "Edge"
	}

	return "Other"
}

// VisitorHash is the deterministic unique-visitor proxy: an unsalted one-way
// hash of IP and user agent. Identical pairs always fingerprint identically.
func VisitorHash(ip, userAgent string) string {
	sum := sha256.Sum256([]byte(ip + "|" + userAgent))
	return hex.EncodeToString(sum[:])
}

func parseOS(userAgent string) string {
	if userAgent == "" {
		return ""
	}
	return user_agent.New(userAgent).OS()
}
