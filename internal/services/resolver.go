package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/jeanmiCORNEC/linkforge/internal/cache"
	"github.com/jeanmiCORNEC/linkforge/internal/models"

	"gorm.io/gorm"
)

const (
	resolveCacheTTL = 24 * time.Hour
	spamCooldown    = 5 * time.Minute
)

// ErrLinkNotFound covers every unresolvable code: unknown, soft-deleted and
// inactive links all surface identically so a prober cannot tell them apart.
var ErrLinkNotFound = errors.New("link not found")

var botFragments = []string{
	"bot",
	"crawler",
	"crawl",
	"spider",
	"slurp",
	"facebookexternalhit",
	"pingdom",
	"discordbot",
	"twitterbot",
	"whatsapp",
}

// ResolvedLink is the cached product of a code lookup.
type ResolvedLink struct {
	TrackedLinkID  uint   `json:"tracked_link_id"`
	UserID         uint   `json:"user_id"`
	TrackingKey    string `json:"tracking_key"`
	ShortCode      string `json:"short_code"`
	DestinationURL string `json:"destination_url"`
}

type ResolverService struct {
	db     *gorm.DB
	store  cache.Store
	logger *slog.Logger
}

func NewResolverService(db *gorm.DB, store cache.Store, logger *slog.Logger) *ResolverService {
	return &ResolverService{
		db:     db,
		store:  store,
		logger: logger,
	}
}

// Resolve maps an inbound code to its tracked link and destination through a
// read-through cache. Short codes win over tracking keys when both could
// match. Only live, active links resolve.
func (s *ResolverService) Resolve(ctx context.Context, code string) (ResolvedLink, error) {
	if s.store != nil {
		if val, err := s.store.Get(ctx, resolveKey(code)); err == nil {
			var resolved ResolvedLink
			if err := json.Unmarshal([]byte(val), &resolved); err == nil {
				return resolved, nil
			}
		}
	}

	resolved, err := s.resolveFromDB(code)
	if err != nil {
		return ResolvedLink{}, err
	}

	if s.store != nil {
		if data, err := json.Marshal(resolved); err == nil {
			if err := s.store.Set(ctx, resolveKey(code), string(data), resolveCacheTTL); err != nil {
				s.logger.Warn("Failed to cache resolved link", "code", code, "error", err)
			}
		}
	}

	return resolved, nil
}

func (s *ResolverService) resolveFromDB(code string) (ResolvedLink, error) {
	var tracked models.TrackedLink
	err := s.db.Where("short_code = ?", code).First(&tracked).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = s.db.Where("tracking_key = ?", code).First(&tracked).Error
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ResolvedLink{}, ErrLinkNotFound
		}
		return ResolvedLink{}, err
	}

	// The default gorm scope hides soft-deleted links, so a trashed link
	// falls out here exactly like a missing one.
	var link models.Link
	if err := s.db.First(&link, tracked.LinkID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ResolvedLink{}, ErrLinkNotFound
		}
		return ResolvedLink{}, err
	}

	if !link.IsActive {
		return ResolvedLink{}, ErrLinkNotFound
	}

	return ResolvedLink{
		TrackedLinkID:  tracked.ID,
		UserID:         tracked.UserID,
		TrackingKey:    tracked.TrackingKey,
		ShortCode:      tracked.ShortCode,
		DestinationURL: link.DestinationURL,
	}, nil
}

// Invalidate drops every cached code that could resolve to the given tracked
// links. Must be called on any mutation of the underlying link; the resolve
// cache is not write-through.
func (s *ResolverService) Invalidate(ctx context.Context, trackedLinks []models.TrackedLink) {
	if s.store == nil {
		return
	}

	keys := make([]string, 0, len(trackedLinks)*2)
	for _, tl := range trackedLinks {
		if tl.ShortCode != "" {
			keys = append(keys, resolveKey(tl.ShortCode))
		}
		if tl.TrackingKey != "" {
			keys = append(keys, resolveKey(tl.TrackingKey))
		}
	}

	if err := s.store.Forget(ctx, keys...); err != nil {
		s.logger.Warn("Failed to invalidate resolve cache", "error", err)
	}
}

// Admit decides whether this visit is worth logging at all. The cooldown
// marker is written atomically before the caller enqueues any enrichment
// task, so two near-simultaneous duplicates cannot both pass. Cache backend
// failures fail open: the visit is admitted.
func (s *ResolverService) Admit(ctx context.Context, trackedLinkID uint, ip, userAgent string) bool {
	if userAgent == "" {
		return false
	}

	if IsBotUserAgent(userAgent) {
		return false
	}

	if s.store == nil {
		return true
	}

	key := fmt.Sprintf("spam:%d:%s", trackedLinkID, ip)
	ok, err := s.store.Add(ctx, key, "1", spamCooldown)
	if err != nil {
		s.logger.Warn("Cooldown check failed, admitting click", "error", err)
		return true
	}

	return ok
}

// IsBotUserAgent does very basic bot detection over user-agent fragments.
func IsBotUserAgent(userAgent string) bool {
	ua := strings.ToLower(userAgent)
	for _, fragment := range botFragments {
		if strings.Contains(ua, fragment) {
			return true
		}
	}
	return false
}

// MergeQueryParams merges inbound query parameters onto the destination URL.
// Existing query string and fragment are preserved; inbound values win on key
// collision.
func MergeQueryParams(destination string, inbound url.Values) string {
	if len(inbound) == 0 {
		return destination
	}

	u, err := url.Parse(destination)
	if err != nil {
		return destination
	}

	merged := u.Query()
	for key, values := range inbound {
		merged[key] = values
	}
	u.RawQuery = merged.Encode()

	return u.String()
}

func resolveKey(code string) string {
	return "resolve:" + code
}
