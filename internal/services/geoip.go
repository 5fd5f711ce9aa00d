package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/netip"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"github.com/jeanmiCORNEC/linkforge/internal/cache"
	"github.com/jeanmiCORNEC/linkforge/internal/config"

	"github.com/oschwald/geoip2-golang"
	"github.com/oschwald/maxminddb-golang"
)

const geoCacheTTL = 24 * time.Hour

// Location is a geolocation lookup result. All fields empty means the IP was
// not resolvable (private, malformed, or the database is unavailable).
type Location struct {
	CountryCode string `json:"country_code,omitempty"`
	CountryName string `json:"country_name,omitempty"`
	City        string `json:"city,omitempty"`
}

// GeoLocator resolves an IP to a coarse location. Implementations never
// propagate failures to the caller; they degrade to an empty Location.
type GeoLocator interface {
	Lookup(ctx context.Context, ip string) Location
}

type geoReader interface {
	City(ip net.IP) (*geoip2.City, error)
	Metadata() maxminddb.Metadata
	Close() error
}

type GeoIPService struct {
	cfg       config.Config
	logger    *slog.Logger
	store     cache.Store
	geoReader geoReader
	geoLock   sync.RWMutex
}

func NewGeoIPService(cfg config.Config, logger *slog.Logger, store cache.Store) *GeoIPService {
	return &GeoIPService{
		cfg:    cfg,
		logger: logger,
		store:  store,
	}
}

func (s *GeoIPService) Init() {
	if s.cfg.MaxMindAccountID == "" || s.cfg.MaxMindLicenseKey == "" {
		s.logger.Warn("GeoIP: MaxMind credentials not set. Lookups will be disabled.")
		return
	}

	dbPath := s.cfg.MaxMindDBPath
	dbDir := filepath.Dir(dbPath)

	if err := os.MkdirAll(dbDir, 0755); err != nil {
		s.logger.Error("GeoIP: Failed to create directory", "dir", dbDir, "error", err)
		return
	}

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		s.logger.Info("GeoIP: Database missing, downloading...")
		if err := s.updateGeoDB(); err != nil {
			s.logger.Error("GeoIP: Initial download failed", "error", err)
		}
	}

	s.reloadReader(dbPath)
}

func (s *GeoIPService) StartUpdater(ctx context.Context) {
	if s.cfg.MaxMindAccountID == "" {
		return
	}

	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.logger.Info("GeoIP: Running scheduled update...")
			if err := s.updateGeoDB(); err != nil {
				s.logger.Error("GeoIP: Update failed", "error", err)
				continue
			}
			s.reloadReader(s.cfg.MaxMindDBPath)
		case <-ctx.Done():
			s.logger.Info("GeoIP: Updater stopping")
			return
		}
	}
}

func (s *GeoIPService) updateGeoDB() error {
	dbDir := filepath.Dir(s.cfg.MaxMindDBPath)
	confPath := filepath.Join(dbDir, "GeoIP.conf")

	content := fmt.Sprintf("AccountID %s\nLicenseKey %s\nEditionIDs %s\nDatabaseDirectory %s\n",
		s.cfg.MaxMindAccountID, s.cfg.MaxMindLicenseKey, s.cfg.MaxMindEditionIDs, dbDir)

	if err := os.WriteFile(confPath, []byte(content), 0600); err != nil {
		return fmt.Errorf("failed to write GeoIP.conf: %w", err)
	}
	defer os.Remove(confPath)

	cmd := exec.Command("geoipupdate", "-v", "-f", confPath, "-d", dbDir)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("geoipupdate failed: %w, output: %s", err, string(output))
	}

	s.logger.Info("GeoIP: Database updated successfully")
	return nil
}

func (s *GeoIPService) reloadReader(path string) {
	s.geoLock.Lock()
	defer s.geoLock.Unlock()

	if s.geoReader != nil {
		s.geoReader.Close()
	}

	reader, err := geoip2.Open(path)
	if err != nil {
		s.logger.Error("GeoIP: Failed to open database", "path", path, "error", err)
		return
	}
	s.geoReader = reader

	meta := reader.Metadata()
	s.logger.Info("GeoIP: Loaded database", "epoch", meta.BuildEpoch)
}

// Lookup resolves ip to a Location. Private, loopback, reserved and
// malformed addresses are never looked up; results for routable addresses are
// cached for 24 hours. Failures degrade to an empty Location.
func (s *GeoIPService) Lookup(ctx context.Context, ip string) Location {
	if !shouldLookup(ip) {
		return Location{}
	}

	if s.store == nil {
		return s.resolve(ip)
	}

	val, err := s.store.Remember(ctx, "geo:"+ip, geoCacheTTL, func() (string, error) {
		data, err := json.Marshal(s.resolve(ip))
		return string(data), err
	})
	if err != nil {
		s.logger.Warn("GeoIP: cache lookup failed", "ip", ip, "error", err)
		return s.resolve(ip)
	}

	var loc Location
	if err := json.Unmarshal([]byte(val), &loc); err != nil {
		s.logger.Warn("GeoIP: corrupt cache entry", "ip", ip, "error", err)
		return s.resolve(ip)
	}
	return loc
}

func (s *GeoIPService) resolve(ipStr string) Location {
	s.geoLock.RLock()
	reader := s.geoReader
	s.geoLock.RUnlock()

	if reader == nil {
		return Location{}
	}

	ip := net.ParseIP(ipStr)
	if ip == nil {
		return Location{}
	}

	record, err := reader.City(ip)
	if err != nil {
		s.logger.Error("GeoIP: Lookup error", "ip", ipStr, "error", err)
		return Location{}
	}

	loc := Location{
		CountryCode: record.Country.IsoCode,
		City:        record.City.Names["en"],
	}
	if name, ok := record.Country.Names["en"]; ok {
		loc.CountryName = name
	}

	return loc
}

// shouldLookup filters out addresses that can never geolocate: malformed,
// loopback, private ranges, link-local and multicast.
func shouldLookup(ip string) bool {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}

	if addr.IsLoopback() || addr.IsPrivate() || addr.IsUnspecified() {
		return false
	}
	if addr.IsLinkLocalUnicast() || addr.IsLinkLocalMulticast() || addr.IsMulticast() {
		return false
	}

	return true
}
