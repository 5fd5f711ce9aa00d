package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jeanmiCORNEC/linkforge/internal/cache"
	"github.com/jeanmiCORNEC/linkforge/internal/config"
	"github.com/jeanmiCORNEC/linkforge/internal/models"
	"github.com/jeanmiCORNEC/linkforge/internal/services"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testEnv struct {
	handler    *Handler
	router     *gin.Engine
	db         *gorm.DB
	mr         *miniredis.Miniredis
	links      *services.LinkService
	enrichment *services.EnrichmentService
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Link{},
		&models.TrackedLink{},
		&models.Source{},
		&models.Campaign{},
		&models.Click{},
		&models.Conversion{},
	))

	mr := miniredis.RunT(t)
	store := cache.NewRedisStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := config.Config{PublicBaseURL: "http://sho.rt"}

	resolver := services.NewResolverService(db, store, logger)
	geo := services.NewGeoIPService(cfg, logger, store)
	enrichment := services.NewEnrichmentService(db, logger, geo, 100, 1)
	analyticsService := services.NewAnalyticsService(db)
	linkService := services.NewLinkService(db, resolver, logger)
	conversionService := services.NewConversionService(db)

	h := NewHandler(cfg, logger, db, resolver, enrichment, analyticsService, linkService, conversionService)

	return &testEnv{
		handler:    h,
		router:     h.SetupRouter(nil),
		db:         db,
		mr:         mr,
		links:      linkService,
		enrichment: enrichment,
	}
}

func (e *testEnv) request(t *testing.T, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func proHeaders() map[string]string {
	return map[string]string{"X-Account-ID": "1", "X-Account-Plan": "pro"}
}

func freeHeaders() map[string]string {
	return map[string]string{"X-Account-ID": "1", "X-Account-Plan": "free"}
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}
