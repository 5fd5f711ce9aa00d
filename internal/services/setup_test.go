package services

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/jeanmiCORNEC/linkforge/internal/cache"
	"github.com/jeanmiCORNEC/linkforge/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.Link{},
		&models.TrackedLink{},
		&models.Source{},
		&models.Campaign{},
		&models.Click{},
		&models.Conversion{},
	)
	require.NoError(t, err)

	return db
}

func newTestStore(t *testing.T) (*miniredis.Miniredis, cache.Store) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return mr, cache.NewRedisStore(client)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// staticGeo returns the same location for every lookup.
type staticGeo struct {
	loc Location
}

func (g staticGeo) Lookup(_ context.Context, _ string) Location {
	return g.loc
}
