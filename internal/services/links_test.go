package services

import (
	"context"
	"testing"

	"github.com/jeanmiCORNEC/linkforge/internal/models"
	"github.com/jeanmiCORNEC/linkforge/pkg/shortcode"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinkService_CreateLink(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	_, store := newTestStore(t)
	resolver := NewResolverService(db, store, testLogger())
	svc := NewLinkService(db, resolver, testLogger())

	tracked, err := svc.CreateLink(ctx, CreateLinkDTO{
		UserID:         1,
		Title:          "Spring sale",
		DestinationURL: "https://shop.example.com/sale",
	})
	require.NoError(t, err)

	assert.NotZero(t, tracked.ID)
	assert.Len(t, tracked.TrackingKey, trackingKeyLength)
	assert.Equal(t, shortcode.Encode(int64(tracked.ID)), tracked.ShortCode)

	require.NotNil(t, tracked.Link)
	assert.True(t, tracked.Link.IsActive)
	assert.NotEmpty(t, tracked.Link.Slug)

	// The patched short code must actually be on disk, not just in memory.
	var stored models.TrackedLink
	require.NoError(t, db.First(&stored, tracked.ID).Error)
	assert.Equal(t, tracked.ShortCode, stored.ShortCode)

	// And the new codes resolve immediately.
	resolved, err := resolver.Resolve(ctx, tracked.ShortCode)
	require.NoError(t, err)
	assert.Equal(t, "https://shop.example.com/sale", resolved.DestinationURL)
}

func TestLinkService_ToggleLink(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	mr, store := newTestStore(t)
	resolver := NewResolverService(db, store, testLogger())
	svc := NewLinkService(db, resolver, testLogger())

	tracked, err := svc.CreateLink(ctx, CreateLinkDTO{
		UserID:         1,
		Title:          "Toggle me",
		DestinationURL: "https://example.com",
	})
	require.NoError(t, err)

	// Warm the cache, then deactivate: the cached entry has to go.
	_, err = resolver.Resolve(ctx, tracked.ShortCode)
	require.NoError(t, err)
	require.True(t, mr.Exists("resolve:"+tracked.ShortCode))

	link, err := svc.ToggleLink(ctx, 1, tracked.LinkID)
	require.NoError(t, err)
	assert.False(t, link.IsActive)
	assert.False(t, mr.Exists("resolve:"+tracked.ShortCode))

	_, err = resolver.Resolve(ctx, tracked.ShortCode)
	assert.ErrorIs(t, err, ErrLinkNotFound)

	// Toggle back on.
	link, err = svc.ToggleLink(ctx, 1, tracked.LinkID)
	require.NoError(t, err)
	assert.True(t, link.IsActive)

	_, err = resolver.Resolve(ctx, tracked.ShortCode)
	assert.NoError(t, err)
}

func TestLinkService_DeleteLink(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	mr, store := newTestStore(t)
	resolver := NewResolverService(db, store, testLogger())
	svc := NewLinkService(db, resolver, testLogger())

	tracked, err := svc.CreateLink(ctx, CreateLinkDTO{
		UserID:         1,
		Title:          "Delete me",
		DestinationURL: "https://example.com",
	})
	require.NoError(t, err)

	_, err = resolver.Resolve(ctx, tracked.ShortCode)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteLink(ctx, 1, tracked.LinkID))
	assert.False(t, mr.Exists("resolve:"+tracked.ShortCode))

	_, err = resolver.Resolve(ctx, tracked.ShortCode)
	assert.ErrorIs(t, err, ErrLinkNotFound)

	// Soft delete keeps the rows for historical analytics.
	var count int64
	require.NoError(t, db.Unscoped().Model(&models.Link{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
	require.NoError(t, db.Model(&models.TrackedLink{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestLinkService_OwnershipChecks(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	_, store := newTestStore(t)
	resolver := NewResolverService(db, store, testLogger())
	svc := NewLinkService(db, resolver, testLogger())

	tracked, err := svc.CreateLink(ctx, CreateLinkDTO{
		UserID:         1,
		Title:          "Mine",
		DestinationURL: "https://example.com",
	})
	require.NoError(t, err)

	_, err = svc.ToggleLink(ctx, 2, tracked.LinkID)
	assert.ErrorIs(t, err, ErrLinkNotFound)

	err = svc.DeleteLink(ctx, 2, tracked.LinkID)
	assert.ErrorIs(t, err, ErrLinkNotFound)
}
