package catalog

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, time.Minute)
}

func TestCacheRoundTrip(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	_, ok := cache.GetItems(ctx)
	require.False(t, ok)

	items := []CatalogItem{
		{
			Product: Product{ID: 1, Code: "P-COLA", Name: "Cola", IsActive: true},
			Units:   []ProductUnit{{ID: 1, ProductID: 1, Name: "piece", IsBase: true, MultiplierToBase: 1}},
		},
	}
	require.NoError(t, cache.SetItems(ctx, items))

	got, ok := cache.GetItems(ctx)
	require.True(t, ok)
	require.Equal(t, items, got)

	require.NoError(t, cache.Invalidate(ctx))
	_, ok = cache.GetItems(ctx)
	require.False(t, ok)
}

func TestListCatalogServesFromCache(t *testing.T) {
	repo := newMemCatalogRepo()
	cache := newTestCache(t)
	svc := NewService(repo, cache, slog.Default())
	ctx := context.Background()

	_, err := svc.UpsertProduct(ctx, validInput())
	require.NoError(t, err)

	first, err := svc.ListCatalog(ctx)
	require.NoError(t, err)
	require.Len(t, first, 1)

	// Drop storage behind the cache; the listing must still come back.
	repo.products = map[int64]Product{}
	repo.units = map[int64]ProductUnit{}

	second, err := svc.ListCatalog(ctx)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestUpsertInvalidatesCache(t *testing.T) {
	repo := newMemCatalogRepo()
	cache := newTestCache(t)
	svc := NewService(repo, cache, slog.Default())
	ctx := context.Background()

	_, err := svc.UpsertProduct(ctx, validInput())
	require.NoError(t, err)

	first, err := svc.ListCatalog(ctx)
	require.NoError(t, err)
	require.Len(t, first, 1)

	second := validInput()
	second.Code = "P-WATER"
	_, err = svc.UpsertProduct(ctx, second)
	require.NoError(t, err)

	items, err := svc.ListCatalog(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2, "mutation drops the cached listing")
}
