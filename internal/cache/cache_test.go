package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Djamyahia/pharmarecon/model"
)

func newTestCache(t *testing.T) *redisCatalogCache {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	c, err := newRedisCatalogCache([]string{mr.Addr()})
	require.NoError(t, err)
	return c
}

func TestCatalogCacheRoundTrip(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	entries := []model.CatalogEntry{
		{EntryID: "A1", Name: "Doliprane", Form: "Sachet", Dosage: "300mg", Packaging: "boite de 12", Manufacturer: "Sanofi"},
		{EntryID: "B1", Name: "Efferalgan", Form: "Comprimé", Dosage: "500mg", Packaging: "boite de 16", Manufacturer: "UPSA"},
	}

	assert.NoError(t, c.SetCatalog(ctx, entries, time.Minute))

	got, err := c.GetCatalog(ctx)
	assert.NoError(t, err)
	// Order must survive caching; it drives candidate tie-breaking.
	assert.Equal(t, entries, got)
}

func TestCatalogCacheMissReturnsNil(t *testing.T) {
	c := newTestCache(t)

	got, err := c.GetCatalog(context.Background())
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestCatalogCacheInvalidate(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	entries := []model.CatalogEntry{{EntryID: "A1", Name: "Doliprane"}}
	assert.NoError(t, c.SetCatalog(ctx, entries, time.Minute))
	assert.NoError(t, c.InvalidateCatalog(ctx))

	got, err := c.GetCatalog(ctx)
	assert.NoError(t, err)
	assert.Nil(t, got)
}
