package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/cache/v9"

	"github.com/Djamyahia/pharmarecon/config"
	redis_db "github.com/Djamyahia/pharmarecon/internal/redis-db"
	"github.com/Djamyahia/pharmarecon/model"
)

// CatalogCache keeps a snapshot of the canonical catalog so repeated
// classification within a session window does not re-fetch the whole catalog
// from the database. Entries are stored in fetch order because insertion
// order is part of the matching contract.
type CatalogCache interface {
	// SetCatalog stores a catalog snapshot with the given TTL.
	SetCatalog(ctx context.Context, entries []model.CatalogEntry, ttl time.Duration) error

	// GetCatalog returns the cached snapshot, or (nil, nil) on a miss.
	GetCatalog(ctx context.Context) ([]model.CatalogEntry, error)

	// InvalidateCatalog drops the snapshot, forcing the next session to
	// re-fetch.
	InvalidateCatalog(ctx context.Context) error
}

const catalogKey = "recon:catalog:snapshot"

// localCacheSize bounds the in-process TinyLFU tier that fronts Redis.
const localCacheSize = 1024

type redisCatalogCache struct {
	cache *cache.Cache
}

// NewCatalogCache builds a Redis-backed catalog cache from configuration.
func NewCatalogCache() (CatalogCache, error) {
	cfg, err := config.Fetch()
	if err != nil {
		return nil, err
	}
	return newRedisCatalogCache([]string{fmt.Sprintf("redis://%s", cfg.Redis.Dns)})
}

func newRedisCatalogCache(addresses []string) (*redisCatalogCache, error) {
	client, err := redis_db.NewRedisClient(addresses)
	if err != nil {
		return nil, err
	}

	c := cache.New(&cache.Options{
		Redis:      client.Client(),
		LocalCache: cache.NewTinyLFU(localCacheSize, time.Minute),
	})
	return &redisCatalogCache{cache: c}, nil
}

func (r *redisCatalogCache) SetCatalog(ctx context.Context, entries []model.CatalogEntry, ttl time.Duration) error {
	return r.cache.Set(&cache.Item{
		Ctx:   ctx,
		Key:   catalogKey,
		Value: entries,
		TTL:   ttl,
	})
}

func (r *redisCatalogCache) GetCatalog(ctx context.Context) ([]model.CatalogEntry, error) {
	var entries []model.CatalogEntry
	err := r.cache.Get(ctx, catalogKey, &entries)
	if errors.Is(err, cache.ErrCacheMiss) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *redisCatalogCache) InvalidateCatalog(ctx context.Context) error {
	return r.cache.Delete(ctx, catalogKey)
}
