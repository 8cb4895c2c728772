package artcache

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"github.com/diegovillafuerte1/wiki-art-enhance/internal/model"
)

// DefaultTTL is how long a completed provider result is served from cache.
const DefaultTTL = 5 * time.Minute

// Fetcher performs the underlying provider request for a key.
type Fetcher func(ctx context.Context) ([]model.ArtworkRecord, error)

// Cache is the keyed result cache shared by all providers. Concurrent
// callers with the same key are coalesced onto a single in-flight fetch;
// completed results are served for the TTL; failures are evicted rather
// than cached, so the next caller retries.
//
// One cache is created per page-scan session and owned by the resolver.
type Cache struct {
	ttl   time.Duration
	store *gocache.Cache
	group singleflight.Group
}

// New creates a cache with the given TTL (DefaultTTL when zero).
func New(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		ttl:   ttl,
		store: gocache.New(ttl, 10*time.Minute),
	}
}

// GetOrFetch returns the cached result for key, or runs fetch exactly once
// no matter how many callers arrive while it is in flight. The in-flight
// registration happens before fetch is invoked, so a second caller always
// joins the pending call instead of racing a duplicate.
func (c *Cache) GetOrFetch(ctx context.Context, key string, fetch Fetcher) ([]model.ArtworkRecord, error) {
	if val, found := c.store.Get(key); found {
		return val.([]model.ArtworkRecord), nil
	}

	val, err, _ := c.group.Do(key, func() (interface{}, error) {
		// Re-check under the flight: a sibling may have completed between
		// our miss and the Do registration.
		if val, found := c.store.Get(key); found {
			return val.([]model.ArtworkRecord), nil
		}
		records, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		c.store.Set(key, records, c.ttl)
		return records, nil
	})
	if err != nil {
		// Not cached as a failure; the next request retries.
		return nil, err
	}
	return val.([]model.ArtworkRecord), nil
}

// Evict removes a key outright.
func (c *Cache) Evict(key string) {
	c.store.Delete(key)
}

// Key derives the provider-qualified cache key. Location, range, and limit
// all participate: the limit changes the result set.
func Key(provider, location string, r *model.DateRange, limit int) string {
	rangeKey := ""
	if r != nil {
		rangeKey = r.Key()
	}
	return fmt.Sprintf("%s:%s|%s|%d", provider, model.CanonicalLocation(location), rangeKey, limit)
}
