package source

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/lucassvahn/desinformation-agent/internal/model"
)

// CachedSearcher wraps an EvidenceSearcher with an in-memory TTL cache so
// repeated runs over overlapping posts do not burn API quota on identical
// queries. Errors are never cached.
type CachedSearcher struct {
	inner EvidenceSearcher
	cache *gocache.Cache
}

// NewCachedSearcher wraps the searcher with the given TTL.
func NewCachedSearcher(inner EvidenceSearcher, ttl time.Duration) *CachedSearcher {
	return &CachedSearcher{
		inner: inner,
		cache: gocache.New(ttl, 2*ttl),
	}
}

// Name returns the wrapped searcher's name.
func (c *CachedSearcher) Name() string {
	return c.inner.Name()
}

// Search returns cached results when the same query was answered within the
// TTL, otherwise delegates to the wrapped searcher.
func (c *CachedSearcher) Search(ctx context.Context, query string, maxResults int, domains []string) ([]model.EvidenceItem, error) {
	key := fmt.Sprintf("%s:%d:%s", c.inner.Name(), maxResults, query)

	if cached, found := c.cache.Get(key); found {
		return cached.([]model.EvidenceItem), nil
	}

	items, err := c.inner.Search(ctx, query, maxResults, domains)
	if err != nil {
		return nil, err
	}

	c.cache.Set(key, items, gocache.DefaultExpiration)
	return items, nil
}
