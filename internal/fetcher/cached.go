package fetcher

import (
	"context"
	"log/slog"
	"time"

	"github.com/lepinkainen/kindlecovers/internal/cache"
)

// CachingFetcher stores successful pages in the sqlite page cache.
type CachingFetcher struct {
	next        Fetcher
	db          *cache.CacheDB
	ttl         time.Duration
	shouldCache func(*Page) bool
}

// Compile-time check that CachingFetcher implements Fetcher.
var _ Fetcher = (*CachingFetcher)(nil)

// CachingOption configures a CachingFetcher.
type CachingOption func(*CachingFetcher)

// CacheIf stores only pages for which keep returns true. Pages it rejects
// are still returned to the caller.
func CacheIf(keep func(*Page) bool) CachingOption {
	return func(f *CachingFetcher) {
		f.shouldCache = keep
	}
}

// NewCachingFetcher wraps next with a cache backed by db.
func NewCachingFetcher(next Fetcher, db *cache.CacheDB, ttl time.Duration, opts ...CachingOption) *CachingFetcher {
	if ttl <= 0 {
		ttl = cache.DefaultCacheTTL
	}
	f := &CachingFetcher{next: next, db: db, ttl: ttl}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch returns the cached page for rawURL or fetches and stores it.
func (f *CachingFetcher) Fetch(ctx context.Context, rawURL string) (*Page, error) {
	page, fromCache, err := cache.GetOrFetchWithPolicy(f.db, cache.PageTable, rawURL, f.ttl, func() (*Page, error) {
		return f.next.Fetch(ctx, rawURL)
	}, f.shouldCache)
	if err != nil {
		return nil, err
	}
	if fromCache {
		slog.Debug("Serving page from cache", "url", rawURL)
	}
	return page, nil
}
