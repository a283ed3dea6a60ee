package cache

// SQL schemas for cache tables
// All cache tables use "cache_key" as the primary key column for consistency

// PageTable caches fetched pages keyed by request URL.
const PageTable = "page_cache"

// PageCacheSchema defines the schema for the fetched page cache
const PageCacheSchema = `
CREATE TABLE IF NOT EXISTS page_cache (
	cache_key TEXT PRIMARY KEY NOT NULL,
	data TEXT NOT NULL,
	cached_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_page_cached_at ON page_cache(cached_at);
`

// AllCacheSchemas contains all cache table schemas for easy initialization
var AllCacheSchemas = []string{
	PageCacheSchema,
}

// ValidCacheTableNames is the whitelist of allowed cache table names
// Used to prevent SQL injection when interpolating table names
var ValidCacheTableNames = map[string]bool{
	PageTable: true,
}
