package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Backend names accepted for the "backend" key.
const (
	BackendHTTP   = "http"
	BackendChrome = "chrome"
)

// DefaultUserAgent is sent by the HTTP backend unless overridden.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"

// Config holds the resolved settings for one run.
type Config struct {
	// Timeout bounds each page fetch.
	Timeout time.Duration
	// ResolveTimeout bounds a whole resolution across all stages.
	ResolveTimeout time.Duration
	// Backend selects the page fetcher ("http" or "chrome").
	Backend string
	// Headless controls the chrome backend window.
	Headless bool
	// UserAgent is sent with every HTTP request.
	UserAgent string
	// RequestsPerSecond limits outbound requests per site. Zero disables limiting.
	RequestsPerSecond int

	GoodreadsBaseURL string

	AmazonBaseURL    string
	AmazonEnabled    bool
	AmazonMaxResults int

	MatchingPolicy string

	CacheEnabled bool
	CacheDBFile  string
	CacheTTL     time.Duration
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("timeout", "30s")
	v.SetDefault("resolve_timeout", "2m")
	v.SetDefault("backend", BackendHTTP)
	v.SetDefault("headless", true)
	v.SetDefault("user_agent", DefaultUserAgent)
	v.SetDefault("requests_per_second", 1)

	v.SetDefault("goodreads.base_url", "https://www.goodreads.com")

	v.SetDefault("amazon.base_url", "https://www.amazon.com")
	v.SetDefault("amazon.enabled", true)
	v.SetDefault("amazon.max_results", 2)

	v.SetDefault("matching.policy", "containment")

	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.dbfile", "./kindlecovers-cache.db")
	v.SetDefault("cache.ttl", "720h") // 30 days
}

// Load reads the settings from v and validates them.
func Load(v *viper.Viper) (*Config, error) {
	timeout, err := time.ParseDuration(v.GetString("timeout"))
	if err != nil {
		return nil, fmt.Errorf("invalid timeout %q: %w", v.GetString("timeout"), err)
	}
	if timeout <= 0 {
		return nil, fmt.Errorf("timeout must be positive, got %s", timeout)
	}

	resolveTimeout, err := time.ParseDuration(v.GetString("resolve_timeout"))
	if err != nil {
		return nil, fmt.Errorf("invalid resolve_timeout %q: %w", v.GetString("resolve_timeout"), err)
	}

	ttl, err := time.ParseDuration(v.GetString("cache.ttl"))
	if err != nil {
		return nil, fmt.Errorf("invalid cache.ttl %q: %w", v.GetString("cache.ttl"), err)
	}

	backend := strings.ToLower(v.GetString("backend"))
	if backend != BackendHTTP && backend != BackendChrome {
		return nil, fmt.Errorf("unknown backend %q (valid: %s, %s)", backend, BackendHTTP, BackendChrome)
	}

	maxResults := v.GetInt("amazon.max_results")
	if maxResults <= 0 {
		return nil, fmt.Errorf("amazon.max_results must be positive, got %d", maxResults)
	}

	return &Config{
		Timeout:           timeout,
		ResolveTimeout:    resolveTimeout,
		Backend:           backend,
		Headless:          v.GetBool("headless"),
		UserAgent:         v.GetString("user_agent"),
		RequestsPerSecond: v.GetInt("requests_per_second"),
		GoodreadsBaseURL:  strings.TrimRight(v.GetString("goodreads.base_url"), "/"),
		AmazonBaseURL:     strings.TrimRight(v.GetString("amazon.base_url"), "/"),
		AmazonEnabled:     v.GetBool("amazon.enabled"),
		AmazonMaxResults:  maxResults,
		MatchingPolicy:    v.GetString("matching.policy"),
		CacheEnabled:      v.GetBool("cache.enabled"),
		CacheDBFile:       v.GetString("cache.dbfile"),
		CacheTTL:          ttl,
	}, nil
}
