package fetcher

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	apperrors "github.com/lepinkainen/kindlecovers/internal/errors"
	"github.com/lepinkainen/kindlecovers/internal/ratelimit"
)

// maxBodySize caps how much of a response is read.
const maxBodySize = 10 << 20

// Options configures an HTTPFetcher.
type Options struct {
	// Timeout bounds a single fetch, including redirects and body read.
	Timeout time.Duration
	// UserAgent is sent with every request.
	UserAgent string
	// RequestsPerSecond limits requests per host. Zero disables limiting.
	RequestsPerSecond int
	// Client overrides the default HTTP client.
	Client *http.Client
}

// HTTPFetcher fetches pages with net/http.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
	timeout   time.Duration
	rps       int

	mu       sync.Mutex
	limiters map[string]*ratelimit.Limiter
}

// Compile-time check that HTTPFetcher implements Fetcher.
var _ Fetcher = (*HTTPFetcher)(nil)

// NewHTTPFetcher creates an HTTPFetcher from opts.
func NewHTTPFetcher(opts Options) *HTTPFetcher {
	client := opts.Client
	if client == nil {
		client = &http.Client{}
	}
	return &HTTPFetcher{
		client:    client,
		userAgent: opts.UserAgent,
		timeout:   opts.Timeout,
		rps:       opts.RequestsPerSecond,
		limiters:  make(map[string]*ratelimit.Limiter),
	}
}

// Fetch performs a GET for rawURL. Non-2xx responses are returned as errors.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (*Page, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL %q: %w", rawURL, err)
	}

	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	if err := f.limiterFor(parsed.Host).Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	slog.Debug("Fetching page", "url", rawURL)
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", rawURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	finalURL := rawURL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusServiceUnavailable:
		return nil, apperrors.NewRateLimitErrorWithRetry(
			fmt.Sprintf("%s answered HTTP %d", parsed.Host, resp.StatusCode),
			parseRetryAfter(resp.Header.Get("Retry-After")),
		)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, apperrors.NewStatusError(finalURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("reading body of %s: %w", finalURL, err)
	}

	return &Page{
		RequestURL: rawURL,
		URL:        finalURL,
		StatusCode: resp.StatusCode,
		Body:       body,
	}, nil
}

func (f *HTTPFetcher) limiterFor(host string) *ratelimit.Limiter {
	f.mu.Lock()
	defer f.mu.Unlock()

	l, ok := f.limiters[host]
	if !ok {
		l = ratelimit.New(host, f.rps)
		f.limiters[host] = l
	}
	return l
}

func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	if secs, err := strconv.Atoi(value); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(value); err == nil {
		if d := time.Until(at); d > 0 {
			return d.Round(time.Second)
		}
	}
	return 0
}
