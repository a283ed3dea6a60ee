package fetcher

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

var (
	chromedpExecAllocator = chromedp.NewExecAllocator
	chromedpContext       = chromedp.NewContext
	chromedpRunner        = chromedp.Run
)

// ChromeOptions configures a ChromeFetcher.
type ChromeOptions struct {
	Headless  bool
	UserAgent string
	Timeout   time.Duration
}

// ChromeFetcher loads pages in a headless Chrome instance. It is slower than
// HTTPFetcher but gets through pages that refuse plain HTTP clients.
type ChromeFetcher struct {
	browserCtx context.Context
	cancel     func()
	timeout    time.Duration
}

// Compile-time check that ChromeFetcher implements Fetcher.
var _ Fetcher = (*ChromeFetcher)(nil)

// NewChromeFetcher prepares a browser context. The browser itself starts on
// the first fetch. Close must be called to shut it down.
func NewChromeFetcher(ctx context.Context, opts ChromeOptions) *ChromeFetcher {
	allocCtx, cancelAllocator := chromedpExecAllocator(ctx, buildExecAllocatorOptions(opts)...)
	browserCtx, cancelBrowser := chromedpContext(allocCtx)

	return &ChromeFetcher{
		browserCtx: browserCtx,
		timeout:    opts.Timeout,
		cancel: func() {
			cancelBrowser()
			cancelAllocator()
		},
	}
}

func buildExecAllocatorOptions(opts ChromeOptions) []chromedp.ExecAllocatorOption {
	allocOpts := []chromedp.ExecAllocatorOption{
		chromedp.NoDefaultBrowserCheck,
		chromedp.NoFirstRun,
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("mute-audio", true),
		chromedp.Flag("disable-default-apps", true),
		chromedp.Flag("blink-settings", "imagesEnabled=false"),
	}
	if opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(opts.UserAgent))
	}
	return allocOpts
}

// Fetch navigates a new tab to rawURL and returns the rendered document.
func (f *ChromeFetcher) Fetch(ctx context.Context, rawURL string) (*Page, error) {
	tabCtx, cancelTab := chromedpContext(f.browserCtx)
	defer cancelTab()

	if f.timeout > 0 {
		var cancel context.CancelFunc
		tabCtx, cancel = context.WithTimeout(tabCtx, f.timeout)
		defer cancel()
	}

	// the caller's cancellation must also stop the tab
	stop := context.AfterFunc(ctx, cancelTab)
	defer stop()

	var location, html string
	tasks := chromedp.Tasks{
		network.Enable(),
		network.SetExtraHTTPHeaders(network.Headers{"Accept-Language": "en-US,en;q=0.9"}),
		chromedp.Navigate(rawURL),
		chromedp.Location(&location),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	}

	slog.Debug("Fetching page with browser", "url", rawURL)
	if err := chromedpRunner(tabCtx, tasks...); err != nil {
		return nil, fmt.Errorf("browser fetch of %s: %w", rawURL, err)
	}

	if location == "" {
		location = rawURL
	}

	return &Page{
		RequestURL: rawURL,
		URL:        location,
		StatusCode: 200,
		Body:       []byte(html),
	}, nil
}

// Close shuts down the browser.
func (f *ChromeFetcher) Close() {
	if f.cancel != nil {
		f.cancel()
	}
}
