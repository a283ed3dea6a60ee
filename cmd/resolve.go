package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/lepinkainen/kindlecovers/internal/amazon"
	"github.com/lepinkainen/kindlecovers/internal/cache"
	"github.com/lepinkainen/kindlecovers/internal/config"
	"github.com/lepinkainen/kindlecovers/internal/covers"
	"github.com/lepinkainen/kindlecovers/internal/fetcher"
	"github.com/lepinkainen/kindlecovers/internal/goodreads"
	"github.com/lepinkainen/kindlecovers/internal/matching"
	"github.com/lepinkainen/kindlecovers/internal/resolver"
)

// ResolveCmd represents the resolve command
type ResolveCmd struct {
	Title      string            `short:"t" help:"Book title"`
	Author     []string          `short:"a" sep:"none" help:"Author name; repeat for several authors, the first is the primary one"`
	ISBN       string            `name:"isbn" help:"ISBN of any edition"`
	ASIN       string            `name:"asin" help:"Known Kindle ASIN"`
	Goodreads  string            `help:"Goodreads edition id, slug or URL"`
	Identifier map[string]string `short:"i" help:"Extra identifier as key=value (repeatable)"`
	Format     string            `short:"f" help:"Output format" enum:"text,yaml" default:"text"`
	NoAmazon   bool              `help:"Skip the Kindle store search stage"`
	MaxResults int               `help:"Accept at most this many Kindle store results (default from config)"`
}

// identifiers merges the dedicated identifier flags over --identifier pairs.
// Key case is folded later by the resolver.
func (r *ResolveCmd) identifiers() covers.Identifiers {
	ids := covers.Identifiers{}
	for k, v := range r.Identifier {
		ids[k] = v
	}
	if r.ISBN != "" {
		ids[resolver.KeyISBN] = r.ISBN
	}
	if r.ASIN != "" {
		ids["asin"] = r.ASIN
	}
	if r.Goodreads != "" {
		ids[resolver.KeyGoodreads] = r.Goodreads
	}
	return ids
}

func (r *ResolveCmd) Run(cfg *config.Config) error {
	if r.NoAmazon {
		cfg.AmazonEnabled = false
	}
	if r.MaxResults > 0 {
		cfg.AmazonMaxResults = r.MaxResults
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	src, closeSource, err := newSource(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeSource()

	urls, result := src.ResolveCoverURLs(ctx, r.Title, r.Author, r.identifiers(), cfg.ResolveTimeout)
	if result.Err != nil {
		slog.Warn("Resolution interrupted", "error", result.Err)
	}

	return writeReport(stdout, r.Format, urls, result)
}

// buildSource wires the fetcher stack, both sites and the pipeline from cfg.
// The returned func releases the browser and cache database.
func buildSource(ctx context.Context, cfg *config.Config) (*covers.Source, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	policy, err := matching.ByName(cfg.MatchingPolicy)
	if err != nil {
		return nil, cleanup, err
	}

	var f fetcher.Fetcher
	switch cfg.Backend {
	case config.BackendChrome:
		chrome := fetcher.NewChromeFetcher(ctx, fetcher.ChromeOptions{
			Headless:  cfg.Headless,
			UserAgent: cfg.UserAgent,
			Timeout:   cfg.Timeout,
		})
		closers = append(closers, chrome.Close)
		f = chrome
	default:
		f = fetcher.NewHTTPFetcher(fetcher.Options{
			Timeout:           cfg.Timeout,
			UserAgent:         cfg.UserAgent,
			RequestsPerSecond: cfg.RequestsPerSecond,
		})
	}

	if cfg.CacheEnabled {
		db, err := cache.Open(cfg.CacheDBFile)
		if err != nil {
			slog.Warn("Page cache unavailable, continuing without it", "path", cfg.CacheDBFile, "error", err)
		} else {
			closers = append(closers, func() { _ = db.Close() })
			f = fetcher.NewCachingFetcher(f, db, cfg.CacheTTL, fetcher.CacheIf(cacheablePage))
		}
	}

	var store resolver.Retailer
	if cfg.AmazonEnabled {
		store = amazon.New(f,
			amazon.WithBaseURL(cfg.AmazonBaseURL),
			amazon.WithPolicy(policy),
			amazon.WithMaxResults(cfg.AmazonMaxResults),
		)
	}

	pipeline := resolver.Default(goodreads.New(f, cfg.GoodreadsBaseURL), store, cfg.AmazonMaxResults)
	slog.Debug("Built resolution pipeline",
		"stages", fmt.Sprint(pipeline.Strategies()),
		"backend", cfg.Backend,
		"policy", policy.Name(),
	)

	return covers.NewSource(pipeline), cleanup, nil
}

// cacheablePage keeps captcha pages out of the cache so a later run can
// reach the real results.
func cacheablePage(page *fetcher.Page) bool {
	return !amazon.IsBotChallengePage(page)
}
