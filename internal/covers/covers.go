// Package covers turns resolved Kindle ASINs into hi-res cover image URLs.
package covers

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/lepinkainen/kindlecovers/internal/asin"
	"github.com/lepinkainen/kindlecovers/internal/resolver"
	"github.com/samber/lo"
)

// Templates are the cover image locations for a Kindle ASIN.
var Templates = []string{
	"http://z2-ec2.images-amazon.com/images/P/%s.01.MAIN._SCRM_.jpg",
	"https://s3.cn-north-1.amazonaws.com.cn/sitbweb-cn/content/%s/images/cover.jpg",
}

// Identifiers maps lowercase identifier kinds ("asin", "isbn", "goodreads", ...) to values.
type Identifiers map[string]string

// FormatURLs expands every ASIN against every template. The result is
// sorted and free of duplicates.
func FormatURLs(asins asin.Set) []string {
	urls := make([]string, 0, asins.Len()*len(Templates))
	for _, id := range asins.Sorted() {
		for _, tmpl := range Templates {
			urls = append(urls, fmt.Sprintf(tmpl, id))
		}
	}
	urls = lo.Uniq(urls)
	sort.Strings(urls)
	return urls
}

// Resolver is the ASIN resolution chain used by a Source.
type Resolver interface {
	Resolve(ctx context.Context, req *resolver.Request) resolver.Result
}

// Source answers cover requests from the host application.
type Source struct {
	Pipeline Resolver
}

// NewSource creates a Source backed by pipeline.
func NewSource(pipeline Resolver) *Source {
	return &Source{Pipeline: pipeline}
}

// ResolveCoverURLs resolves the book to Kindle ASINs and returns their cover
// URLs. A timeout greater than zero bounds the whole resolution. Finding
// nothing is not an error: the URL list is empty.
func (s *Source) ResolveCoverURLs(ctx context.Context, title string, authors []string, identifiers Identifiers, timeout time.Duration) ([]string, resolver.Result) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req := resolver.NewRequest(title, authors, identifiers)
	result := s.Pipeline.Resolve(ctx, req)

	urls := FormatURLs(result.ASINs)
	if len(urls) == 0 {
		slog.Warn("No cover URLs found", "title", req.Title, "authors", req.Authors)
		return []string{}, result
	}

	slog.Info("Resolved cover URLs", "stage", result.Stage, "asins", result.ASINs.Len(), "urls", len(urls))
	return urls, result
}
