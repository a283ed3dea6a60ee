// Package goodreads finds Kindle ASINs through Goodreads edition listings.
package goodreads

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/lepinkainen/kindlecovers/internal/asin"
	"github.com/lepinkainen/kindlecovers/internal/fetcher"
	"github.com/samber/mo"
)

// DefaultBaseURL is the public Goodreads site.
const DefaultBaseURL = "https://www.goodreads.com"

// kindleEditionsQuery narrows the editions listing to Kindle editions and
// asks for as many as fit on one page.
const kindleEditionsQuery = "utf8=%E2%9C%93&filter_by_format=Kindle+Edition&per_page=100"

// ErrNoEditionsLink is returned when an edition page has no link to the
// other editions of the work.
var ErrNoEditionsLink = errors.New("no other editions link on edition page")

var editionIDPattern = regexp.MustCompile(`^\d+([.\-][\w.\-]*)?$`)

// Resolver looks up editions on Goodreads.
type Resolver struct {
	fetcher fetcher.Fetcher
	baseURL string
}

// New creates a Resolver that fetches through f. An empty baseURL selects DefaultBaseURL.
func New(f fetcher.Fetcher, baseURL string) *Resolver {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Resolver{fetcher: f, baseURL: strings.TrimRight(baseURL, "/")}
}

// SearchEdition submits query to the Goodreads search. A redirect means an
// exact match and its destination is the edition; otherwise the first result
// marked up as a schema.org Book is used.
func (r *Resolver) SearchEdition(ctx context.Context, query string) (mo.Option[string], error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return mo.None[string](), nil
	}

	searchURL := r.baseURL + "/search?q=" + url.QueryEscape(query)
	page, err := r.fetcher.Fetch(ctx, searchURL)
	if err != nil {
		return mo.None[string](), fmt.Errorf("goodreads search for %q: %w", query, err)
	}

	if page.Redirected() {
		slog.Debug("Goodreads search redirected to edition", "query", query, "url", page.URL)
		return mo.Some(page.URL), nil
	}

	doc, err := page.Document()
	if err != nil {
		return mo.None[string](), err
	}

	href, ok := firstBookLink(doc)
	if !ok {
		slog.Debug("No Goodreads book in search results", "query", query)
		return mo.None[string](), nil
	}

	return mo.Some(r.resolve(page.URL, href)), nil
}

func firstBookLink(doc *goquery.Document) (string, bool) {
	var href string
	doc.Find(`[itemtype="http://schema.org/Book"]`).EachWithBreak(func(_ int, item *goquery.Selection) bool {
		link := item.Find("a.bookTitle[href]").First()
		if link.Length() == 0 {
			link = item.Find(`a[itemprop="url"][href]`).First()
		}
		href = strings.TrimSpace(link.AttrOr("href", ""))
		return href == ""
	})
	return href, href != ""
}

// EditionURL turns an edition reference into an absolute URL. A bare id
// ("12345") or id slug ("12345.Some_Title") becomes a /book/show/ URL.
func (r *Resolver) EditionURL(ref string) string {
	ref = strings.TrimSpace(ref)
	if editionIDPattern.MatchString(ref) {
		return r.baseURL + "/book/show/" + ref
	}
	return r.resolve(r.baseURL+"/", ref)
}

// ListKindleASINs fetches the edition page for ref, follows its link to the
// other editions of the work filtered to Kindle, and collects every listed
// value that looks like a Kindle ASIN. A missing editions link yields an
// empty set.
func (r *Resolver) ListKindleASINs(ctx context.Context, ref string) (asin.Set, error) {
	if strings.TrimSpace(ref) == "" {
		return asin.NewSet(), nil
	}

	editionURL := r.EditionURL(ref)
	page, err := r.fetcher.Fetch(ctx, editionURL)
	if err != nil {
		return nil, fmt.Errorf("fetching goodreads edition %s: %w", editionURL, err)
	}

	doc, err := page.Document()
	if err != nil {
		return nil, err
	}

	editionsHref, ok := otherEditionsLink(doc)
	if !ok {
		slog.Debug("Goodreads edition has no other editions link", "url", page.URL, "error", ErrNoEditionsLink)
		return asin.NewSet(), nil
	}

	listingURL := withQuery(r.resolve(page.URL, editionsHref), kindleEditionsQuery)
	listing, err := r.fetcher.Fetch(ctx, listingURL)
	if err != nil {
		return nil, fmt.Errorf("fetching goodreads editions %s: %w", listingURL, err)
	}

	listingDoc, err := listing.Document()
	if err != nil {
		return nil, err
	}

	var values []string
	listingDoc.Find(".dataValue").Each(func(_ int, cell *goquery.Selection) {
		values = append(values, cell.Text())
	})

	found := asin.Filter(values)
	slog.Debug("Scanned Goodreads Kindle editions", "url", listingURL, "cells", len(values), "asins", found.Len())
	return found, nil
}

func otherEditionsLink(doc *goquery.Document) (string, bool) {
	for _, sel := range []string{
		`.otherEditionsActions a[href*="/work/editions/"]`,
		`a[href*="/work/editions/"]`,
	} {
		if href := strings.TrimSpace(doc.Find(sel).First().AttrOr("href", "")); href != "" {
			return href, true
		}
	}
	return "", false
}

// resolve makes href absolute relative to base, falling back to href itself.
func (r *Resolver) resolve(base, href string) string {
	b, err := url.Parse(base)
	if err != nil {
		return href
	}
	h, err := url.Parse(href)
	if err != nil {
		return href
	}
	return b.ResolveReference(h).String()
}

func withQuery(rawURL, query string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	u.RawQuery = query
	u.Fragment = ""
	return u.String()
}
