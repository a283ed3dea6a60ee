// Package amazon matches Kindle editions on the Amazon search results page.
package amazon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/lepinkainen/kindlecovers/internal/asin"
	apperrors "github.com/lepinkainen/kindlecovers/internal/errors"
	"github.com/lepinkainen/kindlecovers/internal/fetcher"
	"github.com/lepinkainen/kindlecovers/internal/matching"
)

// DefaultBaseURL is the US storefront.
const DefaultBaseURL = "https://www.amazon.com"

// DefaultMaxResults caps accepted candidates when the caller gives no limit.
const DefaultMaxResults = 2

const searchPath = "/s/?url=search-alias%3Ddigital-text&field-keywords="

var (
	// ErrNoResults means the page had no results container or no body.
	ErrNoResults = errors.New("no search results")
	// ErrUnknownLayout means the results container matched no known layout.
	ErrUnknownLayout = errors.New("unrecognised search results layout")
	// ErrNoAuthor means the query had no author to verify candidates against.
	ErrNoAuthor = errors.New("author required for retailer search")
)

// Matcher searches the Kindle store and verifies each hit against the query.
type Matcher struct {
	fetcher    fetcher.Fetcher
	baseURL    string
	policy     matching.Policy
	maxResults int
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithBaseURL points the matcher at another storefront.
func WithBaseURL(baseURL string) Option {
	return func(m *Matcher) {
		if baseURL != "" {
			m.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithPolicy replaces the default containment policy.
func WithPolicy(p matching.Policy) Option {
	return func(m *Matcher) {
		if p != nil {
			m.policy = p
		}
	}
}

// WithMaxResults sets the default cap on accepted candidates.
func WithMaxResults(n int) Option {
	return func(m *Matcher) {
		if n > 0 {
			m.maxResults = n
		}
	}
}

// New creates a Matcher fetching through f.
func New(f fetcher.Fetcher, opts ...Option) *Matcher {
	m := &Matcher{
		fetcher:    f,
		baseURL:    DefaultBaseURL,
		policy:     matching.Containment{},
		maxResults: DefaultMaxResults,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// SearchURL builds the digital-text search URL for the first author and title.
func (m *Matcher) SearchURL(title string, authors []string) string {
	keywords := strings.TrimSpace(firstAuthor(authors) + " " + strings.TrimSpace(title))
	return m.baseURL + searchPath + url.QueryEscape(keywords)
}

// SearchByTitleAuthor returns up to maxResults Kindle ASINs whose result
// entries pass the format, author and title checks, in page order. A
// maxResults of zero or less uses the matcher's default.
func (m *Matcher) SearchByTitleAuthor(ctx context.Context, title string, authors []string, maxResults int) ([]string, error) {
	if firstAuthor(authors) == "" {
		return nil, ErrNoAuthor
	}
	if maxResults <= 0 {
		maxResults = m.maxResults
	}

	searchURL := m.SearchURL(title, authors)
	page, err := m.fetcher.Fetch(ctx, searchURL)
	if err != nil {
		return nil, fmt.Errorf("amazon search: %w", err)
	}

	return m.match(page, title, authors, maxResults)
}

func (m *Matcher) match(page *fetcher.Page, title string, authors []string, maxResults int) (found []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Recovered while parsing Amazon results", "url", page.URL, "panic", r)
			found = nil
			err = fmt.Errorf("parsing amazon results: %v", r)
		}
	}()

	text := page.Text()
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: empty response from %s", ErrNoResults, page.URL)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
	if err != nil {
		return nil, fmt.Errorf("parsing amazon results: %w", err)
	}

	if isBotChallenge(doc) {
		return nil, apperrors.NewBotChallengeError(page.URL)
	}

	container := doc.Find("#atfResults").First()
	if container.Length() == 0 {
		return nil, fmt.Errorf("%w: no results container on %s", ErrNoResults, page.URL)
	}

	layout := DetectLayout(container.AttrOr("class", ""))
	profile, ok := layout.Profile()
	if !ok {
		return nil, fmt.Errorf("%w: container classes %q", ErrUnknownLayout, container.AttrOr("class", ""))
	}
	slog.Debug("Detected Amazon results layout", "layout", layout, "url", page.URL)

	found = []string{}
	container.Find(profile.Items).EachWithBreak(func(_ int, item *goquery.Selection) bool {
		if id, ok := m.accept(item, profile, title, authors); ok {
			found = append(found, id)
		}
		return len(found) < maxResults
	})

	return found, nil
}

// accept runs the per-item checks in order and returns the item's ASIN if
// all of them pass.
func (m *Matcher) accept(item *goquery.Selection, p Profile, title string, authors []string) (string, bool) {
	format := collapse(item.Find(p.Format).Text())
	if !strings.Contains(strings.ToLower(format), "kindle") {
		return "", false
	}

	author := collapse(item.Find(p.Author).Text())
	if !m.policy.AuthorMatches(author, authors) {
		slog.Debug("Skipping result with other author", "author", author)
		return "", false
	}

	candidate := collapse(item.Find(p.Title).First().Text())
	if !m.policy.TitleMatches(candidate, title) {
		slog.Debug("Skipping result with other title", "title", candidate)
		return "", false
	}

	id := strings.TrimSpace(item.AttrOr(p.IDAttr, ""))
	if !asin.IsKindleASIN(id) {
		return "", false
	}
	return id, true
}

const botChallengeSelector = `form[action*="validateCaptcha"], #captchacharacters`

func isBotChallenge(doc *goquery.Document) bool {
	return doc.Find(botChallengeSelector).Length() > 0
}

// IsBotChallengePage reports whether page is a captcha or robot check
// instead of real content. Unparseable pages count as no challenge.
func IsBotChallengePage(page *fetcher.Page) bool {
	doc, err := page.Document()
	if err != nil {
		return false
	}
	return isBotChallenge(doc)
}

func firstAuthor(authors []string) string {
	if len(authors) == 0 {
		return ""
	}
	return strings.TrimSpace(authors[0])
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
