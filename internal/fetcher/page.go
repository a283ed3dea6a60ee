// Package fetcher opens external pages for the resolvers. Implementations
// are passed explicitly to each resolver so tests can swap in fakes.
package fetcher

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/encoding/unicode"
)

// Fetcher opens a URL and returns the page it ends up on.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (*Page, error)
}

// Page is a fetched response body together with where it came from.
type Page struct {
	// RequestURL is the URL that was asked for.
	RequestURL string `json:"request_url"`
	// URL is the final URL after redirects.
	URL        string `json:"url"`
	StatusCode int    `json:"status_code"`
	Body       []byte `json:"body"`
}

// Redirected reports whether the response came from a different URL than requested.
func (p *Page) Redirected() bool {
	return p.URL != "" && p.URL != p.RequestURL
}

// Text decodes the body as UTF-8, replacing invalid bytes with U+FFFD and
// dropping ASCII control characters other than tab, newline and carriage return.
func (p *Page) Text() string {
	decoded, err := unicode.UTF8.NewDecoder().Bytes(p.Body)
	if err != nil {
		decoded = []byte(strings.ToValidUTF8(string(p.Body), "�"))
	}
	return strings.Map(func(r rune) rune {
		if isControlNoise(r) {
			return -1
		}
		return r
	}, string(decoded))
}

// Document parses the cleaned body as HTML.
func (p *Page) Document() (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(p.Text()))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML from %s: %w", p.URL, err)
	}
	return doc, nil
}

func isControlNoise(r rune) bool {
	switch {
	case r == '\t' || r == '\n' || r == '\r':
		return false
	case r < 0x20 || r == 0x7f:
		return true
	}
	return false
}
