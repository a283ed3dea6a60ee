package resolver

import (
	"context"
	"errors"
	"log/slog"

	"github.com/lepinkainen/kindlecovers/internal/asin"
	"github.com/samber/mo"
)

// ErrNotApplicable is returned by a strategy whose inputs are missing from
// the request. The pipeline records the stage as skipped.
var ErrNotApplicable = errors.New("strategy not applicable to request")

// Strategy is one stage of the fallback chain.
type Strategy interface {
	// Name identifies the stage in logs and reports.
	Name() string
	// Attempt returns the Kindle ASINs this stage finds for req. An empty
	// set means the next stage should run.
	Attempt(ctx context.Context, req *Request) (asin.Set, error)
}

// Goodreads is the bibliographic site used by the Goodreads stages.
type Goodreads interface {
	SearchEdition(ctx context.Context, query string) (mo.Option[string], error)
	ListKindleASINs(ctx context.Context, ref string) (asin.Set, error)
}

// Retailer is the store search used by the last stage.
type Retailer interface {
	SearchByTitleAuthor(ctx context.Context, title string, authors []string, maxResults int) ([]string, error)
}

// Direct reads ASINs already present in the identifiers.
type Direct struct{}

func (Direct) Name() string { return "direct" }

func (Direct) Attempt(_ context.Context, req *Request) (asin.Set, error) {
	return asin.FromIdentifiers(req.Identifiers), nil
}

// GoodreadsEdition lists Kindle editions of a known Goodreads edition.
type GoodreadsEdition struct {
	Site Goodreads
}

func (GoodreadsEdition) Name() string { return "goodreads-edition" }

func (s GoodreadsEdition) Attempt(ctx context.Context, req *Request) (asin.Set, error) {
	ref := req.GoodreadsRef()
	if ref == "" {
		return nil, ErrNotApplicable
	}
	return s.Site.ListKindleASINs(ctx, ref)
}

// GoodreadsSearch finds an edition by ISBN or title and author, then lists
// its Kindle editions.
type GoodreadsSearch struct {
	Site Goodreads
}

func (GoodreadsSearch) Name() string { return "goodreads-search" }

func (s GoodreadsSearch) Attempt(ctx context.Context, req *Request) (asin.Set, error) {
	query := req.SearchQuery()
	if query == "" {
		return nil, ErrNotApplicable
	}

	edition, err := s.Site.SearchEdition(ctx, query)
	if err != nil {
		return nil, err
	}

	ref, ok := edition.Get()
	if !ok {
		slog.Debug("No Goodreads edition found", "query", query)
		return asin.NewSet(), nil
	}
	return s.Site.ListKindleASINs(ctx, ref)
}

// AmazonSearch matches Kindle store search results against the title and
// first author.
type AmazonSearch struct {
	Store Retailer
	// MaxResults caps accepted results. Zero uses the store default.
	MaxResults int
}

func (AmazonSearch) Name() string { return "amazon-search" }

func (s AmazonSearch) Attempt(ctx context.Context, req *Request) (asin.Set, error) {
	if req.FirstAuthor() == "" {
		return nil, ErrNotApplicable
	}

	found, err := s.Store.SearchByTitleAuthor(ctx, req.Title, req.Authors, s.MaxResults)
	if err != nil {
		return nil, err
	}
	return asin.NewSet(found...), nil
}
