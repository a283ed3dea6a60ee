// Package resolver runs the ordered chain of strategies that turn a book
// query into Kindle ASINs.
package resolver

import (
	"context"
	"errors"
	"log/slog"

	"github.com/lepinkainen/kindlecovers/internal/asin"
)

// Attempt records what one stage returned.
type Attempt struct {
	Strategy   string
	Candidates []string
	Skipped    bool
	Err        error
}

// Result is the outcome of a resolution.
type Result struct {
	// ASINs holds the first non-empty candidate set, or an empty set.
	ASINs asin.Set
	// Stage names the strategy that produced ASINs.
	Stage string
	// Attempts lists every stage that ran, in order.
	Attempts []Attempt
	// Err is set when the context ended before the chain finished.
	Err error
}

// Found reports whether any ASIN was resolved.
func (r Result) Found() bool {
	return r.ASINs.Len() > 0
}

// Pipeline runs strategies in order until one returns candidates.
type Pipeline struct {
	strategies []Strategy
}

// New creates a pipeline running strategies in the given order.
func New(strategies ...Strategy) *Pipeline {
	return &Pipeline{strategies: strategies}
}

// Default builds the full chain: direct identifiers, Goodreads by edition,
// Goodreads by search, then the Kindle store. A nil store leaves the last
// stage out.
func Default(goodreads Goodreads, store Retailer, maxResults int) *Pipeline {
	strategies := []Strategy{
		Direct{},
		GoodreadsEdition{Site: goodreads},
		GoodreadsSearch{Site: goodreads},
	}
	if store != nil {
		strategies = append(strategies, AmazonSearch{Store: store, MaxResults: maxResults})
	}
	return New(strategies...)
}

// Strategies returns the stage names in order.
func (p *Pipeline) Strategies() []string {
	names := make([]string, 0, len(p.strategies))
	for _, s := range p.strategies {
		names = append(names, s.Name())
	}
	return names
}

// Resolve runs the chain for req. Stage errors are logged and treated as an
// empty result; the chain stops at the first non-empty set or when ctx ends.
func (p *Pipeline) Resolve(ctx context.Context, req *Request) Result {
	result := Result{ASINs: asin.NewSet()}
	if req == nil {
		req = NewRequest("", nil, nil)
	}

	for _, s := range p.strategies {
		if err := ctx.Err(); err != nil {
			slog.Warn("Resolution stopped", "stage", s.Name(), "error", err)
			result.Err = err
			return result
		}

		found, err := s.Attempt(ctx, req)
		attempt := Attempt{Strategy: s.Name(), Candidates: found.Sorted()}

		switch {
		case errors.Is(err, ErrNotApplicable):
			attempt.Skipped = true
			slog.Debug("Skipping stage", "stage", s.Name())
		case err != nil:
			attempt.Err = err
			attempt.Candidates = nil
			slog.Warn("Stage failed", "stage", s.Name(), "error", err)
		default:
			slog.Debug("Stage finished", "stage", s.Name(), "asins", found.Len())
		}
		result.Attempts = append(result.Attempts, attempt)

		if err == nil && found.Len() > 0 {
			result.ASINs = found
			result.Stage = s.Name()
			return result
		}
	}

	return result
}
