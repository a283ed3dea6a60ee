package matching

import (
	"fmt"
	"strings"

	levenshtein "github.com/ka-weihe/fast-levenshtein"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/samber/lo"
)

// Policy verifies scraped author and title text against the query.
type Policy interface {
	// Name returns the policy name used in configuration.
	Name() string
	// AuthorMatches reports whether candidate author text belongs to the
	// first queried author.
	AuthorMatches(candidate string, authors []string) bool
	// TitleMatches reports whether candidate title text names the queried title.
	TitleMatches(candidate, title string) bool
}

// ByName returns the policy registered under name. An empty name selects Containment.
func ByName(name string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "containment":
		return Containment{}, nil
	case "fuzzy":
		return Fuzzy{MaxDistance: 1}, nil
	default:
		return nil, fmt.Errorf("unknown matching policy %q (valid: containment, fuzzy)", name)
	}
}

// Containment is plain case-insensitive substring matching: the author text
// must contain the first author's last name and the title text must contain
// every title token.
type Containment struct{}

func (Containment) Name() string { return "containment" }

func (Containment) AuthorMatches(candidate string, authors []string) bool {
	if len(authors) == 0 {
		return false
	}
	last := LastName(authors[0])
	if last == "" {
		return false
	}
	return strings.Contains(fold(candidate), fold(last))
}

func (Containment) TitleMatches(candidate, title string) bool {
	text := fold(candidate)
	return lo.EveryBy(TitleTokens(title), func(token string) bool {
		return strings.Contains(text, fold(token))
	})
}

// Fuzzy tolerates small spelling differences. A last name matches any word of
// the author text within MaxDistance edits; each title token must fuzzily
// match some word of the candidate title.
type Fuzzy struct {
	MaxDistance int
}

func (Fuzzy) Name() string { return "fuzzy" }

func (f Fuzzy) AuthorMatches(candidate string, authors []string) bool {
	if len(authors) == 0 {
		return false
	}
	last := fold(LastName(authors[0]))
	if last == "" {
		return false
	}
	return lo.SomeBy(words(candidate), func(w string) bool {
		return levenshtein.Distance(last, w) <= f.MaxDistance
	})
}

func (f Fuzzy) TitleMatches(candidate, title string) bool {
	candidateWords := words(candidate)
	return lo.EveryBy(TitleTokens(title), func(token string) bool {
		token = fold(token)
		return lo.SomeBy(candidateWords, func(w string) bool {
			return fuzzy.MatchNormalizedFold(token, w) || levenshtein.Distance(token, w) <= f.MaxDistance
		})
	})
}

func words(s string) []string {
	return strings.FieldsFunc(fold(s), func(r rune) bool {
		return !(r == '\'' || r == '&' || isWordRune(r))
	})
}

func isWordRune(r rune) bool {
	return r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r > 0x7f && r != '—' && r != '–'
}
