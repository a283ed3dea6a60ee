package resolver

import (
	"sort"
	"strings"

	"github.com/samber/lo"
)

// Identifier keys consulted by the strategies.
const (
	KeyISBN           = "isbn"
	KeyGoodreads      = "goodreads"
	KeyGoodreadsAlias = "goodreads-id"
)

// Request is the query for one resolution. Build it with NewRequest and
// do not modify it afterwards.
type Request struct {
	Title       string
	Authors     []string
	Identifiers map[string]string
}

// NewRequest copies the inputs into a Request. Identifier keys are
// lowercased; values are kept as given so the classifier sees them
// unchanged. When several keys fold to the same name, the one already in
// lowercase wins, otherwise the lexically first original key. Blank values
// and blank authors are dropped.
func NewRequest(title string, authors []string, identifiers map[string]string) *Request {
	keys := lo.Keys(identifiers)
	sort.Strings(keys)

	ids := make(map[string]string, len(identifiers))
	for _, orig := range keys {
		v := identifiers[orig]
		k := strings.ToLower(strings.TrimSpace(orig))
		if k == "" || strings.TrimSpace(v) == "" {
			continue
		}
		if _, taken := ids[k]; taken && orig != k {
			continue
		}
		ids[k] = v
	}

	names := lo.FilterMap(authors, func(a string, _ int) (string, bool) {
		a = strings.TrimSpace(a)
		return a, a != ""
	})

	return &Request{
		Title:       strings.TrimSpace(title),
		Authors:     names,
		Identifiers: ids,
	}
}

// ISBN returns the isbn identifier, if any.
func (r *Request) ISBN() string {
	return strings.TrimSpace(r.Identifiers[KeyISBN])
}

// GoodreadsRef returns the Goodreads edition reference. The "goodreads" key
// wins over its "goodreads-id" alias.
func (r *Request) GoodreadsRef() string {
	if ref := strings.TrimSpace(r.Identifiers[KeyGoodreads]); ref != "" {
		return ref
	}
	return strings.TrimSpace(r.Identifiers[KeyGoodreadsAlias])
}

// FirstAuthor returns the primary author or "".
func (r *Request) FirstAuthor() string {
	if len(r.Authors) == 0 {
		return ""
	}
	return strings.TrimSpace(r.Authors[0])
}

// SearchQuery returns the ISBN when known, otherwise the title followed by
// the first author. Without either it returns "".
func (r *Request) SearchQuery() string {
	if isbn := r.ISBN(); isbn != "" {
		return isbn
	}
	if r.Title == "" {
		return ""
	}
	return strings.TrimSpace(r.Title + " " + r.FirstAuthor())
}
