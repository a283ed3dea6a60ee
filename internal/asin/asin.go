// Package asin classifies identifiers that can name a Kindle edition and
// collects them into candidate sets.
package asin

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/samber/lo"
)

// Length is the fixed length of an Amazon Standard Identification Number.
const Length = 10

// kindlePrefix is the leading character shared by all Kindle edition ASINs.
const kindlePrefix = "B"

// IsKindleASIN reports whether value has the shape of a Kindle edition ASIN:
// exactly ten characters, starting with "B".
func IsKindleASIN(value string) bool {
	return utf8.RuneCountInString(value) == Length && strings.HasPrefix(value, kindlePrefix)
}

// IsASINIdentifier reports whether an identifier name carries an ASIN.
// Store specific keys such as "amazon_uk" or "amazon-de" count as ASINs.
func IsASINIdentifier(name string) bool {
	return name == "asin" || name == "mobi-asin" || strings.HasPrefix(name, "amazon")
}

// Set is an unordered collection of unique ASINs.
type Set map[string]struct{}

// NewSet returns a set holding the given values.
func NewSet(values ...string) Set {
	s := make(Set, len(values))
	s.AddAll(values...)
	return s
}

// Add inserts value into the set.
func (s Set) Add(value string) {
	s[value] = struct{}{}
}

// AddAll inserts every value into the set.
func (s Set) AddAll(values ...string) {
	for _, v := range values {
		s.Add(v)
	}
}

// Contains reports whether value is in the set.
func (s Set) Contains(value string) bool {
	_, ok := s[value]
	return ok
}

// Len returns the number of ASINs in the set. A nil set is empty.
func (s Set) Len() int {
	return len(s)
}

// Union returns a new set with the members of both sets.
func (s Set) Union(other Set) Set {
	out := make(Set, len(s)+len(other))
	for v := range s {
		out.Add(v)
	}
	for v := range other {
		out.Add(v)
	}
	return out
}

// Sorted returns the members in lexical order.
func (s Set) Sorted() []string {
	values := lo.Keys(s)
	sort.Strings(values)
	return values
}

// FromIdentifiers collects every ASIN-keyed identifier whose value passes
// IsKindleASIN.
func FromIdentifiers(identifiers map[string]string) Set {
	found := NewSet()
	for name, value := range identifiers {
		if IsASINIdentifier(name) && IsKindleASIN(value) {
			found.Add(value)
		}
	}
	return found
}

// Filter returns the values that pass IsKindleASIN, trimmed of surrounding
// whitespace.
func Filter(values []string) Set {
	found := NewSet()
	for _, v := range values {
		v = strings.TrimSpace(v)
		if IsKindleASIN(v) {
			found.Add(v)
		}
	}
	return found
}
