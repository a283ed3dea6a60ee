package amazon

import (
	"strings"

	"github.com/samber/lo"
)

// Layout names one known shape of the search results page.
type Layout int

const (
	// Unknown is a results container whose classes match no known layout.
	Unknown Layout = iota
	ModernList
	Grid
	InlineGrid
	ClassicList
)

func (l Layout) String() string {
	switch l {
	case ModernList:
		return "modern-list"
	case Grid:
		return "grid"
	case InlineGrid:
		return "inline-grid"
	case ClassicList:
		return "classic-list"
	default:
		return "unknown"
	}
}

// Profile holds the extraction rules for one layout. Locators are CSS
// selectors; Items is relative to the results container and the rest are
// relative to one item. IDAttr is read from the item element itself.
type Profile struct {
	Items  string
	Format string
	IDAttr string
	Author string
	Title  string
}

var profiles = map[Layout]Profile{
	ModernList: {
		Items:  "li.s-result-item",
		Format: "a.a-link-normal.a-text-bold",
		IDAttr: "data-asin",
		Author: "div.a-row.a-spacing-none",
		Title:  "h2.s-access-title",
	},
	Grid: {
		Items:  "div.prod.celwidget",
		Format: "span.binding",
		IDAttr: "name",
		Author: "span.ptBrand",
		Title:  "h3.newaps span.lrg",
	},
	InlineGrid: {
		Items:  "div.ilo2",
		Format: ".ilf",
		IDAttr: "name",
		Author: ".ilt3",
		Title:  ".ilt2",
	},
	ClassicList: {
		Items:  "div.prod",
		Format: "span.bld",
		IDAttr: "name",
		Author: "span.ptBrand",
		Title:  "h3.newaps a span.lrg",
	},
}

// Profile returns the extraction rules for l. Unknown has none.
func (l Layout) Profile() (Profile, bool) {
	p, ok := profiles[l]
	return p, ok
}

// detectionOrder is checked first to last; the first class token present wins.
var detectionOrder = []struct {
	class  string
	layout Layout
}{
	{"s-result-list", ModernList},
	{"grid", Grid},
	{"ilresults", InlineGrid},
	{"list", ClassicList},
}

// DetectLayout maps the class attribute of the results container to a layout.
func DetectLayout(classAttr string) Layout {
	tokens := strings.Fields(classAttr)
	for _, d := range detectionOrder {
		if lo.Contains(tokens, d.class) {
			return d.layout
		}
	}
	return Unknown
}
