// Package matching decides whether a scraped search result refers to the
// queried book.
package matching

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	subtitlePattern = regexp.MustCompile(`([(\[{].*?[)\]}]|[/:\\].*$)`)

	titleCleanups = []struct {
		re   *regexp.Regexp
		repl string
	}{
		// (2010) (Omnibus) [Hardcover] and similar
		{regexp.MustCompile(`(?i)[({\[](\d{4}|omnibus|anthology|hardcover|audiobook|audio\scd|paperback|turtleback|mass\s*market|edition|ed\.)[\])}]`), ""},
		// anything mentioning an edition inside brackets
		{regexp.MustCompile(`(?i)[({\[].*?(edition|ed\.).*?[\]})]`), ""},
		// thousands separators
		{regexp.MustCompile(`(\d+),(\d+)`), "$1$2"},
		// hyphens preceded by whitespace
		{regexp.MustCompile(`\s-`), " "},
		{regexp.MustCompile(`[:,;!@$%^&*(){}.` + "`" + `~"\s\[\]/《》「」“”—–]`), " "},
	}

	joiners = map[string]bool{"a": true, "and": true, "the": true, "&": true}
)

// TitleTokens splits a title into lowercase search tokens. Subtitles,
// bracketed notes, punctuation and the joining words "a", "and", "the" and
// "&" are dropped.
func TitleTokens(title string) []string {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil
	}

	if stripped := subtitlePattern.ReplaceAllString(title, ""); len(strings.TrimSpace(stripped)) > 1 {
		title = stripped
	}
	for _, c := range titleCleanups {
		title = c.re.ReplaceAllString(title, c.repl)
	}

	var tokens []string
	for _, field := range strings.Fields(title) {
		token := strings.ToLower(strings.Trim(field, `"'`))
		if token == "" || joiners[token] {
			continue
		}
		tokens = append(tokens, token)
	}
	return tokens
}

// LastName returns the lowercase last word of an author name.
func LastName(author string) string {
	fields := strings.Fields(author)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToLower(fields[len(fields)-1])
}

// fold lowercases s and strips combining marks so "Brontë" matches "bronte".
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(folded)
}
