package matching

import (
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestContainmentAcceptsMatchingItem(t *testing.T) {
	p := Containment{}

	assert.True(t, p.AuthorMatches("by Jane Doe", []string{"Jane Doe"}))
	assert.True(t, p.TitleMatches("The Great Novel — A Novel", "The Great Novel"))
}

func TestContainmentRejectsOtherAuthor(t *testing.T) {
	p := Containment{}

	assert.False(t, p.AuthorMatches("by Jane Doe", []string{"John Smith"}))
}

func TestContainmentAuthorEdgeCases(t *testing.T) {
	p := Containment{}

	assert.False(t, p.AuthorMatches("by Jane Doe", nil))
	assert.False(t, p.AuthorMatches("by Jane Doe", []string{" "}))
	assert.True(t, p.AuthorMatches("BY JANE DOE", []string{"jane doe"}))
	assert.True(t, p.AuthorMatches("Charlotte Brontë (Author)", []string{"Charlotte Bronte"}))
	// only the first author is consulted
	assert.False(t, p.AuthorMatches("by Jane Doe", []string{"John Smith", "Jane Doe"}))
}

func TestContainmentTitleNeedsEveryToken(t *testing.T) {
	p := Containment{}

	assert.False(t, p.TitleMatches("The Great Escape", "The Great Novel"))
	assert.True(t, p.TitleMatches("Dune (Dune Chronicles Book 1)", "Dune: Deluxe Edition"))
	assert.True(t, p.TitleMatches("anything at all", ""))
}

func TestFuzzyToleratesTypos(t *testing.T) {
	p := Fuzzy{MaxDistance: 1}

	assert.True(t, p.AuthorMatches("by Jane Dow", []string{"Jane Doe"}))
	assert.False(t, p.AuthorMatches("by John Smith", []string{"Jane Doe"}))
	assert.True(t, p.TitleMatches("The Gret Novel: A Novel", "The Great Novel"))
	assert.False(t, p.TitleMatches("A Different Story", "The Great Novel"))
	assert.False(t, p.AuthorMatches("by Jane Doe", nil))
}

func TestByName(t *testing.T) {
	p, err := ByName("")
	assert.NoError(t, err)
	assert.Equal(t, "containment", p.Name())

	p, err = ByName("Fuzzy")
	assert.NoError(t, err)
	assert.Equal(t, "fuzzy", p.Name())

	_, err = ByName("levenshtein-only")
	assert.Error(t, err)
}
