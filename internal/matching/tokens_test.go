package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTitleTokens(t *testing.T) {
	tests := []struct {
		title string
		want  []string
	}{
		{title: "The Great Novel", want: []string{"great", "novel"}},
		{title: "Dune: Deluxe Edition", want: []string{"dune"}},
		{title: "The Lord of the Rings (Book 1)", want: []string{"lord", "of", "rings"}},
		{title: "Pride and Prejudice [Hardcover]", want: []string{"pride", "prejudice"}},
		{title: "Catch-22", want: []string{"catch-22"}},
		{title: "1,000 Places to See", want: []string{"1000", "places", "to", "see"}},
		{title: "Salt, Fat, Acid, Heat", want: []string{"salt", "fat", "acid", "heat"}},
		{title: "  ", want: nil},
		{title: "", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.Equal(t, tt.want, TitleTokens(tt.title))
		})
	}
}

func TestTitleTokensKeepsShortTitleWhenSubtitleIsEverything(t *testing.T) {
	assert.Empty(t, TitleTokens("(1984)"))
	assert.Equal(t, []string{"it"}, TitleTokens("It"))
}

func TestLastName(t *testing.T) {
	assert.Equal(t, "doe", LastName("Jane Doe"))
	assert.Equal(t, "tolkien", LastName("J. R. R. Tolkien"))
	assert.Equal(t, "plato", LastName("Plato"))
	assert.Equal(t, "", LastName("   "))
}

func TestFold(t *testing.T) {
	assert.Equal(t, "charlotte bronte", fold("Charlotte Brontë"))
	assert.Equal(t, "the great novel — a novel", fold("The Great Novel — A Novel"))
}
