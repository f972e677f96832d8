package textnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpandLigatures(t *testing.T) {
	assert.Equal(t, "Coeur oeuvre Aeon ae", ExpandLigatures("Cœur œuvre Æon æ"))
}

func TestStripInvisible(t *testing.T) {
	assert.Equal(t, "Amelie", StripInvisible("Am​elie"))
}

func TestNormalizeAccents(t *testing.T) {
	assert.Equal(t, "Amelie", NormalizeAccents("Amélie"))
	assert.Equal(t, "Leon", NormalizeAccents("Léon"))
}

func TestStripArticle(t *testing.T) {
	cases := []struct{ in, want string }{
		{"The Matrix", "Matrix"},
		{"la Haine", "Haine"},
		{"l'Odyssée", "Odyssée"},
		{"Amelie", "Amelie"},
		{"", ""},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, StripArticle(c.in), c.in)
	}
}

func TestSortLetter(t *testing.T) {
	assert.Equal(t, "M", SortLetter("The Matrix"))
	assert.Equal(t, "H", SortLetter("la Haine"))
	assert.Equal(t, "#", SortLetter("2001: A Space Odyssey"))
	assert.Equal(t, "#", SortLetter(""))
}

func TestSortKey(t *testing.T) {
	assert.Equal(t, "MA", SortKey("The Matrix"))
	assert.Equal(t, "HA", SortKey("la Haine"))
	assert.Equal(t, "AA", SortKey("2001"))
}
