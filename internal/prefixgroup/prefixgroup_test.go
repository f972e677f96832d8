package prefixgroup

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractTitleFromFilename(t *testing.T) {
	assert.Equal(t, "The Matrix", ExtractTitleFromFilename("The Matrix (1999).mkv"))
	assert.Equal(t, "Amelie", ExtractTitleFromFilename("Amelie.mkv"))
	assert.Equal(t, "", ExtractTitleFromFilename(""))
}

func TestExtractFirstWord(t *testing.T) {
	assert.Equal(t, "Matrix", ExtractFirstWord("The Matrix"))
	assert.Equal(t, "Haine", ExtractFirstWord("la Haine"))
	assert.Equal(t, "", ExtractFirstWord(""))
}
